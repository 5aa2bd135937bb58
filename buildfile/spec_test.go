package buildfile

import "testing"

func TestParseSpecAbsolute(t *testing.T) {
	path, name, err := ParseSpec("proj/a:a", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "proj/a" || name != "a" {
		t.Errorf("got (%q, %q)", path, name)
	}
}

func TestParseSpecShorthand(t *testing.T) {
	path, name, err := ParseSpec("proj/a", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "proj/a" || name != "a" {
		t.Errorf("got (%q, %q)", path, name)
	}
}

func TestParseSpecRelative(t *testing.T) {
	rel := "proj/a"
	path, name, err := ParseSpec(":b", &rel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "proj/a" || name != "b" {
		t.Errorf("got (%q, %q)", path, name)
	}
}

func TestParseSpecRelativeWithoutAnchor(t *testing.T) {
	_, _, err := ParseSpec(":b", nil)
	if err == nil {
		t.Fatal("expected ResolutionError, got nil")
	}
	if _, ok := err.(*ResolutionError); !ok {
		t.Errorf("expected *ResolutionError, got %T", err)
	}
}

func TestAddressStringRoundTrip(t *testing.T) {
	a := NewBuildFileAddress("proj/a", "a")
	if a.String() != "proj/a:a" {
		t.Errorf("got %q", a.String())
	}
	b := NewBuildFileAddress("proj/a", "a")
	if a != b {
		t.Errorf("expected equal addresses to compare equal by value")
	}
}

func TestAddressLessUsesStringForm(t *testing.T) {
	a := NewBuildFileAddress("proj/a", "a")
	b := NewBuildFileAddress("proj/b", "b")
	if !a.Less(b) || b.Less(a) {
		t.Errorf("expected proj/a:a < proj/b:b")
	}
}
