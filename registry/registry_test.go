package registry

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRegisterTargetOverwriteWarns(t *testing.T) {
	r := New()
	hook := test.NewLocal(logrus.StandardLogger())
	r.WithLogger(logrus.NewEntry(logrus.StandardLogger()))

	ctor := func(ConstructContext) (interface{}, []string, error) { return nil, nil, nil }
	r.RegisterTarget("java_library", ctor)
	if _, ok := r.TargetConstructor("java_library"); !ok {
		t.Fatal("expected registration to be visible")
	}

	r.RegisterTarget("java_library", ctor)
	found := false
	for _, e := range hook.Entries {
		if e.Level == logrus.WarnLevel {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning log entry on overwrite, got none")
	}
}

func TestTargetAliasNames(t *testing.T) {
	r := New()
	r.RegisterTarget("java_library", nil)
	r.RegisterTarget("python_library", nil)
	names := r.TargetAliasNames()
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
}
