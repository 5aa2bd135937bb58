package graph

import "github.com/panux/anvil/buildfile"

// Target is a materialized TargetProxy: an address, its
// resolved payload, and its dependency set. Once inserted into a
// BuildGraph a Target is immutable except for its Labels, which may only
// grow (AddLabel is idempotent - adding an already-present label is a
// no-op), matching the "free-form labels the target type always applies"
// wording of the registry's TargetConstructor.
type Target struct {
	Address      buildfile.Address
	Type         string
	Payload      Payload
	Dependencies []buildfile.Address
	Labels       []string
}

// AddLabel appends label to t's label set if not already present.
func (t *Target) AddLabel(label string) {
	for _, l := range t.Labels {
		if l == label {
			return
		}
	}
	t.Labels = append(t.Labels, label)
}

// HasLabel reports whether label has been applied to t.
func (t *Target) HasLabel(label string) bool {
	for _, l := range t.Labels {
		if l == label {
			return true
		}
	}
	return false
}
