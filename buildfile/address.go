// Package buildfile implements the address/spec resolver: it parses the
// "spec" syntax BUILD files use to reference targets, anchors specs into
// canonical Addresses, and locates the BUILD-file family that backs an
// address.
package buildfile

import "strings"

// Address is a canonical, repo-root-relative reference to a target:
// (spec_path, name). Two addresses are equal iff their string forms are
// equal - the Synthetic flag is metadata, not part of identity.
type Address struct {
	SpecPath string
	Name     string

	// Synthetic marks a SyntheticAddress: one generated internally (eg. by
	// a traversable spec) rather than declared in a BUILD file.
	Synthetic bool
}

// NewBuildFileAddress constructs an Address for a name declared in a BUILD
// file at specPath.
func NewBuildFileAddress(specPath, name string) Address {
	return Address{SpecPath: specPath, Name: name}
}

// NewSyntheticAddress constructs an Address with no BUILD-file backing.
func NewSyntheticAddress(specPath, name string) Address {
	return Address{SpecPath: specPath, Name: name, Synthetic: true}
}

// String returns the canonical "spec_path:name" form. Addresses compare
// and hash purely by this form.
func (a Address) String() string {
	return a.SpecPath + ":" + a.Name
}

// Less orders addresses by their canonical string form, for callers that
// need a stable sort of addresses.
func (a Address) Less(o Address) bool {
	return a.String() < o.String()
}

// basename returns the last path component of a spec_path, used to
// compute the default name for a shorthand spec ("path" -> "path:base").
func basename(specPath string) string {
	if specPath == "" {
		return ""
	}
	trimmed := strings.TrimRight(specPath, "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
