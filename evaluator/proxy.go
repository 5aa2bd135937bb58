package evaluator

import "github.com/panux/anvil/buildfile"

// TargetProxy is a deferred target record produced by evaluating a BUILD
// file. It is consumed exactly once, by the graph constructor, to build
// a Target; it does not survive past the evaluator that created it.
type TargetProxy struct {
	// TargetType is the alias the proxy was declared through, eg.
	// "java_library".
	TargetType string

	// BuildFile is the file that declared this proxy.
	BuildFile buildfile.BuildFile

	// Address is this proxy's address: (BuildFile.SpecPath, Name).
	Address buildfile.Address

	// DependencySpecs are the unresolved specs from the "dependencies"
	// keyword argument, if any.
	DependencySpecs []string

	// Kwargs holds every other declared keyword parameter, converted from
	// Starlark values to native Go values (see starlarkutil.go).
	Kwargs map[string]interface{}
}
