// Package registry implements the alias registry: the four partitions of
// bindings a BUILD file's evaluation environment is built from.
//
// Registry is an ordinary value, constructed once per process and passed
// explicitly into the evaluator, rather than package-level state - this
// avoids the cross-test contamination a global registry invites.
package registry

import (
	"sync"

	"github.com/panux/anvil/buildfile"
	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
)

// ConstructContext is what a TargetConstructor receives when a TargetProxy
// is materialized into a Target ("TargetProxy
// materialization").
type ConstructContext struct {
	Address      buildfile.Address
	Dependencies []buildfile.Address
	Kwargs       map[string]interface{}
}

// TargetConstructor builds a target's payload from a materialization
// context. It returns the payload (any value satisfying the graph
// package's Payload interface - duck-typed so this package need not import
// graph) and any free-form labels the target type always applies.
//
// Materialization failures (unknown parameter, missing required field,
// etc.) are returned as plain errors; the graph constructor wraps them in
// a *graph.MaterializationError.
type TargetConstructor func(ConstructContext) (payload interface{}, labels []string, err error)

// ApplicativeFactory builds a per-BUILD-file value, pre-bound to that
// file's spec_path, for values that need to know the declaring file's
// path at construction time.
type ApplicativeFactory func(specPath string) (starlark.Value, error)

// PartialFunc builds a per-BUILD-file callable with rel_path already bound
// as its first argument, eg. `globs(...)` resolving file patterns relative
// to the declaring BUILD file.
type PartialFunc func(specPath string) *starlark.Builtin

// Registry is the four-partition alias table.
type Registry struct {
	mu sync.Mutex

	targets     map[string]TargetConstructor
	objects     map[string]starlark.Value
	applicative map[string]ApplicativeFactory
	partial     map[string]PartialFunc

	log *logrus.Entry
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		targets:     map[string]TargetConstructor{},
		objects:     map[string]starlark.Value{},
		applicative: map[string]ApplicativeFactory{},
		partial:     map[string]PartialFunc{},
		log:         logrus.WithField("component", "registry"),
	}
}

// WithLogger overrides the logger used for idempotent-overwrite warnings.
func (r *Registry) WithLogger(log *logrus.Entry) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = log
	return r
}

// RegisterTarget binds name to constructor. Re-registering an existing
// name overwrites it and logs a warning - it never fails
// ("idempotent-with-warning").
func (r *Registry) RegisterTarget(name string, ctor TargetConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.targets[name]; exists {
		r.log.WithField("alias", name).WithField("partition", "target").
			Warn("overwriting existing alias registration")
	}
	r.targets[name] = ctor
}

// RegisterObject binds name to a direct exposed value or function.
func (r *Registry) RegisterObject(name string, value starlark.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.objects[name]; exists {
		r.log.WithField("alias", name).WithField("partition", "object").
			Warn("overwriting existing alias registration")
	}
	r.objects[name] = value
}

// RegisterApplicative binds name to a per-file factory.
func (r *Registry) RegisterApplicative(name string, factory ApplicativeFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.applicative[name]; exists {
		r.log.WithField("alias", name).WithField("partition", "applicative").
			Warn("overwriting existing alias registration")
	}
	r.applicative[name] = factory
}

// RegisterPartial binds name to a per-file rel_path-bound callable.
func (r *Registry) RegisterPartial(name string, fn PartialFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.partial[name]; exists {
		r.log.WithField("alias", name).WithField("partition", "partial").
			Warn("overwriting existing alias registration")
	}
	r.partial[name] = fn
}

// TargetConstructor looks up a registered target alias. ok is false if no
// such alias was registered.
func (r *Registry) TargetConstructor(name string) (ctor TargetConstructor, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctor, ok = r.targets[name]
	return
}

// TargetAliasNames returns the set of registered target alias names, the
// vocabulary of call-proxy builtins the evaluator must bind for a file.
func (r *Registry) TargetAliasNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.targets))
	for n := range r.targets {
		names = append(names, n)
	}
	return names
}

// Objects returns a copy of the exposed-objects partition.
func (r *Registry) Objects() map[string]starlark.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]starlark.Value, len(r.objects))
	for k, v := range r.objects {
		out[k] = v
	}
	return out
}

// Applicative returns a copy of the applicative-utils partition.
func (r *Registry) Applicative() map[string]ApplicativeFactory {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]ApplicativeFactory, len(r.applicative))
	for k, v := range r.applicative {
		out[k] = v
	}
	return out
}

// Partial returns a copy of the partial-utils partition.
func (r *Registry) Partial() map[string]PartialFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]PartialFunc, len(r.partial))
	for k, v := range r.partial {
		out[k] = v
	}
	return out
}
