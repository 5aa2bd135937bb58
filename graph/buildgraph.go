package graph

import "github.com/panux/anvil/buildfile"

// BuildGraph is the in-memory dependency graph materialized targets are
// inserted into. It keeps both the forward edges (a
// target's declared dependencies) and a reverse index (each target's
// dependents), and records insertion order since injection is defined to
// be post-order: a dependent always enters the graph after every one of
// its dependencies.
type BuildGraph struct {
	targets    map[string]*Target
	dependents map[string][]buildfile.Address
	order      []buildfile.Address
}

// New constructs an empty BuildGraph.
func New() *BuildGraph {
	return &BuildGraph{
		targets:    map[string]*Target{},
		dependents: map[string][]buildfile.Address{},
	}
}

// Contains reports whether addr already has a Target recorded.
func (g *BuildGraph) Contains(addr buildfile.Address) bool {
	_, ok := g.targets[addr.String()]
	return ok
}

// Target looks up the Target recorded at addr.
func (g *BuildGraph) Target(addr buildfile.Address) (*Target, bool) {
	t, ok := g.targets[addr.String()]
	return t, ok
}

// Insert records t in the graph and wires its reverse-dependency index.
// Insert panics if t's address is already present - the constructor is
// responsible for never calling Insert twice for the same address
// (enforced by the visited-set in the injection algorithm).
func (g *BuildGraph) Insert(t *Target) {
	key := t.Address.String()
	if _, exists := g.targets[key]; exists {
		panic("graph: duplicate insert of " + key)
	}
	g.targets[key] = t
	g.order = append(g.order, t.Address)
	for _, dep := range t.Dependencies {
		depKey := dep.String()
		g.dependents[depKey] = append(g.dependents[depKey], t.Address)
	}
}

// Dependents returns the addresses of targets that declared addr as a
// dependency.
func (g *BuildGraph) Dependents(addr buildfile.Address) []buildfile.Address {
	return g.dependents[addr.String()]
}

// Addresses returns every recorded address, in insertion (post-)order.
func (g *BuildGraph) Addresses() []buildfile.Address {
	out := make([]buildfile.Address, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of targets recorded in the graph.
func (g *BuildGraph) Len() int {
	return len(g.targets)
}
