package graph

import (
	"fmt"

	"github.com/panux/anvil/buildfile"
	"github.com/panux/anvil/buildlog"
	"github.com/panux/anvil/evaluator"
	"github.com/panux/anvil/registry"
)

// TraversableSpecs is an escape hatch a materialized Target's payload may
// optionally implement: specs discovered only once the payload has been
// constructed (e.g. bundle resources whose contents enumerate further
// dependencies), which the constructor recurses into just as it does
// declared "dependencies" specs.
type TraversableSpecs interface {
	TraversableSpecs() []string
}

// Constructor drives
// the evaluator and resolver to populate BUILD-file evaluation on demand,
// and materializes TargetProxies into Targets as it injects a spec's
// transitive closure into a BuildGraph.
//
// A Constructor is single-threaded, matching the evaluator it wraps; it
// deliberately does not detect dependency cycles - a
// cycle is silently collapsed by the visited set below.
type Constructor struct {
	eval     *evaluator.Evaluator
	resolver *buildfile.Resolver
	reg      *registry.Registry
	log      buildlog.Handler
}

// NewConstructor builds a Constructor over the given evaluator, resolver,
// and registry. The three must share the same underlying vfs.FileSystem
// and Registry instance for results to be consistent.
func NewConstructor(eval *evaluator.Evaluator, resolver *buildfile.Resolver, reg *registry.Registry) *Constructor {
	return &Constructor{eval: eval, resolver: resolver, reg: reg}
}

// WithBuildLog attaches h; InjectSpecClosure logs one Line per
// materialized Target through it.
func (c *Constructor) WithBuildLog(h buildlog.Handler) *Constructor {
	c.log = h
	return c
}

// PopulateTransitiveClosure ensures every BUILD file in spec's dependency
// closure has been evaluated, without materializing any Targets.
func (c *Constructor) PopulateTransitiveClosure(spec string) error {
	addr, err := c.resolver.Resolve(spec, nil)
	if err != nil {
		return err
	}
	visited := map[string]bool{}
	return c.populate(addr, visited)
}

func (c *Constructor) populate(addr buildfile.Address, visited map[string]bool) error {
	key := addr.String()
	if visited[key] {
		return nil
	}
	visited[key] = true

	if err := c.ensureEvaluated(addr); err != nil {
		return err
	}
	proxy, ok := c.eval.Proxy(addr)
	if !ok {
		return &buildfile.ResolutionError{Spec: addr.String(), Err: unknownAddressErr(addr)}
	}

	for _, depSpec := range proxy.DependencySpecs {
		depAddr, err := c.resolver.Resolve(depSpec, &addr.SpecPath)
		if err != nil {
			return err
		}
		if err := c.populate(depAddr, visited); err != nil {
			return err
		}
	}
	return nil
}

// InjectSpecClosure ensures spec's target and its entire transitive
// closure of dependencies exist in g, via a post-order, visited-set
// dependency walk.
func (c *Constructor) InjectSpecClosure(spec string, g *BuildGraph) error {
	addr, err := c.resolver.Resolve(spec, nil)
	if err != nil {
		return err
	}
	visited := map[string]bool{}
	return c.inject(addr, g, visited)
}

func (c *Constructor) inject(addr buildfile.Address, g *BuildGraph, visited map[string]bool) error {
	// step 2: already in the graph, or already visited this traversal.
	if g.Contains(addr) {
		return nil
	}
	key := addr.String()
	if visited[key] {
		return nil
	}
	// step 3: mark visited before recursing, so a declaration cycle
	// terminates instead of looping forever.
	visited[key] = true

	// step 1: ensure the family backing this address has been evaluated.
	if err := c.ensureEvaluated(addr); err != nil {
		return err
	}
	proxy, ok := c.eval.Proxy(addr)
	if !ok {
		return &buildfile.ResolutionError{Spec: addr.String(), Err: unknownAddressErr(addr)}
	}

	// step 4: recurse into every declared dependency first.
	depAddrs := make([]buildfile.Address, 0, len(proxy.DependencySpecs))
	for _, depSpec := range proxy.DependencySpecs {
		depAddr, err := c.resolver.Resolve(depSpec, &addr.SpecPath)
		if err != nil {
			return err
		}
		if err := c.inject(depAddr, g, visited); err != nil {
			return err
		}
		depAddrs = append(depAddrs, depAddr)
	}

	// step 5: materialize the proxy and insert it, post-order.
	target, err := c.materialize(proxy, depAddrs)
	if err != nil {
		return err
	}
	g.Insert(target)
	if c.log != nil {
		c.log.Log(buildlog.Line{
			Stream:  buildlog.StreamGraph,
			Address: addr.String(),
			Text:    fmt.Sprintf("materialized %s with %d dependencies", target.Type, len(depAddrs)),
		})
	}

	// step 6: recurse into any traversable specs the payload exposed.
	if trav, ok := target.Payload.(TraversableSpecs); ok {
		for _, tspec := range trav.TraversableSpecs() {
			tAddr, err := c.resolver.Resolve(tspec, &addr.SpecPath)
			if err != nil {
				return err
			}
			if err := c.inject(tAddr, g, visited); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Constructor) ensureEvaluated(addr buildfile.Address) error {
	if c.eval.Parsed(addr.SpecPath) {
		return nil
	}
	fam, err := c.resolver.FamilyFor(addr)
	if err != nil {
		return err
	}
	return c.eval.EvaluateFamily(fam)
}

func (c *Constructor) materialize(proxy *evaluator.TargetProxy, depAddrs []buildfile.Address) (*Target, error) {
	ctor, ok := c.reg.TargetConstructor(proxy.TargetType)
	if !ok {
		return nil, &UnknownTargetTypeError{Address: proxy.Address, Type: proxy.TargetType}
	}

	rawPayload, labels, err := ctor(registry.ConstructContext{
		Address:      proxy.Address,
		Dependencies: depAddrs,
		Kwargs:       proxy.Kwargs,
	})
	if err != nil {
		return nil, &MaterializationError{Address: proxy.Address, Type: proxy.TargetType, Err: err}
	}

	payload, ok := rawPayload.(Payload)
	if !ok {
		return nil, &MaterializationError{
			Address: proxy.Address,
			Type:    proxy.TargetType,
			Err:     errNotAPayload(proxy.TargetType),
		}
	}

	return &Target{
		Address:      proxy.Address,
		Type:         proxy.TargetType,
		Payload:      payload,
		Dependencies: depAddrs,
		Labels:       labels,
	}, nil
}

type unknownAddressErr buildfile.Address

func (e unknownAddressErr) Error() string {
	return "no target proxy recorded for " + buildfile.Address(e).String()
}

type errNotAPayload string

func (e errNotAPayload) Error() string {
	return "target type " + string(e) + " did not return a value satisfying graph.Payload"
}
