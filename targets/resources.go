package targets

import (
	"io"

	"github.com/panux/anvil/registry"
)

// Resources is the payload for resources targets: a bundle of
// non-source files to be packaged alongside a binary or library.
//
// It implements graph.TraversableSpecs (structurally - this package does
// not import graph, matching the registry's own duck-typing convention)
// when the bundle declares further specs via the bundled kwarg, the
// escape hatch for specs discovered only after materialization.
type Resources struct {
	Sources []string
	Bundled []string
}

func (p Resources) AbsorbHash(w io.Writer) error {
	if err := absorbStringList(w, "sources", p.Sources); err != nil {
		return err
	}
	return absorbStringList(w, "bundled", p.Bundled)
}

// TraversableSpecs exposes the bundled specs this payload discovered at
// construction time, so the graph constructor can recurse into them even
// though they were never part of the original "dependencies" list.
func (p Resources) TraversableSpecs() []string {
	return p.Bundled
}

func constructResources(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "sources", "bundled"); err != nil {
		return nil, nil, err
	}
	sources, err := parseStringList(ctx.Kwargs, "sources")
	if err != nil {
		return nil, nil, err
	}
	bundled, err := parseStringList(ctx.Kwargs, "bundled")
	if err != nil {
		return nil, nil, err
	}
	return Resources{Sources: sources, Bundled: bundled}, []string{"resources"}, nil
}

// Page is the payload for page targets: a single documentation/markdown
// source plus the resources it links to.
type Page struct {
	Source    string
	Resources []string
}

func (p Page) AbsorbHash(w io.Writer) error {
	if err := absorbFields(w, "source", p.Source); err != nil {
		return err
	}
	return absorbStringList(w, "resources", p.Resources)
}

func constructPage(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "source", "resources"); err != nil {
		return nil, nil, err
	}
	source, err := parseOptionalString(ctx.Kwargs, "source")
	if err != nil {
		return nil, nil, err
	}
	resources, err := parseStringList(ctx.Kwargs, "resources")
	if err != nil {
		return nil, nil, err
	}
	return Page{Source: source, Resources: resources}, []string{"page"}, nil
}
