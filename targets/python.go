package targets

import (
	"fmt"
	"io"

	"github.com/panux/anvil/registry"
)

// PythonLibrary is the payload for python_library targets.
type PythonLibrary struct {
	Sources []string
}

func (p PythonLibrary) AbsorbHash(w io.Writer) error {
	return absorbStringList(w, "sources", p.Sources)
}

func constructPythonLibrary(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "sources"); err != nil {
		return nil, nil, err
	}
	sources, err := parseStringList(ctx.Kwargs, "sources")
	if err != nil {
		return nil, nil, err
	}
	return PythonLibrary{Sources: sources}, []string{"python"}, nil
}

// PythonBinary is the payload for python_binary targets: an executable
// entry point plus its own source files.
type PythonBinary struct {
	Sources   []string
	EntryPoint string
}

func (p PythonBinary) AbsorbHash(w io.Writer) error {
	if err := absorbFields(w, "entry_point", p.EntryPoint); err != nil {
		return err
	}
	return absorbStringList(w, "sources", p.Sources)
}

func constructPythonBinary(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "sources", "entry_point"); err != nil {
		return nil, nil, err
	}
	sources, err := parseStringList(ctx.Kwargs, "sources")
	if err != nil {
		return nil, nil, err
	}
	entryPoint, err := parseOptionalString(ctx.Kwargs, "entry_point")
	if err != nil {
		return nil, nil, err
	}
	if entryPoint == "" {
		return nil, nil, fmt.Errorf("python_binary requires an entry_point")
	}
	return PythonBinary{Sources: sources, EntryPoint: entryPoint}, []string{"binary", "python"}, nil
}

// PythonTest is the payload for python_test targets.
type PythonTest struct {
	Sources    []string
	Coverage   bool
}

func (p PythonTest) AbsorbHash(w io.Writer) error {
	cov := "false"
	if p.Coverage {
		cov = "true"
	}
	if err := absorbFields(w, "coverage", cov); err != nil {
		return err
	}
	return absorbStringList(w, "sources", p.Sources)
}

func constructPythonTest(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "sources", "coverage"); err != nil {
		return nil, nil, err
	}
	sources, err := parseStringList(ctx.Kwargs, "sources")
	if err != nil {
		return nil, nil, err
	}
	coverage, err := parseOptionalBool(ctx.Kwargs, "coverage")
	if err != nil {
		return nil, nil, err
	}
	return PythonTest{Sources: sources, Coverage: coverage}, []string{"python", "test"}, nil
}

// PythonThriftLibrary is the payload for python_thrift_library targets:
// generated Python bindings for a set of .thrift sources, built against a
// specific thrift compiler version.
type PythonThriftLibrary struct {
	Sources       []string
	ThriftVersion string
}

func (p PythonThriftLibrary) AbsorbHash(w io.Writer) error {
	if err := absorbFields(w, "thrift_version", p.ThriftVersion); err != nil {
		return err
	}
	return absorbStringList(w, "sources", p.Sources)
}

func constructPythonThriftLibrary(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "sources", "thrift_version"); err != nil {
		return nil, nil, err
	}
	sources, err := parseStringList(ctx.Kwargs, "sources")
	if err != nil {
		return nil, nil, err
	}
	thriftVersion, err := parseThriftVersion(ctx.Kwargs)
	if err != nil {
		return nil, nil, err
	}
	return PythonThriftLibrary{Sources: sources, ThriftVersion: thriftVersion}, []string{"python", "thrift", "codegen"}, nil
}
