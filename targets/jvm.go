package targets

import (
	"fmt"
	"io"

	"github.com/panux/anvil/registry"
)

// JavaLibrary is the payload for java_library targets: a set of source
// files plus free-form resource specs.
type JavaLibrary struct {
	Sources   []string
	Resources []string
}

func (p JavaLibrary) AbsorbHash(w io.Writer) error {
	if err := absorbStringList(w, "sources", p.Sources); err != nil {
		return err
	}
	return absorbStringList(w, "resources", p.Resources)
}

func constructJavaLibrary(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "sources", "resources"); err != nil {
		return nil, nil, err
	}
	sources, err := parseStringList(ctx.Kwargs, "sources")
	if err != nil {
		return nil, nil, err
	}
	resources, err := parseStringList(ctx.Kwargs, "resources")
	if err != nil {
		return nil, nil, err
	}
	return JavaLibrary{Sources: sources, Resources: resources}, []string{"java"}, nil
}

// ScalaLibrary is the payload for scala_library targets.
type ScalaLibrary struct {
	Sources []string
}

func (p ScalaLibrary) AbsorbHash(w io.Writer) error {
	return absorbStringList(w, "sources", p.Sources)
}

func constructScalaLibrary(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "sources"); err != nil {
		return nil, nil, err
	}
	sources, err := parseStringList(ctx.Kwargs, "sources")
	if err != nil {
		return nil, nil, err
	}
	return ScalaLibrary{Sources: sources}, []string{"scala"}, nil
}

// JarLibrary is the payload for jar_library targets: a reference to one
// or more externally-resolved jar coordinates, with no sources of its own.
type JarLibrary struct {
	Jars []string
}

func (p JarLibrary) AbsorbHash(w io.Writer) error {
	return absorbStringList(w, "jars", p.Jars)
}

func constructJarLibrary(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "jars"); err != nil {
		return nil, nil, err
	}
	jars, err := parseStringList(ctx.Kwargs, "jars")
	if err != nil {
		return nil, nil, err
	}
	if len(jars) == 0 {
		return nil, nil, fmt.Errorf("jar_library requires at least one jar coordinate")
	}
	return JarLibrary{Jars: jars}, []string{"jar"}, nil
}

// JvmBinary is the payload for jvm_binary targets: a single entry-point
// class plus the sources that make it up.
type JvmBinary struct {
	Sources []string
	Main    string
}

func (p JvmBinary) AbsorbHash(w io.Writer) error {
	if err := absorbFields(w, "main", p.Main); err != nil {
		return err
	}
	return absorbStringList(w, "sources", p.Sources)
}

func constructJvmBinary(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "sources", "main"); err != nil {
		return nil, nil, err
	}
	sources, err := parseStringList(ctx.Kwargs, "sources")
	if err != nil {
		return nil, nil, err
	}
	main, err := parseOptionalString(ctx.Kwargs, "main")
	if err != nil {
		return nil, nil, err
	}
	if main == "" {
		return nil, nil, fmt.Errorf("jvm_binary requires a main class")
	}
	return JvmBinary{Sources: sources, Main: main}, []string{"binary", "jvm"}, nil
}

// JavaThriftLibrary is the payload for java_thrift_library targets:
// generated Java bindings for a set of .thrift sources, built against a
// specific thrift compiler version.
type JavaThriftLibrary struct {
	Sources       []string
	ThriftVersion string
}

func (p JavaThriftLibrary) AbsorbHash(w io.Writer) error {
	if err := absorbFields(w, "thrift_version", p.ThriftVersion); err != nil {
		return err
	}
	return absorbStringList(w, "sources", p.Sources)
}

func constructJavaThriftLibrary(ctx registry.ConstructContext) (interface{}, []string, error) {
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
	return JavaThriftLibrary{Sources: sources, ThriftVersion: thriftVersion}, []string{"java", "thrift", "codegen"}, nil
}

// JavaAntlrLibrary is the payload for java_antlr_library targets:
// generated Java bindings for a set of .g/.g4 grammar sources.
type JavaAntlrLibrary struct {
	Sources []string
}

func (p JavaAntlrLibrary) AbsorbHash(w io.Writer) error {
	return absorbStringList(w, "sources", p.Sources)
}

func constructJavaAntlrLibrary(ctx registry.ConstructContext) (interface{}, []string, error) {
	if err := rejectUnknownKwargs(ctx.Kwargs, "sources"); err != nil {
		return nil, nil, err
	}
	sources, err := parseStringList(ctx.Kwargs, "sources")
	if err != nil {
		return nil, nil, err
	}
	return JavaAntlrLibrary{Sources: sources}, []string{"java", "antlr", "codegen"}, nil
}
