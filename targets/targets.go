// Package targets implements the concrete target-type payloads bound
// into a registry.Registry's target-alias partition: java_library,
// scala_library, python_library, python_binary, python_test,
// python_thrift_library, java_thrift_library, java_antlr_library,
// jar_library, resources, page, and jvm_binary (the minimum
// alias set).
//
// Every payload type here implements graph.Payload by writing a
// deterministic, field-ordered encoding of itself - never relying on Go's
// randomized map iteration order - so that two targets with equal
// declared fields always hash equal.
package targets

import (
	"fmt"
	"io"
	"sort"

	"github.com/panux/anvil/registry"
)

// Register binds every target alias this package implements into r.
func Register(r *registry.Registry) {
	r.RegisterTarget("java_library", constructJavaLibrary)
	r.RegisterTarget("scala_library", constructScalaLibrary)
	r.RegisterTarget("python_library", constructPythonLibrary)
	r.RegisterTarget("python_binary", constructPythonBinary)
	r.RegisterTarget("python_test", constructPythonTest)
	r.RegisterTarget("python_thrift_library", constructPythonThriftLibrary)
	r.RegisterTarget("java_thrift_library", constructJavaThriftLibrary)
	r.RegisterTarget("java_antlr_library", constructJavaAntlrLibrary)
	r.RegisterTarget("jar_library", constructJarLibrary)
	r.RegisterTarget("resources", constructResources)
	r.RegisterTarget("page", constructPage)
	r.RegisterTarget("jvm_binary", constructJvmBinary)
}

// validThriftVersions is the small fixed set thrift_version is validated
// against.
var validThriftVersions = map[string]bool{"0.9": true, "0.10": true}

func parseThriftVersion(kwargs map[string]interface{}) (string, error) {
	v, ok := kwargs["thrift_version"]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("thrift_version must be a string, got %T", v)
	}
	if !validThriftVersions[s] {
		return "", fmt.Errorf("unsupported thrift_version %q", s)
	}
	return s, nil
}

func parseStringList(kwargs map[string]interface{}, key string) ([]string, error) {
	v, ok := kwargs[key]
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		if s, ok := v.(string); ok {
			return []string{s}, nil
		}
		return nil, fmt.Errorf("%s must be a list of strings, got %T", key, v)
	}
	out := make([]string, len(raw))
	for i, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string, got %T", key, i, e)
		}
		out[i] = s
	}
	return out, nil
}

func parseOptionalString(kwargs map[string]interface{}, key string) (string, error) {
	v, ok := kwargs[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	return s, nil
}

func parseOptionalBool(kwargs map[string]interface{}, key string) (bool, error) {
	v, ok := kwargs[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a bool, got %T", key, v)
	}
	return b, nil
}

// rejectUnknownKwargs fails materialization when kwargs contains any key
// outside allowed - the "unknown parameter" case of MaterializationError.
func rejectUnknownKwargs(kwargs map[string]interface{}, allowed ...string) error {
	allowedSet := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}
	var unknown []string
	for k := range kwargs {
		if !allowedSet[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown parameter(s): %v", unknown)
}

// absorbFields writes a deterministic, order-stable encoding of a
// payload's fields to w: a length-prefixed record per field, so that no
// field's content can be confused with a delimiter or with an adjacent
// field's bytes.
func absorbFields(w io.Writer, fields ...string) error {
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%d:%s;", len(f), f); err != nil {
			return err
		}
	}
	return nil
}

func absorbStringList(w io.Writer, label string, ss []string) error {
	sorted := make([]string, len(ss))
	copy(sorted, ss)
	sort.Strings(sorted)
	if err := absorbFields(w, label, fmt.Sprint(len(sorted))); err != nil {
		return err
	}
	for _, s := range sorted {
		if err := absorbFields(w, s); err != nil {
			return err
		}
	}
	return nil
}
