package evaluator

import (
	"testing"

	"github.com/panux/anvil/buildfile"
	"github.com/panux/anvil/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/godoc/vfs/mapfs"
)

func newTestRegistry() *registry.Registry {
	r := registry.New()
	noop := func(registry.ConstructContext) (interface{}, []string, error) {
		return nil, nil, nil
	}
	r.RegisterTarget("java_library", noop)
	return r
}

func TestEvaluateFamilyHarvestsProxies(t *testing.T) {
	fs := mapfs.New(map[string]string{
		"proj/a/BUILD": `
java_library(name='a', dependencies=[':b'])
java_library(name='b')
`,
	})

	r := newTestRegistry()
	ev := New(fs, r)

	fam, err := buildfile.DiscoverFamily(fs, "", "proj/a")
	require.NoError(t, err)
	require.NotNil(t, fam)

	require.NoError(t, ev.EvaluateFamily(fam))
	assert.True(t, ev.Parsed("proj/a"))

	a, ok := ev.Proxy(buildfile.NewBuildFileAddress("proj/a", "a"))
	require.True(t, ok)
	assert.Equal(t, []string{":b"}, a.DependencySpecs)

	_, ok = ev.Proxy(buildfile.NewBuildFileAddress("proj/a", "b"))
	assert.True(t, ok)

	// re-evaluating the same family is a no-op (idempotence).
	require.NoError(t, ev.EvaluateFamily(fam))
}

func TestEvaluateFamilyDuplicateAddressFails(t *testing.T) {
	fs := mapfs.New(map[string]string{
		"proj/a/BUILD":   `java_library(name='t')`,
		"proj/a/BUILD.2": `java_library(name='t')`,
	})

	r := newTestRegistry()
	ev := New(fs, r)

	fam, err := buildfile.DiscoverFamily(fs, "", "proj/a")
	require.NoError(t, err)
	require.NotNil(t, fam)

	err = ev.EvaluateFamily(fam)
	require.Error(t, err)
	assert.False(t, ev.Parsed("proj/a"))
}

func TestCallProxyRejectsPositionalArgs(t *testing.T) {
	fs := mapfs.New(map[string]string{
		"proj/a/BUILD": `java_library('t')`,
	})

	r := newTestRegistry()
	ev := New(fs, r)

	fam, err := buildfile.DiscoverFamily(fs, "", "proj/a")
	require.NoError(t, err)

	err = ev.EvaluateFamily(fam)
	require.Error(t, err)
}

func TestCallProxyRejectsMissingName(t *testing.T) {
	fs := mapfs.New(map[string]string{
		"proj/a/BUILD": `java_library(dependencies=[])`,
	})

	r := newTestRegistry()
	ev := New(fs, r)

	fam, err := buildfile.DiscoverFamily(fs, "", "proj/a")
	require.NoError(t, err)

	err = ev.EvaluateFamily(fam)
	require.Error(t, err)
}

func TestCallProxyRejectsReservedKwarg(t *testing.T) {
	fs := mapfs.New(map[string]string{
		"proj/a/BUILD": `java_library(name='t', build_file='x')`,
	})

	r := newTestRegistry()
	ev := New(fs, r)

	fam, err := buildfile.DiscoverFamily(fs, "", "proj/a")
	require.NoError(t, err)

	err = ev.EvaluateFamily(fam)
	require.Error(t, err)
}
