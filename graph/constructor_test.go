package graph

import (
	"io"
	"testing"

	"github.com/panux/anvil/buildfile"
	"github.com/panux/anvil/buildlog"
	"github.com/panux/anvil/evaluator"
	"github.com/panux/anvil/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/godoc/vfs/mapfs"
)

type stringPayload string

func (p stringPayload) AbsorbHash(w io.Writer) error {
	_, err := io.WriteString(w, string(p))
	return err
}

func newHarness(files map[string]string) (*Constructor, *registry.Registry) {
	fs := mapfs.New(files)
	reg := registry.New()
	reg.RegisterTarget("java_library", func(ctx registry.ConstructContext) (interface{}, []string, error) {
		return stringPayload(ctx.Address.String()), []string{"java"}, nil
	})

	ev := evaluator.New(fs, reg)
	resolver := buildfile.NewResolver(fs, "")
	return NewConstructor(ev, resolver, reg), reg
}

func TestInjectSpecClosureSimple(t *testing.T) {
	c, _ := newHarness(map[string]string{
		"proj/a/BUILD": `
java_library(name='a', dependencies=[':b'])
java_library(name='b')
`,
	})

	g := New()
	require.NoError(t, c.InjectSpecClosure("proj/a:a", g))

	assert.Equal(t, 2, g.Len())

	a := buildfile.NewBuildFileAddress("proj/a", "a")
	b := buildfile.NewBuildFileAddress("proj/a", "b")

	ta, ok := g.Target(a)
	require.True(t, ok)
	assert.Equal(t, []buildfile.Address{b}, ta.Dependencies)

	_, ok = g.Target(b)
	require.True(t, ok)

	// b was injected before a: post-order.
	order := g.Addresses()
	require.Len(t, order, 2)
	assert.Equal(t, b, order[0])
	assert.Equal(t, a, order[1])
}

func TestInjectSpecClosureIsIdempotent(t *testing.T) {
	c, _ := newHarness(map[string]string{
		"proj/a/BUILD": `java_library(name='a')`,
	})

	g := New()
	require.NoError(t, c.InjectSpecClosure("proj/a:a", g))
	require.NoError(t, c.InjectSpecClosure("proj/a:a", g))
	assert.Equal(t, 1, g.Len())
}

func TestInjectSpecClosureLogsMaterializations(t *testing.T) {
	c, _ := newHarness(map[string]string{
		"proj/a/BUILD": `
java_library(name='a', dependencies=[':b'])
java_library(name='b')
`,
	})
	rec := &buildlog.Recorder{}
	c.WithBuildLog(rec)

	g := New()
	require.NoError(t, c.InjectSpecClosure("proj/a:a", g))

	lines := rec.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "proj/a:b", lines[0].Address)
	assert.Equal(t, "proj/a:a", lines[1].Address)
}

func TestInjectSpecClosureCollapsesCycles(t *testing.T) {
	c, _ := newHarness(map[string]string{
		"proj/a/BUILD": `
java_library(name='a', dependencies=[':b'])
java_library(name='b', dependencies=[':a'])
`,
	})

	g := New()
	err := c.InjectSpecClosure("proj/a:a", g)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}
