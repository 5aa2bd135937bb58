// Package bootstrap wires together the registry partitions every anvil
// entry point needs: the target aliases of the targets package, the
// path-relative helpers of evaluator/builtins.go, and a couple of
// free-standing exposed objects (buildroot getters, ARCH/OS constants).
package bootstrap

import (
	"runtime"

	"github.com/panux/anvil/evaluator"
	"github.com/panux/anvil/registry"
	"github.com/panux/anvil/targets"
	"go.starlark.net/starlark"
	"golang.org/x/tools/godoc/vfs"
)

// NewRegistry builds a *registry.Registry pre-populated with every
// built-in target alias and path-relative helper, rooted at rootDir for
// glob resolution against fs.
func NewRegistry(fs vfs.FileSystem, rootDir string) *registry.Registry {
	r := registry.New()
	targets.Register(r)
	evaluator.RegisterBuiltins(r, fs, rootDir)
	r.RegisterObject("ARCH", starlark.String(runtime.GOARCH))
	r.RegisterObject("OS", starlark.String(runtime.GOOS))
	return r
}
