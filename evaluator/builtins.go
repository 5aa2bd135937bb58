package evaluator

import (
	"fmt"
	"path"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/panux/anvil/registry"
	"go.starlark.net/starlark"
	"golang.org/x/tools/godoc/vfs"
)

// RegisterBuiltins binds the path-relative glob helpers (exact,
// recursive, zero-or-more) plus source_root and buildroot/get_buildroot
// into r. fs is what the glob helpers match patterns against when a BUILD
// file calls them; rootDir is the value buildroot()/get_buildroot() return.
func RegisterBuiltins(r *registry.Registry, fs vfs.FileSystem, rootDir string) {
	r.RegisterPartial("globs", globPartial(fs, false))
	r.RegisterPartial("rglobs", globPartial(fs, true))
	r.RegisterPartial("zglobs", zglobPartial(fs))
	r.RegisterPartial("source_root", sourceRootPartial())

	r.RegisterObject("buildroot", starlark.NewBuiltin("buildroot", func(
		thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		return starlark.String(rootDir), nil
	}))
	r.RegisterObject("get_buildroot", starlark.NewBuiltin("get_buildroot", func(
		thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		return starlark.String(rootDir), nil
	}))
}

// globPartial implements globs()/rglobs(): exact, or recursive ("**")
// matching relative to the declaring BUILD file's directory.
func globPartial(fs vfs.FileSystem, recursive bool) registry.PartialFunc {
	return func(specPath string) *starlark.Builtin {
		name := "globs"
		if recursive {
			name = "rglobs"
		}
		return starlark.NewBuiltin(name, func(
			thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			patterns, err := patternArgs(args, kwargs)
			if err != nil {
				return nil, err
			}
			var matches []string
			for _, pat := range patterns {
				full := pat
				if recursive {
					full = "**/" + pat
				}
				m, err := globMatch(fs, specPath, full)
				if err != nil {
					return nil, err
				}
				matches = append(matches, m...)
			}
			return stringsToList(matches), nil
		})
	}
}

// zglobPartial implements zglobs(): patterns may contain a "**" component
// that matches zero or more directories, unlike rglobs' implicit prefix.
func zglobPartial(fs vfs.FileSystem) registry.PartialFunc {
	return func(specPath string) *starlark.Builtin {
		return starlark.NewBuiltin("zglobs", func(
			thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			patterns, err := patternArgs(args, kwargs)
			if err != nil {
				return nil, err
			}
			var matches []string
			for _, pat := range patterns {
				m, err := globMatch(fs, specPath, pat)
				if err != nil {
					return nil, err
				}
				matches = append(matches, m...)
			}
			return stringsToList(matches), nil
		})
	}
}

func patternArgs(args starlark.Tuple, kwargs []starlark.Tuple) ([]string, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("glob helpers take only positional pattern arguments")
	}
	out := make([]string, len(args))
	for i, a := range args {
		s, ok := starlark.AsString(a)
		if !ok {
			return nil, fmt.Errorf("glob pattern must be a string, got %s", a.Type())
		}
		out[i] = s
	}
	return out, nil
}

// globMatch resolves pattern against the BUILD file's directory (specPath)
// using doublestar for "**" support. It walks the directory tree itself
// (mirroring pkgen/build/rpindex.go's indexVFS) rather than adapting
// vfs.FileSystem to io/fs.FS, since doublestar only needs Match here.
func globMatch(fs vfs.FileSystem, specPath, pattern string) ([]string, error) {
	files, err := walkFiles(fs, specPath)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, rel := range files {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rel)
		}
	}
	return out, nil
}

// walkFiles recursively lists every regular file under dir in fs,
// returning paths relative to dir with "/" separators.
func walkFiles(fs vfs.FileSystem, dir string) ([]string, error) {
	var out []string
	var walk func(rel string) error
	walk = func(rel string) error {
		entries, err := fs.ReadDir(path.Join(dir, rel))
		if err != nil {
			return err
		}
		for _, ent := range entries {
			childRel := path.Join(rel, ent.Name())
			if ent.IsDir() {
				if err := walk(childRel); err != nil {
					return err
				}
				continue
			}
			out = append(out, childRel)
		}
		return nil
	}
	if err := walk(""); err != nil {
		return nil, err
	}
	return out, nil
}

func stringsToList(ss []string) *starlark.List {
	vals := make([]starlark.Value, len(ss))
	for i, s := range ss {
		vals[i] = starlark.String(s)
	}
	return starlark.NewList(vals)
}

// sourceRootPartial implements source_root(*rel_paths). It records
// nothing: it merely validates the paths and echoes them back as a tuple
// for use in Kwargs - source root bookkeeping
// proper belongs to the task layer that maps sources into compiler
// invocations, out of this core's scope.
func sourceRootPartial() registry.PartialFunc {
	return func(specPath string) *starlark.Builtin {
		return starlark.NewBuiltin("source_root", func(
			thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			for _, a := range args {
				if _, ok := starlark.AsString(a); !ok {
					return nil, fmt.Errorf("source_root: expected string arguments")
				}
			}
			return args, nil
		})
	}
}
