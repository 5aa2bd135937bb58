package buildfile

import "golang.org/x/tools/godoc/vfs"

// Resolver anchors specs to a single repository root and knows how to
// locate the BUILD-file family for a spec_path within it.
type Resolver struct {
	FS      vfs.FileSystem
	RootDir string
}

// NewResolver builds a Resolver over fs, rooted at rootDir.
func NewResolver(fs vfs.FileSystem, rootDir string) *Resolver {
	return &Resolver{FS: fs, RootDir: rootDir}
}

// Resolve parses spec (optionally relative to relativeTo) into an Address.
func (r *Resolver) Resolve(spec string, relativeTo *string) (Address, error) {
	return ParseAddress(spec, relativeTo)
}

// FamilyFor locates the BUILD-file family that should define addr, failing
// with a ResolutionError if no BUILD file exists at addr.SpecPath.
func (r *Resolver) FamilyFor(addr Address) (*Family, error) {
	fam, err := DiscoverFamily(r.FS, r.RootDir, addr.SpecPath)
	if err != nil {
		return nil, &ResolutionError{Spec: addr.String(), Err: err}
	}
	if fam == nil {
		return nil, &ResolutionError{Spec: addr.String(), Err: errNoBuildFile(addr.SpecPath)}
	}
	return fam, nil
}

type noBuildFileErr string

func (e noBuildFileErr) Error() string { return "no BUILD file in " + string(e) }

func errNoBuildFile(specPath string) error { return noBuildFileErr(specPath) }
