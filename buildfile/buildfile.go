package buildfile

import (
	"path/filepath"
	"sort"

	"golang.org/x/tools/godoc/vfs"
)

// BuildFile is a handle to one file in a BUILD-file family.
type BuildFile struct {
	RootDir  string
	SpecPath string
	Basename string
}

// Path is the path to the file, relative to whatever root the
// vfs.FileSystem it was discovered through is itself rooted at.
func (b BuildFile) Path() string {
	return filepath.Join(b.SpecPath, b.Basename)
}

// Family is the set of BUILD files co-located in one directory. Address
// uniqueness is enforced across the whole family, and the family is
// evaluated as a unit: fully recorded, or the evaluation fails as a unit.
type Family struct {
	RootDir  string
	SpecPath string
	Files    []BuildFile
}

// isBuildFileName reports whether name is a BUILD-file basename. "BUILD" is
// canonical; any "BUILD.*" sibling (eg. "BUILD.extra") joins the same
// family.
func isBuildFileName(name string) bool {
	if name == "BUILD" {
		return true
	}
	return len(name) > len("BUILD.") && name[:len("BUILD.")] == "BUILD."
}

// DiscoverFamily finds the BUILD-file family at specPath. specPath is
// resolved directly against fs - fs is expected to already be rooted at
// the repository root (eg. vfs.OS(rootDir)), the same convention the
// glob builtins use, so rootDir is carried only as metadata on the
// returned Family/BuildFile values, never joined into an fs path.
func DiscoverFamily(fs vfs.FileSystem, rootDir, specPath string) (*Family, error) {
	entries, err := fs.ReadDir(specPath)
	if err != nil {
		return nil, err
	}

	fam := &Family{RootDir: rootDir, SpecPath: specPath}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		if isBuildFileName(ent.Name()) {
			fam.Files = append(fam.Files, BuildFile{
				RootDir:  rootDir,
				SpecPath: specPath,
				Basename: ent.Name(),
			})
		}
	}
	if len(fam.Files) == 0 {
		return nil, nil
	}

	// deterministic evaluation order: "BUILD" first, then alphabetically.
	sort.Slice(fam.Files, func(i, j int) bool {
		a, b := fam.Files[i].Basename, fam.Files[j].Basename
		if a == "BUILD" {
			return true
		}
		if b == "BUILD" {
			return false
		}
		return a < b
	})

	return fam, nil
}
