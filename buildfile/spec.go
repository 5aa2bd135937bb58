package buildfile

import (
	"errors"
	"strings"
)

// errNoRelativeTo is returned by ParseSpec when a spec has an empty path
// component (":name" or "") and no relativeTo is supplied to anchor it.
var errNoRelativeTo = errors.New("relative spec with no enclosing BUILD file to resolve against")

// ParseSpec parses a BUILD-file target spec into a (path, name) pair.
//
//   - If spec contains ':', split once: the left side is the path, the
//     right side is the name.
//   - If spec contains no ':', the whole string is the path and the name
//     defaults to the path's basename.
//   - An empty left side is replaced by relativeTo when non-nil; otherwise
//     it is an error.
//
// The spec string itself is never kept - only the resolved (specPath,
// name) pair.
func ParseSpec(spec string, relativeTo *string) (specPath, name string, err error) {
	if idx := strings.IndexByte(spec, ':'); idx >= 0 {
		specPath, name = spec[:idx], spec[idx+1:]
	} else {
		specPath = spec
		name = basename(spec)
	}

	if specPath == "" {
		if relativeTo == nil {
			return "", "", &ResolutionError{Spec: spec, Err: errNoRelativeTo}
		}
		specPath = *relativeTo
		if name == "" {
			name = basename(specPath)
		}
	}

	return specPath, name, nil
}

// ParseAddress parses spec and anchors it at the build root as an Address.
func ParseAddress(spec string, relativeTo *string) (Address, error) {
	specPath, name, err := ParseSpec(spec, relativeTo)
	if err != nil {
		return Address{}, err
	}
	return NewBuildFileAddress(specPath, name), nil
}
