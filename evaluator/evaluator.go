package evaluator

import (
	"fmt"
	"io"

	"github.com/panux/anvil/buildfile"
	"github.com/panux/anvil/buildlog"
	"github.com/panux/anvil/registry"
	"go.starlark.net/starlark"
	"golang.org/x/tools/godoc/vfs"
)

// reservedKwarg is the one keyword argument a call-proxy never accepts
// explicitly - it is always implied by the declaring BuildFile.
const reservedKwarg = "build_file"

// Evaluator parses each BuildFile exactly once, executes it against a
// binding environment assembled from the registry's four partitions, and
// harvests the TargetProxies the script's call-proxy invocations
// produced.
//
// An Evaluator is not safe for concurrent use - evaluation is
// deliberately single-threaded and synchronous.
type Evaluator struct {
	fs  vfs.FileSystem
	reg *registry.Registry

	// parsed tracks which spec_paths have already been evaluated, for
	// idempotence.
	parsed map[string]bool

	// proxies is the harvested collector set, keyed by address string for
	// uniqueness checking.
	proxies map[string]*TargetProxy

	// order preserves insertion order, useful for deterministic iteration
	// (eg. dumping a family's declarations for debugging).
	order []string

	log buildlog.Handler
}

// New constructs an Evaluator that resolves BUILD-file source through fs
// and binds aliases from reg.
func New(fs vfs.FileSystem, reg *registry.Registry) *Evaluator {
	return &Evaluator{
		fs:      fs,
		reg:     reg,
		parsed:  map[string]bool{},
		proxies: map[string]*TargetProxy{},
	}
}

// WithBuildLog attaches h; EvaluateFamily logs one Line per successfully
// evaluated family through it. A nil Evaluator log is valid and simply
// skips logging.
func (e *Evaluator) WithBuildLog(h buildlog.Handler) *Evaluator {
	e.log = h
	return e
}

// Parsed reports whether specPath's family has already been evaluated.
func (e *Evaluator) Parsed(specPath string) bool {
	return e.parsed[specPath]
}

// Proxy looks up a harvested TargetProxy by address.
func (e *Evaluator) Proxy(addr buildfile.Address) (*TargetProxy, bool) {
	p, ok := e.proxies[addr.String()]
	return p, ok
}

// EvaluateFamily evaluates every file in fam in declaration order,
// recording the TargetProxies they declare. It is a no-op if fam's
// spec_path has already been parsed. The family is evaluated atomically
// with respect to address uniqueness: if any file in the family fails,
// none of the family's proxies are retained.
func (e *Evaluator) EvaluateFamily(fam *buildfile.Family) error {
	if fam == nil {
		return nil
	}
	if e.parsed[fam.SpecPath] {
		return nil
	}

	staged := map[string]*TargetProxy{}
	var stagedOrder []string
	for _, bf := range fam.Files {
		if err := e.evaluateFile(bf, staged, &stagedOrder); err != nil {
			return err
		}
	}

	for addr, p := range staged {
		e.proxies[addr] = p
	}
	e.order = append(e.order, stagedOrder...)
	e.parsed[fam.SpecPath] = true

	if e.log != nil {
		e.log.Log(buildlog.Line{
			Stream:  buildlog.StreamEvaluation,
			Address: fam.SpecPath,
			Text:    fmt.Sprintf("evaluated %d file(s), declared %d target(s)", len(fam.Files), len(stagedOrder)),
		})
	}
	return nil
}

// evaluateFile executes one BUILD file's source, appending any proxies it
// declares into staged. staged (plus the Evaluator's already-committed
// proxies) is what address uniqueness is checked against, so that a
// collision anywhere in the family - even across two files evaluated in
// the same call - is caught before any of the family is committed.
func (e *Evaluator) evaluateFile(bf buildfile.BuildFile, staged map[string]*TargetProxy, stagedOrder *[]string) error {
	src, err := readFile(e.fs, bf.Path())
	if err != nil {
		return &EvaluationError{File: bf.Path(), Err: err}
	}

	env, err := e.bindingEnvironment(bf, staged, stagedOrder)
	if err != nil {
		return &EvaluationError{File: bf.Path(), Err: err}
	}

	thread := &starlark.Thread{Name: bf.Path()}
	_, err = starlark.ExecFile(thread, bf.Path(), src, env)
	if err != nil {
		return &EvaluationError{File: bf.Path(), Err: err}
	}
	return nil
}

// bindingEnvironment assembles the per-file binding environment: a copy
// of the exposed-objects partition, each partial util bound with
// rel_path=spec_path, each applicative util invoked with the same, and a
// call-proxy closure for every registered target alias.
func (e *Evaluator) bindingEnvironment(bf buildfile.BuildFile, staged map[string]*TargetProxy, stagedOrder *[]string) (starlark.StringDict, error) {
	env := starlark.StringDict{}

	for name, v := range e.reg.Objects() {
		env[name] = v
	}
	for name, fn := range e.reg.Partial() {
		env[name] = fn(bf.SpecPath)
	}
	for name, factory := range e.reg.Applicative() {
		v, err := factory(bf.SpecPath)
		if err != nil {
			return nil, fmt.Errorf("applicative util %q: %w", name, err)
		}
		env[name] = v
	}
	for _, targetType := range e.reg.TargetAliasNames() {
		env[targetType] = e.callProxy(targetType, bf, staged, stagedOrder)
	}

	return env, nil
}

// callProxy builds the closure bound into a BUILD file under name
// targetType. Each invocation constructs a TargetProxy from the supplied
// keyword arguments.
func (e *Evaluator) callProxy(targetType string, bf buildfile.BuildFile, staged map[string]*TargetProxy, stagedOrder *[]string) *starlark.Builtin {
	return starlark.NewBuiltin(targetType, func(
		thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		if len(args) > 0 {
			return nil, &InvalidDeclarationError{
				TargetType: targetType,
				File:       bf.Path(),
				Reason:     "positional arguments are not permitted",
			}
		}

		goKwargs := make(map[string]interface{}, len(kwargs))
		var name string
		haveName := false
		for _, kv := range kwargs {
			key, ok := starlark.AsString(kv[0])
			if !ok {
				return nil, &InvalidDeclarationError{
					TargetType: targetType,
					File:       bf.Path(),
					Reason:     "keyword argument name must be a string",
				}
			}
			if key == reservedKwarg {
				return nil, &InvalidDeclarationError{
					TargetType: targetType,
					File:       bf.Path(),
					Reason:     "build_file may not be passed explicitly",
				}
			}
			gv, err := toGo(kv[1])
			if err != nil {
				return nil, &InvalidDeclarationError{
					TargetType: targetType,
					File:       bf.Path(),
					Reason:     fmt.Sprintf("keyword %q: %s", key, err),
				}
			}
			if key == "name" {
				s, ok := gv.(string)
				if !ok {
					return nil, &InvalidDeclarationError{
						TargetType: targetType,
						File:       bf.Path(),
						Reason:     "name must be a string",
					}
				}
				name = s
				haveName = true
				continue
			}
			goKwargs[key] = gv
		}

		if !haveName || name == "" {
			return nil, &InvalidDeclarationError{
				TargetType: targetType,
				File:       bf.Path(),
				Reason:     "name is required",
			}
		}

		depSpecs, err := stringList(goKwargs["dependencies"])
		if err != nil {
			return nil, &InvalidDeclarationError{
				TargetType: targetType,
				File:       bf.Path(),
				Reason:     fmt.Sprintf("dependencies: %s", err),
			}
		}
		// "dependencies" is hoisted into DependencySpecs/resolved into
		// ConstructContext.Dependencies by the graph constructor; it is not
		// part of a target type's own kwargs vocabulary.
		delete(goKwargs, "dependencies")

		addr := buildfile.NewBuildFileAddress(bf.SpecPath, name)
		key := addr.String()
		if _, exists := staged[key]; exists {
			return nil, &buildfile.DuplicateAddressError{Address: addr}
		}
		if _, exists := e.proxies[key]; exists {
			return nil, &buildfile.DuplicateAddressError{Address: addr}
		}

		proxy := &TargetProxy{
			TargetType:      targetType,
			BuildFile:       bf,
			Address:         addr,
			DependencySpecs: depSpecs,
			Kwargs:          goKwargs,
		}
		staged[key] = proxy
		*stagedOrder = append(*stagedOrder, key)

		return starlark.None, nil
	})
}

func readFile(fs vfs.FileSystem, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf []byte
	chunk := make([]byte, 4096)
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
	}
	return buf, nil
}
