package graph

import (
	"fmt"

	"github.com/panux/anvil/buildfile"
)

// MaterializationError indicates that constructing a Target from a
// TargetProxy failed - an unknown parameter, a missing required field, or
// a type error in a declared kwarg.
type MaterializationError struct {
	Address buildfile.Address
	Type    string
	Err     error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("graph: materializing %s (%s): %s", e.Address, e.Type, e.Err)
}

func (e *MaterializationError) Unwrap() error { return e.Err }

// UnknownTargetTypeError indicates a TargetProxy's TargetType has no
// registered constructor - this can only happen if a registry is shared
// across evaluation and materialization inconsistently, since the
// evaluator can only produce a proxy for an alias that was bound into the
// scripting environment in the first place.
type UnknownTargetTypeError struct {
	Address buildfile.Address
	Type    string
}

func (e *UnknownTargetTypeError) Error() string {
	return fmt.Sprintf("graph: no constructor registered for target type %q (%s)", e.Type, e.Address)
}
