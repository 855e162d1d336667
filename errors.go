package statemesh

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCombine reports a default-combined aggregate whose value type
// is not Values and which has no upstream to mirror.
var ErrNoCombine = errors.New("no combine function for aggregate value type")

// ErrMissingInput reports a combiner invoked with fewer inputs than it
// was built for, after inputs were removed from the aggregate.
var ErrMissingInput = errors.New("missing aggregate input")

// CycleError reports a cyclic dependency discovered while recomputing.
// Path lists the cells walked from the one whose Get was called down
// to the cell seen twice.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return "cyclic dependency"
	}
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

// ComputeError reports a combining function failure, or an aggregate
// that cannot derive a value at all.
type ComputeError struct {
	Cell  string
	Cause error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute error in cell %q: %v", e.Cell, e.Cause)
}

func (e *ComputeError) Unwrap() error {
	return e.Cause
}

// assertAs performs a type assertion with a descriptive error instead
// of a panic. A nil value yields the zero value.
func assertAs[T any](value any) (T, error) {
	if value == nil {
		var zero T
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("type assertion error: expected %T, got %T (value: %v)", zero, value, value)
	}

	return typed, nil
}
