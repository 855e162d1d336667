package statemesh

import "fmt"

// Typed fan-in constructors. Each DeriveN builds an aggregate whose
// combiner asserts the input values back to their static types before
// handing them to the derivation function. To use an aggregate as an
// input, pass its embedded cell.

// inputAt asserts the value in slot i. The returned aggregate carries
// the full input-editing surface, so the combiner cannot assume its
// construction-time arity still holds.
func inputAt[D any](values []any, i int) (D, error) {
	if i >= len(values) {
		var zero D
		return zero, fmt.Errorf("%w: slot %d, have %d", ErrMissingInput, i, len(values))
	}
	return assertAs[D](values[i])
}

func Derive1[T any, D1 any](
	name string,
	d1 *Cell[D1],
	fn func(D1) (T, error),
) *Aggregate[T] {
	agg := NewAggregate[T](name, func(values []any) (T, error) {
		var zero T
		v1, err := inputAt[D1](values, 0)
		if err != nil {
			return zero, err
		}
		return fn(v1)
	})
	agg.AddInputs(d1)
	return agg
}

func Derive2[T any, D1 any, D2 any](
	name string,
	d1 *Cell[D1],
	d2 *Cell[D2],
	fn func(D1, D2) (T, error),
) *Aggregate[T] {
	agg := NewAggregate[T](name, func(values []any) (T, error) {
		var zero T
		v1, err := inputAt[D1](values, 0)
		if err != nil {
			return zero, err
		}
		v2, err := inputAt[D2](values, 1)
		if err != nil {
			return zero, err
		}
		return fn(v1, v2)
	})
	agg.AddInputs(d1, d2)
	return agg
}

func Derive3[T any, D1 any, D2 any, D3 any](
	name string,
	d1 *Cell[D1],
	d2 *Cell[D2],
	d3 *Cell[D3],
	fn func(D1, D2, D3) (T, error),
) *Aggregate[T] {
	agg := NewAggregate[T](name, func(values []any) (T, error) {
		var zero T
		v1, err := inputAt[D1](values, 0)
		if err != nil {
			return zero, err
		}
		v2, err := inputAt[D2](values, 1)
		if err != nil {
			return zero, err
		}
		v3, err := inputAt[D3](values, 2)
		if err != nil {
			return zero, err
		}
		return fn(v1, v2, v3)
	})
	agg.AddInputs(d1, d2, d3)
	return agg
}

func Derive4[T any, D1 any, D2 any, D3 any, D4 any](
	name string,
	d1 *Cell[D1],
	d2 *Cell[D2],
	d3 *Cell[D3],
	d4 *Cell[D4],
	fn func(D1, D2, D3, D4) (T, error),
) *Aggregate[T] {
	agg := NewAggregate[T](name, func(values []any) (T, error) {
		var zero T
		v1, err := inputAt[D1](values, 0)
		if err != nil {
			return zero, err
		}
		v2, err := inputAt[D2](values, 1)
		if err != nil {
			return zero, err
		}
		v3, err := inputAt[D3](values, 2)
		if err != nil {
			return zero, err
		}
		v4, err := inputAt[D4](values, 3)
		if err != nil {
			return zero, err
		}
		return fn(v1, v2, v3, v4)
	})
	agg.AddInputs(d1, d2, d3, d4)
	return agg
}
