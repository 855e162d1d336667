package statemesh

// Values is the result shape of the default combiner: a mapping from
// each input's name to that input's current value.
type Values = map[string]any

// CombineFunc derives an aggregate's value from the current values of
// its inputs, in input order. An error leaves the aggregate invalid;
// the next Get retries from scratch.
type CombineFunc[T any] func(values []any) (T, error)

// Aggregate is a Cell whose value is derived from an ordered list of
// input cells through a combining function. It embeds Cell, so the
// full cell surface (listeners, connections, tags) applies; the only
// override is Set, which is a deliberate no-op because an aggregate's
// value is always derived.
//
// Input order is significant: it is the order values are handed to the
// combiner and the iteration order of the default name-to-value
// mapping.
type Aggregate[T any] struct {
	*Cell[T]

	inputs  []AnyCell
	combine CombineFunc[T]
}

// NewAggregate creates an aggregate with an explicit combiner. A nil
// combiner selects the default derivation: mirror the upstream when
// connected, otherwise build a Values mapping (which requires the
// aggregate's value type to be Values).
func NewAggregate[T any](name string, combine CombineFunc[T], opts ...CellOption[T]) *Aggregate[T] {
	a := &Aggregate[T]{
		Cell:    NewCell[T](name, opts...),
		combine: combine,
	}
	a.Cell.compute = a.computeValue
	a.Cell.inputsFn = func() []AnyCell { return a.inputs }
	return a
}

// NewGroup creates an aggregate over named inputs with the default
// combiner. With no inputs and no upstream it is trivially valid with
// an empty mapping.
func NewGroup(name string) *Aggregate[Values] {
	return NewAggregate[Values](name, nil)
}

// Set is a no-op returning the receiver. An aggregate's value is
// always derived; the override keeps the inherited Set from corrupting
// the derived-value contract.
func (a *Aggregate[T]) Set(val T) *Aggregate[T] {
	return a
}

// SetAny is a no-op like Set. The type-erased surface must agree with
// the typed one: neither invalidates nor notifies.
func (a *Aggregate[T]) SetAny(val any) error {
	return nil
}

// AddInputs appends cells to the input list and registers the
// aggregate's internal hook on each, then invalidates once. Duplicate
// inputs are allowed in the list; the hook itself is deduplicated by
// identity, so a duplicated input still invalidates only once per
// change.
func (a *Aggregate[T]) AddInputs(cells ...AnyCell) *Aggregate[T] {
	for _, in := range cells {
		if in == nil {
			continue
		}
		in.attachHook(a.Cell.hook)
		a.inputs = append(a.inputs, in)
	}
	a.invalidate()
	return a
}

// RemoveInputs removes the first occurrence of each given cell,
// detaching the hook when no occurrence remains, then invalidates.
func (a *Aggregate[T]) RemoveInputs(cells ...AnyCell) *Aggregate[T] {
	for _, in := range cells {
		if in == nil {
			continue
		}
		a.removeInput(in)
	}
	a.invalidate()
	return a
}

// RemoveInputAt removes the input at the given index and invalidates.
// Out-of-range indexes are ignored.
func (a *Aggregate[T]) RemoveInputAt(index int) *Aggregate[T] {
	if index < 0 || index >= len(a.inputs) {
		return a
	}
	a.removeInput(a.inputs[index])
	a.invalidate()
	return a
}

// ClearInputs removes inputs one at a time until none remain. Each
// removal invalidates; recomputation is lazy, so only the last
// invalidation before the next Get costs anything.
func (a *Aggregate[T]) ClearInputs() *Aggregate[T] {
	for len(a.inputs) > 0 {
		a.RemoveInputAt(0)
	}
	return a
}

// Inputs returns a copy of the input list in order.
func (a *Aggregate[T]) Inputs() []AnyCell {
	out := make([]AnyCell, len(a.inputs))
	copy(out, a.inputs)
	return out
}

// Input looks up an input by its current name. With duplicate names
// the first in input order wins.
func (a *Aggregate[T]) Input(name string) (AnyCell, bool) {
	for _, in := range a.inputs {
		if in.Name() == name {
			return in, true
		}
	}
	return nil, false
}

// SetCombine replaces the combining function, or resets to the default
// when fn is nil. A changed derivation rule always invalidates, even
// though no input value changed.
func (a *Aggregate[T]) SetCombine(fn CombineFunc[T]) *Aggregate[T] {
	a.combine = fn
	a.invalidate()
	return a
}

func (a *Aggregate[T]) removeInput(in AnyCell) {
	idx := -1
	for i, existing := range a.inputs {
		if existing == in {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	a.inputs = append(a.inputs[:idx], a.inputs[idx+1:]...)

	for _, existing := range a.inputs {
		if existing == in {
			return
		}
	}
	in.detachHook(a.Cell.hook)
}

// computeValue is the compute closure installed on the embedded cell.
func (a *Aggregate[T]) computeValue() (T, error) {
	var zero T

	if a.combine != nil {
		values := make([]any, len(a.inputs))
		for i, in := range a.inputs {
			val, err := in.GetAny()
			if err != nil {
				return zero, err
			}
			values[i] = val
		}
		out, err := a.combine(values)
		if err != nil {
			return zero, &ComputeError{Cell: a.name, Cause: err}
		}
		return out, nil
	}

	if a.Cell.upstream != nil {
		return a.Cell.upstream.Get()
	}

	mapping := make(Values, len(a.inputs))
	for _, in := range a.inputs {
		val, err := in.GetAny()
		if err != nil {
			return zero, err
		}
		mapping[in.Name()] = val
	}
	out, ok := any(mapping).(T)
	if !ok {
		return zero, &ComputeError{Cell: a.name, Cause: ErrNoCombine}
	}
	return out, nil
}
