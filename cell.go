package statemesh

// AnyCell is a type-erased view of a cell, used wherever cells of
// different value types meet: aggregate inputs, graph traversal and
// observers.
type AnyCell interface {
	// Name returns the cell's name. Names are used as keys by the
	// default aggregate combiner and are not required to be unique.
	Name() string

	// SetName renames the cell.
	SetName(name string)

	// GetAny resolves the cell's current value without static typing.
	GetAny() (any, error)

	// SetAny assigns a value without static typing. It fails if the
	// value is not assignable to the cell's value type.
	SetAny(val any) error

	// IsValid reports whether the cached value is current.
	IsValid() bool

	// GetTag retrieves a tag value set on the cell.
	GetTag(tag any) (any, bool)

	// SetTag stores a tag value on the cell.
	SetTag(tag any, val any)

	attachHook(h *invalidationHook)
	detachHook(h *invalidationHook)
	directSources() []AnyCell

	observeChange(fn func(any)) *Subscription
	observeInvalidation(fn func()) *Subscription
	observeError(fn func(error)) *Subscription
}

// Cell is a mutable, lazily cached, observable value holder. A cell
// owns a value and a validity flag; writes and wiring changes flip the
// flag and notify listeners, reads recompute at most once per
// invalidation no matter how many consumers pull the value.
//
// A cell may follow at most one upstream cell (see Connect and
// SetUpstream); while connected it mirrors the upstream's current value
// and ignores anything assigned locally.
//
// Cells are designed for a single logical thread of control: all
// notification is synchronous and re-entrant-safe, not locked. Use the
// async package to bridge values produced on other goroutines.
type Cell[T any] struct {
	name  string
	value T
	valid bool

	upstream *Cell[T]

	// compute overrides how the current value is derived. Aggregate
	// installs its combiner here; plain cells leave it nil.
	compute func() (T, error)

	// inputsFn reports extra sources beyond upstream, for traversal.
	inputsFn func() []AnyCell

	onInvalidate func()
	onValidate   func()

	// hook is this cell's single listener on its upstream (or on
	// aggregate inputs). Identity of the pointer is what dedupes it.
	hook *invalidationHook

	change       []*changeEntry[T]
	invalidation []*invalidationEntry
	errListeners []*errorEntry

	tags map[any]any

	// computing guards Get against cyclic recursion, notifying guards
	// the change-firing phase against invalidation storms on cycles.
	computing bool
	notifying bool
}

// CellOption configures a cell at construction time.
type CellOption[T any] func(*Cell[T])

// WithInitial sets the cell's initial value. The cell starts valid.
func WithInitial[T any](val T) CellOption[T] {
	return func(c *Cell[T]) {
		c.value = val
		c.valid = true
	}
}

// WithCellTag sets a typed tag on the cell at construction.
func WithCellTag[T any, V any](tag Tag[V], val V) CellOption[T] {
	return func(c *Cell[T]) {
		tag.Set(c, val)
	}
}

// WithOnInvalidate installs a hook run on every valid-to-invalid
// transition, before invalidation listeners fire.
func WithOnInvalidate[T any](fn func()) CellOption[T] {
	return func(c *Cell[T]) {
		c.onInvalidate = fn
	}
}

// WithOnValidate installs a hook run whenever the cell transitions
// back to valid inside Get. No listeners fire on validation.
func WithOnValidate[T any](fn func()) CellOption[T] {
	return func(c *Cell[T]) {
		c.onValidate = fn
	}
}

// NewCell creates a cell. Without WithInitial the cell starts invalid
// and Get yields the zero value until something is set or connected.
func NewCell[T any](name string, opts ...CellOption[T]) *Cell[T] {
	c := &Cell[T]{
		name: name,
		tags: make(map[any]any),
	}
	c.hook = &invalidationHook{fire: c.invalidate}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the cell's name.
func (c *Cell[T]) Name() string { return c.name }

// SetName renames the cell. Renaming does not invalidate: the name is
// identity metadata, not part of the value derivation.
func (c *Cell[T]) SetName(name string) { c.name = name }

// IsValid reports whether the cached value reflects current state.
func (c *Cell[T]) IsValid() bool { return c.valid }

// GetTag retrieves a tag value set on the cell.
func (c *Cell[T]) GetTag(tag any) (any, bool) {
	val, ok := c.tags[tag]
	return val, ok
}

// SetTag stores a tag value on the cell.
func (c *Cell[T]) SetTag(tag any, val any) { c.tags[tag] = val }

// Set assigns a new value and invalidates. There is no equality check:
// every Set is treated as a real change, so listeners fire even when
// the value is unchanged. While the cell is connected the assigned
// value is shadowed by the upstream on the next Get.
func (c *Cell[T]) Set(val T) *Cell[T] {
	c.value = val
	c.invalidate()
	return c
}

// SetAny assigns a value through the type-erased interface. Used by
// collaborators (such as a history manager) that replay recorded
// values without knowing the cell's static type.
func (c *Cell[T]) SetAny(val any) error {
	typed, err := assertAs[T](val)
	if err != nil {
		return err
	}
	c.Set(typed)
	return nil
}

// Get returns the current value, recomputing it if the cell is
// invalid: a connected cell mirrors its upstream, an aggregate runs
// its combiner, a plain cell re-reads its own value. The cost of
// recomputation is paid once per invalidation and shared across all
// callers.
//
// Get fails with *CycleError when the cell participates in a
// dependency cycle, or with the combiner's error for aggregates; on
// failure the cell stays invalid and the next Get retries.
func (c *Cell[T]) Get() (T, error) {
	if c.valid {
		return c.value, nil
	}

	if c.computing {
		var zero T
		return zero, &CycleError{Path: []string{c.name}}
	}
	c.computing = true
	defer func() { c.computing = false }()

	var next T
	var err error
	switch {
	case c.compute != nil:
		next, err = c.compute()
	case c.upstream != nil:
		next, err = c.upstream.Get()
	default:
		next = c.value
	}

	if err != nil {
		var zero T
		if cycle, ok := err.(*CycleError); ok {
			cycle.Path = append([]string{c.name}, cycle.Path...)
		}
		return zero, err
	}

	c.value = next
	c.validate()
	return c.value, nil
}

// GetAny resolves the value through the type-erased interface.
func (c *Cell[T]) GetAny() (any, error) {
	val, err := c.Get()
	if err != nil {
		return nil, err
	}
	return val, nil
}

// MustGet resolves the value and panics on error. Intended for graphs
// known to be acyclic with infallible combiners.
func (c *Cell[T]) MustGet() T {
	val, err := c.Get()
	if err != nil {
		panic(err)
	}
	return val
}

// Connect configures other to follow the receiver: after a.Connect(b),
// b mirrors a's current value until disconnected. Returns the receiver
// for chaining.
func (c *Cell[T]) Connect(other *Cell[T]) *Cell[T] {
	other.SetUpstream(c)
	return c
}

// SetUpstream replaces the cell's upstream connection. Passing nil
// disconnects. The cell always invalidates, even when reconnecting to
// the same upstream or disconnecting an already-disconnected cell: a
// wiring operation is an observable change in its own right.
func (c *Cell[T]) SetUpstream(up *Cell[T]) *Cell[T] {
	if c.upstream != nil {
		c.upstream.detachHook(c.hook)
		c.upstream = nil
	}
	if up != nil {
		c.upstream = up
		up.attachHook(c.hook)
	}
	c.invalidate()
	return c
}

// Disconnect removes the upstream connection, if any.
func (c *Cell[T]) Disconnect() *Cell[T] {
	return c.SetUpstream(nil)
}

// IsConnected reports whether the cell has an upstream.
func (c *Cell[T]) IsConnected() bool { return c.upstream != nil }

// Upstream returns the upstream cell, or nil when disconnected.
func (c *Cell[T]) Upstream() *Cell[T] { return c.upstream }

// invalidate marks the cached value stale and notifies listeners. The
// valid-to-invalid edge runs the onInvalidate hook and fires
// invalidation listeners exactly once; the change phase re-fires on
// every call, re-announcing the freshly recomputed value.
func (c *Cell[T]) invalidate() {
	if c.notifying {
		// Re-entered from our own change phase; a cycle would
		// otherwise re-fire forever.
		return
	}

	if c.valid {
		c.valid = false
		if c.onInvalidate != nil {
			c.onInvalidate()
		}
		c.fireInvalidation()
	}

	c.fireChange()
}

// validate marks the cached value current again. Only Get calls this.
func (c *Cell[T]) validate() {
	if !c.valid {
		c.valid = true
		if c.onValidate != nil {
			c.onValidate()
		}
	}
}

// Invalidate forces the cell stale and notifies listeners, without
// changing the stored value. Exposed for collaborators that track
// external state the cell cannot see.
func (c *Cell[T]) Invalidate() *Cell[T] {
	c.invalidate()
	return c
}

func (c *Cell[T]) directSources() []AnyCell {
	var srcs []AnyCell
	if c.upstream != nil {
		srcs = append(srcs, AnyCell(c.upstream))
	}
	if c.inputsFn != nil {
		srcs = append(srcs, c.inputsFn()...)
	}
	return srcs
}
