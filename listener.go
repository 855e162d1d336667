package statemesh

// Subscription is the handle returned by listener registration.
// Destroy detaches the listener; it is idempotent. Listeners are owned
// by whoever registered them: a cell never drops them on its own, so a
// caller discarding a cell must destroy its subscriptions first or
// they keep firing for the cell's lifetime.
type Subscription struct {
	remove    func()
	destroyed bool
}

// Destroy detaches the listener from its cell.
func (s *Subscription) Destroy() {
	if s == nil || s.destroyed {
		return
	}
	s.destroyed = true
	s.remove()
}

// invalidationHook is the single internal listener a cell registers on
// its upstream (and an aggregate on each input). It carries no value:
// any upstream change just invalidates the owner, never recomputes
// eagerly. The pointer itself is the dedup identity, so attaching the
// same hook twice is a no-op.
type invalidationHook struct {
	fire func()
}

// changeEntry is one slot in the change registry: either an external
// typed listener or a downstream cell's internal hook. Keeping both in
// one slice preserves registration order across the two kinds.
type changeEntry[T any] struct {
	fn      func(T)
	hook    *invalidationHook
	removed bool
}

type invalidationEntry struct {
	fn      func()
	removed bool
}

type errorEntry struct {
	fn      func(error)
	removed bool
}

// AddChangeListener registers a callback invoked with the freshly
// recomputed value on every invalidation of the cell, in registration
// order. Each call registers a distinct subscription; dedup is by
// subscription identity, since Go functions have no usable identity.
func (c *Cell[T]) AddChangeListener(fn func(T)) *Subscription {
	if fn == nil {
		return &Subscription{remove: func() {}, destroyed: true}
	}
	entry := &changeEntry[T]{fn: fn}
	c.change = append(c.change, entry)
	return &Subscription{remove: func() {
		entry.removed = true
		c.change = removeElement(c.change, entry)
	}}
}

// RemoveChangeListener detaches a previously registered change
// listener. Equivalent to sub.Destroy.
func (c *Cell[T]) RemoveChangeListener(sub *Subscription) {
	sub.Destroy()
}

// ClearChangeListeners detaches every change listener, including
// internal hooks of connected downstream cells and aggregates; those
// stop receiving invalidations until rewired. Safe to call from inside
// a firing listener.
func (c *Cell[T]) ClearChangeListeners() {
	for _, entry := range c.change {
		entry.removed = true
	}
	c.change = nil
}

// AddInvalidationListener registers a callback invoked with no
// arguments on each valid-to-invalid transition, before change
// listeners fire. Invalidating an already-invalid cell does not
// re-fire these.
func (c *Cell[T]) AddInvalidationListener(fn func()) *Subscription {
	if fn == nil {
		return &Subscription{remove: func() {}, destroyed: true}
	}
	entry := &invalidationEntry{fn: fn}
	c.invalidation = append(c.invalidation, entry)
	return &Subscription{remove: func() {
		entry.removed = true
		c.invalidation = removeElement(c.invalidation, entry)
	}}
}

// RemoveInvalidationListener detaches a previously registered
// invalidation listener. Equivalent to sub.Destroy.
func (c *Cell[T]) RemoveInvalidationListener(sub *Subscription) {
	sub.Destroy()
}

// ClearInvalidationListeners detaches every invalidation listener.
func (c *Cell[T]) ClearInvalidationListeners() {
	for _, entry := range c.invalidation {
		entry.removed = true
	}
	c.invalidation = nil
}

// AddErrorListener registers a callback invoked when recomputation
// fails during listener notification. Errors raised by a direct Get
// are returned to the caller instead and do not fire here.
func (c *Cell[T]) AddErrorListener(fn func(error)) *Subscription {
	if fn == nil {
		return &Subscription{remove: func() {}, destroyed: true}
	}
	entry := &errorEntry{fn: fn}
	c.errListeners = append(c.errListeners, entry)
	return &Subscription{remove: func() {
		entry.removed = true
		c.errListeners = removeElement(c.errListeners, entry)
	}}
}

// fireInvalidation notifies invalidation listeners in registration
// order. Snapshot-then-iterate: listeners may add or remove listeners,
// or clear the registry, while firing.
func (c *Cell[T]) fireInvalidation() {
	if len(c.invalidation) == 0 {
		return
	}
	snapshot := make([]*invalidationEntry, len(c.invalidation))
	copy(snapshot, c.invalidation)
	for _, entry := range snapshot {
		if entry.removed {
			continue
		}
		entry.fn()
	}
}

// fireChange runs the change phase: downstream hooks always fire, and
// external listeners receive the recomputed value. The value is pulled
// through Get only when at least one external listener is present, so
// pure hook chains stay lazy end to end. A recompute failure skips
// external listeners (the cell stays invalid) and is reported to error
// listeners instead.
func (c *Cell[T]) fireChange() {
	if len(c.change) == 0 {
		return
	}
	snapshot := make([]*changeEntry[T], len(c.change))
	copy(snapshot, c.change)

	c.notifying = true
	defer func() { c.notifying = false }()

	computed := false
	failed := false
	var val T
	for _, entry := range snapshot {
		if entry.removed {
			continue
		}
		if entry.hook != nil {
			entry.hook.fire()
			continue
		}
		if !computed {
			computed = true
			var err error
			val, err = c.Get()
			if err != nil {
				failed = true
				c.fireError(err)
			}
		}
		if !failed {
			entry.fn(val)
		}
	}
}

func (c *Cell[T]) fireError(err error) {
	if len(c.errListeners) == 0 {
		return
	}
	snapshot := make([]*errorEntry, len(c.errListeners))
	copy(snapshot, c.errListeners)
	for _, entry := range snapshot {
		if entry.removed {
			continue
		}
		entry.fn(err)
	}
}

// attachHook registers a downstream hook as a change listener,
// deduplicated by hook identity.
func (c *Cell[T]) attachHook(h *invalidationHook) {
	for _, entry := range c.change {
		if entry.hook == h {
			return
		}
	}
	c.change = append(c.change, &changeEntry[T]{hook: h})
}

// detachHook removes a downstream hook. Tolerates hooks that were
// already cleared.
func (c *Cell[T]) detachHook(h *invalidationHook) {
	for _, entry := range c.change {
		if entry.hook == h {
			entry.removed = true
			c.change = removeElement(c.change, entry)
			return
		}
	}
}

// Type-erased registration, used by Observe and other collaborators
// that hold cells only as AnyCell.

func (c *Cell[T]) observeChange(fn func(any)) *Subscription {
	return c.AddChangeListener(func(val T) { fn(val) })
}

func (c *Cell[T]) observeInvalidation(fn func()) *Subscription {
	return c.AddInvalidationListener(fn)
}

func (c *Cell[T]) observeError(fn func(error)) *Subscription {
	return c.AddErrorListener(fn)
}
