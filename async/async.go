// Package async bridges values produced on other goroutines into the
// single-threaded statemesh core. A Cell pairs a fetch function with a
// plain statemesh cell: Resolve runs the fetch at most once per
// invalidation, and publishes the result through the inner cell so
// downstream graph wiring and listeners see it like any other write.
package async

import (
	"context"
	"errors"
	"sync"

	statemesh "github.com/firatkiral/statemesh"
)

// ErrStale is returned by Resolve when the cell was invalidated while
// the fetch was in flight; the fetched value is discarded and the next
// Resolve fetches again.
var ErrStale = errors.New("result superseded by invalidation")

// FetchFunc produces the cell's value. The context is canceled by
// Cancel and by invalidation of the cell while the fetch runs.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Cell wraps a statemesh cell whose value is produced asynchronously.
//
// Each invalidation of the inner cell starts a new revision; Resolve
// memoizes the fetch result per revision, so concurrent or repeated
// Resolve calls between invalidations pay for one fetch. Fetch errors
// are not memoized: the next Resolve retries.
type Cell[T any] struct {
	inner *statemesh.Cell[T]
	fetch FetchFunc[T]
	cache *resultCache[T]

	mu         sync.Mutex
	revision   uint64
	publishing bool
	cancel     context.CancelFunc
	sub        *statemesh.Subscription
}

// NewCell creates an async cell around a fresh inner cell.
func NewCell[T any](name string, fetch FetchFunc[T]) *Cell[T] {
	c := &Cell[T]{
		inner: statemesh.NewCell[T](name),
		fetch: fetch,
		cache: newResultCache[T](),
	}
	c.sub = c.inner.AddInvalidationListener(c.onInvalidated)
	return c
}

// Inner returns the wrapped cell, for wiring into the graph and for
// attaching listeners. Writing to it directly bypasses the fetch.
func (c *Cell[T]) Inner() *statemesh.Cell[T] { return c.inner }

// Resolve returns the value for the current revision, fetching it if
// this revision has not been fetched yet. On success the value is also
// published through the inner cell, firing its listeners.
func (c *Cell[T]) Resolve(ctx context.Context) (T, error) {
	c.mu.Lock()
	rev := c.revision
	if val, ok := c.cache.load(rev); ok {
		c.mu.Unlock()
		return val, nil
	}
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	val, err := c.fetch(fctx)
	cancel()
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	if c.revision != rev {
		c.mu.Unlock()
		var zero T
		return zero, ErrStale
	}
	c.cache.store(rev, val)
	c.publishing = true
	c.mu.Unlock()

	// Publish outside the lock: Set fires listeners synchronously and
	// one of them may call back into this cell. The follow-up Get
	// revalidates the inner cell so the next write fires the
	// invalidation edge we bump revisions on.
	c.inner.Set(val)
	_, _ = c.inner.Get()

	c.mu.Lock()
	c.publishing = false
	c.mu.Unlock()
	return val, nil
}

// Invalidate starts a new revision and invalidates the inner cell.
func (c *Cell[T]) Invalidate() {
	c.mu.Lock()
	if !c.inner.IsValid() {
		// No valid-to-invalid edge will fire, bump here instead.
		c.bumpLocked()
	}
	c.mu.Unlock()
	c.inner.Invalidate()
}

// Cancel aborts an in-flight fetch, if any. The pending Resolve
// returns the fetch function's error, typically context.Canceled.
func (c *Cell[T]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Close cancels any in-flight fetch and detaches from the inner cell.
// The inner cell keeps its last published value.
func (c *Cell[T]) Close() {
	c.Cancel()
	c.sub.Destroy()
}

// onInvalidated runs whenever the inner cell goes stale for a reason
// other than our own publish: direct writes, upstream invalidation, or
// an explicit Invalidate while the inner cell was valid.
func (c *Cell[T]) onInvalidated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishing {
		return
	}
	c.bumpLocked()
}

func (c *Cell[T]) bumpLocked() {
	c.revision++
	c.cache.clear()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
