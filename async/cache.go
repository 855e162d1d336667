package async

import (
	"sync"
)

// resultCache memoizes fetch results keyed by revision. It is the only
// piece of the async layer touched from both the fetching goroutine
// and the owner's thread, hence sync.Map rather than a plain map.
type resultCache[T any] struct {
	data sync.Map
}

func newResultCache[T any]() *resultCache[T] {
	return &resultCache[T]{}
}

func (c *resultCache[T]) load(rev uint64) (T, bool) {
	value, ok := c.data.Load(rev)
	if !ok {
		var zero T
		return zero, false
	}
	return value.(T), true
}

func (c *resultCache[T]) store(rev uint64, value T) {
	c.data.Store(rev, value)
}

func (c *resultCache[T]) clear() {
	c.data.Range(func(key, value any) bool {
		c.data.Delete(key)
		return true
	})
}
