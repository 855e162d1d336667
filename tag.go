package statemesh

// Tag is a type-safe key for cell metadata. Tags let collaborators
// annotate cells (labels, owners, debug hints) without touching the
// value or validity machinery; setting a tag never invalidates.
type Tag[T any] struct {
	key string
}

// NewTag creates a tag keyed by the given string. Tags of the same
// type and key address the same entry.
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key reports the string the tag was created with.
func (t Tag[T]) Key() string {
	return t.key
}

// Get reads the tag's value from c, reporting whether it was set.
func (t Tag[T]) Get(c AnyCell) (T, bool) {
	val, ok := c.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// MustGet reads the tag's value from c and panics when unset.
func (t Tag[T]) MustGet(c AnyCell) T {
	val, ok := t.Get(c)
	if !ok {
		panic("tag " + t.key + " not found")
	}
	return val
}

// GetOrDefault reads the tag's value from c, falling back to
// defaultVal when unset.
func (t Tag[T]) GetOrDefault(c AnyCell, defaultVal T) T {
	if val, ok := t.Get(c); ok {
		return val
	}
	return defaultVal
}

// Set writes the tag's value on c.
func (t Tag[T]) Set(c AnyCell, val T) {
	c.SetTag(t, val)
}
