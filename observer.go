package statemesh

// Observer receives cell lifecycle events. Observers are external
// collaborators: they attach through the same listener registries as
// any other consumer and see cells only as AnyCell.
type Observer interface {
	// Name returns the observer's name.
	Name() string

	// OnInvalidate is called on each valid-to-invalid transition.
	OnInvalidate(cell AnyCell)

	// OnChange is called with the freshly recomputed value on every
	// invalidation that reaches the change phase.
	OnChange(cell AnyCell, value any)

	// OnError is called when recomputation fails while notifying
	// listeners.
	OnError(cell AnyCell, err error)
}

// BaseObserver provides default no-op implementations for Observer
// methods. Embed it and override what you need.
type BaseObserver struct {
	name string
}

// NewBaseObserver creates a new base observer with the given name.
func NewBaseObserver(name string) BaseObserver {
	return BaseObserver{name: name}
}

func (o *BaseObserver) Name() string {
	return o.name
}

func (o *BaseObserver) OnInvalidate(cell AnyCell) {
}

func (o *BaseObserver) OnChange(cell AnyCell, value any) {
}

func (o *BaseObserver) OnError(cell AnyCell, err error) {
}

// ObserverHandle tracks an observer's subscriptions across the cells
// it watches. Destroy detaches all of them.
type ObserverHandle struct {
	subs []*Subscription
}

// Destroy detaches the observer from every cell it was attached to.
func (h *ObserverHandle) Destroy() {
	for _, sub := range h.subs {
		sub.Destroy()
	}
	h.subs = nil
}

// Observe attaches an observer to the given cells. The returned handle
// must be destroyed before discarding the cells or the observer.
func Observe(obs Observer, cells ...AnyCell) *ObserverHandle {
	handle := &ObserverHandle{}
	for _, c := range cells {
		if c == nil {
			continue
		}
		cell := c
		handle.subs = append(handle.subs,
			cell.observeInvalidation(func() { obs.OnInvalidate(cell) }),
			cell.observeChange(func(val any) { obs.OnChange(cell, val) }),
			cell.observeError(func(err error) { obs.OnError(cell, err) }),
		)
	}
	return handle
}
