// Package history records cell changes for undo/redo. It is an
// external collaborator of the statemesh core: it watches cells
// through the public observer surface and replays prior values through
// SetAny, with no access to cell internals.
//
// Track source cells, not aggregates; an aggregate's value is derived
// and replaying it would be overwritten by the next recompute anyway.
package history

import (
	"errors"

	statemesh "github.com/firatkiral/statemesh"
)

// ErrNothingToUndo is returned by Undo on an empty history.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrNothingToRedo is returned by Redo when no undo has happened since
// the last recorded change.
var ErrNothingToRedo = errors.New("nothing to redo")

type record struct {
	cell   statemesh.AnyCell
	before any
	after  any
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the undo depth; the oldest records are dropped first.
// Zero or negative means unlimited.
func WithLimit(n int) Option {
	return func(m *Manager) {
		m.limit = n
	}
}

// Manager tracks cells and replays their prior values. Like the core
// it serves, it assumes a single logical thread of control.
type Manager struct {
	statemesh.BaseObserver

	limit     int
	undo      []record
	redo      []record
	last      map[statemesh.AnyCell]any
	handles   []*statemesh.ObserverHandle
	replaying bool
}

// NewManager creates an empty history manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		BaseObserver: statemesh.NewBaseObserver("history"),
		last:         make(map[statemesh.AnyCell]any),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Track starts recording changes to the given cells. The current value
// of each cell seeds the baseline the first change is diffed against.
func (m *Manager) Track(cells ...statemesh.AnyCell) *Manager {
	for _, c := range cells {
		if c == nil {
			continue
		}
		if _, tracked := m.last[c]; !tracked {
			if val, err := c.GetAny(); err == nil {
				m.last[c] = val
			} else {
				m.last[c] = nil
			}
		}
	}
	m.handles = append(m.handles, statemesh.Observe(m, cells...))
	return m
}

// OnChange records a change unless the manager itself caused it.
func (m *Manager) OnChange(cell statemesh.AnyCell, value any) {
	if m.replaying {
		return
	}
	m.undo = append(m.undo, record{cell: cell, before: m.last[cell], after: value})
	m.last[cell] = value
	m.redo = nil
	if m.limit > 0 && len(m.undo) > m.limit {
		m.undo = m.undo[len(m.undo)-m.limit:]
	}
}

// Undo replays the value a cell held before its most recent recorded
// change.
func (m *Manager) Undo() error {
	if len(m.undo) == 0 {
		return ErrNothingToUndo
	}
	rec := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]

	if err := m.replay(rec.cell, rec.before); err != nil {
		return err
	}
	m.redo = append(m.redo, rec)
	return nil
}

// Redo re-applies the most recently undone change.
func (m *Manager) Redo() error {
	if len(m.redo) == 0 {
		return ErrNothingToRedo
	}
	rec := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]

	if err := m.replay(rec.cell, rec.after); err != nil {
		return err
	}
	m.undo = append(m.undo, rec)
	return nil
}

// CanUndo reports whether Undo would replay something.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether Redo would replay something.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Len returns the current undo depth.
func (m *Manager) Len() int { return len(m.undo) }

// Close stops recording and detaches from every tracked cell. The
// recorded history survives Close but no new changes are recorded.
func (m *Manager) Close() {
	for _, h := range m.handles {
		h.Destroy()
	}
	m.handles = nil
}

func (m *Manager) replay(cell statemesh.AnyCell, value any) error {
	m.replaying = true
	defer func() { m.replaying = false }()

	if err := cell.SetAny(value); err != nil {
		return err
	}
	m.last[cell] = value
	return nil
}
