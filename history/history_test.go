package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	statemesh "github.com/firatkiral/statemesh"
)

func TestUndoRedoRoundTrip(t *testing.T) {
	c := statemesh.NewCell("c", statemesh.WithInitial("one"))

	m := NewManager()
	m.Track(c)
	defer m.Close()

	c.Set("two")
	c.Set("three")
	require.Equal(t, 2, m.Len())

	require.NoError(t, m.Undo())
	val, err := c.Get()
	require.NoError(t, err)
	require.Equal(t, "two", val)

	require.NoError(t, m.Undo())
	val, _ = c.Get()
	require.Equal(t, "one", val)

	require.NoError(t, m.Redo())
	val, _ = c.Get()
	require.Equal(t, "two", val)

	require.NoError(t, m.Redo())
	val, _ = c.Get()
	require.Equal(t, "three", val)
}

func TestUndoEmptyHistory(t *testing.T) {
	m := NewManager()
	require.ErrorIs(t, m.Undo(), ErrNothingToUndo)
	require.ErrorIs(t, m.Redo(), ErrNothingToRedo)
}

func TestNewChangeClearsRedo(t *testing.T) {
	c := statemesh.NewCell("c", statemesh.WithInitial(1))

	m := NewManager()
	m.Track(c)
	defer m.Close()

	c.Set(2)
	require.NoError(t, m.Undo())
	require.True(t, m.CanRedo())

	c.Set(5)
	require.False(t, m.CanRedo())
	require.ErrorIs(t, m.Redo(), ErrNothingToRedo)
}

func TestReplayIsNotRecorded(t *testing.T) {
	c := statemesh.NewCell("c", statemesh.WithInitial(1))

	m := NewManager()
	m.Track(c)
	defer m.Close()

	c.Set(2)
	require.Equal(t, 1, m.Len())

	require.NoError(t, m.Undo())
	require.Equal(t, 0, m.Len())
}

func TestLimitDropsOldestRecords(t *testing.T) {
	c := statemesh.NewCell("c", statemesh.WithInitial(0))

	m := NewManager(WithLimit(2))
	m.Track(c)
	defer m.Close()

	c.Set(1)
	c.Set(2)
	c.Set(3)
	require.Equal(t, 2, m.Len())

	require.NoError(t, m.Undo())
	require.NoError(t, m.Undo())
	require.ErrorIs(t, m.Undo(), ErrNothingToUndo)

	val, _ := c.Get()
	require.Equal(t, 1, val)
}

func TestTracksMultipleCells(t *testing.T) {
	a := statemesh.NewCell("a", statemesh.WithInitial("a1"))
	b := statemesh.NewCell("b", statemesh.WithInitial("b1"))

	m := NewManager()
	m.Track(a, b)
	defer m.Close()

	a.Set("a2")
	b.Set("b2")

	require.NoError(t, m.Undo())
	val, _ := b.Get()
	require.Equal(t, "b1", val)

	require.NoError(t, m.Undo())
	val, _ = a.Get()
	require.Equal(t, "a1", val)
}

func TestCloseStopsRecording(t *testing.T) {
	c := statemesh.NewCell("c", statemesh.WithInitial(1))

	m := NewManager()
	m.Track(c)

	c.Set(2)
	m.Close()
	c.Set(3)

	require.Equal(t, 1, m.Len())
}
