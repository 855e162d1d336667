package async

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveMemoizesPerRevision(t *testing.T) {
	calls := 0
	c := NewCell("memo", func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	defer c.Close()

	val, err := c.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, val)

	val, err = c.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, val)
	require.Equal(t, 1, calls)
}

func TestInvalidateTriggersRefetch(t *testing.T) {
	calls := 0
	c := NewCell("refetch", func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	})
	defer c.Close()

	val, err := c.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, val)

	c.Invalidate()

	val, err = c.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, val)
}

func TestFetchErrorsAreNotMemoized(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	c := NewCell("flaky", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	})
	defer c.Close()

	_, err := c.Resolve(context.Background())
	require.ErrorIs(t, err, boom)

	val, err := c.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, val)
	require.Equal(t, 2, calls)
}

func TestPublishedValueVisibleOnInnerCell(t *testing.T) {
	c := NewCell("published", func(ctx context.Context) (string, error) {
		return "fetched", nil
	})
	defer c.Close()

	var seen []string
	sub := c.Inner().AddChangeListener(func(val string) {
		seen = append(seen, val)
	})
	defer sub.Destroy()

	_, err := c.Resolve(context.Background())
	require.NoError(t, err)

	val, err := c.Inner().Get()
	require.NoError(t, err)
	require.Equal(t, "fetched", val)
	require.Equal(t, []string{"fetched"}, seen)
}

func TestPublishDoesNotStartNewRevision(t *testing.T) {
	calls := 0
	c := NewCell("stable", func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	})
	defer c.Close()

	_, err := c.Resolve(context.Background())
	require.NoError(t, err)

	// The publish itself invalidated the inner cell; a second Resolve
	// must still hit the memoized result.
	val, err := c.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, val)
	require.Equal(t, 1, calls)
}

func TestDirectWriteStartsNewRevision(t *testing.T) {
	calls := 0
	c := NewCell("written", func(ctx context.Context) (int, error) {
		calls++
		return 100 + calls, nil
	})
	defer c.Close()

	_, err := c.Resolve(context.Background())
	require.NoError(t, err)

	c.Inner().Set(5)

	val, err := c.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 102, val)
	require.Equal(t, 2, calls)
}

func TestInvalidationDuringFetchDiscardsResult(t *testing.T) {
	calls := 0
	var c *Cell[int]
	c = NewCell("stale", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			c.Invalidate()
		}
		return calls, nil
	})
	defer c.Close()

	_, err := c.Resolve(context.Background())
	require.ErrorIs(t, err, ErrStale)

	val, err := c.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, val)
}

func TestCancelAbortsFetch(t *testing.T) {
	started := make(chan struct{})
	c := NewCell("slow", func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	defer c.Close()

	done := make(chan error, 1)
	go func() {
		_, err := c.Resolve(context.Background())
		done <- err
	}()

	<-started
	c.Cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestParentContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCell("ctx", func(ctx context.Context) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 1, nil
	})
	defer c.Close()

	_, err := c.Resolve(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
