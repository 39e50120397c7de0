package idempotency_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/amirasaad/payminute/pkg/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker() *idempotency.Tracker {
	return idempotency.NewTracker(idempotency.NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTracker_Do(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("runs once per key", func(t *testing.T) {
		t.Parallel()
		tr := newTracker()
		var calls int32
		fn := func(context.Context) error { atomic.AddInt32(&calls, 1); return nil }

		dup, err := tr.Do(ctx, "evt_1", fn)
		require.NoError(t, err)
		assert.False(t, dup)

		dup, err = tr.Do(ctx, "evt_1", fn)
		require.NoError(t, err)
		assert.True(t, dup)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("empty key always runs", func(t *testing.T) {
		t.Parallel()
		tr := newTracker()
		var calls int32
		fn := func(context.Context) error { atomic.AddInt32(&calls, 1); return nil }
		_, _ = tr.Do(ctx, "", fn)
		_, _ = tr.Do(ctx, "", fn)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("failure allows retry", func(t *testing.T) {
		t.Parallel()
		tr := newTracker()
		boom := errors.New("boom")
		_, err := tr.Do(ctx, "evt_2", func(context.Context) error { return boom })
		require.ErrorIs(t, err, boom)

		dup, err := tr.Do(ctx, "evt_2", func(context.Context) error { return nil })
		require.NoError(t, err)
		assert.False(t, dup)
	})

	t.Run("concurrent deliveries run once", func(t *testing.T) {
		t.Parallel()
		tr := newTracker()
		var calls int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := tr.Do(ctx, "evt_3", func(context.Context) error {
					atomic.AddInt32(&calls, 1)
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}
