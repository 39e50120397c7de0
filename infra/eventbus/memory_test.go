package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestMemoryEventBus_DispatchesByType(t *testing.T) {
	bus := NewWithMemory(testLogger())
	var calls, withdrawals atomic.Int32
	bus.Register(events.EventTypeCallFinalized, func(ctx context.Context, e events.Event) error {
		calls.Add(1)
		_, ok := e.(*events.CallFinalized)
		assert.True(t, ok)
		return nil
	})
	bus.Register(events.EventTypeWithdrawalRequested, func(ctx context.Context, e events.Event) error {
		withdrawals.Add(1)
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), &events.CallFinalized{RoomID: "r1"}))
	require.NoError(t, bus.Emit(context.Background(), &events.CallFinalized{RoomID: "r2"}))

	assert.Equal(t, int32(2), calls.Load())
	assert.Zero(t, withdrawals.Load())
	assert.Len(t, bus.Published(), 2)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}

func TestMemoryEventBus_HandlerFailureDoesNotFailEmit(t *testing.T) {
	bus := NewWithMemory(testLogger())
	var second atomic.Bool
	bus.Register(events.EventTypeKYCReviewed, func(ctx context.Context, e events.Event) error {
		return errors.New("boom")
	})
	bus.Register(events.EventTypeKYCReviewed, func(ctx context.Context, e events.Event) error {
		panic("worse")
	})
	bus.Register(events.EventTypeKYCReviewed, func(ctx context.Context, e events.Event) error {
		second.Store(true)
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), &events.KYCReviewed{KYCID: uuid.New()}))
	assert.True(t, second.Load())
}

func TestMemoryAsyncEventBus(t *testing.T) {
	bus := NewWithMemoryAsync(testLogger())
	received := make(chan string, 1)
	bus.Register(events.EventTypeRechargeCompleted, func(ctx context.Context, e events.Event) error {
		received <- e.(*events.RechargeCompleted).PreferenceID
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Emit(ctx, &events.RechargeCompleted{PreferenceID: "pref-1"}))
	cancel()

	select {
	case got := <-received:
		assert.Equal(t, "pref-1", got)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not receive event in time")
	}
	bus.Close()
}
