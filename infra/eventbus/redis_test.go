package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisBus starts a Redis container and returns a bus connected to it.
func setupRedisBus(t *testing.T) *RedisEventBus {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.2-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "redis")
	require.NoError(t, err)

	bus, err := NewWithRedis(endpoint, testLogger(), &RedisEventBusConfig{DLQRetryInterval: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestRedisBus_HandlerReceivesEvent(t *testing.T) {
	bus := setupRedisBus(t)
	received := make(chan string, 1)
	bus.Register(events.EventTypeCallFinalized, func(ctx context.Context, e events.Event) error {
		received <- e.(*events.CallFinalized).RoomID
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), &events.CallFinalized{RoomID: "room-1"}))

	select {
	case got := <-received:
		require.Equal(t, "room-1", got)
	case <-time.After(10 * time.Second):
		t.Fatal("handler did not receive event in time")
	}
}

func TestRedisBus_FailedHandlerGoesToDLQ(t *testing.T) {
	bus := setupRedisBus(t)
	fail := make(chan struct{}, 1)
	bus.Register(events.EventTypeKYCReviewed, func(ctx context.Context, e events.Event) error {
		fail <- struct{}{}
		return errors.New("simulated failure")
	})

	ctx := context.Background()
	require.NoError(t, bus.Emit(ctx, &events.KYCReviewed{Status: "approved"}))

	select {
	case <-fail:
	case <-time.After(10 * time.Second):
		t.Fatal("handler was not called")
	}

	require.Eventually(t, func() bool {
		res, err := bus.client.XRange(ctx, dlqStreamName(events.EventTypeKYCReviewed), "-", "+").Result()
		return err == nil && len(res) == 1
	}, 5*time.Second, 100*time.Millisecond)
}
