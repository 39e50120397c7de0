package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/payminute/pkg/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupStore(t *testing.T, ttl time.Duration) *RedisIdempotencyStore {
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
	store, err := NewRedisIdempotencyStoreWithURL(endpoint, "test:", ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisIdempotencyStore_SeenAfterMark(t *testing.T) {
	store := setupStore(t, time.Hour)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "payout:evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkProcessed(ctx, "payout:evt_1"))
	require.NoError(t, store.MarkProcessed(ctx, "payout:evt_1"))

	seen, err = store.Seen(ctx, "payout:evt_1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRedisIdempotencyStore_DrivesTracker(t *testing.T) {
	store := setupStore(t, time.Hour)
	tracker := idempotency.NewTracker(store, nil)
	ctx := context.Background()
	calls := 0
	fn := func(context.Context) error { calls++; return nil }

	dup, err := tracker.Do(ctx, "recharge:evt_7", fn)
	require.NoError(t, err)
	assert.False(t, dup)
	dup, err = tracker.Do(ctx, "recharge:evt_7", fn)
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Equal(t, 1, calls)
}
