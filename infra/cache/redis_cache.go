// Package cache holds the Redis-backed stores shared between instances.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/payminute/pkg/idempotency"
	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore remembers processed webhook deliveries in Redis so
// every instance drops the same duplicates.
type RedisIdempotencyStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisIdempotencyStore creates a store on an existing client.
func NewRedisIdempotencyStore(
	client *redis.Client,
	prefix string,
	ttl time.Duration,
	logger *slog.Logger,
) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// NewRedisIdempotencyStoreWithURL parses url and creates a store with its own client.
func NewRedisIdempotencyStoreWithURL(
	url, prefix string,
	ttl time.Duration,
	logger *slog.Logger,
) (*RedisIdempotencyStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisIdempotencyStore(redis.NewClient(opt), prefix, ttl, logger), nil
}

func (r *RedisIdempotencyStore) key(key string) string {
	return r.prefix + "idempotency:" + key
}

// Seen reports whether key was marked processed and has not expired.
func (r *RedisIdempotencyStore) Seen(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		r.logger.Error("Redis idempotency lookup error", "key", key, "error", err)
		return false, err
	}
	return n > 0, nil
}

// MarkProcessed records key for the store's TTL. The first writer wins.
func (r *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string) error {
	ok, err := r.client.SetNX(ctx, r.key(key), time.Now().UTC().Format(time.RFC3339Nano), r.ttl).Result()
	if err != nil {
		r.logger.Error("Redis idempotency set error", "key", key, "error", err)
		return err
	}
	if !ok {
		r.logger.Debug("Redis idempotency key already present", "key", key)
	}
	return nil
}

// Close releases the underlying client.
func (r *RedisIdempotencyStore) Close() error {
	return r.client.Close()
}

var _ idempotency.Store = (*RedisIdempotencyStore)(nil)
