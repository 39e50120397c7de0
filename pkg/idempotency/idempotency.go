// Package idempotency drops duplicate deliveries of provider callbacks.
package idempotency

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store remembers processed keys.
type Store interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string) error
}

// MemoryStore keeps processed keys in process memory.
type MemoryStore struct {
	processed sync.Map
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Seen(_ context.Context, key string) (bool, error) {
	_, ok := m.processed.Load(key)
	return ok, nil
}

func (m *MemoryStore) MarkProcessed(_ context.Context, key string) error {
	m.processed.Store(key, struct{}{})
	return nil
}

// Tracker runs a function at most once per key. Concurrent callers with the
// same key wait for the in-flight attempt and observe its result.
type Tracker struct {
	store    Store
	inflight singleflight.Group
	logger   *slog.Logger
}

// NewTracker creates a tracker backed by store.
func NewTracker(store Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, logger: logger}
}

// Do executes fn unless key was already processed. duplicate is true when fn
// was skipped. A failed fn leaves the key unmarked so the provider can retry.
func (t *Tracker) Do(ctx context.Context, key string, fn func(ctx context.Context) error) (duplicate bool, err error) {
	if key == "" {
		return false, fn(ctx)
	}
	log := t.logger.With("idempotency_key", key)

	seen, err := t.store.Seen(ctx, key)
	if err != nil {
		log.Warn("idempotency store lookup failed, processing anyway", "error", err)
	}
	if seen {
		log.Info("🔁 [SKIP] delivery already processed")
		return true, nil
	}

	v, err, _ := t.inflight.Do(key, func() (any, error) {
		if seen, _ := t.store.Seen(ctx, key); seen {
			return true, nil
		}
		if err := fn(ctx); err != nil {
			return false, err
		}
		if err := t.store.MarkProcessed(ctx, key); err != nil {
			log.Warn("failed to mark delivery processed", "error", err)
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	dup, _ := v.(bool)
	return dup, nil
}
