package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/amirasaad/payminute/pkg/eventbus"
)

// MemoryEventBus dispatches events synchronously in the emitting goroutine.
type MemoryEventBus struct {
	handlers  map[events.EventType][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches the event to all registered handlers for its type.
// Handler errors are logged, not returned.
func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[events.EventType(event.Type())]...)
	b.mu.Unlock()

	dispatch(ctx, b.logger, event, handlers)
	return nil
}

// ClearPublished clears the list of published events.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}

// Published returns a copy of every event emitted so far.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event(nil), b.published...)
}

var _ eventbus.Bus = (*MemoryEventBus)(nil)

type queued struct {
	ctx   context.Context
	event events.Event
}

// MemoryAsyncEventBus queues events and dispatches them from a background
// goroutine so that Emit never blocks on handlers.
type MemoryAsyncEventBus struct {
	handlers map[events.EventType][]eventbus.HandlerFunc
	mu       sync.RWMutex
	eventCh  chan queued
	done     chan struct{}
	log      *slog.Logger
}

// NewWithMemoryAsync creates a buffered asynchronous in-memory event bus.
func NewWithMemoryAsync(logger *slog.Logger) *MemoryAsyncEventBus {
	b := &MemoryAsyncEventBus{
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
		eventCh:  make(chan queued, 100),
		done:     make(chan struct{}),
		log:      logger.With("bus", "memory-async"),
	}
	go b.process()
	return b
}

func (b *MemoryAsyncEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
}

func (b *MemoryAsyncEventBus) Emit(ctx context.Context, event events.Event) error {
	select {
	case b.eventCh <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for the queue to drain.
func (b *MemoryAsyncEventBus) Close() {
	close(b.eventCh)
	<-b.done
}

func (b *MemoryAsyncEventBus) process() {
	defer close(b.done)
	for w := range b.eventCh {
		b.mu.RLock()
		handlers := append([]eventbus.HandlerFunc(nil), b.handlers[events.EventType(w.event.Type())]...)
		b.mu.RUnlock()
		dispatch(w.ctx, b.log, w.event, handlers)
	}
}

var _ eventbus.Bus = (*MemoryAsyncEventBus)(nil)
