package eventbus

import (
	"context"
	"log/slog"

	"github.com/amirasaad/payminute/pkg/domain/events"
)

// HandlerFunc processes a single event. A returned error is logged by the
// bus; out-of-process buses also move the message to a dead-letter queue.
type HandlerFunc func(ctx context.Context, event events.Event) error

// Bus defines the contract for publishing and subscribing to domain events.
type Bus interface {
	Register(eventType events.EventType, handler HandlerFunc)
	Emit(ctx context.Context, event events.Event) error
}

// EmitAfterCommit publishes evt once the unit of work that produced it has
// committed. Delivery failures are logged and never surface to the caller.
func EmitAfterCommit(ctx context.Context, bus Bus, logger *slog.Logger, evt events.Event) {
	if bus == nil {
		return
	}
	if err := bus.Emit(ctx, evt); err != nil {
		logger.Error("failed to emit event", "event_type", evt.Type(), "error", err)
	}
}
