package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/amirasaad/payminute/pkg/eventbus"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	env, err := json.Marshal(envelope{Type: event.Type(), Payload: data})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return env, nil
}

// decode turns a wire envelope back into a concrete event using factories.
func decode(raw []byte, factories map[string]func() events.Event) (events.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	constructor, ok := factories[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return evt, nil
}

// dispatch runs every handler, recovering panics. It reports whether all of
// them succeeded.
func dispatch(ctx context.Context, logger *slog.Logger, evt events.Event, handlers []eventbus.HandlerFunc) bool {
	ok := true
	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic recovered in event handler", "type", evt.Type(), "panic", r)
					ok = false
				}
			}()
			if err := handler(ctx, evt); err != nil {
				logger.Error("failed to process event", "type", evt.Type(), "error", err)
				ok = false
			}
		}()
	}
	return ok
}
