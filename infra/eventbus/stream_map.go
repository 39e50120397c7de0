package eventbus

import (
	"fmt"
	"strings"

	"github.com/amirasaad/payminute/pkg/domain/events"
)

func streamNameFor(eventType events.EventType) string {
	return nameFor("events", eventType)
}

// dlqStreamName returns the DLQ stream name for the given event type.
func dlqStreamName(eventType events.EventType) string {
	return nameFor("dlq", eventType)
}

func nameFor(prefix string, eventType events.EventType) string {
	parts := strings.Split(eventType.String(), ".")
	if len(parts) == 2 {
		return fmt.Sprintf(
			"%s:%s:%s",
			prefix,
			strings.ToLower(parts[0]),
			strings.ToLower(parts[1]))
	}
	return fmt.Sprintf("%s:%s", prefix, strings.ToLower(eventType.String()))
}

func topicNameFor(prefix string, eventType events.EventType) string {
	return fmt.Sprintf("%s.%s", topicPrefix(prefix), strings.ToLower(eventType.String()))
}

func dlqTopicNameFor(prefix string, eventType events.EventType) string {
	return fmt.Sprintf("%s.dlq.%s", topicPrefix(prefix), strings.ToLower(eventType.String()))
}

func topicPrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "payminute.events"
	}
	return prefix
}
