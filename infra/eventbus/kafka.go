package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/amirasaad/payminute/pkg/eventbus"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaEventBusConfig holds configuration for the Kafka event bus.
type KafkaEventBusConfig struct {
	GroupID      string
	TopicPrefix  string
	SASLUsername string
	SASLPassword string
}

// DefaultKafkaEventBusConfig returns default configuration for KafkaEventBus.
func DefaultKafkaEventBusConfig() *KafkaEventBusConfig {
	return &KafkaEventBusConfig{
		GroupID:     "payminute",
		TopicPrefix: "payminute.events",
	}
}

// KafkaEventBus publishes each event type to its own topic. Messages are keyed
// by the event type so a topic keeps emission order within a partition.
type KafkaEventBus struct {
	brokers   []string
	writer    *kafka.Writer
	dialer    *kafka.Dialer
	config    *KafkaEventBusConfig
	factories map[string]func() events.Event
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	handlers map[events.EventType][]eventbus.HandlerFunc
	readers  map[events.EventType]*kafka.Reader
}

// NewWithKafka creates a new Kafka-backed event bus.
// brokers: Comma-separated brokers list (e.g. "localhost:9092,localhost:9093").
func NewWithKafka(brokers string, logger *slog.Logger, config *KafkaEventBusConfig) (*KafkaEventBus, error) {
	parsed := parseBrokers(brokers)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("kafka event bus: brokers are required")
	}
	if config == nil {
		config = DefaultKafkaEventBusConfig()
	}
	if config.GroupID == "" {
		config.GroupID = "payminute"
	}

	dialer := &kafka.Dialer{Timeout: 5 * time.Second}
	transport := &kafka.Transport{}
	if config.SASLUsername != "" {
		mechanism := plain.Mechanism{Username: config.SASLUsername, Password: config.SASLPassword}
		dialer.SASLMechanism = mechanism
		transport.SASL = mechanism
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &KafkaEventBus{
		brokers: parsed,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(parsed...),
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
			Balancer:               &kafka.Hash{},
			Transport:              transport,
		},
		dialer:    dialer,
		config:    config,
		factories: events.Factories(),
		logger:    logger.With("bus", "kafka"),
		ctx:       ctx,
		cancel:    cancel,
		handlers:  make(map[events.EventType][]eventbus.HandlerFunc),
		readers:   make(map[events.EventType]*kafka.Reader),
	}

	conn, err := dialer.DialContext(ctx, "tcp", parsed[0])
	if err != nil {
		cancel()
		return nil, fmt.Errorf("kafka event bus: connection failed: %w", err)
	}
	_ = conn.Close()

	logger.Info("Kafka event bus initialized", "group_id", config.GroupID, "brokers", parsed)
	return b, nil
}

// Close stops consumers and flushes the writer.
func (b *KafkaEventBus) Close() error {
	b.cancel()
	b.mu.Lock()
	for _, r := range b.readers {
		_ = r.Close()
	}
	b.mu.Unlock()
	b.wg.Wait()
	return b.writer.Close()
}

// Emit publishes an event to its topic.
func (b *KafkaEventBus) Emit(ctx context.Context, event events.Event) error {
	raw, err := encode(event)
	if err != nil {
		return fmt.Errorf("kafka event bus: %w", err)
	}
	msg := kafka.Message{
		Topic: topicNameFor(b.config.TopicPrefix, events.EventType(event.Type())),
		Key:   []byte(event.Type()),
		Value: raw,
		Time:  time.Now(),
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka event bus: publish failed: %w", err)
	}
	return nil
}

// Register registers an event handler for a specific event type.
func (b *KafkaEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	if _, ok := b.readers[eventType]; ok {
		return
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     b.config.GroupID,
		Topic:       topicNameFor(b.config.TopicPrefix, eventType),
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		Dialer:      b.dialer,
	})
	b.readers[eventType] = reader
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consumeLoop(eventType, reader)
	}()
}

func (b *KafkaEventBus) handlersFor(eventType events.EventType) []eventbus.HandlerFunc {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]eventbus.HandlerFunc(nil), b.handlers[eventType]...)
}

func (b *KafkaEventBus) consumeLoop(eventType events.EventType, reader *kafka.Reader) {
	for {
		msg, err := reader.FetchMessage(b.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || b.ctx.Err() != nil {
				return
			}
			b.logger.Error("kafka consume error", "event_type", eventType, "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		evt, err := decode(msg.Value, b.factories)
		if err != nil {
			b.logger.Error("undecodable message", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			b.publishToDLQ(eventType, msg.Value)
		} else if !dispatch(b.ctx, b.logger, evt, b.handlersFor(eventType)) {
			b.publishToDLQ(eventType, msg.Value)
		}
		if err := reader.CommitMessages(b.ctx, msg); err != nil {
			b.logger.Error("kafka commit error", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
	}
}

func (b *KafkaEventBus) publishToDLQ(eventType events.EventType, raw []byte) {
	topic := dlqTopicNameFor(b.config.TopicPrefix, eventType)
	err := b.writer.WriteMessages(b.ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(eventType.String()),
		Value: raw,
		Time:  time.Now(),
	})
	if err != nil {
		b.logger.Error("kafka dlq publish failed", "topic", topic, "error", err)
		return
	}
	b.logger.Warn("message sent to DLQ", "event_type", eventType, "dlq_topic", topic)
}

func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
