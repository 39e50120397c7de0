package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/amirasaad/payminute/pkg/eventbus"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisEventBusConfig holds tuning for the Redis Streams bus.
type RedisEventBusConfig struct {
	Group            string
	DLQRetryInterval time.Duration
	DLQBatchSize     int64
}

// DefaultRedisEventBusConfig returns the defaults used when nil is passed.
func DefaultRedisEventBusConfig() *RedisEventBusConfig {
	return &RedisEventBusConfig{
		Group:            "payminute",
		DLQRetryInterval: 5 * time.Minute,
		DLQBatchSize:     10,
	}
}

// RedisEventBus implements the bus on Redis Streams, one stream per event
// type. Failed deliveries go to a per-type DLQ stream and are republished by
// a background worker.
type RedisEventBus struct {
	client    *redis.Client
	config    *RedisEventBusConfig
	factories map[string]func() events.Event
	logger    *slog.Logger
	consumer  string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	handlers map[events.EventType][]eventbus.HandlerFunc
}

// NewWithRedis creates a new Redis-backed event bus.
// url: Redis connection URL (e.g., "redis://localhost:6379").
func NewWithRedis(url string, logger *slog.Logger, config *RedisEventBusConfig) (*RedisEventBus, error) {
	if url == "" {
		return nil, fmt.Errorf("redis event bus: url is required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}
	return newRedisBus(client, logger, config), nil
}

func newRedisBus(client *redis.Client, logger *slog.Logger, config *RedisEventBusConfig) *RedisEventBus {
	if config == nil {
		config = DefaultRedisEventBusConfig()
	}
	if strings.TrimSpace(config.Group) == "" {
		config.Group = "payminute"
	}
	if config.DLQBatchSize <= 0 {
		config.DLQBatchSize = 10
	}
	if config.DLQRetryInterval <= 0 {
		config.DLQRetryInterval = 5 * time.Minute
	}
	host, _ := os.Hostname()
	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisEventBus{
		client:    client,
		config:    config,
		factories: events.Factories(),
		logger:    logger.With("bus", "redis"),
		consumer:  fmt.Sprintf("%s-%s", host, uuid.NewString()[:8]),
		ctx:       ctx,
		cancel:    cancel,
		handlers:  make(map[events.EventType][]eventbus.HandlerFunc),
	}
	b.startDLQRetryWorker()
	return b
}

// Close stops consumers and closes the client.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

// Emit appends the event to its type's stream.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	raw, err := encode(event)
	if err != nil {
		return fmt.Errorf("redis event bus: %w", err)
	}
	stream := streamNameFor(events.EventType(event.Type()))
	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"event": string(raw)},
	}).Err(); err != nil {
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	b.logger.Debug("event emitted", "type", event.Type(), "stream", stream)
	return nil
}

// Register adds a handler. The first handler of a type starts its consumer.
func (b *RedisEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	first := len(b.handlers[eventType]) == 0
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
	if !first {
		return
	}

	stream := streamNameFor(eventType)
	if err := b.client.XGroupCreateMkStream(b.ctx, stream, b.config.Group, "0").Err(); err != nil &&
		!strings.Contains(err.Error(), "BUSYGROUP") {
		b.logger.Error("failed to create consumer group", "stream", stream, "error", err)
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(eventType, stream)
	}()
	b.logger.Info("handler registered", "event_type", eventType, "stream", stream, "consumer", b.consumer)
}

func (b *RedisEventBus) handlersFor(eventType events.EventType) []eventbus.HandlerFunc {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]eventbus.HandlerFunc(nil), b.handlers[eventType]...)
}

func (b *RedisEventBus) consume(eventType events.EventType, stream string) {
	for b.ctx.Err() == nil {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    b.config.Group,
			Consumer: b.consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || b.ctx.Err() != nil {
				continue
			}
			b.logger.Error("error reading from stream", "stream", stream, "error", err)
			time.Sleep(time.Second)
			continue
		}
		for _, s := range res {
			for _, msg := range s.Messages {
				b.handleMessage(eventType, stream, msg)
			}
		}
	}
}

func (b *RedisEventBus) handleMessage(eventType events.EventType, stream string, msg redis.XMessage) {
	raw, _ := msg.Values["event"].(string)
	evt, err := decode([]byte(raw), b.factories)
	switch {
	case err != nil:
		b.logger.Error("undecodable message", "stream", stream, "msg_id", msg.ID, "error", err)
		b.pushToDLQ(eventType, msg.Values)
	case !dispatch(b.ctx, b.logger, evt, b.handlersFor(eventType)):
		b.pushToDLQ(eventType, msg.Values)
	}
	if err := b.client.XAck(b.ctx, stream, b.config.Group, msg.ID).Err(); err != nil {
		b.logger.Error("failed to acknowledge message", "msg_id", msg.ID, "error", err)
	}
}

func (b *RedisEventBus) pushToDLQ(eventType events.EventType, values map[string]any) {
	dlq := dlqStreamName(eventType)
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "stream", dlq, "error", err)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq)
}

func (b *RedisEventBus) startDLQRetryWorker() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(b.config.DLQRetryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-b.ctx.Done():
				return
			case <-ticker.C:
				b.processAllDLQs(b.ctx)
			}
		}
	}()
}

// processAllDLQs moves up to DLQBatchSize messages of every registered type
// back onto their original stream.
func (b *RedisEventBus) processAllDLQs(ctx context.Context) {
	b.mu.Lock()
	types := make([]events.EventType, 0, len(b.handlers))
	for t := range b.handlers {
		types = append(types, t)
	}
	b.mu.Unlock()

	for _, eventType := range types {
		dlq := dlqStreamName(eventType)
		msgs, err := b.client.XRangeN(ctx, dlq, "-", "+", b.config.DLQBatchSize).Result()
		if err != nil {
			b.logger.Error("failed to read DLQ", "stream", dlq, "error", err)
			continue
		}
		for _, msg := range msgs {
			if err := b.client.XAdd(ctx, &redis.XAddArgs{Stream: streamNameFor(eventType), Values: msg.Values}).Err(); err != nil {
				b.logger.Error("failed to republish DLQ message", "stream", dlq, "error", err)
				break
			}
			b.client.XDel(ctx, dlq, msg.ID)
		}
	}
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
