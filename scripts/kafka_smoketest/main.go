package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	infra_eventbus "github.com/amirasaad/payminute/infra/eventbus"
	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// RunSmokeTest emits a CallFinalized event through the Kafka bus and waits
// for the registered handler to receive it.
func RunSmokeTest() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	brokers := strings.TrimSpace(os.Getenv("BROKERS"))
	if brokers == "" {
		brokers = "localhost:9093,localhost:9092"
	}
	cfg := infra_eventbus.DefaultKafkaEventBusConfig()
	if groupID := strings.TrimSpace(os.Getenv("GROUP_ID")); groupID != "" {
		cfg.GroupID = groupID
	}
	cfg.TopicPrefix = "payminute.smoketest"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dialer := &kafka.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", strings.Split(brokers, ",")[0])
	if err != nil {
		logger.Error("dial failed", "error", err)
		return err
	}
	_ = conn.Close()

	bus, err := infra_eventbus.NewWithKafka(brokers, logger, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	want := &events.CallFinalized{
		CallID:          uuid.New(),
		RoomID:          "smoketest-" + uuid.NewString(),
		TotalCost:       1990,
		StreamerEarning: 1393,
		Billed:          true,
		Timestamp:       time.Now(),
	}
	received := make(chan *events.CallFinalized, 1)
	bus.Register(events.EventTypeCallFinalized, func(ctx context.Context, e events.Event) error {
		if cf, ok := e.(*events.CallFinalized); ok && cf.RoomID == want.RoomID {
			received <- cf
		}
		return nil
	})

	if err := bus.Emit(ctx, want); err != nil {
		logger.Error("emit failed", "error", err)
		return err
	}
	logger.Info("produced", "room_id", want.RoomID)

	select {
	case got := <-received:
		if got.TotalCost != want.TotalCost || got.StreamerEarning != want.StreamerEarning {
			return fmt.Errorf("payload mismatch: got %+v", got)
		}
		logger.Info("consumed", "room_id", got.RoomID)
	case <-ctx.Done():
		return fmt.Errorf("no delivery: %w", ctx.Err())
	}

	logger.Info("kafka smoke test passed")
	return nil
}

// main runs the smoke test and exits non-zero on failure.
func main() {
	if err := RunSmokeTest(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
