// Package initializer builds the infrastructure behind config.Deps.
package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/payminute/infra"
	"github.com/amirasaad/payminute/infra/cache"
	infra_eventbus "github.com/amirasaad/payminute/infra/eventbus"
	"github.com/amirasaad/payminute/infra/provider/mockpayment"
	"github.com/amirasaad/payminute/infra/provider/pixgateway"
	"github.com/amirasaad/payminute/infra/provider/stripepayment"
	"github.com/amirasaad/payminute/internal/migrations"
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/eventbus"
	"github.com/amirasaad/payminute/pkg/idempotency"
	"github.com/amirasaad/payminute/pkg/provider/payment"
)

// Cleanup releases what InitializeDependencies opened.
type Cleanup func()

// InitializeDependencies initializes all the application dependencies.
func InitializeDependencies(cfg *config.App) (deps *config.Deps, cleanup Cleanup, err error) {
	logger := setupLogger(cfg.Log)
	var closers []func() error
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("cleanup failed", "error", err)
			}
		}
	}
	defer func() {
		if err != nil {
			release()
		}
	}()

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, sqlDB.Close)

	if cfg.DB.AutoMigrate {
		logger.Info("Applying database migrations")
		if err = migrations.Up(sqlDB); err != nil {
			return nil, nil, err
		}
	}

	bus, err := initEventBus(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	closers = append(closers, busCloser(bus))

	store, err := initIdempotencyStore(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize idempotency store: %w", err)
	}
	if c, ok := store.(*cache.RedisIdempotencyStore); ok {
		closers = append(closers, c.Close)
	}

	recharge, payout := initPaymentProviders(cfg, logger)

	deps = &config.Deps{
		Uow:              infra.NewUoW(db),
		RechargeProvider: recharge,
		PayoutProvider:   payout,
		EventBus:         bus,
		Idempotency:      idempotency.NewTracker(store, logger),
		Logger:           logger,
		Config:           cfg,
	}
	return deps, release, nil
}

// initEventBus selects the bus by driver. An unreachable redis or kafka falls
// back to the asynchronous memory bus so a single instance keeps working.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	driver := ""
	if cfg.EventBus != nil {
		driver = strings.ToLower(strings.TrimSpace(cfg.EventBus.Driver))
	}
	switch driver {
	case "", "memory":
		logger.Info("Using in-memory async event bus")
		return infra_eventbus.NewWithMemoryAsync(logger), nil
	case "redis":
		url := ""
		if cfg.Redis != nil {
			url = cfg.Redis.URL
		}
		if url == "" {
			return nil, errors.New("redis event bus requires REDIS_URL")
		}
		busCfg := infra_eventbus.DefaultRedisEventBusConfig()
		if cfg.EventBus.RedisGroup != "" {
			busCfg.Group = cfg.EventBus.RedisGroup
		}
		bus, err := infra_eventbus.NewWithRedis(url, logger, busCfg)
		if err != nil {
			logger.Warn("Redis event bus unavailable, falling back to memory", "error", err)
			return infra_eventbus.NewWithMemoryAsync(logger), nil
		}
		return bus, nil
	case "kafka":
		k := cfg.EventBus.Kafka
		if k == nil || strings.TrimSpace(k.Brokers) == "" {
			return nil, errors.New("kafka event bus requires EVENT_BUS_KAFKA_BROKERS")
		}
		busCfg := infra_eventbus.DefaultKafkaEventBusConfig()
		if k.GroupID != "" {
			busCfg.GroupID = k.GroupID
		}
		if k.TopicPrefix != "" {
			busCfg.TopicPrefix = k.TopicPrefix
		}
		bus, err := infra_eventbus.NewWithKafka(k.Brokers, logger, busCfg)
		if err != nil {
			logger.Warn("Kafka event bus unavailable, falling back to memory", "error", err)
			return infra_eventbus.NewWithMemoryAsync(logger), nil
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unsupported event bus driver %q", driver)
	}
}

func busCloser(bus eventbus.Bus) func() error {
	switch b := bus.(type) {
	case *infra_eventbus.MemoryAsyncEventBus:
		return func() error { b.Close(); return nil }
	case interface{ Close() error }:
		return b.Close
	}
	return func() error { return nil }
}

// initIdempotencyStore returns the webhook dedupe store. Redis is required
// when several instances receive callbacks.
func initIdempotencyStore(cfg *config.App, logger *slog.Logger) (idempotency.Store, error) {
	driver := "memory"
	if cfg.Idempotency != nil && cfg.Idempotency.Driver != "" {
		driver = strings.ToLower(cfg.Idempotency.Driver)
	}
	switch driver {
	case "memory":
		return idempotency.NewMemoryStore(), nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, errors.New("redis idempotency store requires REDIS_URL")
		}
		store, err := cache.NewRedisIdempotencyStoreWithURL(cfg.Redis.URL, cfg.Redis.KeyPrefix, cfg.Idempotency.TTL, logger)
		if err != nil {
			return nil, err
		}
		if _, err := store.Seen(context.Background(), "ping"); err != nil {
			_ = store.Close()
			logger.Warn("Redis idempotency store unavailable, falling back to memory", "error", err)
			return idempotency.NewMemoryStore(), nil
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported idempotency driver %q", driver)
	}
}

// initPaymentProviders wires the configured providers. Outside production a
// missing provider is replaced by the mock so the flows stay usable locally.
func initPaymentProviders(cfg *config.App, logger *slog.Logger) (payment.RechargeProvider, payment.PayoutProvider) {
	var (
		recharge payment.RechargeProvider
		payout   payment.PayoutProvider
	)
	providers := cfg.PaymentProviders
	if providers != nil && providers.Stripe != nil && providers.Stripe.ApiKey != "" {
		recharge = stripepayment.New(providers.Stripe, logger)
	}
	if providers != nil && providers.PixGateway != nil && providers.PixGateway.BaseURL != "" {
		payout = pixgateway.New(providers.PixGateway, logger)
	}
	if cfg.Env == "production" {
		if recharge == nil || payout == nil {
			logger.Warn("payment providers missing", "recharge", recharge != nil, "payout", payout != nil)
		}
		return recharge, payout
	}
	mock := mockpayment.NewMockPaymentProvider()
	if recharge == nil {
		logger.Info("Using mock recharge provider")
		recharge = mock
	}
	if payout == nil {
		logger.Info("Using mock payout provider")
		payout = mock
	}
	return recharge, payout
}
