package initializer

import (
	"io"
	"log/slog"
	"testing"

	infra_eventbus "github.com/amirasaad/payminute/infra/eventbus"
	"github.com/amirasaad/payminute/infra/provider/mockpayment"
	"github.com/amirasaad/payminute/infra/provider/pixgateway"
	"github.com/amirasaad/payminute/infra/provider/stripepayment"
	"github.com/amirasaad/payminute/internal/fixtures"
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitEventBus_DefaultsToMemoryAsyncWhenNoExplicitDriver(t *testing.T) {
	cfg := &config.App{
		Redis:    &config.Redis{URL: "redis://localhost:6379/0"},
		EventBus: &config.EventBus{Driver: ""},
	}

	bus, err := initEventBus(cfg, discard())
	require.NoError(t, err)
	require.IsType(t, &infra_eventbus.MemoryAsyncEventBus{}, bus)
	bus.(*infra_eventbus.MemoryAsyncEventBus).Close()
}

func TestInitEventBus_ExplicitRedisRequiresURL(t *testing.T) {
	cfg := &config.App{
		Redis:    &config.Redis{URL: ""},
		EventBus: &config.EventBus{Driver: "redis"},
	}

	_, err := initEventBus(cfg, discard())
	require.Error(t, err)
}

func TestInitEventBus_RedisConnectionErrorFallsBackToMemoryAsync(t *testing.T) {
	cfg := &config.App{
		Redis:    &config.Redis{URL: "redis://127.0.0.1:1"},
		EventBus: &config.EventBus{Driver: "redis"},
	}

	bus, err := initEventBus(cfg, discard())
	require.NoError(t, err)
	require.IsType(t, &infra_eventbus.MemoryAsyncEventBus{}, bus)
}

func TestInitEventBus_ExplicitKafkaRequiresBrokers(t *testing.T) {
	cfg := &config.App{
		EventBus: &config.EventBus{Driver: "kafka", Kafka: &config.Kafka{Brokers: ""}},
	}

	_, err := initEventBus(cfg, discard())
	require.Error(t, err)
}

func TestInitEventBus_KafkaConnectionErrorFallsBackToMemoryAsync(t *testing.T) {
	cfg := &config.App{
		EventBus: &config.EventBus{Driver: "kafka", Kafka: &config.Kafka{Brokers: "127.0.0.1:1"}},
	}

	bus, err := initEventBus(cfg, discard())
	require.NoError(t, err)
	require.IsType(t, &infra_eventbus.MemoryAsyncEventBus{}, bus)
}

func TestInitEventBus_UnsupportedDriverErrors(t *testing.T) {
	cfg := &config.App{
		EventBus: &config.EventBus{Driver: "nope"},
	}

	_, err := initEventBus(cfg, discard())
	require.Error(t, err)
}

func TestInitIdempotencyStore(t *testing.T) {
	cfg := fixtures.Config()
	store, err := initIdempotencyStore(cfg, discard())
	require.NoError(t, err)
	assert.IsType(t, &idempotency.MemoryStore{}, store)

	cfg.Idempotency.Driver = "redis"
	cfg.Redis.URL = ""
	_, err = initIdempotencyStore(cfg, discard())
	require.Error(t, err)

	cfg.Redis.URL = "redis://127.0.0.1:1"
	store, err = initIdempotencyStore(cfg, discard())
	require.NoError(t, err)
	assert.IsType(t, &idempotency.MemoryStore{}, store)

	cfg.Idempotency.Driver = "etcd"
	_, err = initIdempotencyStore(cfg, discard())
	require.Error(t, err)
}

func TestInitPaymentProviders(t *testing.T) {
	cfg := fixtures.Config()
	recharge, payout := initPaymentProviders(cfg, discard())
	assert.IsType(t, &mockpayment.MockPaymentProvider{}, recharge)
	assert.Same(t, recharge, payout)

	cfg.PaymentProviders.Stripe.ApiKey = "sk_test"
	cfg.PaymentProviders.PixGateway.BaseURL = "https://pix.example.com"
	recharge, payout = initPaymentProviders(cfg, discard())
	assert.IsType(t, &stripepayment.StripePaymentProvider{}, recharge)
	assert.IsType(t, &pixgateway.Client{}, payout)

	prod := fixtures.Config()
	prod.Env = "production"
	recharge, payout = initPaymentProviders(prod, discard())
	assert.Nil(t, recharge)
	assert.Nil(t, payout)
}
