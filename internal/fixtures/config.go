// Package fixtures provides ready-made configuration and helpers for tests.
package fixtures

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/shopspring/decimal"
)

// Config returns an App populated with the production defaults.
func Config() *config.App {
	return &config.App{
		Env:    "test",
		Server: &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Log:    &config.Log{Format: "text"},
		DB:     &config.DB{},
		Auth:   &config.Auth{Jwt: &config.Jwt{Secret: "test-secret", UserIDClaim: "user_id", RoleClaim: "role"}},
		Redis:  &config.Redis{},
		RateLimit: &config.RateLimit{
			MaxRequests: 1000,
			Window:      time.Minute,
		},
		EventBus: &config.EventBus{Driver: "memory", Kafka: &config.Kafka{}},
		Billing: &config.Billing{
			MinPricePerMinute:    100,
			MaxPricePerMinute:    100000,
			DefaultPrice:         199,
			UseCommissionRecords: true,
			DefaultCommission:    decimal.NewFromInt(70),
		},
		Withdrawal: &config.Withdrawal{
			MaxAmount:       1000000,
			DailyLimit:      3,
			AnticipationFee: decimal.RequireFromString("0.05"),
			Timezone:        "America/Sao_Paulo",
			RefundOnFailure: true,
		},
		KYC:         &config.KYC{Validity: 365 * 24 * time.Hour},
		Recharge:    &config.Recharge{MinAmount: 1000, MaxAmount: 500000},
		Idempotency: &config.Idempotency{Driver: "memory", TTL: time.Hour},
		PaymentProviders: &config.PaymentProviders{
			Stripe:     &config.Stripe{Env: "test"},
			PixGateway: &config.PixGateway{HTTPTimeout: time.Second},
		},
	}
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Clock is a settable time source for services.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock starts at t.
func NewClock(t time.Time) *Clock { return &Clock{t: t} }

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
