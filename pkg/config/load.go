package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/amirasaad/payminute/pkg/domain/commission"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Load reads the first env file found among envFilePath (searching parent
// directories) and decodes the environment into App.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	if len(envFilePath) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	for _, path := range envFilePath {
		foundPath, err := FindEnvTest(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}
		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		return loadFromEnv()
	}

	logger.Info("No valid environment files found, using process environment")
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"event_bus", cfg.EventBus.Driver,
		"idempotency", cfg.Idempotency.Driver,
		"billing_use_commission_records", cfg.Billing.UseCommissionRecords,
		"withdrawal_max_amount", cfg.Withdrawal.MaxAmount,
		"withdrawal_daily_limit", cfg.Withdrawal.DailyLimit,
		"withdrawal_fee", cfg.Withdrawal.AnticipationFee.String(),
		"withdrawal_timezone", cfg.Withdrawal.Timezone,
		"withdrawal_refund_on_failure", cfg.Withdrawal.RefundOnFailure,
		"stripe_api_key", maskValue(cfg.PaymentProviders.Stripe.ApiKey),
		"pix_api_key", maskValue(cfg.PaymentProviders.PixGateway.ApiKey),
	)
	return &cfg, nil
}

// Validate rejects billing settings under which a call at the minimum price
// would floor the streamer's per-minute earning to zero.
func (a *App) Validate() error {
	b := a.Billing
	if b == nil {
		return nil
	}
	if b.MinPricePerMinute <= 0 || b.MinPricePerMinute > b.MaxPricePerMinute {
		return fmt.Errorf("billing: price bounds [%d, %d] are invalid", b.MinPricePerMinute, b.MaxPricePerMinute)
	}
	rate := commission.MinBase
	if !b.UseCommissionRecords {
		rate = b.DefaultCommission
	}
	if !rate.IsPositive() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("billing: commission rate %s is out of range", rate)
	}
	if rate.Mul(decimal.NewFromInt(b.MinPricePerMinute)).LessThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("billing: min price per minute %d at %s%% earns the streamer nothing", b.MinPricePerMinute, rate)
	}
	return nil
}

// FindEnvTest walks up from the working directory looking for filename
// (.env when empty).
func FindEnvTest(filename string) (string, error) {
	if filename == "" {
		filename = ".env"
	}
	curr, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(curr, filename)
		if _, err = os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(curr)
		if parent == curr {
			return "", os.ErrNotExist
		}
		curr = parent
	}
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
