package config

import (
	"log/slog"

	"github.com/amirasaad/payminute/pkg/eventbus"
	"github.com/amirasaad/payminute/pkg/idempotency"
	"github.com/amirasaad/payminute/pkg/provider/payment"
	"github.com/amirasaad/payminute/pkg/repository"
)

// Deps holds all infrastructure dependencies for building the app and services.
type Deps struct {
	Uow              repository.UnitOfWork
	RechargeProvider payment.RechargeProvider
	PayoutProvider   payment.PayoutProvider
	EventBus         eventbus.Bus
	Idempotency      *idempotency.Tracker
	Logger           *slog.Logger
	Config           *App
}
