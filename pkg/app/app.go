// Package app wires the settlement services on top of config.Deps.
package app

import (
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/service/billing"
	"github.com/amirasaad/payminute/pkg/service/commission"
	"github.com/amirasaad/payminute/pkg/service/kyc"
	"github.com/amirasaad/payminute/pkg/service/ledger"
	"github.com/amirasaad/payminute/pkg/service/recharge"
	"github.com/amirasaad/payminute/pkg/service/withdrawal"
)

type App struct {
	Deps              *config.Deps
	Config            *config.App
	LedgerService     *ledger.Service
	CommissionService *commission.Service
	BillingService    *billing.Service
	KYCService        *kyc.Service
	WithdrawalService *withdrawal.Service
	RechargeService   *recharge.Service
}

func New(deps *config.Deps) *App {
	app := &App{
		Deps:   deps,
		Config: deps.Config,
	}
	app.setupEventBus()

	app.LedgerService = ledger.NewService(*deps)
	app.CommissionService = commission.NewService(*deps)
	app.BillingService = billing.NewService(*deps)
	app.KYCService = kyc.NewService(*deps)
	app.WithdrawalService = withdrawal.NewService(*deps)
	app.RechargeService = recharge.NewService(*deps)
	return app
}
