// Package recharge tops up viewer balances through a checkout provider.
package recharge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/events"
	domainledger "github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/amirasaad/payminute/pkg/domain/recharge"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/eventbus"
	"github.com/amirasaad/payminute/pkg/idempotency"
	"github.com/amirasaad/payminute/pkg/provider/payment"
	"github.com/amirasaad/payminute/pkg/repository"
	"github.com/amirasaad/payminute/pkg/service/ledger"
)

// Service creates checkout preferences and credits completed recharges.
type Service struct {
	uow         repository.UnitOfWork
	ledger      *ledger.Service
	provider    payment.RechargeProvider
	idempotency *idempotency.Tracker
	bus         eventbus.Bus
	cfg         *config.Recharge
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new recharge Service.
func NewService(deps config.Deps, opts ...Option) *Service {
	s := &Service{
		uow:         deps.Uow,
		provider:    deps.RechargeProvider,
		idempotency: deps.Idempotency,
		bus:         deps.EventBus,
		cfg:         deps.Config.Recharge,
		logger:      deps.Logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = ledger.NewService(deps, ledger.WithClock(s.now))
	if s.idempotency == nil {
		s.idempotency = idempotency.NewTracker(idempotency.NewMemoryStore(), deps.Logger)
	}
	return s
}

// RequestRecharge asks the provider for a checkout preference and records a
// pending recharge against it.
func (s *Service) RequestRecharge(ctx context.Context, req dto.RechargeRequest) (r *recharge.Recharge, err error) {
	logger := s.logger.With("user_id", req.UserID, "amount", req.Amount)
	logger.Info("RequestRecharge started")
	defer func() {
		if err != nil {
			logger.Error("RequestRecharge failed", "error", err)
		}
	}()
	if err = dto.Validate(req); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, domain.ErrServiceUnavailable
	}
	r, err = recharge.New(req.UserID, req.Amount, s.cfg.MinAmount, s.cfg.MaxAmount, s.now())
	if err != nil {
		return nil, err
	}

	pref, err := s.provider.CreatePreference(ctx, &payment.PreferenceParams{
		RechargeID: r.ID,
		UserID:     r.UserID,
		Amount:     r.Amount,
		Currency:   "BRL",
		Email:      req.Email,
		Name:       req.Name,
	})
	if err != nil {
		return nil, errors.Join(domain.ErrServiceUnavailable, err)
	}
	r.PreferenceID = pref.PreferenceID
	r.CheckoutURL = pref.CheckoutURL

	repo, err := s.uow.RechargeRepository()
	if err != nil {
		return nil, err
	}
	if err = repo.Create(ctx, r); err != nil {
		return nil, err
	}
	logger.Info("RequestRecharge successful", "recharge_id", r.ID, "preference_id", r.PreferenceID)
	return r, nil
}

// ConfirmRecharge settles the recharge behind preferenceID. A completed
// recharge credits the user exactly once; later deliveries are no-ops.
func (s *Service) ConfirmRecharge(ctx context.Context, preferenceID, providerStatus string) (r *recharge.Recharge, err error) {
	logger := s.logger.With("preference_id", preferenceID, "provider_status", providerStatus)
	logger.Info("ConfirmRecharge started")

	next := payment.RechargeStatus(payment.MapStatus(providerStatus))
	credited := false
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.RechargeRepository()
		if err != nil {
			return err
		}
		r, err = repo.GetByPreferenceIDForUpdate(ctx, preferenceID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrRechargeNotFound
			}
			return err
		}
		changed, err := r.Settle(next, s.now())
		if err != nil || !changed {
			return err
		}
		if err := repo.Update(ctx, r); err != nil {
			return err
		}
		if r.Status != recharge.StatusCompleted {
			return nil
		}
		if _, err := s.ledger.Ensure(ctx, uow, r.UserID, domainledger.RoleViewer); err != nil {
			return err
		}
		entry := domainledger.NewEntry(r.UserID, domainledger.KindCredit, r.Amount, "recharge")
		entry.RechargeID = &r.ID
		if _, err := s.ledger.Post(ctx, uow, entry); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		logger.Error("ConfirmRecharge failed", "error", err)
		return nil, err
	}
	if credited {
		eventbus.EmitAfterCommit(ctx, s.bus, s.logger, &events.RechargeCompleted{
			RechargeID:   r.ID,
			UserID:       r.UserID,
			Amount:       r.Amount,
			PreferenceID: r.PreferenceID,
			Timestamp:    s.now(),
		})
	}
	logger.Info("ConfirmRecharge successful", "recharge_id", r.ID, "status", r.Status, "credited", credited)
	return r, nil
}

// HandleRechargeWebhook verifies a provider delivery and applies it once per
// provider event id.
func (s *Service) HandleRechargeWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.provider == nil {
		return domain.ErrServiceUnavailable
	}
	evt, err := s.provider.HandleWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}
	dup, err := s.idempotency.Do(ctx, "recharge:"+evt.ID, func(ctx context.Context) error {
		raw := evt.RawStatus
		if raw == "" {
			raw = string(evt.Status)
		}
		_, err := s.ConfirmRecharge(ctx, evt.Reference, raw)
		return err
	})
	if dup {
		s.logger.Info("duplicate recharge webhook dropped", "event_id", evt.ID)
	}
	return err
}
