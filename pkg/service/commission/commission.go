// Package commission resolves and maintains the percentage of a call charge
// that a streamer keeps.
package commission

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/commission"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides commission lookups and administrative updates.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new commission Service.
func NewService(deps config.Deps, opts ...Option) *Service {
	s := &Service{
		uow:    deps.Uow,
		logger: deps.Logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetEffectiveRate returns the streamer's total percentage, creating the
// default record on first use.
func (s *Service) GetEffectiveRate(ctx context.Context, streamerID uuid.UUID) (rate decimal.Decimal, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		rate, err = s.EffectiveRate(ctx, uow, streamerID)
		return err
	})
	return rate, err
}

// Get returns the full commission record of the streamer.
func (s *Service) Get(ctx context.Context, streamerID uuid.UUID) (rec *commission.Record, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		rec, err = s.load(ctx, uow, streamerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// EffectiveRate is the unit-of-work bound variant of GetEffectiveRate.
func (s *Service) EffectiveRate(ctx context.Context, uow repository.UnitOfWork, streamerID uuid.UUID) (decimal.Decimal, error) {
	rec, err := s.load(ctx, uow, streamerID)
	if err != nil {
		return decimal.Zero, err
	}
	return rec.Total, nil
}

func (s *Service) load(ctx context.Context, uow repository.UnitOfWork, streamerID uuid.UUID) (*commission.Record, error) {
	if streamerID == uuid.Nil {
		return nil, domain.ErrValidation
	}
	repo, err := uow.CommissionRepository()
	if err != nil {
		return nil, err
	}
	rec, err := repo.Get(ctx, streamerID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	rec = commission.NewDefault(streamerID, s.now())
	if err := repo.Create(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return repo.Get(ctx, streamerID)
		}
		return nil, err
	}
	s.logger.Debug("default commission created", "streamer_id", streamerID)
	return rec, nil
}

// UpdateCommission applies an administrative change. An out-of-range result
// fails with ErrInvalidCommissionRange and leaves the stored record untouched.
func (s *Service) UpdateCommission(ctx context.Context, streamerID uuid.UUID, req dto.CommissionUpdate) (rec *commission.Record, err error) {
	logger := s.logger.With("streamer_id", streamerID, "admin_id", req.AdminID)
	logger.Info("UpdateCommission started")
	if err := dto.Validate(req); err != nil {
		logger.Error("UpdateCommission failed: invalid request", "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		rec, err = s.load(ctx, uow, streamerID)
		if err != nil {
			return err
		}
		change := commission.Change{
			Base:             req.BaseCommission,
			LoyaltyBonus:     req.LoyaltyBonus,
			ReferralBonus:    req.ReferralBonus,
			PerformanceBonus: req.PerformanceBonus,
			Notes:            req.Notes,
			AdminID:          req.AdminID,
		}
		if err := rec.Apply(change, s.now()); err != nil {
			return err
		}
		repo, err := uow.CommissionRepository()
		if err != nil {
			return err
		}
		return repo.Update(ctx, rec)
	})
	if err != nil {
		logger.Error("UpdateCommission failed", "error", err)
		return nil, err
	}
	logger.Info("UpdateCommission successful", "total", rec.Total.String())
	return rec, nil
}
