// Package kyc gates withdrawals behind an approved, unexpired identity check.
package kyc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/amirasaad/payminute/pkg/domain/kyc"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/eventbus"
	"github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
)

// Service is the KYC status gate.
type Service struct {
	uow      repository.UnitOfWork
	bus      eventbus.Bus
	validity time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new KYC Service.
func NewService(deps config.Deps, opts ...Option) *Service {
	s := &Service{
		uow:      deps.Uow,
		bus:      deps.EventBus,
		validity: deps.Config.KYC.Validity,
		logger:   deps.Logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func notFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrKYCNotFound
	}
	return err
}

// Submit records a new pending submission. A user with a pending or a valid
// approved record cannot submit again.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req dto.KYCSubmission) (rec *kyc.Record, err error) {
	logger := s.logger.With("user_id", userID)
	logger.Info("Submit started")
	if err := dto.Validate(req); err != nil {
		logger.Error("Submit failed: invalid request", "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.KYCRepository()
		if err != nil {
			return err
		}
		now := s.now()
		latest, err := repo.LatestByUser(ctx, userID)
		switch {
		case err == nil && latest.IsActive(now):
			return domain.ErrDuplicateKYCSubmission
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}
		rec, err = kyc.NewRecord(userID, kyc.Submission{
			FullName:         req.FullName,
			CPF:              req.CPF,
			BirthDate:        req.BirthDate,
			DocumentFrontURL: req.DocumentFrontURL,
			DocumentBackURL:  req.DocumentBackURL,
			SelfieURL:        req.SelfieURL,
		}, now)
		if err != nil {
			return err
		}
		// one pending record per user is also enforced by a unique index
		if err := repo.Create(ctx, rec); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.ErrDuplicateKYCSubmission
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.Error("Submit failed", "error", err)
		return nil, err
	}
	logger.Info("Submit successful", "kyc_id", rec.ID)
	return rec, nil
}

// Approve approves a pending submission for the configured validity period.
func (s *Service) Approve(ctx context.Context, kycID, adminID uuid.UUID, comment string) (*kyc.Record, error) {
	return s.review(ctx, "Approve", kycID, adminID, func(rec *kyc.Record, at time.Time) error {
		return rec.Approve(adminID, comment, s.validity, at)
	})
}

// Reject rejects a pending submission. reason is mandatory.
func (s *Service) Reject(ctx context.Context, kycID, adminID uuid.UUID, reason string) (*kyc.Record, error) {
	return s.review(ctx, "Reject", kycID, adminID, func(rec *kyc.Record, at time.Time) error {
		return rec.Reject(adminID, reason, at)
	})
}

func (s *Service) review(
	ctx context.Context,
	op string,
	kycID, adminID uuid.UUID,
	apply func(rec *kyc.Record, at time.Time) error,
) (rec *kyc.Record, err error) {
	logger := s.logger.With("kyc_id", kycID, "admin_id", adminID)
	logger.Info(op + " started")
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.KYCRepository()
		if err != nil {
			return err
		}
		rec, err = repo.GetForUpdate(ctx, kycID)
		if err != nil {
			return notFound(err)
		}
		if err := apply(rec, s.now()); err != nil {
			return err
		}
		return repo.Update(ctx, rec)
	})
	if err != nil {
		logger.Error(op+" failed", "error", err)
		return nil, err
	}
	eventbus.EmitAfterCommit(ctx, s.bus, s.logger, &events.KYCReviewed{
		KYCID:      rec.ID,
		UserID:     rec.UserID,
		Status:     string(rec.Status),
		ReviewedBy: adminID,
		ExpiresAt:  rec.ExpiresAt,
		Timestamp:  s.now(),
	})
	logger.Info(op+" successful", "status", rec.Status)
	return rec, nil
}

// IsApproved reports whether the user's latest submission is approved and unexpired.
func (s *Service) IsApproved(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.Approved(ctx, s.uow, userID)
}

// Approved is the unit-of-work bound variant of IsApproved.
func (s *Service) Approved(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID) (bool, error) {
	repo, err := uow.KYCRepository()
	if err != nil {
		return false, err
	}
	latest, err := repo.LatestByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return latest.IsValidAt(s.now()), nil
}

// Status returns the user's latest submission.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*kyc.Record, error) {
	repo, err := s.uow.KYCRepository()
	if err != nil {
		return nil, err
	}
	rec, err := repo.LatestByUser(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

// ExpireStale flips approved records past their expiry to expired and
// returns how many were changed.
func (s *Service) ExpireStale(ctx context.Context) (n int, err error) {
	s.logger.Info("ExpireStale started")
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.KYCRepository()
		if err != nil {
			return err
		}
		now := s.now()
		stale, err := repo.ListExpired(ctx, now)
		if err != nil {
			return err
		}
		for _, rec := range stale {
			if !rec.Expire(now) {
				continue
			}
			if err := repo.Update(ctx, rec); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("ExpireStale failed", "error", err)
		return 0, err
	}
	s.logger.Info("ExpireStale successful", "expired", n)
	return n, nil
}
