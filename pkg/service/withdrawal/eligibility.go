package withdrawal

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
)

// Eligibility is the guard's verdict. Reason is the user-facing message and
// Err the matching sentinel; both are empty when Eligible.
type Eligibility struct {
	Eligible bool
	Reason   string
	Err      error
}

func denied(err error) Eligibility {
	return Eligibility{Reason: reasons[err], Err: err}
}

var reasons = map[error]string{
	domain.ErrKYCRequired:           "KYC required",
	domain.ErrInsufficientFunds:     "Insufficient balance",
	domain.ErrMaximumAmountExceeded: "Maximum withdrawal exceeded",
	domain.ErrDailyLimitReached:     "Daily withdrawal limit reached",
}

// CheckEligibility evaluates, in order and stopping at the first failure:
// approved KYC, sufficient balance, the per-request maximum and the daily
// count of pending withdrawals. It never writes.
func (s *Service) CheckEligibility(ctx context.Context, streamerID uuid.UUID, amount int64) (Eligibility, error) {
	return s.eligibility(ctx, s.uow, streamerID, amount, false)
}

// startOfDay returns local midnight of now in the configured timezone.
func (s *Service) startOfDay(now time.Time) time.Time {
	local := now.In(s.loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *Service) eligibility(ctx context.Context, uow repository.UnitOfWork, streamerID uuid.UUID, amount int64, lock bool) (Eligibility, error) {
	approved, err := s.kyc.Approved(ctx, uow, streamerID)
	if err != nil {
		return Eligibility{}, err
	}
	if !approved {
		return denied(domain.ErrKYCRequired), nil
	}

	accounts, err := uow.AccountRepository()
	if err != nil {
		return Eligibility{}, err
	}
	get := accounts.Get
	if lock {
		get = accounts.GetForUpdate
	}
	acc, err := get(ctx, streamerID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return denied(domain.ErrInsufficientFunds), nil
	case err != nil:
		return Eligibility{}, err
	case !acc.CanAfford(amount):
		return denied(domain.ErrInsufficientFunds), nil
	}

	if amount > s.cfg.MaxAmount {
		return denied(domain.ErrMaximumAmountExceeded), nil
	}

	withdrawals, err := uow.WithdrawalRepository()
	if err != nil {
		return Eligibility{}, err
	}
	pending, err := withdrawals.CountPendingSince(ctx, streamerID, s.startOfDay(s.now()))
	if err != nil {
		return Eligibility{}, err
	}
	if pending >= s.cfg.DailyLimit {
		return denied(domain.ErrDailyLimitReached), nil
	}
	return Eligibility{Eligible: true}, nil
}
