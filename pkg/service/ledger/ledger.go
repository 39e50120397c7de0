// Package ledger is the only writer of account balances. Every mutation goes
// through Post, which applies the delta and appends the paired transaction
// inside the caller's unit of work.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
)

// Service provides balance accounting.
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

// NewService creates a new ledger Service.
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

// Discrepancy reports an account whose stored balance disagrees with its log.
type Discrepancy struct {
	AccountID uuid.UUID
	Stored    int64
	Expected  int64
}

func accountErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrAccountNotFound
	}
	return err
}

// OpenAccount returns the user's account, creating an empty one if needed.
func (s *Service) OpenAccount(ctx context.Context, userID uuid.UUID, role ledger.Role) (acc *ledger.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err = s.Ensure(ctx, uow, userID, role)
		return err
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Ensure is the unit-of-work bound variant of OpenAccount.
func (s *Service) Ensure(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID, role ledger.Role) (*ledger.Account, error) {
	repo, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	acc, err := repo.Get(ctx, userID)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	now := s.now()
	acc, err = ledger.New().WithUserID(userID).WithRole(role).WithCreatedAt(now).WithUpdatedAt(now).Build()
	if err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, acc); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// opened by a concurrent unit of work
			return repo.Get(ctx, userID)
		}
		return nil, err
	}
	s.logger.Info("ledger account opened", "user_id", userID, "role", role)
	return acc, nil
}

// GetBalance returns the current balance of the account.
func (s *Service) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return 0, err
	}
	acc, err := repo.Get(ctx, accountID)
	if err != nil {
		return 0, accountErr(err)
	}
	return acc.Balance, nil
}

// Lock takes the row locks of the given accounts in ascending id order so
// that two-account flows never deadlock against each other.
func (s *Service) Lock(ctx context.Context, uow repository.UnitOfWork, ids ...uuid.UUID) (map[uuid.UUID]*ledger.Account, error) {
	repo, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	out := make(map[uuid.UUID]*ledger.Account, len(sorted))
	for _, id := range sorted {
		if _, ok := out[id]; ok {
			continue
		}
		acc, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, accountErr(err)
		}
		out[id] = acc
	}
	return out, nil
}

// ApplyDelta locks the account and adds delta to its balance. It refuses to
// go below zero. Callers outside this package should use Post so that the
// mutation is paired with its transaction record.
func (s *Service) ApplyDelta(ctx context.Context, uow repository.UnitOfWork, accountID uuid.UUID, delta int64) (int64, error) {
	acc, err := s.applyDelta(ctx, uow, accountID, delta, false)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

func (s *Service) applyDelta(ctx context.Context, uow repository.UnitOfWork, accountID uuid.UUID, delta int64, earning bool) (*ledger.Account, error) {
	repo, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	acc, err := repo.GetForUpdate(ctx, accountID)
	if err != nil {
		return nil, accountErr(err)
	}
	if earning {
		err = acc.Earn(delta, s.now())
	} else {
		err = acc.Apply(delta, s.now())
	}
	if err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// RecordTransaction appends tx to the log. It fails with ErrAccountNotFound
// when the account does not exist.
func (s *Service) RecordTransaction(ctx context.Context, uow repository.UnitOfWork, tx *ledger.Transaction) (uuid.UUID, error) {
	repo, err := uow.TransactionRepository()
	if err != nil {
		return uuid.Nil, err
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now()
	}
	if err := repo.Create(ctx, tx); err != nil {
		return uuid.Nil, accountErr(err)
	}
	return tx.ID, nil
}

// Post applies entry.Delta and records its transaction within uow. If either
// write fails the caller's unit of work rolls both back.
func (s *Service) Post(ctx context.Context, uow repository.UnitOfWork, entry ledger.Entry) (*ledger.Transaction, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	acc, err := s.applyDelta(ctx, uow, entry.AccountID, entry.Delta, entry.Kind == ledger.KindCallEarning)
	if err != nil {
		return nil, err
	}
	status := entry.Status
	if status == "" {
		status = ledger.StatusCompleted
	}
	tx := &ledger.Transaction{
		AccountID:    entry.AccountID,
		Kind:         entry.Kind,
		Amount:       entry.Amount,
		BalanceAfter: acc.Balance,
		CallID:       entry.CallID,
		WithdrawalID: entry.WithdrawalID,
		RechargeID:   entry.RechargeID,
		Description:  entry.Description,
		Status:       status,
	}
	if _, err := s.RecordTransaction(ctx, uow, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Adjust is an administrative credit (delta > 0) or debit (delta < 0).
func (s *Service) Adjust(ctx context.Context, accountID uuid.UUID, delta int64, description string) (tx *ledger.Transaction, err error) {
	logger := s.logger.With("account_id", accountID, "delta", delta)
	logger.Info("Adjust started")
	kind := ledger.KindCredit
	amount := delta
	if delta < 0 {
		kind = ledger.KindDebit
		amount = -delta
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		tx, err = s.Post(ctx, uow, ledger.NewEntry(accountID, kind, amount, description))
		return err
	})
	if err != nil {
		logger.Error("Adjust failed", "error", err)
		return nil, err
	}
	logger.Info("Adjust successful", "balance_after", tx.BalanceAfter)
	return tx, nil
}

// ListTransactions returns the account's log, newest first.
func (s *Service) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*ledger.Transaction, error) {
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	if _, err := accounts.Get(ctx, accountID); err != nil {
		return nil, accountErr(err)
	}
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByAccount(ctx, accountID)
}

// Reconcile recomputes every balance from the transaction log and reports
// mismatches. Anticipation fees leave the balance without a log line of
// their own, so they are subtracted from the expected value. Nothing is
// repaired.
func (s *Service) Reconcile(ctx context.Context) (out []Discrepancy, err error) {
	s.logger.Info("Reconcile started")
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		withdrawals, err := uow.WithdrawalRepository()
		if err != nil {
			return err
		}
		all, err := accounts.List(ctx)
		if err != nil {
			return err
		}
		for _, acc := range all {
			log, err := txs.ListByAccount(ctx, acc.UserID)
			if err != nil {
				return fmt.Errorf("list transactions of %s: %w", acc.UserID, err)
			}
			var expected int64
			for _, t := range log {
				expected += t.SignedAmount()
			}
			fees, err := withdrawals.SumAnticipationFees(ctx, acc.UserID)
			if err != nil {
				return err
			}
			expected -= fees
			if expected != acc.Balance {
				out = append(out, Discrepancy{AccountID: acc.UserID, Stored: acc.Balance, Expected: expected})
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Reconcile failed", "error", err)
		return nil, err
	}
	s.logger.Info("Reconcile successful", "discrepancies", len(out))
	return out, nil
}
