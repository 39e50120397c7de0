// Package withdrawal guards, records and settles streamer payouts.
//
// A withdrawal debits the streamer when it is requested. Its status then only
// moves forward: pending to processing to completed or failed, or straight
// from pending to a terminal status. A failed withdrawal is refunded.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/events"
	domainledger "github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/amirasaad/payminute/pkg/domain/withdrawal"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/eventbus"
	"github.com/amirasaad/payminute/pkg/idempotency"
	"github.com/amirasaad/payminute/pkg/provider/payment"
	"github.com/amirasaad/payminute/pkg/repository"
	"github.com/amirasaad/payminute/pkg/service/kyc"
	"github.com/amirasaad/payminute/pkg/service/ledger"
	"github.com/google/uuid"
)

// Service implements the withdrawal eligibility guard and settlement state machine.
type Service struct {
	uow         repository.UnitOfWork
	ledger      *ledger.Service
	kyc         *kyc.Service
	payout      payment.PayoutProvider
	idempotency *idempotency.Tracker
	bus         eventbus.Bus
	cfg         *config.Withdrawal
	loc         *time.Location
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new withdrawal Service.
func NewService(deps config.Deps, opts ...Option) *Service {
	s := &Service{
		uow:         deps.Uow,
		payout:      deps.PayoutProvider,
		idempotency: deps.Idempotency,
		bus:         deps.EventBus,
		cfg:         deps.Config.Withdrawal,
		loc:         deps.Config.Withdrawal.Location(),
		logger:      deps.Logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = ledger.NewService(deps, ledger.WithClock(s.now))
	s.kyc = kyc.NewService(deps, kyc.WithClock(s.now))
	if s.idempotency == nil {
		s.idempotency = idempotency.NewTracker(idempotency.NewMemoryStore(), deps.Logger)
	}
	return s
}

func notFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrWithdrawalNotFound
	}
	return err
}

// RequestWithdrawal debits the full amount and records a pending withdrawal.
// The paired ledger transaction carries the net amount. A repeated
// idempotency key returns the original record untouched.
func (s *Service) RequestWithdrawal(ctx context.Context, req dto.WithdrawalRequest) (w *withdrawal.Withdrawal, err error) {
	logger := s.logger.With("streamer_id", req.StreamerID, "amount", req.Amount, "anticipate", req.Anticipate)
	logger.Info("RequestWithdrawal started")
	if err := dto.Validate(req); err != nil {
		logger.Error("RequestWithdrawal failed: invalid request", "error", err)
		return nil, err
	}
	now := s.now()
	draft, err := withdrawal.New(withdrawal.Request{
		StreamerID:     req.StreamerID,
		Amount:         req.Amount,
		PixKey:         req.PixKey,
		PixKeyType:     withdrawal.PixKeyType(req.PixKeyType),
		Anticipate:     req.Anticipate,
		IdempotencyKey: req.IdempotencyKey,
	}, s.cfg.AnticipationFee, now)
	if err != nil {
		logger.Error("RequestWithdrawal failed", "error", err)
		return nil, err
	}

	replayed := false
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.WithdrawalRepository()
		if err != nil {
			return err
		}
		// The account lock serializes retries of the same key, so the lookup
		// below sees a concurrent request's committed row.
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if _, err := accounts.GetForUpdate(ctx, req.StreamerID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if draft.IdempotencyKey != "" {
			existing, err := repo.GetByIdempotencyKey(ctx, req.StreamerID, draft.IdempotencyKey)
			if err == nil {
				w, replayed = existing, true
				return nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		verdict, err := s.eligibility(ctx, uow, req.StreamerID, req.Amount, true)
		if err != nil {
			return err
		}
		if !verdict.Eligible {
			return verdict.Err
		}

		if err := repo.Create(ctx, draft); err != nil {
			return err
		}
		entry := domainledger.Entry{
			AccountID:    draft.StreamerID,
			Kind:         domainledger.KindWithdrawal,
			Delta:        -draft.Amount,
			Amount:       draft.NetAmount,
			WithdrawalID: &draft.ID,
			Description:  fmt.Sprintf("withdrawal to %s key", draft.PixKeyType),
			Status:       domainledger.StatusPending,
		}
		if _, err := s.ledger.Post(ctx, uow, entry); err != nil {
			return err
		}
		w = draft
		return nil
	})
	if err != nil {
		logger.Error("RequestWithdrawal failed", "error", err)
		return nil, err
	}
	if replayed {
		logger.Info("RequestWithdrawal replayed", "withdrawal_id", w.ID)
		return w, nil
	}

	eventbus.EmitAfterCommit(ctx, s.bus, s.logger, &events.WithdrawalRequested{
		WithdrawalID: w.ID,
		StreamerID:   w.StreamerID,
		Amount:       w.Amount,
		Fee:          w.Fee,
		NetAmount:    w.NetAmount,
		Anticipated:  w.IsAnticipated,
		Timestamp:    now,
	})
	logger.Info("RequestWithdrawal successful", "withdrawal_id", w.ID, "fee", w.Fee, "net_amount", w.NetAmount)
	return w, nil
}

// UpdateStatus moves a withdrawal forward. Re-delivering the current terminal
// status is a no-op. Moving to failed refunds the full amount when enabled.
func (s *Service) UpdateStatus(
	ctx context.Context,
	withdrawalID uuid.UUID,
	next withdrawal.Status,
	providerReference, failureReason string,
) (*withdrawal.Withdrawal, error) {
	return s.transition(ctx, withdrawalID, next, providerReference, failureReason, nil)
}

func (s *Service) transition(
	ctx context.Context,
	withdrawalID uuid.UUID,
	next withdrawal.Status,
	providerReference, failureReason string,
	before func(w *withdrawal.Withdrawal) error,
) (w *withdrawal.Withdrawal, err error) {
	logger := s.logger.With("withdrawal_id", withdrawalID, "next_status", next)
	logger.Info("UpdateStatus started")

	var (
		from     withdrawal.Status
		changed  bool
		refunded bool
	)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.WithdrawalRepository()
		if err != nil {
			return err
		}
		w, err = repo.GetForUpdate(ctx, withdrawalID)
		if err != nil {
			return notFound(err)
		}
		if before != nil {
			if err := before(w); err != nil {
				return err
			}
		}
		from = w.Status
		now := s.now()
		changed, err = w.Transition(next, providerReference, failureReason, now)
		if err != nil || !changed {
			return err
		}
		if err := repo.Update(ctx, w); err != nil {
			return err
		}
		if from == w.Status {
			return nil
		}

		switch w.Status {
		case withdrawal.StatusCompleted, withdrawal.StatusFailed:
			txs, err := uow.TransactionRepository()
			if err != nil {
				return err
			}
			status := domainledger.StatusCompleted
			if w.Status == withdrawal.StatusFailed {
				status = domainledger.StatusFailed
			}
			if err := txs.UpdateStatusByWithdrawal(ctx, w.ID, status); err != nil {
				return err
			}
		}
		if w.Status == withdrawal.StatusFailed && s.cfg.RefundOnFailure {
			refund := domainledger.NewEntry(w.StreamerID, domainledger.KindCredit, w.Amount, "refund of failed withdrawal")
			refund.WithdrawalID = &w.ID
			if _, err := s.ledger.Post(ctx, uow, refund); err != nil {
				return err
			}
			refunded = true
		}
		return nil
	})
	if err != nil {
		logger.Error("UpdateStatus failed", "error", err)
		return nil, err
	}
	if !changed || from == w.Status {
		logger.Info("UpdateStatus no-op", "status", w.Status)
		return w, nil
	}

	eventbus.EmitAfterCommit(ctx, s.bus, s.logger, &events.WithdrawalStatusChanged{
		WithdrawalID:      w.ID,
		StreamerID:        w.StreamerID,
		From:              string(from),
		To:                string(w.Status),
		ProviderReference: w.ProviderReference,
		FailureReason:     w.FailureReason,
		Refunded:          refunded,
		Timestamp:         s.now(),
	})
	logger.Info("UpdateStatus successful", "from", from, "to", w.Status, "refunded", refunded)
	return w, nil
}

// Approve moves a withdrawal to processing and asks the payout provider to
// transfer the net amount. Standard withdrawals cannot be approved before
// their available date. A processing withdrawal that never reached the
// provider may be approved again.
func (s *Service) Approve(ctx context.Context, withdrawalID, adminID uuid.UUID) (*withdrawal.Withdrawal, error) {
	logger := s.logger.With("withdrawal_id", withdrawalID, "admin_id", adminID)
	if s.payout == nil {
		logger.Error("Approve failed: no payout provider configured")
		return nil, domain.ErrServiceUnavailable
	}
	w, err := s.transition(ctx, withdrawalID, withdrawal.StatusProcessing, "", "", func(w *withdrawal.Withdrawal) error {
		if w.Status.IsTerminal() || w.ProviderReference != "" {
			return domain.ErrInvalidTransition
		}
		if !w.HoldElapsed(s.now()) {
			return domain.ErrHoldPeriodActive
		}
		w.ReviewedBy = &adminID
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.payout.InitiatePayout(ctx, &payment.InitiatePayoutParams{
		WithdrawalID: w.ID,
		StreamerID:   w.StreamerID,
		Amount:       w.NetAmount,
		Currency:     "BRL",
		PixKey:       w.PixKey,
		PixKeyType:   string(w.PixKeyType),
		Description:  fmt.Sprintf("payminute withdrawal %s", w.ID),
	})
	if err != nil {
		logger.Error("payout initiation failed, withdrawal stays processing", "error", err)
		return w, fmt.Errorf("initiate payout: %w: %w", domain.ErrServiceUnavailable, err)
	}
	logger.Info("payout initiated", "transfer_id", resp.TransferID, "provider_status", resp.RawStatus)

	next := payment.WithdrawalStatus(resp.Status)
	if next == withdrawal.StatusPending {
		next = withdrawal.StatusProcessing
	}
	return s.UpdateStatus(ctx, w.ID, next, resp.TransferID, resp.RawStatus)
}

// Reject fails a withdrawal with a mandatory reason.
func (s *Service) Reject(ctx context.Context, withdrawalID, adminID uuid.UUID, reason string) (*withdrawal.Withdrawal, error) {
	if reason == "" {
		return nil, domain.ErrCommentRequired
	}
	return s.transition(ctx, withdrawalID, withdrawal.StatusFailed, "", reason, func(w *withdrawal.Withdrawal) error {
		if w.Status.IsTerminal() {
			return domain.ErrInvalidTransition
		}
		w.ReviewedBy = &adminID
		return nil
	})
}

// HandlePayoutCallback applies a provider status to the withdrawal holding
// providerReference. Progress reports older than the current status are
// ignored.
func (s *Service) HandlePayoutCallback(ctx context.Context, providerReference, providerStatus string) (*withdrawal.Withdrawal, error) {
	repo, err := s.uow.WithdrawalRepository()
	if err != nil {
		return nil, err
	}
	w, err := repo.GetByProviderReference(ctx, providerReference)
	if err != nil {
		return nil, notFound(err)
	}
	next := payment.WithdrawalStatus(payment.MapStatus(providerStatus))
	reason := ""
	if next == withdrawal.StatusFailed {
		reason = providerStatus
	}
	updated, err := s.UpdateStatus(ctx, w.ID, next, providerReference, reason)
	if errors.Is(err, domain.ErrInvalidTransition) && !next.IsTerminal() {
		s.logger.Info("stale payout callback ignored", "withdrawal_id", w.ID, "provider_status", providerStatus)
		return w, nil
	}
	return updated, err
}

// HandlePayoutWebhook verifies a provider delivery and applies it once per
// provider event id.
func (s *Service) HandlePayoutWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.payout == nil {
		return domain.ErrServiceUnavailable
	}
	evt, err := s.payout.HandleWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}
	dup, err := s.idempotency.Do(ctx, "payout:"+evt.ID, func(ctx context.Context) error {
		raw := evt.RawStatus
		if raw == "" {
			raw = string(evt.Status)
		}
		_, err := s.HandlePayoutCallback(ctx, evt.Reference, raw)
		return err
	})
	if dup {
		s.logger.Info("duplicate payout webhook dropped", "event_id", evt.ID)
	}
	return err
}

// Get returns a withdrawal by id.
func (s *Service) Get(ctx context.Context, withdrawalID uuid.UUID) (*withdrawal.Withdrawal, error) {
	repo, err := s.uow.WithdrawalRepository()
	if err != nil {
		return nil, err
	}
	w, err := repo.Get(ctx, withdrawalID)
	if err != nil {
		return nil, notFound(err)
	}
	return w, nil
}

// List returns the streamer's withdrawals, newest first.
func (s *Service) List(ctx context.Context, streamerID uuid.UUID) ([]*withdrawal.Withdrawal, error) {
	repo, err := s.uow.WithdrawalRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByStreamer(ctx, streamerID)
}
