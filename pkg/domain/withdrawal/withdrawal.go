// Package withdrawal models streamer payouts and their settlement lifecycle.
package withdrawal

import (
	"strings"
	"time"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of a withdrawal. Transitions only move forward.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCompleted, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// CanTransition reports whether from -> to is a legal forward move.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// HoldPeriod is the D+30 window before a standard withdrawal becomes available.
const HoldPeriod = 30 * 24 * time.Hour

// Withdrawal is a streamer's request to move balance to a pix key.
type Withdrawal struct {
	ID                uuid.UUID
	StreamerID        uuid.UUID
	Amount            int64
	Fee               int64
	NetAmount         int64
	PixKey            string
	PixKeyType        PixKeyType
	Status            Status
	IsAnticipated     bool
	EarningDate       time.Time
	AvailableDate     time.Time
	RequestedAt       time.Time
	ProcessedAt       *time.Time
	ProviderReference string
	FailureReason     string
	IdempotencyKey    string
	ReviewedBy        *uuid.UUID
}

// Request carries the validated input of a new withdrawal.
type Request struct {
	StreamerID     uuid.UUID
	Amount         int64
	PixKey         string
	PixKeyType     PixKeyType
	Anticipate     bool
	IdempotencyKey string
}

// Fee returns round(amount * rate) for anticipated withdrawals and 0 otherwise.
func Fee(amount int64, anticipate bool, rate decimal.Decimal) int64 {
	if !anticipate {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()
}

// New builds a pending withdrawal. availableDate is always requestedAt plus
// the hold period; anticipation changes the fee only.
func New(req Request, feeRate decimal.Decimal, at time.Time) (*Withdrawal, error) {
	if req.StreamerID == uuid.Nil {
		return nil, domain.ErrValidation
	}
	if req.Amount <= 0 {
		return nil, domain.ErrAmountMustBePositive
	}
	key, err := NormalizePixKey(req.PixKeyType, req.PixKey)
	if err != nil {
		return nil, err
	}
	fee := Fee(req.Amount, req.Anticipate, feeRate)
	return &Withdrawal{
		ID:             uuid.New(),
		StreamerID:     req.StreamerID,
		Amount:         req.Amount,
		Fee:            fee,
		NetAmount:      req.Amount - fee,
		PixKey:         key,
		PixKeyType:     req.PixKeyType,
		Status:         StatusPending,
		IsAnticipated:  req.Anticipate,
		EarningDate:    at,
		AvailableDate:  at.Add(HoldPeriod),
		RequestedAt:    at,
		IdempotencyKey: strings.TrimSpace(req.IdempotencyKey),
	}, nil
}

// Transition moves the withdrawal to next. It returns changed=false without
// error when next equals the current terminal status, so re-delivered
// callbacks are no-ops.
func (w *Withdrawal) Transition(next Status, providerRef, reason string, at time.Time) (bool, error) {
	if !next.Valid() {
		return false, domain.ErrValidation
	}
	if w.Status == next {
		if next.IsTerminal() {
			return false, nil
		}
		if providerRef != "" && w.ProviderReference == "" {
			w.ProviderReference = providerRef
			return true, nil
		}
		return false, nil
	}
	if !CanTransition(w.Status, next) {
		return false, domain.ErrInvalidTransition
	}
	w.Status = next
	if providerRef != "" {
		w.ProviderReference = providerRef
	}
	if next == StatusFailed && reason != "" {
		w.FailureReason = reason
	}
	if next.IsTerminal() {
		w.ProcessedAt = &at
	}
	return true, nil
}

// HoldElapsed reports whether a standard withdrawal may be paid out at now.
// Anticipated withdrawals are never held.
func (w *Withdrawal) HoldElapsed(now time.Time) bool {
	return w.IsAnticipated || !now.Before(w.AvailableDate)
}
