// Package recharge models viewer balance top-ups through a payment provider.
package recharge

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/google/uuid"
)

// Status of a recharge.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the recharge is settled.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// Recharge is a checkout preference created at the payment provider.
type Recharge struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Amount       int64
	PreferenceID string
	CheckoutURL  string
	Status       Status
	ProcessedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New validates amount against [min, max] and returns a pending recharge.
func New(userID uuid.UUID, amount, min, max int64, at time.Time) (*Recharge, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrValidation
	}
	if amount < min || amount > max {
		return nil, domain.ErrInvalidRechargeValue
	}
	return &Recharge{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	}, nil
}

// Settle moves a pending recharge to a terminal status. It returns false when
// the recharge was already settled, which callers treat as a redelivery.
func (r *Recharge) Settle(next Status, at time.Time) (bool, error) {
	if next == StatusPending {
		return false, nil
	}
	if r.Status.IsTerminal() {
		if r.Status == next {
			return false, nil
		}
		return false, domain.ErrInvalidTransition
	}
	r.Status = next
	r.ProcessedAt = &at
	r.UpdatedAt = at
	return true, nil
}
