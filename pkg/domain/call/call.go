// Package call holds the call settlement record and streamer pricing.
package call

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/commission"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a call room.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsFinal reports whether the call can no longer be billed or cancelled.
func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Call is one private call between a viewer and a streamer.
type Call struct {
	ID              uuid.UUID
	RoomID          string
	ViewerID        uuid.UUID
	StreamerID      uuid.UUID
	PricePerMinute  int64
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationMinutes int64
	TotalCost       int64
	StreamerEarning int64
	PlatformFee     int64
	CommissionRate  decimal.Decimal
	Billed          bool
	Status          Status
}

// Open creates an active call. The price is a snapshot of the streamer's
// rate when the room was opened.
func Open(roomID string, viewerID, streamerID uuid.UUID, price int64, at time.Time) (*Call, error) {
	if roomID == "" || viewerID == uuid.Nil || streamerID == uuid.Nil {
		return nil, domain.ErrValidation
	}
	if viewerID == streamerID {
		return nil, domain.ErrSameParticipant
	}
	return &Call{
		ID:             uuid.New(),
		RoomID:         roomID,
		ViewerID:       viewerID,
		StreamerID:     streamerID,
		PricePerMinute: price,
		StartedAt:      at,
		CommissionRate: decimal.Zero,
		Status:         StatusActive,
	}, nil
}

// Charge is the computed split of a finished call.
type Charge struct {
	TotalCost       int64
	StreamerEarning int64
	PlatformFee     int64
}

// ComputeCharge returns price*minutes and the streamer's floor share at rate percent.
func ComputeCharge(price, minutes int64, rate decimal.Decimal) (Charge, error) {
	if minutes < 0 || price < 0 {
		return Charge{}, domain.ErrValidation
	}
	if price != 0 && minutes > (1<<62)/price {
		return Charge{}, domain.ErrBalanceOverflow
	}
	total := price * minutes
	earning := commission.Earning(total, rate)
	return Charge{TotalCost: total, StreamerEarning: earning, PlatformFee: total - earning}, nil
}

// Complete finalizes a billed call.
func (c *Call) Complete(minutes int64, charge Charge, rate decimal.Decimal, at time.Time) error {
	if c.Status.IsFinal() {
		return domain.ErrAlreadyFinalized
	}
	c.DurationMinutes = minutes
	c.TotalCost = charge.TotalCost
	c.StreamerEarning = charge.StreamerEarning
	c.PlatformFee = charge.PlatformFee
	c.CommissionRate = rate
	c.Billed = true
	c.EndedAt = &at
	c.Status = StatusCompleted
	return nil
}

// CompleteUnbilled marks the call completed without charging anyone. This is
// what happens when the viewer cannot cover the call or it lasted zero minutes.
func (c *Call) CompleteUnbilled(minutes int64, at time.Time) error {
	if c.Status.IsFinal() {
		return domain.ErrAlreadyFinalized
	}
	c.DurationMinutes = minutes
	c.TotalCost = 0
	c.StreamerEarning = 0
	c.PlatformFee = 0
	c.Billed = false
	c.EndedAt = &at
	c.Status = StatusCompleted
	return nil
}

// Cancel closes an active call without billing.
func (c *Call) Cancel(at time.Time) error {
	if c.Status.IsFinal() {
		return domain.ErrAlreadyFinalized
	}
	c.EndedAt = &at
	c.Status = StatusCancelled
	return nil
}

// Rate is a streamer's current price per minute.
type Rate struct {
	StreamerID     uuid.UUID
	PricePerMinute int64
	UpdatedAt      time.Time
}

// NewRate validates price against [min, max].
func NewRate(streamerID uuid.UUID, price, min, max int64, at time.Time) (*Rate, error) {
	if streamerID == uuid.Nil {
		return nil, domain.ErrValidation
	}
	if price < min || price > max {
		return nil, domain.ErrInvalidPrice
	}
	return &Rate{StreamerID: streamerID, PricePerMinute: price, UpdatedAt: at}, nil
}
