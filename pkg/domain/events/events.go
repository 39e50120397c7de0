package events

import (
	"time"

	"github.com/google/uuid"
)

// CallFinalized is emitted once a call room has been settled.
type CallFinalized struct {
	CallID          uuid.UUID `json:"call_id"`
	RoomID          string    `json:"room_id"`
	ViewerID        uuid.UUID `json:"viewer_id"`
	StreamerID      uuid.UUID `json:"streamer_id"`
	DurationMinutes int64     `json:"duration_minutes"`
	TotalCost       int64     `json:"total_cost"`
	StreamerEarning int64     `json:"streamer_earning"`
	Billed          bool      `json:"billed"`
	Timestamp       time.Time `json:"timestamp"`
}

func (e *CallFinalized) Type() string { return EventTypeCallFinalized.String() }

// WithdrawalRequested is emitted after a withdrawal has been persisted and debited.
type WithdrawalRequested struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
	StreamerID   uuid.UUID `json:"streamer_id"`
	Amount       int64     `json:"amount"`
	Fee          int64     `json:"fee"`
	NetAmount    int64     `json:"net_amount"`
	Anticipated  bool      `json:"anticipated"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e *WithdrawalRequested) Type() string { return EventTypeWithdrawalRequested.String() }

// WithdrawalStatusChanged is emitted on every effective status transition.
type WithdrawalStatusChanged struct {
	WithdrawalID      uuid.UUID `json:"withdrawal_id"`
	StreamerID        uuid.UUID `json:"streamer_id"`
	From              string    `json:"from"`
	To                string    `json:"to"`
	ProviderReference string    `json:"provider_reference,omitempty"`
	FailureReason     string    `json:"failure_reason,omitempty"`
	Refunded          bool      `json:"refunded"`
	Timestamp         time.Time `json:"timestamp"`
}

func (e *WithdrawalStatusChanged) Type() string { return EventTypeWithdrawalStatusChanged.String() }

// RechargeCompleted is emitted when a recharge credited the user's balance.
type RechargeCompleted struct {
	RechargeID   uuid.UUID `json:"recharge_id"`
	UserID       uuid.UUID `json:"user_id"`
	Amount       int64     `json:"amount"`
	PreferenceID string    `json:"preference_id"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e *RechargeCompleted) Type() string { return EventTypeRechargeCompleted.String() }

// KYCReviewed is emitted when an administrator approves or rejects a submission.
type KYCReviewed struct {
	KYCID      uuid.UUID  `json:"kyc_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Status     string     `json:"status"`
	ReviewedBy uuid.UUID  `json:"reviewed_by"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

func (e *KYCReviewed) Type() string { return EventTypeKYCReviewed.String() }
