package payment

import (
	"github.com/google/uuid"
)

// PaymentStatus is the provider-independent status taxonomy.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRejected   PaymentStatus = "rejected"
	PaymentRefunded   PaymentStatus = "refunded"
)

// PaymentEvent is a verified asynchronous notification from a provider.
type PaymentEvent struct {
	// ID is the provider's event id, used to drop duplicate deliveries.
	ID string
	// Reference is the preference id of a recharge or the transfer id of a payout.
	Reference string
	Status    PaymentStatus
	RawStatus string
	Amount    int64
	Metadata  map[string]string
}

// PreferenceParams holds the parameters for creating a recharge checkout.
type PreferenceParams struct {
	RechargeID uuid.UUID
	UserID     uuid.UUID
	Amount     int64
	Currency   string
	Email      string
	Name       string
}

// Preference is the checkout created at the provider.
type Preference struct {
	PreferenceID string
	CheckoutURL  string
	Status       PaymentStatus
}

// InitiatePayoutParams holds the parameters for a pix transfer.
type InitiatePayoutParams struct {
	WithdrawalID uuid.UUID
	StreamerID   uuid.UUID
	Amount       int64
	Currency     string
	PixKey       string
	PixKeyType   string
	Description  string
}

// InitiatePayoutResponse represents the provider's answer to a payout.
type InitiatePayoutResponse struct {
	TransferID string
	Status     PaymentStatus
	RawStatus  string
}
