package payment

import (
	"context"
)

// RechargeProvider creates checkout preferences and verifies their callbacks.
type RechargeProvider interface {
	CreatePreference(ctx context.Context, params *PreferenceParams) (*Preference, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*PaymentEvent, error)
}

// PayoutProvider initiates transfers to a pix key and verifies their callbacks.
type PayoutProvider interface {
	InitiatePayout(ctx context.Context, params *InitiatePayoutParams) (*InitiatePayoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*PaymentEvent, error)
}
