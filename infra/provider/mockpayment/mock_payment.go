// Package mockpayment simulates the recharge and payout providers for local
// development. It is not for production use.
package mockpayment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/provider/payment"
	"github.com/google/uuid"
)

// MockPaymentProvider accepts every preference and payout and lets callers
// drive completion through HandleWebhook with a plain JSON body:
//
//	{"id":"evt-1","reference":"mock_pref_...","status":"approved","amount":5000}
type MockPaymentProvider struct {
	mu       sync.Mutex
	payments map[string]payment.PaymentStatus
}

// NewMockPaymentProvider creates a new instance of MockPaymentProvider.
func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{
		payments: make(map[string]payment.PaymentStatus),
	}
}

// CreatePreference returns a pending checkout pointing at a fake URL.
func (m *MockPaymentProvider) CreatePreference(
	_ context.Context,
	params *payment.PreferenceParams,
) (*payment.Preference, error) {
	id := "mock_pref_" + params.RechargeID.String()
	m.mu.Lock()
	m.payments[id] = payment.PaymentPending
	m.mu.Unlock()
	return &payment.Preference{
		PreferenceID: id,
		CheckoutURL:  "https://checkout.mock.local/" + id,
		Status:       payment.PaymentPending,
	}, nil
}

// InitiatePayout accepts the transfer and reports it as processing.
func (m *MockPaymentProvider) InitiatePayout(
	_ context.Context,
	params *payment.InitiatePayoutParams,
) (*payment.InitiatePayoutResponse, error) {
	id := "mock_payout_" + uuid.NewString()
	m.mu.Lock()
	m.payments[id] = payment.PaymentProcessing
	m.mu.Unlock()
	return &payment.InitiatePayoutResponse{
		TransferID: id,
		Status:     payment.PaymentProcessing,
		RawStatus:  "EM_PROCESSAMENTO",
	}, nil
}

type mockWebhook struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

// HandleWebhook parses an unsigned JSON notification. The reference must
// belong to a preference or payout created by this provider.
func (m *MockPaymentProvider) HandleWebhook(
	_ context.Context,
	payload []byte,
	_ string,
) (*payment.PaymentEvent, error) {
	var body mockWebhook
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if body.ID == "" || body.Reference == "" {
		return nil, domain.ErrValidation
	}
	status := payment.MapStatus(body.Status)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[body.Reference]; !ok {
		return nil, fmt.Errorf("%w: unknown reference %s", domain.ErrNotFound, body.Reference)
	}
	m.payments[body.Reference] = status
	return &payment.PaymentEvent{
		ID:        body.ID,
		Reference: body.Reference,
		Status:    status,
		RawStatus: body.Status,
		Amount:    body.Amount,
	}, nil
}

// Status returns the last known status of reference.
func (m *MockPaymentProvider) Status(reference string) (payment.PaymentStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.payments[reference]
	return s, ok
}

var (
	_ payment.RechargeProvider = (*MockPaymentProvider)(nil)
	_ payment.PayoutProvider   = (*MockPaymentProvider)(nil)
)
