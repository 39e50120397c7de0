package mockpayment

import (
	"context"
	"testing"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/provider/payment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockPaymentProvider_RechargeFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMockPaymentProvider()

	pref, err := m.CreatePreference(ctx, &payment.PreferenceParams{RechargeID: uuid.New(), Amount: 5000})
	require.NoError(t, err)
	assert.Equal(t, payment.PaymentPending, pref.Status)
	assert.Contains(t, pref.CheckoutURL, pref.PreferenceID)

	evt, err := m.HandleWebhook(ctx, []byte(`{"id":"evt-1","reference":"`+pref.PreferenceID+`","status":"approved","amount":5000}`), "")
	require.NoError(t, err)
	assert.Equal(t, payment.PaymentCompleted, evt.Status)
	assert.Equal(t, int64(5000), evt.Amount)

	status, ok := m.Status(pref.PreferenceID)
	require.True(t, ok)
	assert.Equal(t, payment.PaymentCompleted, status)
}

func TestMockPaymentProvider_Payout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMockPaymentProvider()

	resp, err := m.InitiatePayout(ctx, &payment.InitiatePayoutParams{WithdrawalID: uuid.New(), Amount: 1000})
	require.NoError(t, err)
	assert.Equal(t, payment.PaymentProcessing, resp.Status)

	evt, err := m.HandleWebhook(ctx, []byte(`{"id":"evt-2","reference":"`+resp.TransferID+`","status":"NAO_REALIZADO"}`), "")
	require.NoError(t, err)
	assert.Equal(t, payment.PaymentFailed, evt.Status)
}

func TestMockPaymentProvider_WebhookErrors(t *testing.T) {
	t.Parallel()
	m := NewMockPaymentProvider()

	_, err := m.HandleWebhook(context.Background(), []byte(`not json`), "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = m.HandleWebhook(context.Background(), []byte(`{"id":"evt-1","reference":"nope","status":"approved"}`), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
