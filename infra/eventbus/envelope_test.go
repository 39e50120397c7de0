package eventbus

import (
	"testing"
	"time"

	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeDecode(t *testing.T) {
	factories := events.Factories()
	in := &events.WithdrawalStatusChanged{
		WithdrawalID: uuid.New(),
		From:         "pending",
		To:           "failed",
		Refunded:     true,
		Timestamp:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	raw, err := encode(in)
	require.NoError(t, err)

	out, err := decode(raw, factories)
	require.NoError(t, err)
	got, ok := out.(*events.WithdrawalStatusChanged)
	require.True(t, ok)
	assert.Equal(t, in.WithdrawalID, got.WithdrawalID)
	assert.True(t, got.Refunded)

	_, err = decode([]byte(`{"type":"Nope.Event","payload":{}}`), factories)
	assert.Error(t, err)
	_, err = decode([]byte(`not json`), factories)
	assert.Error(t, err)
}

func TestStreamNames(t *testing.T) {
	assert.Equal(t, "events:call:finalized", streamNameFor(events.EventTypeCallFinalized))
	assert.Equal(t, "dlq:withdrawal:statuschanged", dlqStreamName(events.EventTypeWithdrawalStatusChanged))
	assert.Equal(t, "payminute.events.kyc.reviewed", topicNameFor("", events.EventTypeKYCReviewed))
	assert.Equal(t, "acme.dlq.recharge.completed", dlqTopicNameFor("acme", events.EventTypeRechargeCompleted))
}
