package app

import (
	"context"
	"testing"
	"time"

	infra_eventbus "github.com/amirasaad/payminute/infra/eventbus"
	"github.com/amirasaad/payminute/internal/fixtures"
	"github.com/amirasaad/payminute/internal/fixtures/memstore"
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/amirasaad/payminute/pkg/idempotency"
	"github.com/amirasaad/payminute/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WiresServicesAndSubscribers(t *testing.T) {
	bus := infra_eventbus.NewWithMemory(fixtures.Logger())
	deps := &config.Deps{
		Uow:         memstore.New(),
		EventBus:    bus,
		Idempotency: idempotency.NewTracker(idempotency.NewMemoryStore(), fixtures.Logger()),
		Logger:      fixtures.Logger(),
		Config:      fixtures.Config(),
	}
	a := New(deps)
	require.NotNil(t, a.LedgerService)
	require.NotNil(t, a.BillingService)
	require.NotNil(t, a.CommissionService)
	require.NotNil(t, a.KYCService)
	require.NotNil(t, a.WithdrawalService)
	require.NotNil(t, a.RechargeService)

	billed := metrics.CallsFinalized.WithLabelValues("true")
	before := testutil.ToFloat64(billed)
	platformBefore := testutil.ToFloat64(metrics.CallRevenue.WithLabelValues("platform"))

	require.NoError(t, bus.Emit(context.Background(), &events.CallFinalized{
		CallID:          uuid.New(),
		RoomID:          "room-1",
		TotalCost:       1990,
		StreamerEarning: 1393,
		Billed:          true,
		Timestamp:       time.Now(),
	}))
	assert.Equal(t, before+1, testutil.ToFloat64(billed))
	assert.Equal(t, platformBefore+597, testutil.ToFloat64(metrics.CallRevenue.WithLabelValues("platform")))
}

func TestHandlers_IgnoreUnexpectedEvents(t *testing.T) {
	logger := fixtures.Logger()
	wrong := &events.KYCReviewed{}
	assert.NoError(t, HandleCallFinalized(logger)(context.Background(), wrong))
	assert.NoError(t, HandleWithdrawalRequested(logger)(context.Background(), wrong))
	assert.NoError(t, HandleWithdrawalStatusChanged(logger)(context.Background(), wrong))
	assert.NoError(t, HandleRechargeCompleted(logger)(context.Background(), wrong))
	assert.NoError(t, HandleKYCReviewed(logger)(context.Background(), &events.CallFinalized{}))
}

func TestHandleWithdrawalStatusChanged_CountsTransition(t *testing.T) {
	c := metrics.WithdrawalTransitions.WithLabelValues("pending", "failed")
	before := testutil.ToFloat64(c)
	err := HandleWithdrawalStatusChanged(fixtures.Logger())(context.Background(), &events.WithdrawalStatusChanged{
		WithdrawalID:  uuid.New(),
		From:          "pending",
		To:            "failed",
		FailureReason: "NAO_REALIZADO",
		Refunded:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
