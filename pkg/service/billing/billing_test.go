package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/payminute/infra/eventbus"
	"github.com/amirasaad/payminute/internal/fixtures"
	"github.com/amirasaad/payminute/internal/fixtures/memstore"
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/call"
	"github.com/amirasaad/payminute/pkg/domain/events"
	domainledger "github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/service/billing"
	"github.com/amirasaad/payminute/pkg/service/commission"
	"github.com/amirasaad/payminute/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BillingTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *memstore.Store
	bus        *eventbus.MemoryEventBus
	cfg        *config.App
	deps       config.Deps
	svc        *billing.Service
	ledger     *ledger.Service
	commission *commission.Service

	viewer, streamer uuid.UUID
}

func (s *BillingTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memstore.New()
	s.bus = eventbus.NewWithMemory(fixtures.Logger())
	s.cfg = fixtures.Config()
	s.rebuild()
	s.viewer, s.streamer = uuid.New(), uuid.New()
}

func (s *BillingTestSuite) rebuild() {
	clock := fixtures.NewClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	s.deps = config.Deps{Uow: s.store, EventBus: s.bus, Logger: fixtures.Logger(), Config: s.cfg}
	s.svc = billing.NewService(s.deps, billing.WithClock(clock.Now))
	s.ledger = ledger.NewService(s.deps)
	s.commission = commission.NewService(s.deps)
}

func (s *BillingTestSuite) seed(id uuid.UUID, role domainledger.Role, amount int64) {
	_, err := s.ledger.OpenAccount(s.ctx, id, role)
	s.Require().NoError(err)
	if amount > 0 {
		_, err = s.ledger.Adjust(s.ctx, id, amount, "seed")
		s.Require().NoError(err)
	}
}

func (s *BillingTestSuite) balance(id uuid.UUID) int64 {
	b, err := s.ledger.GetBalance(s.ctx, id)
	s.Require().NoError(err)
	return b
}

func (s *BillingTestSuite) open(roomID string) *call.Call {
	c, err := s.svc.OpenCall(s.ctx, dto.OpenCallRequest{RoomID: roomID, ViewerID: s.viewer, StreamerID: s.streamer})
	s.Require().NoError(err)
	return c
}

func (s *BillingTestSuite) callTransactions(roomID string) []*domainledger.Transaction {
	c, err := s.svc.GetCall(s.ctx, roomID)
	s.Require().NoError(err)
	repo, err := s.store.TransactionRepository()
	s.Require().NoError(err)
	txs, err := repo.ListByCall(s.ctx, c.ID)
	s.Require().NoError(err)
	return txs
}

func (s *BillingTestSuite) TestFinalize_BilledCall() {
	s.seed(s.viewer, domainledger.RoleViewer, 10000)
	s.seed(s.streamer, domainledger.RoleStreamer, 10000)
	_, err := s.svc.SetRate(s.ctx, s.streamer, 199)
	s.Require().NoError(err)
	s.open("room-1")

	st, err := s.svc.FinalizeCall(s.ctx, "room-1", 2)
	s.Require().NoError(err)
	s.True(st.Billed)
	s.Equal(int64(398), st.TotalCost)
	s.Equal(int64(278), st.StreamerEarning)
	s.Equal(int64(120), st.PlatformFee)
	s.Equal(int64(9602), s.balance(s.viewer))
	s.Equal(int64(10278), s.balance(s.streamer))

	txs := s.callTransactions("room-1")
	s.Require().Len(txs, 2)
	kinds := map[domainledger.Kind]int64{}
	for _, tx := range txs {
		kinds[tx.Kind] = tx.Amount
	}
	s.Equal(int64(398), kinds[domainledger.KindCallCharge])
	s.Equal(int64(278), kinds[domainledger.KindCallEarning])

	published := s.bus.Published()
	s.Require().Len(published, 1)
	evt, ok := published[0].(*events.CallFinalized)
	s.Require().True(ok)
	s.True(evt.Billed)
	s.Equal("room-1", evt.RoomID)
}

func (s *BillingTestSuite) TestFinalize_InsufficientBalanceCompletesUnbilled() {
	s.seed(s.viewer, domainledger.RoleViewer, 500)
	s.seed(s.streamer, domainledger.RoleStreamer, 0)
	s.open("room-2")

	st, err := s.svc.FinalizeCall(s.ctx, "room-2", 3)
	s.Require().NoError(err)
	s.False(st.Billed)
	s.Zero(st.TotalCost)
	s.Equal(int64(500), s.balance(s.viewer))
	s.Zero(s.balance(s.streamer))
	s.Empty(s.callTransactions("room-2"))

	c, err := s.svc.GetCall(s.ctx, "room-2")
	s.Require().NoError(err)
	s.Equal(call.StatusCompleted, c.Status)
	s.Equal(int64(3), c.DurationMinutes)
}

func (s *BillingTestSuite) TestFinalize_Twice() {
	s.seed(s.viewer, domainledger.RoleViewer, 10000)
	s.open("room-3")

	_, err := s.svc.FinalizeCall(s.ctx, "room-3", 2)
	s.Require().NoError(err)
	_, err = s.svc.FinalizeCall(s.ctx, "room-3", 2)
	s.ErrorIs(err, domain.ErrAlreadyFinalized)

	s.Equal(int64(9602), s.balance(s.viewer))
	s.Len(s.callTransactions("room-3"), 2)
}

func (s *BillingTestSuite) TestFinalize_ConcurrentDeliveriesBillOnce() {
	s.seed(s.viewer, domainledger.RoleViewer, 10000)
	s.open("room-4")

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.FinalizeCall(s.ctx, "room-4", 2)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, domain.ErrAlreadyFinalized)
	}
	s.Equal(1, succeeded)
	s.Equal(int64(9602), s.balance(s.viewer))
}

func (s *BillingTestSuite) TestFinalize_InputErrors() {
	_, err := s.svc.FinalizeCall(s.ctx, "missing", 2)
	s.ErrorIs(err, domain.ErrRoomNotFound)

	s.seed(s.viewer, domainledger.RoleViewer, 1000)
	s.open("room-5")
	_, err = s.svc.FinalizeCall(s.ctx, "room-5", -1)
	s.ErrorIs(err, domain.ErrValidation)

	st, err := s.svc.FinalizeCall(s.ctx, "room-5", 0)
	s.Require().NoError(err)
	s.False(st.Billed)
	s.Equal(int64(1000), s.balance(s.viewer))
}

func (s *BillingTestSuite) TestFinalize_UsesCommissionRecord() {
	s.seed(s.viewer, domainledger.RoleViewer, 10000)
	base := decimal.NewFromInt(85)
	_, err := s.commission.UpdateCommission(s.ctx, s.streamer, dto.CommissionUpdate{BaseCommission: &base, AdminID: uuid.New()})
	s.Require().NoError(err)
	s.open("room-6")

	st, err := s.svc.FinalizeCall(s.ctx, "room-6", 2)
	s.Require().NoError(err)
	s.Equal(int64(338), st.StreamerEarning)
	s.True(st.CommissionRate.Equal(base))
}

func (s *BillingTestSuite) TestFinalize_FixedCommissionMode() {
	s.cfg.Billing.UseCommissionRecords = false
	s.rebuild()
	s.seed(s.viewer, domainledger.RoleViewer, 10000)
	base := decimal.NewFromInt(85)
	_, err := s.commission.UpdateCommission(s.ctx, s.streamer, dto.CommissionUpdate{BaseCommission: &base, AdminID: uuid.New()})
	s.Require().NoError(err)
	s.open("room-7")

	st, err := s.svc.FinalizeCall(s.ctx, "room-7", 2)
	s.Require().NoError(err)
	s.Equal(int64(278), st.StreamerEarning)
}

func (s *BillingTestSuite) TestFinalize_ReadsCurrentPrice() {
	s.seed(s.viewer, domainledger.RoleViewer, 10000)
	c := s.open("room-8")
	s.Equal(int64(199), c.PricePerMinute)

	_, err := s.svc.SetRate(s.ctx, s.streamer, 300)
	s.Require().NoError(err)
	st, err := s.svc.FinalizeCall(s.ctx, "room-8", 2)
	s.Require().NoError(err)
	s.Equal(int64(600), st.TotalCost)
}

func (s *BillingTestSuite) TestOpenCall_Rules() {
	_, err := s.svc.OpenCall(s.ctx, dto.OpenCallRequest{ViewerID: s.viewer, StreamerID: s.viewer})
	s.ErrorIs(err, domain.ErrSameParticipant)

	_, err = s.svc.OpenCall(s.ctx, dto.OpenCallRequest{ViewerID: s.viewer, StreamerID: s.streamer})
	s.ErrorIs(err, domain.ErrInsufficientFunds)

	_, err = s.svc.OpenCall(s.ctx, dto.OpenCallRequest{StreamerID: s.streamer})
	s.ErrorIs(err, domain.ErrValidation)

	s.seed(s.viewer, domainledger.RoleViewer, 199)
	c, err := s.svc.OpenCall(s.ctx, dto.OpenCallRequest{ViewerID: s.viewer, StreamerID: s.streamer})
	s.Require().NoError(err)
	s.NotEmpty(c.RoomID)
	s.Equal(call.StatusActive, c.Status)

	_, err = s.svc.OpenCall(s.ctx, dto.OpenCallRequest{RoomID: c.RoomID, ViewerID: s.viewer, StreamerID: s.streamer})
	s.ErrorIs(err, domain.ErrRoomAlreadyExists)

	history, err := s.svc.History(s.ctx, s.streamer)
	s.Require().NoError(err)
	s.Len(history, 1)
}

func (s *BillingTestSuite) TestCancelCall() {
	s.seed(s.viewer, domainledger.RoleViewer, 1000)
	s.open("room-9")

	c, err := s.svc.CancelCall(s.ctx, "room-9")
	s.Require().NoError(err)
	s.Equal(call.StatusCancelled, c.Status)

	_, err = s.svc.FinalizeCall(s.ctx, "room-9", 1)
	s.ErrorIs(err, domain.ErrAlreadyFinalized)
	s.Equal(int64(1000), s.balance(s.viewer))

	_, err = s.svc.CancelCall(s.ctx, "nope")
	s.ErrorIs(err, domain.ErrRoomNotFound)
}

func TestBillingTestSuite(t *testing.T) {
	suite.Run(t, new(BillingTestSuite))
}

func TestSetRate_Bounds(t *testing.T) {
	svc := billing.NewService(config.Deps{Uow: memstore.New(), Logger: fixtures.Logger(), Config: fixtures.Config()})
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.SetRate(ctx, id, 99)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	_, err = svc.SetRate(ctx, id, 100001)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.SetRate(ctx, id, 250)
	require.NoError(t, err)
	price, err := svc.GetRate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(250), price)

	price, err = svc.GetRate(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(199), price)
}
