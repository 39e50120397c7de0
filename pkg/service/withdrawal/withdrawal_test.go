package withdrawal_test

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/amirasaad/payminute/infra/eventbus"
	"github.com/amirasaad/payminute/internal/fixtures"
	"github.com/amirasaad/payminute/internal/fixtures/memstore"
	"github.com/amirasaad/payminute/internal/fixtures/mocks"
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/events"
	domainledger "github.com/amirasaad/payminute/pkg/domain/ledger"
	domainwithdrawal "github.com/amirasaad/payminute/pkg/domain/withdrawal"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/provider/payment"
	"github.com/amirasaad/payminute/pkg/service/kyc"
	"github.com/amirasaad/payminute/pkg/service/ledger"
	"github.com/amirasaad/payminute/pkg/service/withdrawal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WithdrawalTestSuite struct {
	suite.Suite
	ctx    context.Context
	clock  *fixtures.Clock
	store  *memstore.Store
	bus    *eventbus.MemoryEventBus
	payout *mocks.PayoutProvider
	cfg    *config.App
	svc    *withdrawal.Service
	ledger *ledger.Service
	kyc    *kyc.Service

	streamer uuid.UUID
}

func (s *WithdrawalTestSuite) SetupTest() {
	s.ctx = context.Background()
	// 09:00 in Sao Paulo
	s.clock = fixtures.NewClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	s.store = memstore.New()
	s.bus = eventbus.NewWithMemory(fixtures.Logger())
	s.payout = mocks.NewPayoutProvider(s.T())
	s.cfg = fixtures.Config()
	s.rebuild()
	s.streamer = uuid.New()
}

func (s *WithdrawalTestSuite) rebuild() {
	deps := config.Deps{
		Uow:            s.store,
		EventBus:       s.bus,
		PayoutProvider: s.payout,
		Logger:         fixtures.Logger(),
		Config:         s.cfg,
	}
	s.svc = withdrawal.NewService(deps, withdrawal.WithClock(s.clock.Now))
	s.ledger = ledger.NewService(deps, ledger.WithClock(s.clock.Now))
	s.kyc = kyc.NewService(deps, kyc.WithClock(s.clock.Now))
}

func (s *WithdrawalTestSuite) fund(amount int64) {
	_, err := s.ledger.OpenAccount(s.ctx, s.streamer, domainledger.RoleStreamer)
	s.Require().NoError(err)
	_, err = s.ledger.Adjust(s.ctx, s.streamer, amount, "earnings")
	s.Require().NoError(err)
}

func (s *WithdrawalTestSuite) approveKYC() {
	rec, err := s.kyc.Submit(s.ctx, s.streamer, dto.KYCSubmission{
		FullName:  "Joana Streamer",
		CPF:       "52998224725",
		BirthDate: time.Date(1998, 2, 3, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	_, err = s.kyc.Approve(s.ctx, rec.ID, uuid.New(), "")
	s.Require().NoError(err)
}

func (s *WithdrawalTestSuite) balance() int64 {
	b, err := s.ledger.GetBalance(s.ctx, s.streamer)
	s.Require().NoError(err)
	return b
}

func (s *WithdrawalTestSuite) request(amount int64, anticipate bool) (*domainwithdrawal.Withdrawal, error) {
	return s.svc.RequestWithdrawal(s.ctx, dto.WithdrawalRequest{
		StreamerID: s.streamer,
		Amount:     amount,
		PixKey:     "joana@example.com",
		PixKeyType: "email",
		Anticipate: anticipate,
	})
}

func (s *WithdrawalTestSuite) withdrawalTx(w *domainwithdrawal.Withdrawal) *domainledger.Transaction {
	txs, err := s.ledger.ListTransactions(s.ctx, s.streamer)
	s.Require().NoError(err)
	for _, tx := range txs {
		if tx.Kind == domainledger.KindWithdrawal && tx.WithdrawalID != nil && *tx.WithdrawalID == w.ID {
			return tx
		}
	}
	s.FailNow("withdrawal transaction not found")
	return nil
}

func (s *WithdrawalTestSuite) TestRequest_Anticipated() {
	s.fund(200000)
	s.approveKYC()

	w, err := s.request(100000, true)
	s.Require().NoError(err)
	s.Equal(int64(5000), w.Fee)
	s.Equal(int64(95000), w.NetAmount)
	s.Equal(domainwithdrawal.StatusPending, w.Status)
	s.True(w.IsAnticipated)
	s.Equal(s.clock.Now().Add(30*24*time.Hour), w.AvailableDate)
	s.Equal(int64(100000), s.balance())

	tx := s.withdrawalTx(w)
	s.Equal(int64(95000), tx.Amount)
	s.Equal(domainledger.StatusPending, tx.Status)
	s.Equal(int64(100000), tx.BalanceAfter)

	published := s.bus.Published()
	s.Require().NotEmpty(published)
	evt, ok := published[len(published)-1].(*events.WithdrawalRequested)
	s.Require().True(ok)
	s.Equal(int64(5000), evt.Fee)

	discrepancies, err := s.ledger.Reconcile(s.ctx)
	s.Require().NoError(err)
	s.Empty(discrepancies)
}

func (s *WithdrawalTestSuite) TestRequest_Standard() {
	s.fund(50000)
	s.approveKYC()

	w, err := s.request(20000, false)
	s.Require().NoError(err)
	s.Zero(w.Fee)
	s.Equal(int64(20000), w.NetAmount)
	s.Equal(int64(30000), s.balance())
}

func (s *WithdrawalTestSuite) TestRequest_MaximumExceeded() {
	s.fund(2000000)
	s.approveKYC()

	_, err := s.request(1500000, false)
	s.ErrorIs(err, domain.ErrMaximumAmountExceeded)
	s.Equal(int64(2000000), s.balance())
	list, err := s.svc.List(s.ctx, s.streamer)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *WithdrawalTestSuite) TestRequest_KYCRequired() {
	s.fund(500000)

	_, err := s.request(1000, false)
	s.ErrorIs(err, domain.ErrKYCRequired)

	s.approveKYC()
	s.clock.Advance(366 * 24 * time.Hour)
	_, err = s.request(1000, false)
	s.ErrorIs(err, domain.ErrKYCRequired)
	s.Equal(int64(500000), s.balance())
}

func (s *WithdrawalTestSuite) TestRequest_InsufficientBalance() {
	s.approveKYC()
	_, err := s.request(1000, false)
	s.ErrorIs(err, domain.ErrInsufficientFunds, "no account yet")

	s.fund(999)
	_, err = s.request(1000, false)
	s.ErrorIs(err, domain.ErrInsufficientFunds)
}

func (s *WithdrawalTestSuite) TestRequest_DailyLimitFollowsLocalDay() {
	s.fund(100000)
	s.approveKYC()

	for i := 0; i < 3; i++ {
		_, err := s.request(1000, false)
		s.Require().NoError(err, "request %d", i+1)
	}
	_, err := s.request(1000, false)
	s.ErrorIs(err, domain.ErrDailyLimitReached)

	// 23:30 in Sao Paulo, same local day
	s.clock.Advance(14*time.Hour + 30*time.Minute)
	_, err = s.request(1000, false)
	s.ErrorIs(err, domain.ErrDailyLimitReached)

	// 00:30 next local day
	s.clock.Advance(time.Hour)
	_, err = s.request(1000, false)
	s.NoError(err)
}

func (s *WithdrawalTestSuite) TestRequest_SettledWithdrawalsDoNotCountTowardsLimit() {
	s.fund(100000)
	s.approveKYC()

	for i := 0; i < 3; i++ {
		w, err := s.request(1000, false)
		s.Require().NoError(err)
		if i == 0 {
			_, err = s.svc.UpdateStatus(s.ctx, w.ID, domainwithdrawal.StatusFailed, "", "bank offline")
			s.Require().NoError(err)
		}
	}
	_, err := s.request(1000, false)
	s.NoError(err)
}

func (s *WithdrawalTestSuite) TestRequest_Idempotent() {
	s.fund(10000)
	s.approveKYC()
	req := dto.WithdrawalRequest{
		StreamerID:     s.streamer,
		Amount:         4000,
		PixKey:         "529.982.247-25",
		PixKeyType:     "cpf",
		IdempotencyKey: "req-1",
	}

	first, err := s.svc.RequestWithdrawal(s.ctx, req)
	s.Require().NoError(err)
	second, err := s.svc.RequestWithdrawal(s.ctx, req)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal("52998224725", second.PixKey)
	s.Equal(int64(6000), s.balance())
}

func (s *WithdrawalTestSuite) TestRequest_ReplayTakesAccountLockBeforeLookup() {
	s.fund(10000)
	s.approveKYC()
	req := dto.WithdrawalRequest{
		StreamerID:     s.streamer,
		Amount:         4000,
		PixKey:         "joana@example.com",
		PixKeyType:     "email",
		IdempotencyKey: "req-lock",
	}
	first, err := s.svc.RequestWithdrawal(s.ctx, req)
	s.Require().NoError(err)

	lockErr := errors.New("lock wait timeout")
	s.store.FailNext("accounts.Get", lockErr)
	_, err = s.svc.RequestWithdrawal(s.ctx, req)
	s.ErrorIs(err, lockErr)

	replay, err := s.svc.RequestWithdrawal(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(first.ID, replay.ID)
	s.Equal(int64(6000), s.balance())
}

func (s *WithdrawalTestSuite) TestRequest_InvalidInput() {
	s.fund(10000)
	s.approveKYC()

	_, err := s.svc.RequestWithdrawal(s.ctx, dto.WithdrawalRequest{
		StreamerID: s.streamer, Amount: 1000, PixKey: "not-an-email", PixKeyType: "email",
	})
	s.ErrorIs(err, domain.ErrInvalidPixKey)

	_, err = s.svc.RequestWithdrawal(s.ctx, dto.WithdrawalRequest{
		StreamerID: s.streamer, Amount: 0, PixKey: "a@b.co", PixKeyType: "email",
	})
	s.ErrorIs(err, domain.ErrValidation)
	s.Equal(int64(10000), s.balance())
}

func (s *WithdrawalTestSuite) TestCheckEligibility_Reasons() {
	verdict, err := s.svc.CheckEligibility(s.ctx, s.streamer, 1000)
	s.Require().NoError(err)
	s.False(verdict.Eligible)
	s.Equal("KYC required", verdict.Reason)

	s.approveKYC()
	s.fund(2000000)
	verdict, err = s.svc.CheckEligibility(s.ctx, s.streamer, 1500000)
	s.Require().NoError(err)
	s.Equal("Maximum withdrawal exceeded", verdict.Reason)
	s.ErrorIs(verdict.Err, domain.ErrMaximumAmountExceeded)

	verdict, err = s.svc.CheckEligibility(s.ctx, s.streamer, 3000000)
	s.Require().NoError(err)
	s.Equal("Insufficient balance", verdict.Reason)

	verdict, err = s.svc.CheckEligibility(s.ctx, s.streamer, 1000)
	s.Require().NoError(err)
	s.True(verdict.Eligible)
	s.Empty(verdict.Reason)
}

func (s *WithdrawalTestSuite) TestUpdateStatus_CompletedIsFinal() {
	s.fund(10000)
	s.approveKYC()
	w, err := s.request(5000, false)
	s.Require().NoError(err)

	done, err := s.svc.UpdateStatus(s.ctx, w.ID, domainwithdrawal.StatusCompleted, "tr_1", "")
	s.Require().NoError(err)
	s.Equal(domainwithdrawal.StatusCompleted, done.Status)
	s.Require().NotNil(done.ProcessedAt)
	s.Equal(domainledger.StatusCompleted, s.withdrawalTx(w).Status)

	again, err := s.svc.UpdateStatus(s.ctx, w.ID, domainwithdrawal.StatusCompleted, "tr_1", "")
	s.Require().NoError(err)
	s.Equal(done.ProcessedAt, again.ProcessedAt)

	_, err = s.svc.UpdateStatus(s.ctx, w.ID, domainwithdrawal.StatusFailed, "", "late failure")
	s.ErrorIs(err, domain.ErrInvalidTransition)
	_, err = s.svc.UpdateStatus(s.ctx, w.ID, domainwithdrawal.StatusProcessing, "", "")
	s.ErrorIs(err, domain.ErrInvalidTransition)
	s.Equal(int64(5000), s.balance())

	_, err = s.svc.UpdateStatus(s.ctx, uuid.New(), domainwithdrawal.StatusCompleted, "", "")
	s.ErrorIs(err, domain.ErrWithdrawalNotFound)
}

func (s *WithdrawalTestSuite) TestUpdateStatus_FailedRefundsOnce() {
	s.fund(10000)
	s.approveKYC()
	w, err := s.request(5000, true)
	s.Require().NoError(err)
	s.Equal(int64(5000), s.balance())

	failed, err := s.svc.UpdateStatus(s.ctx, w.ID, domainwithdrawal.StatusFailed, "", "invalid key at bank")
	s.Require().NoError(err)
	s.Equal("invalid key at bank", failed.FailureReason)
	s.Equal(int64(10000), s.balance())
	s.Equal(domainledger.StatusFailed, s.withdrawalTx(w).Status)

	_, err = s.svc.UpdateStatus(s.ctx, w.ID, domainwithdrawal.StatusFailed, "", "invalid key at bank")
	s.Require().NoError(err)
	s.Equal(int64(10000), s.balance())

	var changed *events.WithdrawalStatusChanged
	for _, e := range s.bus.Published() {
		if c, ok := e.(*events.WithdrawalStatusChanged); ok {
			s.Nil(changed, "status change emitted once")
			changed = c
		}
	}
	s.Require().NotNil(changed)
	s.True(changed.Refunded)
}

func (s *WithdrawalTestSuite) TestUpdateStatus_NoRefundWhenDisabled() {
	s.cfg.Withdrawal.RefundOnFailure = false
	s.rebuild()
	s.fund(10000)
	s.approveKYC()
	w, err := s.request(5000, false)
	s.Require().NoError(err)

	_, err = s.svc.UpdateStatus(s.ctx, w.ID, domainwithdrawal.StatusFailed, "", "manual")
	s.Require().NoError(err)
	s.Equal(int64(5000), s.balance())
}

func (s *WithdrawalTestSuite) TestApprove_HoldPeriod() {
	s.fund(10000)
	s.approveKYC()
	w, err := s.request(5000, false)
	s.Require().NoError(err)

	_, err = s.svc.Approve(s.ctx, w.ID, uuid.New())
	s.ErrorIs(err, domain.ErrHoldPeriodActive)

	s.clock.Advance(30 * 24 * time.Hour)
	s.payout.On("InitiatePayout", mock.Anything, mock.MatchedBy(func(p *payment.InitiatePayoutParams) bool {
		return p.WithdrawalID == w.ID && p.Amount == 5000 && p.PixKey == "joana@example.com"
	})).Return(&payment.InitiatePayoutResponse{
		TransferID: "tr_hold",
		Status:     payment.PaymentProcessing,
		RawStatus:  "EM_PROCESSAMENTO",
	}, nil).Once()

	approved, err := s.svc.Approve(s.ctx, w.ID, uuid.New())
	s.Require().NoError(err)
	s.Equal(domainwithdrawal.StatusProcessing, approved.Status)
	s.Equal("tr_hold", approved.ProviderReference)
}

func (s *WithdrawalTestSuite) TestApprove_AnticipatedThenCallbacks() {
	s.fund(200000)
	s.approveKYC()
	w, err := s.request(100000, true)
	s.Require().NoError(err)

	s.payout.On("InitiatePayout", mock.Anything, mock.MatchedBy(func(p *payment.InitiatePayoutParams) bool {
		return p.Amount == 95000 && p.Currency == "BRL"
	})).Return(&payment.InitiatePayoutResponse{TransferID: "tr_42", Status: payment.PaymentPending}, nil).Once()

	approved, err := s.svc.Approve(s.ctx, w.ID, uuid.New())
	s.Require().NoError(err)
	s.Equal(domainwithdrawal.StatusProcessing, approved.Status)
	s.Equal("tr_42", approved.ProviderReference)
	s.Require().NotNil(approved.ReviewedBy)

	_, err = s.svc.Approve(s.ctx, w.ID, uuid.New())
	s.ErrorIs(err, domain.ErrInvalidTransition, "already sent to the provider")

	done, err := s.svc.HandlePayoutCallback(s.ctx, "tr_42", "CONCLUIDA")
	s.Require().NoError(err)
	s.Equal(domainwithdrawal.StatusCompleted, done.Status)

	stale, err := s.svc.HandlePayoutCallback(s.ctx, "tr_42", "EM_PROCESSAMENTO")
	s.Require().NoError(err)
	s.Equal(domainwithdrawal.StatusCompleted, stale.Status)

	_, err = s.svc.HandlePayoutCallback(s.ctx, "tr_unknown", "CONCLUIDA")
	s.ErrorIs(err, domain.ErrWithdrawalNotFound)
	s.Equal(int64(100000), s.balance())
}

func (s *WithdrawalTestSuite) TestApprove_ProviderFailureCanBeRetried() {
	s.fund(10000)
	s.approveKYC()
	w, err := s.request(5000, true)
	s.Require().NoError(err)

	s.payout.On("InitiatePayout", mock.Anything, mock.Anything).Return(nil, errors.New("gateway timeout")).Once()
	pending, err := s.svc.Approve(s.ctx, w.ID, uuid.New())
	s.ErrorIs(err, domain.ErrServiceUnavailable)
	s.Equal(domainwithdrawal.StatusProcessing, pending.Status)
	s.Empty(pending.ProviderReference)

	s.payout.On("InitiatePayout", mock.Anything, mock.Anything).
		Return(&payment.InitiatePayoutResponse{TransferID: "tr_retry", Status: payment.PaymentCompleted}, nil).Once()
	done, err := s.svc.Approve(s.ctx, w.ID, uuid.New())
	s.Require().NoError(err)
	s.Equal(domainwithdrawal.StatusCompleted, done.Status)
	s.Equal("tr_retry", done.ProviderReference)
}

func (s *WithdrawalTestSuite) TestReject() {
	s.fund(10000)
	s.approveKYC()
	w, err := s.request(5000, false)
	s.Require().NoError(err)

	_, err = s.svc.Reject(s.ctx, w.ID, uuid.New(), "")
	s.ErrorIs(err, domain.ErrCommentRequired)

	rejected, err := s.svc.Reject(s.ctx, w.ID, uuid.New(), "suspicious activity")
	s.Require().NoError(err)
	s.Equal(domainwithdrawal.StatusFailed, rejected.Status)
	s.Equal(int64(10000), s.balance())

	_, err = s.svc.Reject(s.ctx, w.ID, uuid.New(), "again")
	s.ErrorIs(err, domain.ErrInvalidTransition)
}

func (s *WithdrawalTestSuite) TestHandlePayoutWebhook_DropsDuplicates() {
	s.fund(10000)
	s.approveKYC()
	w, err := s.request(5000, true)
	s.Require().NoError(err)
	_, err = s.svc.UpdateStatus(s.ctx, w.ID, domainwithdrawal.StatusProcessing, "tr_7", "")
	s.Require().NoError(err)

	payload := []byte(`{"id":"evt_1"}`)
	s.payout.On("HandleWebhook", mock.Anything, payload, "sig").Return(&payment.PaymentEvent{
		ID:        "evt_1",
		Reference: "tr_7",
		Status:    payment.PaymentFailed,
		RawStatus: "NAO_REALIZADO",
	}, nil).Twice()

	s.Require().NoError(s.svc.HandlePayoutWebhook(s.ctx, payload, "sig"))
	s.Require().NoError(s.svc.HandlePayoutWebhook(s.ctx, payload, "sig"))

	got, err := s.svc.Get(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(domainwithdrawal.StatusFailed, got.Status)
	s.Equal("NAO_REALIZADO", got.FailureReason)
	s.Equal(int64(10000), s.balance())
}

func TestWithdrawalTestSuite(t *testing.T) {
	suite.Run(t, new(WithdrawalTestSuite))
}
