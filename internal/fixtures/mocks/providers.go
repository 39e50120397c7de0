// Package mocks holds testify mocks of the payment providers and the event bus.
package mocks

import (
	"context"

	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/amirasaad/payminute/pkg/eventbus"
	"github.com/amirasaad/payminute/pkg/provider/payment"
	"github.com/stretchr/testify/mock"
)

type cleaner interface {
	mock.TestingT
	Cleanup(func())
}

// PayoutProvider is a mock of payment.PayoutProvider.
type PayoutProvider struct {
	mock.Mock
}

// NewPayoutProvider registers AssertExpectations on test cleanup.
func NewPayoutProvider(t cleaner) *PayoutProvider {
	m := &PayoutProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *PayoutProvider) InitiatePayout(ctx context.Context, params *payment.InitiatePayoutParams) (*payment.InitiatePayoutResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.InitiatePayoutResponse), args.Error(1)
}

func (m *PayoutProvider) HandleWebhook(ctx context.Context, payload []byte, signature string) (*payment.PaymentEvent, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PaymentEvent), args.Error(1)
}

// RechargeProvider is a mock of payment.RechargeProvider.
type RechargeProvider struct {
	mock.Mock
}

// NewRechargeProvider registers AssertExpectations on test cleanup.
func NewRechargeProvider(t cleaner) *RechargeProvider {
	m := &RechargeProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *RechargeProvider) CreatePreference(ctx context.Context, params *payment.PreferenceParams) (*payment.Preference, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Preference), args.Error(1)
}

func (m *RechargeProvider) HandleWebhook(ctx context.Context, payload []byte, signature string) (*payment.PaymentEvent, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PaymentEvent), args.Error(1)
}

// Bus is a mock of eventbus.Bus.
type Bus struct {
	mock.Mock
}

// NewBus registers AssertExpectations on test cleanup.
func NewBus(t cleaner) *Bus {
	m := &Bus{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Bus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	m.Called(eventType, handler)
}

func (m *Bus) Emit(ctx context.Context, event events.Event) error {
	return m.Called(ctx, event).Error(0)
}

var (
	_ payment.PayoutProvider   = (*PayoutProvider)(nil)
	_ payment.RechargeProvider = (*RechargeProvider)(nil)
	_ eventbus.Bus             = (*Bus)(nil)
)
