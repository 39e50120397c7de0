// Package stripepayment creates recharge checkouts with Stripe and verifies
// their webhooks.
package stripepayment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/provider/payment"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripePaymentProvider implements payment.RechargeProvider using Stripe Checkout.
type StripePaymentProvider struct {
	client          *stripe.Client
	cfg             *config.Stripe
	logger          *slog.Logger
	webhookHandlers map[stripe.EventType]webhookHandler
}

type webhookHandler func(stripe.Event, *slog.Logger) (*payment.PaymentEvent, error)

// New creates a new StripePaymentProvider from cfg.
func New(cfg *config.Stripe, logger *slog.Logger) *StripePaymentProvider {
	provider := &StripePaymentProvider{
		client: stripe.NewClient(cfg.ApiKey),
		cfg:    cfg,
		logger: logger,
	}
	provider.initializeWebhookHandlers()
	return provider
}

func (s *StripePaymentProvider) initializeWebhookHandlers() {
	s.webhookHandlers = map[stripe.EventType]webhookHandler{
		stripe.EventTypeCheckoutSessionCompleted:             s.handleCheckoutSession,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded: s.handleCheckoutSession,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed:    s.handleAsyncPaymentFailed,
		stripe.EventTypeCheckoutSessionExpired:               s.handleCheckoutSession,
	}
}

// CreatePreference creates a BRL checkout session accepting card and pix.
func (s *StripePaymentProvider) CreatePreference(
	ctx context.Context,
	params *payment.PreferenceParams,
) (*payment.Preference, error) {
	log := s.logger.With("handler", "stripe.CreatePreference", "recharge_id", params.RechargeID)
	currency := strings.ToLower(params.Currency)
	if currency == "" {
		currency = "brl"
	}
	metadata := map[string]string{
		"recharge_id": params.RechargeID.String(),
		"user_id":     params.UserID.String(),
		"amount":      fmt.Sprintf("%d", params.Amount),
	}

	sessionParams := &stripe.CheckoutSessionCreateParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card", "pix"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(s.cfg.SuccessPath),
		CancelURL:          stripe.String(s.cfg.CancelPath),
		ClientReferenceID:  stripe.String(params.RechargeID.String()),
		Metadata:           metadata,
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String("payminute balance recharge"),
				},
				UnitAmount: stripe.Int64(params.Amount),
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if params.Email != "" {
		sessionParams.CustomerEmail = stripe.String(params.Email)
	}

	session, err := s.client.V1CheckoutSessions.Create(ctx, sessionParams)
	if err != nil {
		log.Error("failed to create checkout session", "error", err)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	log.Info("✅ Created checkout session", "session_id", session.ID)
	return &payment.Preference{
		PreferenceID: session.ID,
		CheckoutURL:  session.URL,
		Status:       payment.PaymentPending,
	}, nil
}

// HandleWebhook verifies the Stripe-Signature header and translates the
// checkout event into a PaymentEvent referencing the session id.
func (s *StripePaymentProvider) HandleWebhook(
	_ context.Context,
	payload []byte,
	signature string,
) (*payment.PaymentEvent, error) {
	log := s.logger.With("method", "HandleWebhook")
	if s.cfg.SigningSecret == "" {
		log.Error("webhook signing secret not configured")
		return nil, domain.ErrServiceUnavailable
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.SigningSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Warn("Failed to verify webhook signature", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	log.Info("Received webhook event", "type", event.Type, "id", event.ID)

	handler, ok := s.webhookHandlers[event.Type]
	if !ok {
		log.Warn("No handler found for event type", "type", event.Type)
		return nil, fmt.Errorf("%w: unhandled event type %s", domain.ErrValidation, event.Type)
	}
	return handler(event, log)
}

func decodeSession(event stripe.Event) (*stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrValidation, event.Type, err)
	}
	return &session, nil
}

// handleCheckoutSession maps completed, async-succeeded and expired sessions.
// A completed session whose pix payment has not cleared stays pending.
func (s *StripePaymentProvider) handleCheckoutSession(event stripe.Event, log *slog.Logger) (*payment.PaymentEvent, error) {
	session, err := decodeSession(event)
	if err != nil {
		return nil, err
	}
	raw := string(session.PaymentStatus)
	if event.Type == stripe.EventTypeCheckoutSessionExpired {
		raw = string(stripe.CheckoutSessionStatusExpired)
	}
	log.Info("checkout session event", "session_id", session.ID, "raw_status", raw)
	return &payment.PaymentEvent{
		ID:        event.ID,
		Reference: session.ID,
		Status:    payment.MapStatus(raw),
		RawStatus: raw,
		Amount:    session.AmountTotal,
		Metadata:  session.Metadata,
	}, nil
}

func (s *StripePaymentProvider) handleAsyncPaymentFailed(event stripe.Event, log *slog.Logger) (*payment.PaymentEvent, error) {
	session, err := decodeSession(event)
	if err != nil {
		return nil, err
	}
	log.Warn("async checkout payment failed", "session_id", session.ID)
	return &payment.PaymentEvent{
		ID:        event.ID,
		Reference: session.ID,
		Status:    payment.PaymentFailed,
		RawStatus: "payment_failed",
		Amount:    session.AmountTotal,
		Metadata:  session.Metadata,
	}, nil
}

var _ payment.RechargeProvider = (*StripePaymentProvider)(nil)
