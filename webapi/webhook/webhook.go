// Package webhook receives payment provider callbacks.
package webhook

import (
	"context"
	"log/slog"

	"github.com/amirasaad/payminute/pkg/metrics"
	rechargesvc "github.com/amirasaad/payminute/pkg/service/recharge"
	withdrawalsvc "github.com/amirasaad/payminute/pkg/service/withdrawal"
	"github.com/amirasaad/payminute/webapi/common"
	"github.com/gofiber/fiber/v2"
)

const (
	// RechargeSignatureHeader is set by Stripe on checkout events.
	RechargeSignatureHeader = "Stripe-Signature"
	// PayoutSignatureHeader carries the pix gateway HMAC.
	PayoutSignatureHeader = "X-Signature"
)

type handleFunc func(ctx context.Context, payload []byte, signature string) error

// Routes registers the provider callback endpoints. They are unauthenticated;
// each delivery is verified by its signature.
func Routes(app *fiber.App, recharges *rechargesvc.Service, withdrawals *withdrawalsvc.Service) {
	app.Post("/webhooks/recharge", Handler("recharge", RechargeSignatureHeader, recharges.HandleRechargeWebhook))
	app.Post("/webhooks/payout", Handler("payout", PayoutSignatureHeader, withdrawals.HandlePayoutWebhook))
}

// Handler verifies and applies one delivery. The body is copied because fiber
// reuses its buffers after the handler returns.
func Handler(provider, header string, handle handleFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := append([]byte(nil), c.Body()...)
		logger := slog.Default().With("provider", provider)
		if err := handle(c.UserContext(), payload, c.Get(header)); err != nil {
			metrics.WebhookDeliveries.WithLabelValues(provider, "rejected").Inc()
			logger.Warn("webhook rejected", "error", err)
			return common.ProblemDetailsJSON(c, "Webhook rejected", err)
		}
		metrics.WebhookDeliveries.WithLabelValues(provider, "accepted").Inc()
		return c.SendStatus(fiber.StatusOK)
	}
}
