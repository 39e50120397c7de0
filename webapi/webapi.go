// Package webapi provides the HTTP surface of the settlement core.
// It is organized into sub-packages per area:
// - wallet: balances, ledger entries, recharges and reconciliation
// - call: call rooms, streamer pricing and commissions
// - withdrawal: payouts and their admin review
// - kyc: identity verification
// - webhook: payment provider callbacks
package webapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	_ "github.com/amirasaad/payminute/docs"
	"github.com/amirasaad/payminute/pkg/app"
	"github.com/amirasaad/payminute/pkg/metrics"
	callweb "github.com/amirasaad/payminute/webapi/call"
	"github.com/amirasaad/payminute/webapi/common"
	kycweb "github.com/amirasaad/payminute/webapi/kyc"
	walletweb "github.com/amirasaad/payminute/webapi/wallet"
	webhookweb "github.com/amirasaad/payminute/webapi/webhook"
	withdrawalweb "github.com/amirasaad/payminute/webapi/withdrawal"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return common.ProblemDetailsJSON(c, fe.Message, err, fe.Code, fe.Message)
			}
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		PersistAuthorization: true,
	}))
	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Uses X-Forwarded-For header when behind a proxy
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        a.Config.RateLimit.MaxRequests,
		Expiration: a.Config.RateLimit.Window,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/webhooks/")
		},
		KeyGenerator: clientIP,
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())
	fiberApp.Use(requestMetrics)

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Payminute API is running! 🚀")
	})

	walletweb.Routes(fiberApp, a.LedgerService, a.RechargeService, a.Config)
	callweb.Routes(fiberApp, a.BillingService, a.CommissionService, a.Config)
	withdrawalweb.Routes(fiberApp, a.WithdrawalService, a.Config)
	kycweb.Routes(fiberApp, a.KYCService, a.Config)
	webhookweb.Routes(fiberApp, a.RechargeService, a.WithdrawalService)
	return fiberApp
}

// clientIP takes the first X-Forwarded-For hop, then X-Real-IP, then the peer.
func clientIP(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
			return strings.TrimSpace(forwardedFor[:commaIndex])
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}

// requestMetrics records count and latency per route template.
func requestMetrics(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	path := c.Route().Path
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if err != nil && errors.As(err, &fe) {
		status = fe.Code
	}
	metrics.HttpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
	metrics.ResponseTimeHistogram.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
	return err
}
