// Package withdrawal exposes streamer payouts and their admin review over HTTP.
package withdrawal

import (
	"strconv"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/middleware"
	withdrawalsvc "github.com/amirasaad/payminute/pkg/service/withdrawal"
	"github.com/amirasaad/payminute/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IdempotencyHeader may carry the request key instead of the JSON body.
const IdempotencyHeader = "Idempotency-Key"

// Routes registers withdrawal routes.
func Routes(app *fiber.App, svc *withdrawalsvc.Service, cfg *config.App) {
	auth := middleware.JwtProtected(cfg.Auth.Jwt)
	streamer := middleware.RequireRole(middleware.RoleStreamer)
	admin := middleware.RequireRole(middleware.RoleAdmin)

	app.Get("/withdrawals/eligibility", auth, streamer, Eligibility(svc))
	app.Post("/withdrawals", auth, streamer, Request(svc))
	app.Get("/withdrawals", auth, streamer, List(svc))
	app.Get("/withdrawals/:id", auth, Get(svc))
	app.Post("/admin/withdrawals/:id/approve", auth, admin, Approve(svc))
	app.Post("/admin/withdrawals/:id/reject", auth, admin, Reject(svc))
}

// Eligibility answers whether the caller could withdraw ?amount= right now.
func Eligibility(svc *withdrawalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
		if err != nil || amount <= 0 {
			return common.ProblemDetailsJSON(c, "Invalid amount", domain.ErrAmountMustBePositive, fiber.StatusBadRequest)
		}
		e, err := svc.CheckEligibility(c.UserContext(), p.UserID, amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to check eligibility", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Eligibility checked", ToEligibilityDto(e))
	}
}

// Request creates a withdrawal for the caller.
func Request(svc *withdrawalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		input, err := common.BindAndValidate[WithdrawalRequest](c)
		if input == nil {
			return err
		}
		key := input.IdempotencyKey
		if key == "" {
			key = c.Get(IdempotencyHeader)
		}
		w, err := svc.RequestWithdrawal(c.UserContext(), dto.WithdrawalRequest{
			StreamerID:     p.UserID,
			Amount:         input.Amount,
			PixKey:         input.PixKey,
			PixKeyType:     input.PixKeyType,
			Anticipate:     input.Anticipate,
			IdempotencyKey: key,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to request withdrawal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusAccepted, "Withdrawal requested", ToWithdrawalDto(w))
	}
}

func List(svc *withdrawalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		ws, err := svc.List(c.UserContext(), p.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list withdrawals", err)
		}
		out := make([]WithdrawalDto, 0, len(ws))
		for _, w := range ws {
			out = append(out, ToWithdrawalDto(w))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawals fetched", out)
	}
}

func Get(svc *withdrawalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid withdrawal ID", err, fiber.StatusBadRequest)
		}
		w, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get withdrawal", err)
		}
		if !p.IsAdmin() && w.StreamerID != p.UserID {
			return common.ProblemDetailsJSON(c, "Failed to get withdrawal", domain.ErrWithdrawalNotFound)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal fetched", ToWithdrawalDto(w))
	}
}

func Approve(svc *withdrawalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid withdrawal ID", err, fiber.StatusBadRequest)
		}
		w, err := svc.Approve(c.UserContext(), id, p.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to approve withdrawal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal approved", ToWithdrawalDto(w))
	}
}

func Reject(svc *withdrawalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid withdrawal ID", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[RejectRequest](c)
		if input == nil {
			return err
		}
		w, err := svc.Reject(c.UserContext(), id, p.UserID, input.Reason)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to reject withdrawal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal rejected", ToWithdrawalDto(w))
	}
}
