// Package kyc exposes identity verification submissions and reviews over HTTP.
package kyc

import (
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/middleware"
	kycsvc "github.com/amirasaad/payminute/pkg/service/kyc"
	"github.com/amirasaad/payminute/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers KYC routes.
func Routes(app *fiber.App, svc *kycsvc.Service, cfg *config.App) {
	auth := middleware.JwtProtected(cfg.Auth.Jwt)
	admin := middleware.RequireRole(middleware.RoleAdmin)

	app.Post("/kyc", auth, Submit(svc))
	app.Get("/kyc", auth, Status(svc))
	app.Post("/admin/kyc/expire", auth, admin, Expire(svc))
	app.Post("/admin/kyc/:id/approve", auth, admin, Approve(svc))
	app.Post("/admin/kyc/:id/reject", auth, admin, Reject(svc))
}

func Submit(svc *kycsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		input, err := common.BindAndValidate[dto.KYCSubmission](c)
		if input == nil {
			return err
		}
		rec, err := svc.Submit(c.UserContext(), p.UserID, *input)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to submit KYC", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "KYC submitted", ToKYCDto(rec))
	}
}

func Status(svc *kycsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		rec, err := svc.Status(c.UserContext(), p.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get KYC status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC status fetched", ToKYCDto(rec))
	}
}

func Approve(svc *kycsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid KYC ID", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[ReviewRequest](c)
		if input == nil {
			return err
		}
		rec, err := svc.Approve(c.UserContext(), id, p.UserID, input.Comment)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to approve KYC", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC approved", ToKYCDto(rec))
	}
}

func Reject(svc *kycsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid KYC ID", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[ReviewRequest](c)
		if input == nil {
			return err
		}
		rec, err := svc.Reject(c.UserContext(), id, p.UserID, input.Comment)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to reject KYC", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC rejected", ToKYCDto(rec))
	}
}

// Expire runs the expiry sweep on demand.
func Expire(svc *kycsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.ExpireStale(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to expire KYC records", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC records expired", ExpireDto{Expired: n})
	}
}
