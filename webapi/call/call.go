// Package call exposes call rooms, streamer pricing and commissions over HTTP.
package call

import (
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/middleware"
	billingsvc "github.com/amirasaad/payminute/pkg/service/billing"
	commissionsvc "github.com/amirasaad/payminute/pkg/service/commission"
	"github.com/amirasaad/payminute/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers call and pricing routes.
//
//   - POST /calls                         : open a room as the viewer
//   - GET  /calls                         : caller's call history
//   - GET  /calls/:room                   : one room (participants and admins)
//   - POST /calls/:room/finalize          : settle the room
//   - POST /calls/:room/cancel            : close without billing
//   - GET  /streamers/:id/rate            : price per minute
//   - PUT  /streamer/rate                 : set own price (streamers)
//   - GET  /streamers/:id/commission      : commission (self or admin)
//   - PUT  /admin/commissions/:id         : change commission (admins)
func Routes(app *fiber.App, billing *billingsvc.Service, commissions *commissionsvc.Service, cfg *config.App) {
	auth := middleware.JwtProtected(cfg.Auth.Jwt)

	app.Post("/calls", auth, OpenCall(billing))
	app.Get("/calls", auth, History(billing))
	app.Get("/calls/:room", auth, GetCall(billing))
	app.Post("/calls/:room/finalize", auth, FinalizeCall(billing))
	app.Post("/calls/:room/cancel", auth, CancelCall(billing))

	app.Get("/streamers/:id/rate", GetRate(billing))
	app.Put("/streamer/rate", auth, middleware.RequireRole(middleware.RoleStreamer, middleware.RoleAdmin), SetRate(billing))
	app.Get("/streamers/:id/commission", auth, GetCommission(commissions))
	app.Put("/admin/commissions/:id", auth, middleware.RequireRole(middleware.RoleAdmin), UpdateCommission(commissions))
}

func OpenCall(svc *billingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		input, err := common.BindAndValidate[OpenCallRequest](c)
		if input == nil {
			return err
		}
		room, err := svc.OpenCall(c.UserContext(), dto.OpenCallRequest{
			RoomID:     input.RoomID,
			ViewerID:   p.UserID,
			StreamerID: input.StreamerID,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to open call", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Call opened", ToCallDto(room))
	}
}

// participant loads the room and checks the caller may act on it.
func participant(c *fiber.Ctx, svc *billingsvc.Service) (CallDto, error) {
	p, _ := middleware.CurrentUser(c)
	room, err := svc.GetCall(c.UserContext(), c.Params("room"))
	if err != nil {
		return CallDto{}, err
	}
	if !p.IsAdmin() && room.ViewerID != p.UserID && room.StreamerID != p.UserID {
		return CallDto{}, domain.ErrForbidden
	}
	return ToCallDto(room), nil
}

func GetCall(svc *billingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		room, err := participant(c, svc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get call", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Call fetched", room)
	}
}

// FinalizeCall settles the room for the reported duration.
func FinalizeCall(svc *billingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := participant(c, svc); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to finalize call", err)
		}
		input, err := common.BindAndValidate[FinalizeRequest](c)
		if input == nil {
			return err
		}
		st, err := svc.FinalizeCall(c.UserContext(), c.Params("room"), input.DurationMinutes)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to finalize call", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Call finalized", ToSettlementDto(st))
	}
}

func CancelCall(svc *billingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := participant(c, svc); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to cancel call", err)
		}
		room, err := svc.CancelCall(c.UserContext(), c.Params("room"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to cancel call", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Call cancelled", ToCallDto(room))
	}
}

func History(svc *billingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		calls, err := svc.History(c.UserContext(), p.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list calls", err)
		}
		out := make([]CallDto, 0, len(calls))
		for _, room := range calls {
			out = append(out, ToCallDto(room))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Calls fetched", out)
	}
}

func GetRate(svc *billingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid streamer ID", err, fiber.StatusBadRequest)
		}
		price, err := svc.GetRate(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get rate", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rate fetched", RateDto{StreamerID: id, PricePerMinute: price})
	}
}

func SetRate(svc *billingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		input, err := common.BindAndValidate[SetRateRequest](c)
		if input == nil {
			return err
		}
		rate, err := svc.SetRate(c.UserContext(), p.UserID, input.PricePerMinute)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to set rate", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rate updated", RateDto{StreamerID: rate.StreamerID, PricePerMinute: rate.PricePerMinute})
	}
}

func GetCommission(svc *commissionsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid streamer ID", err, fiber.StatusBadRequest)
		}
		if !p.IsAdmin() && p.UserID != id {
			return common.ProblemDetailsJSON(c, "Forbidden", domain.ErrForbidden)
		}
		rec, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get commission", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Commission fetched", ToCommissionDto(rec))
	}
}

func UpdateCommission(svc *commissionsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid streamer ID", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[CommissionUpdateRequest](c)
		if input == nil {
			return err
		}
		rec, err := svc.UpdateCommission(c.UserContext(), id, dto.CommissionUpdate{
			BaseCommission:   input.BaseCommission,
			LoyaltyBonus:     input.LoyaltyBonus,
			ReferralBonus:    input.ReferralBonus,
			PerformanceBonus: input.PerformanceBonus,
			Notes:            input.Notes,
			AdminID:          p.UserID,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update commission", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Commission updated", ToCommissionDto(rec))
	}
}
