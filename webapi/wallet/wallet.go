// Package wallet exposes balances, the transaction log, recharges and the
// ledger back-office operations.
package wallet

import (
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/amirasaad/payminute/pkg/middleware"
	ledgersvc "github.com/amirasaad/payminute/pkg/service/ledger"
	rechargesvc "github.com/amirasaad/payminute/pkg/service/recharge"
	"github.com/amirasaad/payminute/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers wallet routes.
//
//   - GET  /wallet/balance
//   - GET  /wallet/transactions
//   - POST /wallet/recharges
//   - GET  /admin/accounts/:id/balance
//   - GET  /admin/accounts/:id/transactions
//   - POST /admin/accounts/:id/adjust
//   - GET  /admin/reconcile
func Routes(app *fiber.App, ledgerSvc *ledgersvc.Service, rechargeSvc *rechargesvc.Service, cfg *config.App) {
	auth := middleware.JwtProtected(cfg.Auth.Jwt)
	admin := middleware.RequireRole(middleware.RoleAdmin)

	app.Get("/wallet/balance", auth, MyBalance(ledgerSvc))
	app.Get("/wallet/transactions", auth, MyTransactions(ledgerSvc))
	app.Post("/wallet/recharges", auth, RequestRecharge(rechargeSvc))

	app.Get("/admin/accounts/:id/balance", auth, admin, AccountBalance(ledgerSvc))
	app.Get("/admin/accounts/:id/transactions", auth, admin, AccountTransactions(ledgerSvc))
	app.Post("/admin/accounts/:id/adjust", auth, admin, Adjust(ledgerSvc))
	app.Get("/admin/reconcile", auth, admin, Reconcile(ledgerSvc))
}

func balance(c *fiber.Ctx, svc *ledgersvc.Service, userID uuid.UUID) error {
	bal, err := svc.GetBalance(c.UserContext(), userID)
	if err != nil {
		return common.ProblemDetailsJSON(c, "Failed to get balance", err)
	}
	return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", BalanceDto{UserID: userID, Balance: bal})
}

func transactions(c *fiber.Ctx, svc *ledgersvc.Service, userID uuid.UUID) error {
	txs, err := svc.ListTransactions(c.UserContext(), userID)
	if err != nil {
		return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
	}
	out := make([]TransactionDto, 0, len(txs))
	for _, t := range txs {
		out = append(out, ToTransactionDto(t))
	}
	return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", out)
}

func MyBalance(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		return balance(c, svc, p.UserID)
	}
}

func MyTransactions(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		return transactions(c, svc, p.UserID)
	}
}

func AccountBalance(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, fiber.StatusBadRequest)
		}
		return balance(c, svc, id)
	}
}

func AccountTransactions(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, fiber.StatusBadRequest)
		}
		return transactions(c, svc, id)
	}
}

// Adjust applies an administrative correction to an account.
func Adjust(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[AdjustRequest](c)
		if input == nil {
			return err
		}
		tx, err := svc.Adjust(c.UserContext(), id, input.Delta, input.Description)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to adjust balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance adjusted", ToTransactionDto(tx))
	}
}

// Reconcile reports accounts whose stored balance disagrees with the log.
func Reconcile(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.Reconcile(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to reconcile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Reconciliation finished", ToDiscrepancyDtos(out))
	}
}

// RequestRecharge creates a checkout preference for the caller.
func RequestRecharge(svc *rechargesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, _ := middleware.CurrentUser(c)
		input, err := common.BindAndValidate[RechargeRequest](c)
		if input == nil {
			return err
		}
		r, err := svc.RequestRecharge(c.UserContext(), dto.RechargeRequest{
			UserID: p.UserID,
			Amount: input.Amount,
			Email:  input.Email,
			Name:   input.Name,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create recharge", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Recharge created", ToRechargeDto(r))
	}
}
