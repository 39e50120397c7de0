// Package common holds the response helpers shared by the HTTP handlers.
package common

import (
	"errors"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/gofiber/fiber/v2"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes a Response envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes an RFC 9457 problem. The status is derived from
// err unless an int is passed in opts; a string in opts overrides the detail.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, opts ...any) error {
	status := ErrorToStatusCode(err)
	pd := ProblemDetails{Type: "about:blank", Title: title, Instance: c.OriginalURL()}
	if err != nil {
		pd.Detail = err.Error()
	}
	for _, o := range opts {
		switch v := o.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		}
	}
	if status >= fiber.StatusInternalServerError && err != nil && len(opts) == 0 {
		pd.Detail = "internal error"
	}
	pd.Status = status
	return c.Status(status).JSON(pd, "application/problem+json")
}

var statusByError = []struct {
	err    error
	status int
}{
	{domain.ErrValidation, fiber.StatusBadRequest},
	{domain.ErrAmountMustBePositive, fiber.StatusBadRequest},
	{domain.ErrInvalidPixKey, fiber.StatusBadRequest},
	{domain.ErrInvalidCPF, fiber.StatusBadRequest},
	{domain.ErrInvalidPrice, fiber.StatusBadRequest},
	{domain.ErrInvalidCommissionRange, fiber.StatusBadRequest},
	{domain.ErrInvalidRechargeValue, fiber.StatusBadRequest},
	{domain.ErrCommentRequired, fiber.StatusBadRequest},
	{domain.ErrSameParticipant, fiber.StatusBadRequest},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized},
	{domain.ErrForbidden, fiber.StatusForbidden},
	{domain.ErrKYCRequired, fiber.StatusForbidden},
	{domain.ErrAccountNotFound, fiber.StatusNotFound},
	{domain.ErrRoomNotFound, fiber.StatusNotFound},
	{domain.ErrWithdrawalNotFound, fiber.StatusNotFound},
	{domain.ErrKYCNotFound, fiber.StatusNotFound},
	{domain.ErrRechargeNotFound, fiber.StatusNotFound},
	{domain.ErrNotFound, fiber.StatusNotFound},
	{domain.ErrRoomAlreadyExists, fiber.StatusConflict},
	{domain.ErrAlreadyFinalized, fiber.StatusConflict},
	{domain.ErrDuplicateKYCSubmission, fiber.StatusConflict},
	{domain.ErrInvalidTransition, fiber.StatusConflict},
	{domain.ErrHoldPeriodActive, fiber.StatusConflict},
	{domain.ErrAlreadyExists, fiber.StatusConflict},
	{domain.ErrInsufficientFunds, fiber.StatusUnprocessableEntity},
	{domain.ErrMaximumAmountExceeded, fiber.StatusUnprocessableEntity},
	{domain.ErrBalanceOverflow, fiber.StatusUnprocessableEntity},
	{domain.ErrDailyLimitReached, fiber.StatusTooManyRequests},
	{domain.ErrServiceUnavailable, fiber.StatusServiceUnavailable},
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	if err == nil {
		return fiber.StatusInternalServerError
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return fiber.StatusInternalServerError
}

// BindAndValidate parses the request body and validates it. On failure the
// problem response is already written and nil is returned.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
	}
	if err := dto.Validate(input); err != nil {
		return nil, ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
	}
	return &input, nil
}
