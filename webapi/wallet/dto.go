package wallet

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/amirasaad/payminute/pkg/domain/recharge"
	ledgersvc "github.com/amirasaad/payminute/pkg/service/ledger"
	"github.com/google/uuid"
)

// AdjustRequest is an administrative credit (delta > 0) or debit (delta < 0).
type AdjustRequest struct {
	Delta       int64  `json:"delta" validate:"ne=0"`
	Description string `json:"description" validate:"required,max=255"`
}

// RechargeRequest asks for a checkout preference.
type RechargeRequest struct {
	Amount int64  `json:"amount" validate:"gt=0"`
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required,max=200"`
}

type BalanceDto struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int64     `json:"balance"`
}

type TransactionDto struct {
	ID           uuid.UUID  `json:"id"`
	Kind         string     `json:"kind"`
	Amount       int64      `json:"amount"`
	BalanceAfter int64      `json:"balance_after"`
	Status       string     `json:"status"`
	Description  string     `json:"description,omitempty"`
	CallID       *uuid.UUID `json:"call_id,omitempty"`
	WithdrawalID *uuid.UUID `json:"withdrawal_id,omitempty"`
	RechargeID   *uuid.UUID `json:"recharge_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ToTransactionDto(t *ledger.Transaction) TransactionDto {
	return TransactionDto{
		ID:           t.ID,
		Kind:         string(t.Kind),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Status:       string(t.Status),
		Description:  t.Description,
		CallID:       t.CallID,
		WithdrawalID: t.WithdrawalID,
		RechargeID:   t.RechargeID,
		CreatedAt:    t.CreatedAt,
	}
}

type DiscrepancyDto struct {
	AccountID uuid.UUID `json:"account_id"`
	Stored    int64     `json:"stored"`
	Expected  int64     `json:"expected"`
}

func ToDiscrepancyDtos(in []ledgersvc.Discrepancy) []DiscrepancyDto {
	out := make([]DiscrepancyDto, 0, len(in))
	for _, d := range in {
		out = append(out, DiscrepancyDto{AccountID: d.AccountID, Stored: d.Stored, Expected: d.Expected})
	}
	return out
}

type RechargeDto struct {
	ID           uuid.UUID `json:"id"`
	Amount       int64     `json:"amount"`
	PreferenceID string    `json:"preference_id"`
	CheckoutURL  string    `json:"checkout_url"`
	Status       string    `json:"status"`
}

func ToRechargeDto(r *recharge.Recharge) RechargeDto {
	return RechargeDto{
		ID:           r.ID,
		Amount:       r.Amount,
		PreferenceID: r.PreferenceID,
		CheckoutURL:  r.CheckoutURL,
		Status:       string(r.Status),
	}
}
