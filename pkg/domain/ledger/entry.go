package ledger

import (
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/google/uuid"
)

// Entry describes one balance mutation and the audit record that goes with it.
//
// Delta is applied to the balance; Amount is what the transaction log shows.
// They differ only for anticipated withdrawals, where the full requested amount
// leaves the balance while the log records the net payout.
type Entry struct {
	AccountID    uuid.UUID
	Kind         Kind
	Delta        int64
	Amount       int64
	CallID       *uuid.UUID
	WithdrawalID *uuid.UUID
	RechargeID   *uuid.UUID
	Description  string
	Status       Status
}

// NewEntry builds an entry whose delta follows the sign of kind.
func NewEntry(accountID uuid.UUID, kind Kind, amount int64, description string) Entry {
	return Entry{
		AccountID:   accountID,
		Kind:        kind,
		Delta:       kind.Sign() * amount,
		Amount:      amount,
		Description: description,
		Status:      StatusCompleted,
	}
}

// Validate checks the entry before any state is touched.
func (e Entry) Validate() error {
	if e.AccountID == uuid.Nil || !e.Kind.Valid() {
		return domain.ErrValidation
	}
	if e.Amount <= 0 || e.Delta == 0 {
		return domain.ErrAmountMustBePositive
	}
	if (e.Delta > 0) != (e.Kind.Sign() > 0) {
		return domain.ErrValidation
	}
	return nil
}
