package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a ledger transaction. The sign of the balance mutation is
// implied by the kind; Amount is always positive.
type Kind string

const (
	KindCredit      Kind = "credit"
	KindDebit       Kind = "debit"
	KindCallCharge  Kind = "call_charge"
	KindCallEarning Kind = "call_earning"
	KindWithdrawal  Kind = "withdrawal"
)

// Sign returns +1 for kinds that increase a balance and -1 for kinds that decrease it.
func (k Kind) Sign() int64 {
	switch k {
	case KindCredit, KindCallEarning:
		return 1
	default:
		return -1
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCredit, KindDebit, KindCallCharge, KindCallEarning, KindWithdrawal:
		return true
	}
	return false
}

// Status is the lifecycle state of a transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no further status changes are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Transaction is the immutable audit record paired with every balance mutation.
type Transaction struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	Kind         Kind
	Amount       int64
	BalanceAfter int64 // account balance snapshot right after the mutation
	CallID       *uuid.UUID
	WithdrawalID *uuid.UUID
	RechargeID   *uuid.UUID
	Description  string
	Status       Status
	CreatedAt    time.Time
}

// SignedAmount returns the amount with the sign implied by its kind.
func (t *Transaction) SignedAmount() int64 {
	return t.Kind.Sign() * t.Amount
}

// NewTransactionFromData creates a Transaction from raw data (used for DB hydration or test fixtures).
// This bypasses invariants and should only be used for repository hydration or tests.
func NewTransactionFromData(
	id, accountID uuid.UUID,
	kind Kind,
	amount, balanceAfter int64,
	status Status,
	description string,
	created time.Time,
) *Transaction {
	return &Transaction{
		ID:           id,
		AccountID:    accountID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Status:       status,
		Description:  description,
		CreatedAt:    created,
	}
}
