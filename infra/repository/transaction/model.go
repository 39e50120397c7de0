package transaction

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/google/uuid"
)

// Transaction represents a ledger transaction record in the database.
type Transaction struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AccountID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Kind         string     `gorm:"type:varchar(16);not null"`
	Amount       int64      `gorm:"not null"`
	BalanceAfter int64      `gorm:"not null"`
	CallID       *uuid.UUID `gorm:"type:uuid;index"`
	WithdrawalID *uuid.UUID `gorm:"type:uuid;index"`
	RechargeID   *uuid.UUID `gorm:"type:uuid"`
	Description  string
	Status       string `gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

func mapDomainToModel(tx *ledger.Transaction) Transaction {
	return Transaction{
		ID:           tx.ID,
		AccountID:    tx.AccountID,
		Kind:         string(tx.Kind),
		Amount:       tx.Amount,
		BalanceAfter: tx.BalanceAfter,
		CallID:       tx.CallID,
		WithdrawalID: tx.WithdrawalID,
		RechargeID:   tx.RechargeID,
		Description:  tx.Description,
		Status:       string(tx.Status),
		CreatedAt:    tx.CreatedAt,
	}
}

func mapModelToDomain(m *Transaction) *ledger.Transaction {
	tx := ledger.NewTransactionFromData(
		m.ID, m.AccountID,
		ledger.Kind(m.Kind),
		m.Amount, m.BalanceAfter,
		ledger.Status(m.Status),
		m.Description,
		m.CreatedAt,
	)
	tx.CallID = m.CallID
	tx.WithdrawalID = m.WithdrawalID
	tx.RechargeID = m.RechargeID
	return tx
}
