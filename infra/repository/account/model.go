package account

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/google/uuid"
)

// Account represents an account record in the database.
type Account struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role          string    `gorm:"type:varchar(16);not null"`
	Balance       int64     `gorm:"not null;default:0"`
	TotalEarnings int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

func mapDomainToModel(a *ledger.Account) Account {
	return Account{
		UserID:        a.UserID,
		Role:          string(a.Role),
		Balance:       a.Balance,
		TotalEarnings: a.TotalEarnings,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func mapModelToDomain(m *Account) (*ledger.Account, error) {
	return ledger.New().
		WithUserID(m.UserID).
		WithRole(ledger.Role(m.Role)).
		WithBalance(m.Balance).
		WithTotalEarnings(m.TotalEarnings).
		WithCreatedAt(m.CreatedAt).
		WithUpdatedAt(m.UpdatedAt).
		Build()
}
