package infra

import (
	"context"

	"github.com/amirasaad/payminute/infra/repository/account"
	"github.com/amirasaad/payminute/infra/repository/call"
	"github.com/amirasaad/payminute/infra/repository/commission"
	"github.com/amirasaad/payminute/infra/repository/kyc"
	"github.com/amirasaad/payminute/infra/repository/recharge"
	"github.com/amirasaad/payminute/infra/repository/transaction"
	"github.com/amirasaad/payminute/infra/repository/withdrawal"
	"github.com/amirasaad/payminute/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one abstraction.
// Repositories obtained inside Do share the transaction's session.
type UoW struct {
	db *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn in a database transaction. A returned error or a panic rolls it back.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: tx})
	})
}

func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return account.New(u.db), nil
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return transaction.New(u.db), nil
}

func (u *UoW) CallRepository() (repository.CallRepository, error) {
	return call.New(u.db), nil
}

func (u *UoW) RateRepository() (repository.RateRepository, error) {
	return call.NewRateRepository(u.db), nil
}

func (u *UoW) CommissionRepository() (repository.CommissionRepository, error) {
	return commission.New(u.db), nil
}

func (u *UoW) WithdrawalRepository() (repository.WithdrawalRepository, error) {
	return withdrawal.New(u.db), nil
}

func (u *UoW) KYCRepository() (repository.KYCRepository, error) {
	return kyc.New(u.db), nil
}

func (u *UoW) RechargeRepository() (repository.RechargeRepository, error) {
	return recharge.New(u.db), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
