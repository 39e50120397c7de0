package repository

import "context"

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs the given function in a transaction boundary. Every repository
// obtained from the UnitOfWork passed to fn shares that transaction, so a
// balance update and its transaction record commit or roll back together.
type UnitOfWork interface {
	// Do executes the given function within a transaction boundary.
	// If the function returns an error, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
	CallRepository() (CallRepository, error)
	RateRepository() (RateRepository, error)
	CommissionRepository() (CommissionRepository, error)
	WithdrawalRepository() (WithdrawalRepository, error)
	KYCRepository() (KYCRepository, error)
	RechargeRepository() (RechargeRepository, error)
}
