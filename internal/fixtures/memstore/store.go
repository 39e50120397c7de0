// Package memstore is an in-memory repository.UnitOfWork for service tests.
//
// Units of work are serialized by a single mutex, which gives the same
// observable guarantees as row locks. A unit of work that returns an error
// restores the state it started from.
package memstore

import (
	"context"
	"sync"

	"github.com/amirasaad/payminute/pkg/domain/call"
	"github.com/amirasaad/payminute/pkg/domain/commission"
	"github.com/amirasaad/payminute/pkg/domain/kyc"
	"github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/amirasaad/payminute/pkg/domain/recharge"
	"github.com/amirasaad/payminute/pkg/domain/withdrawal"
	"github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
)

type state struct {
	accounts     map[uuid.UUID]ledger.Account
	transactions []ledger.Transaction
	calls        map[string]call.Call
	rates        map[uuid.UUID]call.Rate
	commissions  map[uuid.UUID]commission.Record
	withdrawals  map[uuid.UUID]withdrawal.Withdrawal
	wOrder       []uuid.UUID
	kyc          map[uuid.UUID]kyc.Record
	kycOrder     []uuid.UUID
	recharges    map[string]recharge.Recharge
}

func newState() *state {
	return &state{
		accounts:    map[uuid.UUID]ledger.Account{},
		calls:       map[string]call.Call{},
		rates:       map[uuid.UUID]call.Rate{},
		commissions: map[uuid.UUID]commission.Record{},
		withdrawals: map[uuid.UUID]withdrawal.Withdrawal{},
		kyc:         map[uuid.UUID]kyc.Record{},
		recharges:   map[string]recharge.Recharge{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	c.transactions = append([]ledger.Transaction(nil), s.transactions...)
	for k, v := range s.calls {
		c.calls[k] = v
	}
	for k, v := range s.rates {
		c.rates[k] = v
	}
	for k, v := range s.commissions {
		c.commissions[k] = v
	}
	for k, v := range s.withdrawals {
		c.withdrawals[k] = v
	}
	c.wOrder = append([]uuid.UUID(nil), s.wOrder...)
	for k, v := range s.kyc {
		c.kyc[k] = v
	}
	c.kycOrder = append([]uuid.UUID(nil), s.kycOrder...)
	for k, v := range s.recharges {
		c.recharges[k] = v
	}
	return c
}

// Store implements repository.UnitOfWork in memory.
type Store struct {
	mu     sync.Mutex
	st     *state
	faults map[string]error
}

// New returns an empty store.
func New() *Store {
	return &Store{st: newState(), faults: map[string]error{}}
}

// FailNext makes the next call of op (for example "transactions.Create")
// return err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// Do runs fn serialized with every other unit of work.
func (s *Store) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(&view{store: s, inTx: true}); err != nil {
		s.st = snapshot
		return err
	}
	// a cancelled context rolls back like a failed commit
	if err := ctx.Err(); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) root() *view { return &view{store: s} }

func (s *Store) AccountRepository() (repository.AccountRepository, error) {
	return s.root().AccountRepository()
}
func (s *Store) TransactionRepository() (repository.TransactionRepository, error) {
	return s.root().TransactionRepository()
}
func (s *Store) CallRepository() (repository.CallRepository, error) { return s.root().CallRepository() }
func (s *Store) RateRepository() (repository.RateRepository, error) { return s.root().RateRepository() }
func (s *Store) CommissionRepository() (repository.CommissionRepository, error) {
	return s.root().CommissionRepository()
}
func (s *Store) WithdrawalRepository() (repository.WithdrawalRepository, error) {
	return s.root().WithdrawalRepository()
}
func (s *Store) KYCRepository() (repository.KYCRepository, error) { return s.root().KYCRepository() }
func (s *Store) RechargeRepository() (repository.RechargeRepository, error) {
	return s.root().RechargeRepository()
}

// view is the UnitOfWork handed to repositories. Outside Do each repository
// call takes the store lock itself.
type view struct {
	store *Store
	inTx  bool
}

func (v *view) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if v.inTx {
		return fn(v)
	}
	return v.store.Do(ctx, fn)
}

func (v *view) with(op string, fn func(st *state) error) error {
	if !v.inTx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	if err := v.store.fault(op); err != nil {
		return err
	}
	return fn(v.store.st)
}

func (v *view) AccountRepository() (repository.AccountRepository, error) {
	return &accountRepo{v}, nil
}
func (v *view) TransactionRepository() (repository.TransactionRepository, error) {
	return &transactionRepo{v}, nil
}
func (v *view) CallRepository() (repository.CallRepository, error) { return &callRepo{v}, nil }
func (v *view) RateRepository() (repository.RateRepository, error) { return &rateRepo{v}, nil }
func (v *view) KYCRepository() (repository.KYCRepository, error)   { return &kycRepo{v}, nil }
func (v *view) CommissionRepository() (repository.CommissionRepository, error) {
	return &commissionRepo{v}, nil
}
func (v *view) WithdrawalRepository() (repository.WithdrawalRepository, error) {
	return &withdrawalRepo{v}, nil
}
func (v *view) RechargeRepository() (repository.RechargeRepository, error) {
	return &rechargeRepo{v}, nil
}

var (
	_ repository.UnitOfWork = (*Store)(nil)
	_ repository.UnitOfWork = (*view)(nil)
)
