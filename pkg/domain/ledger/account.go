package ledger

import (
	"math"
	"time"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/google/uuid"
)

// Role identifies which side of the marketplace owns an account.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleStreamer Role = "streamer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleStreamer, RoleAdmin:
		return true
	}
	return false
}

// Account is the balance aggregate of a single user.
//
// Invariants:
//   - Balance is expressed in minor currency units and never drops below zero.
//   - TotalEarnings only grows, and only through call earnings.
//   - State changes happen through Apply and Earn so that callers never write Balance directly.
type Account struct {
	UserID        uuid.UUID
	Role          Role
	Balance       int64
	TotalEarnings int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	userID        uuid.UUID
	role          Role
	balance       int64
	totalEarnings int64
	createdAt     time.Time
	updatedAt     time.Time
}

// New creates a new Builder defaulting to a viewer account.
func New() *Builder {
	now := time.Now()
	return &Builder{
		role:      RoleViewer,
		createdAt: now,
		updatedAt: now,
	}
}

// WithUserID sets the owner of the account. This is a mandatory field.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

// WithRole sets the account role.
func (b *Builder) WithRole(role Role) *Builder {
	b.role = role
	return b
}

// WithBalance sets the balance. This should only be used for hydrating
// an existing account from a data store or for test setup.
func (b *Builder) WithBalance(balance int64) *Builder {
	b.balance = balance
	return b
}

// WithTotalEarnings sets the cumulative earnings, for hydration.
func (b *Builder) WithTotalEarnings(total int64) *Builder {
	b.totalEarnings = total
	return b
}

// WithCreatedAt sets the creation timestamp.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-updated timestamp.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the invariants and returns the account.
func (b *Builder) Build() (*Account, error) {
	if b.userID == uuid.Nil {
		return nil, domain.ErrValidation
	}
	if !b.role.Valid() {
		return nil, domain.ErrValidation
	}
	if b.balance < 0 || b.totalEarnings < 0 {
		return nil, domain.ErrInsufficientFunds
	}
	return &Account{
		UserID:        b.userID,
		Role:          b.role,
		Balance:       b.balance,
		TotalEarnings: b.totalEarnings,
		CreatedAt:     b.createdAt,
		UpdatedAt:     b.updatedAt,
	}, nil
}

// CanAfford reports whether the balance covers amount.
func (a *Account) CanAfford(amount int64) bool {
	return a.Balance >= amount
}

// Apply adds delta to the balance. A negative delta that would leave the
// balance below zero is rejected and the account is left untouched.
func (a *Account) Apply(delta int64, at time.Time) error {
	if delta < 0 && a.Balance+delta < 0 {
		return domain.ErrInsufficientFunds
	}
	if delta > 0 && a.Balance > math.MaxInt64-delta {
		return domain.ErrBalanceOverflow
	}
	a.Balance += delta
	a.UpdatedAt = at
	return nil
}

// Earn credits a call earning and tracks it in TotalEarnings.
func (a *Account) Earn(amount int64, at time.Time) error {
	if amount <= 0 {
		return domain.ErrAmountMustBePositive
	}
	if err := a.Apply(amount, at); err != nil {
		return err
	}
	a.TotalEarnings += amount
	return nil
}
