package repository

import (
	"context"
	"time"

	"github.com/amirasaad/payminute/pkg/domain/call"
	"github.com/amirasaad/payminute/pkg/domain/commission"
	"github.com/amirasaad/payminute/pkg/domain/kyc"
	"github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/amirasaad/payminute/pkg/domain/recharge"
	"github.com/amirasaad/payminute/pkg/domain/withdrawal"
	"github.com/google/uuid"
)

// AccountRepository defines data access for ledger accounts.
// GetForUpdate must lock the row until the surrounding unit of work ends.
type AccountRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*ledger.Account, error)
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*ledger.Account, error)
	Create(ctx context.Context, acc *ledger.Account) error
	Update(ctx context.Context, acc *ledger.Account) error
	List(ctx context.Context) ([]*ledger.Account, error)
}

// TransactionRepository defines data access for the append-only transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx *ledger.Transaction) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Transaction, error)
	ListByCall(ctx context.Context, callID uuid.UUID) ([]*ledger.Transaction, error)
	// UpdateStatusByWithdrawal changes the status of the withdrawal-kind
	// transactions linked to withdrawalID. Other kinds are immutable.
	UpdateStatusByWithdrawal(ctx context.Context, withdrawalID uuid.UUID, status ledger.Status) error
}

// CallRepository defines data access for call settlement records.
type CallRepository interface {
	Create(ctx context.Context, c *call.Call) error
	GetByRoomID(ctx context.Context, roomID string) (*call.Call, error)
	GetByRoomIDForUpdate(ctx context.Context, roomID string) (*call.Call, error)
	Update(ctx context.Context, c *call.Call) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*call.Call, error)
}

// RateRepository defines data access for streamer prices.
type RateRepository interface {
	Get(ctx context.Context, streamerID uuid.UUID) (*call.Rate, error)
	Upsert(ctx context.Context, rate *call.Rate) error
}

// CommissionRepository defines data access for commission records.
type CommissionRepository interface {
	Get(ctx context.Context, streamerID uuid.UUID) (*commission.Record, error)
	Create(ctx context.Context, rec *commission.Record) error
	Update(ctx context.Context, rec *commission.Record) error
}

// WithdrawalRepository defines data access for withdrawal records.
type WithdrawalRepository interface {
	Create(ctx context.Context, w *withdrawal.Withdrawal) error
	Get(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error)
	GetByProviderReference(ctx context.Context, ref string) (*withdrawal.Withdrawal, error)
	GetByIdempotencyKey(ctx context.Context, streamerID uuid.UUID, key string) (*withdrawal.Withdrawal, error)
	Update(ctx context.Context, w *withdrawal.Withdrawal) error
	// CountPendingSince counts the streamer's pending withdrawals requested at or after since.
	CountPendingSince(ctx context.Context, streamerID uuid.UUID, since time.Time) (int64, error)
	ListByStreamer(ctx context.Context, streamerID uuid.UUID) ([]*withdrawal.Withdrawal, error)
	// SumAnticipationFees returns the total fee of the streamer's anticipated withdrawals.
	SumAnticipationFees(ctx context.Context, streamerID uuid.UUID) (int64, error)
}

// KYCRepository defines data access for KYC submissions.
type KYCRepository interface {
	Create(ctx context.Context, rec *kyc.Record) error
	Get(ctx context.Context, id uuid.UUID) (*kyc.Record, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*kyc.Record, error)
	// LatestByUser returns the most recent submission of the user.
	LatestByUser(ctx context.Context, userID uuid.UUID) (*kyc.Record, error)
	Update(ctx context.Context, rec *kyc.Record) error
	ListExpired(ctx context.Context, now time.Time) ([]*kyc.Record, error)
}

// RechargeRepository defines data access for recharges.
type RechargeRepository interface {
	Create(ctx context.Context, r *recharge.Recharge) error
	GetByPreferenceIDForUpdate(ctx context.Context, preferenceID string) (*recharge.Recharge, error)
	Update(ctx context.Context, r *recharge.Recharge) error
}
