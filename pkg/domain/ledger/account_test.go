package ledger_test

import (
	"math"
	"testing"
	"time"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	acc, err := ledger.New().WithUserID(uuid.New()).Build()
	require.NoError(err)
	assert.Equal(t, ledger.RoleViewer, acc.Role)
	assert.Zero(t, acc.Balance)

	_, err = ledger.New().Build()
	require.ErrorIs(err, domain.ErrValidation)

	_, err = ledger.New().WithUserID(uuid.New()).WithRole("guest").Build()
	require.ErrorIs(err, domain.ErrValidation)

	_, err = ledger.New().WithUserID(uuid.New()).WithBalance(-1).Build()
	require.ErrorIs(err, domain.ErrInsufficientFunds)
}

func TestApply(t *testing.T) {
	t.Parallel()
	now := time.Now()

	t.Run("debit within balance", func(t *testing.T) {
		t.Parallel()
		acc, err := ledger.New().WithUserID(uuid.New()).WithBalance(10000).Build()
		require.NoError(t, err)
		require.NoError(t, acc.Apply(-398, now))
		assert.Equal(t, int64(9602), acc.Balance)
	})

	t.Run("debit to exactly zero", func(t *testing.T) {
		t.Parallel()
		acc, err := ledger.New().WithUserID(uuid.New()).WithBalance(500).Build()
		require.NoError(t, err)
		require.NoError(t, acc.Apply(-500, now))
		assert.Zero(t, acc.Balance)
	})

	t.Run("overdraft rejected and untouched", func(t *testing.T) {
		t.Parallel()
		acc, err := ledger.New().WithUserID(uuid.New()).WithBalance(500).Build()
		require.NoError(t, err)
		require.ErrorIs(t, acc.Apply(-597, now), domain.ErrInsufficientFunds)
		assert.Equal(t, int64(500), acc.Balance)
	})

	t.Run("overflow rejected", func(t *testing.T) {
		t.Parallel()
		acc, err := ledger.New().WithUserID(uuid.New()).WithBalance(math.MaxInt64 - 1).Build()
		require.NoError(t, err)
		require.ErrorIs(t, acc.Apply(2, now), domain.ErrBalanceOverflow)
	})
}

func TestEarn(t *testing.T) {
	t.Parallel()
	acc, err := ledger.New().WithUserID(uuid.New()).WithRole(ledger.RoleStreamer).WithBalance(10000).Build()
	require.NoError(t, err)

	require.NoError(t, acc.Earn(278, time.Now()))
	assert.Equal(t, int64(10278), acc.Balance)
	assert.Equal(t, int64(278), acc.TotalEarnings)

	require.ErrorIs(t, acc.Earn(0, time.Now()), domain.ErrAmountMustBePositive)
}

func TestEntryValidate(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	tests := []struct {
		name    string
		entry   ledger.Entry
		wantErr error
	}{
		{"credit", ledger.NewEntry(id, ledger.KindCredit, 100, "recharge"), nil},
		{"call charge", ledger.NewEntry(id, ledger.KindCallCharge, 398, "call"), nil},
		{"zero amount", ledger.NewEntry(id, ledger.KindDebit, 0, ""), domain.ErrAmountMustBePositive},
		{"nil account", ledger.NewEntry(uuid.Nil, ledger.KindCredit, 1, ""), domain.ErrValidation},
		{"unknown kind", ledger.NewEntry(id, ledger.Kind("bonus"), 1, ""), domain.ErrValidation},
		{"sign mismatch", ledger.Entry{AccountID: id, Kind: ledger.KindWithdrawal, Delta: 100, Amount: 95}, domain.ErrValidation},
		{"anticipated withdrawal", ledger.Entry{AccountID: id, Kind: ledger.KindWithdrawal, Delta: -100000, Amount: 95000}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.entry.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
