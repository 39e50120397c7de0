package call_test

import (
	"testing"
	"time"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/call"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCharge(t *testing.T) {
	t.Parallel()
	seventy := decimal.NewFromInt(70)

	tests := []struct {
		name    string
		price   int64
		minutes int64
		want    call.Charge
		wantErr error
	}{
		{"two minutes", 199, 2, call.Charge{TotalCost: 398, StreamerEarning: 278, PlatformFee: 120}, nil},
		{"three minutes", 199, 3, call.Charge{TotalCost: 597, StreamerEarning: 417, PlatformFee: 180}, nil},
		{"zero minutes", 199, 0, call.Charge{}, nil},
		{"negative minutes", 199, -1, call.Charge{}, domain.ErrValidation},
		{"overflow", 100000, 1 << 62, call.Charge{}, domain.ErrBalanceOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := call.ComputeCharge(tt.price, tt.minutes, seventy)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCallLifecycle(t *testing.T) {
	t.Parallel()
	now := time.Now()

	c, err := call.Open("room-1", uuid.New(), uuid.New(), 199, now)
	require.NoError(t, err)
	assert.Equal(t, call.StatusActive, c.Status)

	charge, err := call.ComputeCharge(c.PricePerMinute, 2, decimal.NewFromInt(70))
	require.NoError(t, err)
	require.NoError(t, c.Complete(2, charge, decimal.NewFromInt(70), now))
	assert.True(t, c.Billed)
	assert.Equal(t, int64(398), c.TotalCost)

	require.ErrorIs(t, c.Complete(2, charge, decimal.NewFromInt(70), now), domain.ErrAlreadyFinalized)
	require.ErrorIs(t, c.CompleteUnbilled(2, now), domain.ErrAlreadyFinalized)
	require.ErrorIs(t, c.Cancel(now), domain.ErrAlreadyFinalized)
}

func TestOpen_SameParticipant(t *testing.T) {
	t.Parallel()
	id := uuid.New()
	_, err := call.Open("room", id, id, 199, time.Now())
	assert.ErrorIs(t, err, domain.ErrSameParticipant)
}

func TestNewRate(t *testing.T) {
	t.Parallel()
	_, err := call.NewRate(uuid.New(), 99, 100, 100000, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	_, err = call.NewRate(uuid.New(), 100001, 100, 100000, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	r, err := call.NewRate(uuid.New(), 199, 100, 100000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(199), r.PricePerMinute)
}
