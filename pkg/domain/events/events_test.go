package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/amirasaad/payminute/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoriesCoverEveryType(t *testing.T) {
	t.Parallel()
	f := events.Factories()
	for _, et := range []events.EventType{
		events.EventTypeCallFinalized,
		events.EventTypeWithdrawalRequested,
		events.EventTypeWithdrawalStatusChanged,
		events.EventTypeRechargeCompleted,
		events.EventTypeKYCReviewed,
	} {
		ctor, ok := f[et.String()]
		require.True(t, ok, et)
		assert.Equal(t, et.String(), ctor().Type())
	}
}

func TestFactoryDecodesPayload(t *testing.T) {
	t.Parallel()
	in := &events.CallFinalized{CallID: uuid.New(), RoomID: "room-1", TotalCost: 398, Billed: true, Timestamp: time.Now().UTC()}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	out := events.Factories()[in.Type()]()
	require.NoError(t, json.Unmarshal(data, out))
	got, ok := out.(*events.CallFinalized)
	require.True(t, ok)
	assert.Equal(t, in.RoomID, got.RoomID)
	assert.Equal(t, in.TotalCost, got.TotalCost)
}
