package dto_test

import (
	"testing"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateWithdrawalRequest(t *testing.T) {
	t.Parallel()
	valid := dto.WithdrawalRequest{
		StreamerID: uuid.New(),
		Amount:     100000,
		PixKey:     "streamer@example.com",
		PixKeyType: "email",
	}
	assert.NoError(t, dto.Validate(valid))

	tests := []struct {
		name   string
		mutate func(r *dto.WithdrawalRequest)
	}{
		{"missing streamer", func(r *dto.WithdrawalRequest) { r.StreamerID = uuid.Nil }},
		{"zero amount", func(r *dto.WithdrawalRequest) { r.Amount = 0 }},
		{"negative amount", func(r *dto.WithdrawalRequest) { r.Amount = -5 }},
		{"unknown key type", func(r *dto.WithdrawalRequest) { r.PixKeyType = "iban" }},
		{"empty key", func(r *dto.WithdrawalRequest) { r.PixKey = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := valid
			tt.mutate(&req)
			assert.ErrorIs(t, dto.Validate(req), domain.ErrValidation)
		})
	}
}

func TestValidateRechargeRequest(t *testing.T) {
	t.Parallel()
	req := dto.RechargeRequest{UserID: uuid.New(), Amount: 5000, Email: "viewer@example.com", Name: "Viewer"}
	assert.NoError(t, dto.Validate(req))
	req.Email = "nope"
	assert.ErrorIs(t, dto.Validate(req), domain.ErrValidation)
}
