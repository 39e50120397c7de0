package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenCallRequest opens a billed call room. RoomID is generated when empty.
type OpenCallRequest struct {
	RoomID     string    `json:"room_id" validate:"omitempty,max=128"`
	ViewerID   uuid.UUID `json:"viewer_id" validate:"required"`
	StreamerID uuid.UUID `json:"streamer_id" validate:"required"`
}

// WithdrawalRequest asks to move streamer balance to a pix key.
type WithdrawalRequest struct {
	StreamerID     uuid.UUID `json:"streamer_id" validate:"required"`
	Amount         int64     `json:"amount" validate:"gt=0"`
	PixKey         string    `json:"pix_key" validate:"required,max=140"`
	PixKeyType     string    `json:"pix_key_type" validate:"required,oneof=cpf cnpj email phone random"`
	Anticipate     bool      `json:"anticipate"`
	IdempotencyKey string    `json:"idempotency_key,omitempty" validate:"omitempty,max=64"`
}

// CommissionUpdate is a partial change to a streamer's commission. Nil fields are kept.
type CommissionUpdate struct {
	BaseCommission   *decimal.Decimal `json:"base_commission,omitempty"`
	LoyaltyBonus     *decimal.Decimal `json:"loyalty_bonus,omitempty"`
	ReferralBonus    *decimal.Decimal `json:"referral_bonus,omitempty"`
	PerformanceBonus *decimal.Decimal `json:"performance_bonus,omitempty"`
	Notes            string           `json:"notes,omitempty" validate:"max=500"`
	AdminID          uuid.UUID        `json:"-" validate:"required"`
}

// KYCSubmission carries the identity data of a verification request.
type KYCSubmission struct {
	FullName         string    `json:"full_name" validate:"required,min=3,max=200"`
	CPF              string    `json:"cpf" validate:"required,max=14"`
	BirthDate        time.Time `json:"birth_date" validate:"required"`
	DocumentFrontURL string    `json:"document_front_url,omitempty" validate:"omitempty,url"`
	DocumentBackURL  string    `json:"document_back_url,omitempty" validate:"omitempty,url"`
	SelfieURL        string    `json:"selfie_url,omitempty" validate:"omitempty,url"`
}

// RechargeRequest asks the payment provider for a checkout preference.
type RechargeRequest struct {
	UserID uuid.UUID `json:"-" validate:"required"`
	Amount int64     `json:"amount" validate:"gt=0"`
	Email  string    `json:"email" validate:"required,email"`
	Name   string    `json:"name" validate:"required,max=200"`
}
