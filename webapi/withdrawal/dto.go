package withdrawal

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain/withdrawal"
	withdrawalsvc "github.com/amirasaad/payminute/pkg/service/withdrawal"
	"github.com/google/uuid"
)

type WithdrawalRequest struct {
	Amount         int64  `json:"amount" validate:"gt=0"`
	PixKey         string `json:"pix_key" validate:"required,max=140"`
	PixKeyType     string `json:"pix_key_type" validate:"required,oneof=cpf cnpj email phone random"`
	Anticipate     bool   `json:"anticipate"`
	IdempotencyKey string `json:"idempotency_key,omitempty" validate:"omitempty,max=64"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type WithdrawalDto struct {
	ID                uuid.UUID  `json:"id"`
	StreamerID        uuid.UUID  `json:"streamer_id"`
	Amount            int64      `json:"amount"`
	Fee               int64      `json:"fee"`
	NetAmount         int64      `json:"net_amount"`
	PixKey            string     `json:"pix_key"`
	PixKeyType        string     `json:"pix_key_type"`
	Status            string     `json:"status"`
	IsAnticipated     bool       `json:"is_anticipated"`
	AvailableDate     time.Time  `json:"available_date"`
	RequestedAt       time.Time  `json:"requested_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	ProviderReference string     `json:"provider_reference,omitempty"`
	FailureReason     string     `json:"failure_reason,omitempty"`
}

func ToWithdrawalDto(w *withdrawal.Withdrawal) WithdrawalDto {
	return WithdrawalDto{
		ID:                w.ID,
		StreamerID:        w.StreamerID,
		Amount:            w.Amount,
		Fee:               w.Fee,
		NetAmount:         w.NetAmount,
		PixKey:            w.PixKey,
		PixKeyType:        string(w.PixKeyType),
		Status:            string(w.Status),
		IsAnticipated:     w.IsAnticipated,
		AvailableDate:     w.AvailableDate,
		RequestedAt:       w.RequestedAt,
		ProcessedAt:       w.ProcessedAt,
		ProviderReference: w.ProviderReference,
		FailureReason:     w.FailureReason,
	}
}

type EligibilityDto struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

func ToEligibilityDto(e withdrawalsvc.Eligibility) EligibilityDto {
	return EligibilityDto{Eligible: e.Eligible, Reason: e.Reason}
}
