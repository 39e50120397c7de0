package kyc

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain/kyc"
	"github.com/google/uuid"
)

type ReviewRequest struct {
	Comment string `json:"comment" validate:"max=500"`
}

type KYCDto struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	FullName      string     `json:"full_name"`
	CPF           string     `json:"cpf"`
	Status        string     `json:"status"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewComment string     `json:"review_comment,omitempty"`
}

// ToKYCDto maps a record, showing only the last two CPF digits.
func ToKYCDto(r *kyc.Record) KYCDto {
	return KYCDto{
		ID:            r.ID,
		UserID:        r.UserID,
		FullName:      r.FullName,
		CPF:           maskCPF(r.CPF),
		Status:        string(r.Status),
		SubmittedAt:   r.SubmittedAt,
		ExpiresAt:     r.ExpiresAt,
		ReviewedAt:    r.ReviewedAt,
		ReviewComment: r.ReviewComment,
	}
}

func maskCPF(cpf string) string {
	if len(cpf) < 2 {
		return cpf
	}
	masked := make([]byte, len(cpf))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(cpf)-2:], cpf[len(cpf)-2:])
	return string(masked)
}

type ExpireDto struct {
	Expired int `json:"expired"`
}
