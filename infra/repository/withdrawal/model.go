package withdrawal

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain/withdrawal"
	"github.com/google/uuid"
)

// Withdrawal represents a withdrawal record in the database.
type Withdrawal struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	StreamerID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount            int64     `gorm:"not null"`
	Fee               int64     `gorm:"not null;default:0"`
	NetAmount         int64     `gorm:"not null"`
	PixKey            string    `gorm:"type:varchar(140);not null"`
	PixKeyType        string    `gorm:"type:varchar(16);not null"`
	Status            string    `gorm:"type:varchar(16);not null;index"`
	IsAnticipated     bool      `gorm:"not null;default:false"`
	EarningDate       time.Time
	AvailableDate     time.Time
	RequestedAt       time.Time `gorm:"not null"`
	ProcessedAt       *time.Time
	ProviderReference *string `gorm:"type:varchar(128);uniqueIndex"`
	FailureReason     string
	IdempotencyKey    *string    `gorm:"type:varchar(64)"`
	ReviewedBy        *uuid.UUID `gorm:"type:uuid"`
}

// TableName specifies the table name for the Withdrawal model.
func (Withdrawal) TableName() string {
	return "withdrawals"
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func mapDomainToModel(w *withdrawal.Withdrawal) Withdrawal {
	return Withdrawal{
		ID:                w.ID,
		StreamerID:        w.StreamerID,
		Amount:            w.Amount,
		Fee:               w.Fee,
		NetAmount:         w.NetAmount,
		PixKey:            w.PixKey,
		PixKeyType:        string(w.PixKeyType),
		Status:            string(w.Status),
		IsAnticipated:     w.IsAnticipated,
		EarningDate:       w.EarningDate,
		AvailableDate:     w.AvailableDate,
		RequestedAt:       w.RequestedAt,
		ProcessedAt:       w.ProcessedAt,
		ProviderReference: nullable(w.ProviderReference),
		FailureReason:     w.FailureReason,
		IdempotencyKey:    nullable(w.IdempotencyKey),
		ReviewedBy:        w.ReviewedBy,
	}
}

func mapModelToDomain(m *Withdrawal) *withdrawal.Withdrawal {
	return &withdrawal.Withdrawal{
		ID:                m.ID,
		StreamerID:        m.StreamerID,
		Amount:            m.Amount,
		Fee:               m.Fee,
		NetAmount:         m.NetAmount,
		PixKey:            m.PixKey,
		PixKeyType:        withdrawal.PixKeyType(m.PixKeyType),
		Status:            withdrawal.Status(m.Status),
		IsAnticipated:     m.IsAnticipated,
		EarningDate:       m.EarningDate,
		AvailableDate:     m.AvailableDate,
		RequestedAt:       m.RequestedAt,
		ProcessedAt:       m.ProcessedAt,
		ProviderReference: deref(m.ProviderReference),
		FailureReason:     m.FailureReason,
		IdempotencyKey:    deref(m.IdempotencyKey),
		ReviewedBy:        m.ReviewedBy,
	}
}
