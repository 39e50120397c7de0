package commission

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain/commission"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Commission represents a streamer's revenue share record in the database.
type Commission struct {
	StreamerID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BaseCommission   decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	LoyaltyBonus     decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	ReferralBonus    decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	PerformanceBonus decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	TotalCommission  decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Notes            string
	UpdatedBy        *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for the Commission model.
func (Commission) TableName() string {
	return "commissions"
}

func mapDomainToModel(r *commission.Record) Commission {
	return Commission{
		StreamerID:       r.StreamerID,
		BaseCommission:   r.Base,
		LoyaltyBonus:     r.LoyaltyBonus,
		ReferralBonus:    r.ReferralBonus,
		PerformanceBonus: r.PerformanceBonus,
		TotalCommission:  r.Total,
		Notes:            r.Notes,
		UpdatedBy:        r.UpdatedBy,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func mapModelToDomain(m *Commission) *commission.Record {
	return &commission.Record{
		StreamerID:       m.StreamerID,
		Base:             m.BaseCommission,
		LoyaltyBonus:     m.LoyaltyBonus,
		ReferralBonus:    m.ReferralBonus,
		PerformanceBonus: m.PerformanceBonus,
		Total:            m.TotalCommission,
		Notes:            m.Notes,
		UpdatedBy:        m.UpdatedBy,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
