package call

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain/call"
	"github.com/amirasaad/payminute/pkg/domain/commission"
	"github.com/amirasaad/payminute/pkg/service/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OpenCallRequest struct {
	RoomID     string    `json:"room_id" validate:"omitempty,max=128"`
	StreamerID uuid.UUID `json:"streamer_id" validate:"required"`
}

type FinalizeRequest struct {
	DurationMinutes int64 `json:"duration_minutes" validate:"gte=0"`
}

type SetRateRequest struct {
	PricePerMinute int64 `json:"price_per_minute" validate:"gt=0"`
}

type CommissionUpdateRequest struct {
	BaseCommission   *decimal.Decimal `json:"base_commission,omitempty"`
	LoyaltyBonus     *decimal.Decimal `json:"loyalty_bonus,omitempty"`
	ReferralBonus    *decimal.Decimal `json:"referral_bonus,omitempty"`
	PerformanceBonus *decimal.Decimal `json:"performance_bonus,omitempty"`
	Notes            string           `json:"notes,omitempty" validate:"max=500"`
}

type CallDto struct {
	ID              uuid.UUID       `json:"id"`
	RoomID          string          `json:"room_id"`
	ViewerID        uuid.UUID       `json:"viewer_id"`
	StreamerID      uuid.UUID       `json:"streamer_id"`
	PricePerMinute  int64           `json:"price_per_minute"`
	Status          string          `json:"status"`
	StartedAt       time.Time       `json:"started_at"`
	EndedAt         *time.Time      `json:"ended_at,omitempty"`
	DurationMinutes int64           `json:"duration_minutes"`
	TotalCost       int64           `json:"total_cost"`
	StreamerEarning int64           `json:"streamer_earning"`
	PlatformFee     int64           `json:"platform_fee"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	Billed          bool            `json:"billed"`
}

func ToCallDto(c *call.Call) CallDto {
	return CallDto{
		ID:              c.ID,
		RoomID:          c.RoomID,
		ViewerID:        c.ViewerID,
		StreamerID:      c.StreamerID,
		PricePerMinute:  c.PricePerMinute,
		Status:          string(c.Status),
		StartedAt:       c.StartedAt,
		EndedAt:         c.EndedAt,
		DurationMinutes: c.DurationMinutes,
		TotalCost:       c.TotalCost,
		StreamerEarning: c.StreamerEarning,
		PlatformFee:     c.PlatformFee,
		CommissionRate:  c.CommissionRate,
		Billed:          c.Billed,
	}
}

type SettlementDto struct {
	CallID          uuid.UUID       `json:"call_id"`
	RoomID          string          `json:"room_id"`
	DurationMinutes int64           `json:"duration_minutes"`
	TotalCost       int64           `json:"total_cost"`
	StreamerEarning int64           `json:"streamer_earning"`
	PlatformFee     int64           `json:"platform_fee"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	Billed          bool            `json:"billed"`
}

func ToSettlementDto(s *billing.Settlement) SettlementDto {
	return SettlementDto{
		CallID:          s.CallID,
		RoomID:          s.RoomID,
		DurationMinutes: s.DurationMinutes,
		TotalCost:       s.TotalCost,
		StreamerEarning: s.StreamerEarning,
		PlatformFee:     s.PlatformFee,
		CommissionRate:  s.CommissionRate,
		Billed:          s.Billed,
	}
}

type RateDto struct {
	StreamerID     uuid.UUID `json:"streamer_id"`
	PricePerMinute int64     `json:"price_per_minute"`
}

type CommissionDto struct {
	StreamerID       uuid.UUID       `json:"streamer_id"`
	BaseCommission   decimal.Decimal `json:"base_commission"`
	LoyaltyBonus     decimal.Decimal `json:"loyalty_bonus"`
	ReferralBonus    decimal.Decimal `json:"referral_bonus"`
	PerformanceBonus decimal.Decimal `json:"performance_bonus"`
	TotalCommission  decimal.Decimal `json:"total_commission"`
	Notes            string          `json:"notes,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func ToCommissionDto(r *commission.Record) CommissionDto {
	return CommissionDto{
		StreamerID:       r.StreamerID,
		BaseCommission:   r.Base,
		LoyaltyBonus:     r.LoyaltyBonus,
		ReferralBonus:    r.ReferralBonus,
		PerformanceBonus: r.PerformanceBonus,
		TotalCommission:  r.Total,
		Notes:            r.Notes,
		UpdatedAt:        r.UpdatedAt,
	}
}
