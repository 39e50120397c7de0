// Package commission models the share of a call charge a streamer keeps.
package commission

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// DefaultBase is the base share assigned to streamers without a negotiated rate.
	DefaultBase = decimal.NewFromInt(70)
	// MinBase and MaxBase bound the negotiable base share.
	MinBase = decimal.NewFromInt(60)
	MaxBase = decimal.NewFromInt(85)

	hundred = decimal.NewFromInt(100)
)

// Record holds a streamer's commission settings.
//
// Total is derived as Base + LoyaltyBonus. Referral and performance bonuses are
// flat amounts tracked alongside and are never folded into the percentage.
type Record struct {
	StreamerID       uuid.UUID
	Base             decimal.Decimal
	LoyaltyBonus     decimal.Decimal
	ReferralBonus    decimal.Decimal
	PerformanceBonus decimal.Decimal
	Total            decimal.Decimal
	Notes            string
	UpdatedBy        *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewDefault returns the lazily-created record for a streamer.
func NewDefault(streamerID uuid.UUID, at time.Time) *Record {
	return &Record{
		StreamerID:       streamerID,
		Base:             DefaultBase,
		LoyaltyBonus:     decimal.Zero,
		ReferralBonus:    decimal.Zero,
		PerformanceBonus: decimal.Zero,
		Total:            DefaultBase,
		CreatedAt:        at,
		UpdatedAt:        at,
	}
}

// Change is a partial update; nil fields keep their current value.
type Change struct {
	Base             *decimal.Decimal
	LoyaltyBonus     *decimal.Decimal
	ReferralBonus    *decimal.Decimal
	PerformanceBonus *decimal.Decimal
	Notes            string
	AdminID          uuid.UUID
}

// Apply validates and applies c, recomputing Total. The record is left
// unchanged when validation fails.
func (r *Record) Apply(c Change, at time.Time) error {
	next := *r
	if c.Base != nil {
		next.Base = *c.Base
	}
	if c.LoyaltyBonus != nil {
		next.LoyaltyBonus = *c.LoyaltyBonus
	}
	if c.ReferralBonus != nil {
		next.ReferralBonus = *c.ReferralBonus
	}
	if c.PerformanceBonus != nil {
		next.PerformanceBonus = *c.PerformanceBonus
	}
	if next.Base.LessThan(MinBase) || next.Base.GreaterThan(MaxBase) {
		return domain.ErrInvalidCommissionRange
	}
	if next.LoyaltyBonus.IsNegative() || next.ReferralBonus.IsNegative() || next.PerformanceBonus.IsNegative() {
		return domain.ErrInvalidCommissionRange
	}
	next.Total = next.Base.Add(next.LoyaltyBonus)
	if next.Total.GreaterThan(hundred) {
		return domain.ErrInvalidCommissionRange
	}
	if c.Notes != "" {
		next.Notes = c.Notes
	}
	if c.AdminID != uuid.Nil {
		admin := c.AdminID
		next.UpdatedBy = &admin
	}
	next.UpdatedAt = at
	*r = next
	return nil
}

// Earning returns floor(totalCost * rate / 100).
func Earning(totalCost int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(totalCost).Mul(rate).Div(hundred).Floor().IntPart()
}
