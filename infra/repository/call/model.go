package call

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain/call"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Call represents a call settlement record in the database.
type Call struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID          string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	ViewerID        uuid.UUID `gorm:"type:uuid;not null;index"`
	StreamerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	PricePerMinute  int64     `gorm:"not null"`
	StartedAt       time.Time `gorm:"not null"`
	EndedAt         *time.Time
	DurationMinutes int64           `gorm:"not null;default:0"`
	TotalCost       int64           `gorm:"not null;default:0"`
	StreamerEarning int64           `gorm:"not null;default:0"`
	PlatformFee     int64           `gorm:"not null;default:0"`
	CommissionRate  decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Billed          bool            `gorm:"not null;default:false"`
	Status          string          `gorm:"type:varchar(16);not null"`
}

// TableName specifies the table name for the Call model.
func (Call) TableName() string {
	return "calls"
}

// Rate represents a streamer's current price per minute.
type Rate struct {
	StreamerID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	PricePerMinute int64     `gorm:"not null"`
	UpdatedAt      time.Time
}

// TableName specifies the table name for the Rate model.
func (Rate) TableName() string {
	return "streamer_rates"
}

func mapDomainToModel(c *call.Call) Call {
	return Call{
		ID:              c.ID,
		RoomID:          c.RoomID,
		ViewerID:        c.ViewerID,
		StreamerID:      c.StreamerID,
		PricePerMinute:  c.PricePerMinute,
		StartedAt:       c.StartedAt,
		EndedAt:         c.EndedAt,
		DurationMinutes: c.DurationMinutes,
		TotalCost:       c.TotalCost,
		StreamerEarning: c.StreamerEarning,
		PlatformFee:     c.PlatformFee,
		CommissionRate:  c.CommissionRate,
		Billed:          c.Billed,
		Status:          string(c.Status),
	}
}

func mapModelToDomain(m *Call) *call.Call {
	return &call.Call{
		ID:              m.ID,
		RoomID:          m.RoomID,
		ViewerID:        m.ViewerID,
		StreamerID:      m.StreamerID,
		PricePerMinute:  m.PricePerMinute,
		StartedAt:       m.StartedAt,
		EndedAt:         m.EndedAt,
		DurationMinutes: m.DurationMinutes,
		TotalCost:       m.TotalCost,
		StreamerEarning: m.StreamerEarning,
		PlatformFee:     m.PlatformFee,
		CommissionRate:  m.CommissionRate,
		Billed:          m.Billed,
		Status:          call.Status(m.Status),
	}
}
