// Package recharge persists recharge checkouts.
package recharge

import (
	"context"
	"time"

	infrarepo "github.com/amirasaad/payminute/infra/repository"
	"github.com/amirasaad/payminute/pkg/domain/recharge"
	repo "github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Recharge represents a recharge record in the database.
type Recharge struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount       int64     `gorm:"not null"`
	PreferenceID string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	CheckoutURL  string
	Status       string `gorm:"type:varchar(16);not null"`
	ProcessedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for the Recharge model.
func (Recharge) TableName() string {
	return "recharges"
}

type repository struct {
	db *gorm.DB
}

// New creates a recharge repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.RechargeRepository {
	return &repository{db: db}
}

// Create implements repository.RechargeRepository.
func (r *repository) Create(ctx context.Context, rc *recharge.Recharge) error {
	m := Recharge{
		ID:           rc.ID,
		UserID:       rc.UserID,
		Amount:       rc.Amount,
		PreferenceID: rc.PreferenceID,
		CheckoutURL:  rc.CheckoutURL,
		Status:       string(rc.Status),
		ProcessedAt:  rc.ProcessedAt,
		CreatedAt:    rc.CreatedAt,
		UpdatedAt:    rc.UpdatedAt,
	}
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

// GetByPreferenceIDForUpdate implements repository.RechargeRepository.
func (r *repository) GetByPreferenceIDForUpdate(ctx context.Context, preferenceID string) (*recharge.Recharge, error) {
	var m Recharge
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "preference_id = ?", preferenceID).Error
	if err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return &recharge.Recharge{
		ID:           m.ID,
		UserID:       m.UserID,
		Amount:       m.Amount,
		PreferenceID: m.PreferenceID,
		CheckoutURL:  m.CheckoutURL,
		Status:       recharge.Status(m.Status),
		ProcessedAt:  m.ProcessedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

// Update implements repository.RechargeRepository. Only the settlement columns change.
func (r *repository) Update(ctx context.Context, rc *recharge.Recharge) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Recharge{}).
			Where("id = ?", rc.ID).
			Updates(map[string]any{
				"status":       string(rc.Status),
				"processed_at": rc.ProcessedAt,
				"updated_at":   rc.UpdatedAt,
			}).Error
	})
}
