// Package call persists call settlement records and streamer prices.
package call

import (
	"context"

	infrarepo "github.com/amirasaad/payminute/infra/repository"
	"github.com/amirasaad/payminute/pkg/domain/call"
	repo "github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates a call repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.CallRepository {
	return &repository{db: db}
}

// Create implements repository.CallRepository. A duplicate room id maps to
// domain.ErrAlreadyExists.
func (r *repository) Create(ctx context.Context, c *call.Call) error {
	m := mapDomainToModel(c)
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *repository) byRoom(ctx context.Context, roomID string, lock bool) (*call.Call, error) {
	var m Call
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&m, "room_id = ?", roomID).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

// GetByRoomID implements repository.CallRepository.
func (r *repository) GetByRoomID(ctx context.Context, roomID string) (*call.Call, error) {
	return r.byRoom(ctx, roomID, false)
}

// GetByRoomIDForUpdate implements repository.CallRepository.
func (r *repository) GetByRoomIDForUpdate(ctx context.Context, roomID string) (*call.Call, error) {
	return r.byRoom(ctx, roomID, true)
}

// Update implements repository.CallRepository.
func (r *repository) Update(ctx context.Context, c *call.Call) error {
	m := mapDomainToModel(c)
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Save(&m).Error
	})
}

// ListByUser implements repository.CallRepository.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*call.Call, error) {
	var rows []Call
	err := r.db.WithContext(ctx).
		Where("viewer_id = ? OR streamer_id = ?", userID, userID).
		Order("started_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*call.Call, 0, len(rows))
	for i := range rows {
		out = append(out, mapModelToDomain(&rows[i]))
	}
	return out, nil
}

type rateRepository struct {
	db *gorm.DB
}

// NewRateRepository creates a streamer rate repository using the provided *gorm.DB.
func NewRateRepository(db *gorm.DB) repo.RateRepository {
	return &rateRepository{db: db}
}

// Get implements repository.RateRepository.
func (r *rateRepository) Get(ctx context.Context, streamerID uuid.UUID) (*call.Rate, error) {
	var m Rate
	if err := r.db.WithContext(ctx).First(&m, "streamer_id = ?", streamerID).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return &call.Rate{StreamerID: m.StreamerID, PricePerMinute: m.PricePerMinute, UpdatedAt: m.UpdatedAt}, nil
}

// Upsert implements repository.RateRepository.
func (r *rateRepository) Upsert(ctx context.Context, rate *call.Rate) error {
	m := Rate{StreamerID: rate.StreamerID, PricePerMinute: rate.PricePerMinute, UpdatedAt: rate.UpdatedAt}
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "streamer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price_per_minute", "updated_at"}),
		}).Create(&m).Error
	})
}
