// Package commission persists streamer commission records.
package commission

import (
	"context"

	infrarepo "github.com/amirasaad/payminute/infra/repository"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/commission"
	repo "github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates a commission repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.CommissionRepository {
	return &repository{db: db}
}

// Get implements repository.CommissionRepository.
func (r *repository) Get(ctx context.Context, streamerID uuid.UUID) (*commission.Record, error) {
	var m Commission
	if err := r.db.WithContext(ctx).First(&m, "streamer_id = ?", streamerID).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

// Create implements repository.CommissionRepository. Losing a concurrent
// lazy-create race returns domain.ErrAlreadyExists without aborting the
// surrounding transaction.
func (r *repository) Create(ctx context.Context, rec *commission.Record) error {
	m := mapDomainToModel(rec)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&m)
	if res.Error != nil {
		return infrarepo.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Update implements repository.CommissionRepository.
func (r *repository) Update(ctx context.Context, rec *commission.Record) error {
	m := mapDomainToModel(rec)
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Save(&m).Error
	})
}
