// Package kyc persists KYC submissions.
package kyc

import (
	"context"
	"time"

	infrarepo "github.com/amirasaad/payminute/infra/repository"
	"github.com/amirasaad/payminute/pkg/domain/kyc"
	repo "github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates a KYC repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.KYCRepository {
	return &repository{db: db}
}

// Create implements repository.KYCRepository.
func (r *repository) Create(ctx context.Context, rec *kyc.Record) error {
	m := mapDomainToModel(rec)
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *repository) first(q *gorm.DB, query string, args ...any) (*kyc.Record, error) {
	var m Record
	if err := q.Where(query, args...).First(&m).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

// Get implements repository.KYCRepository.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*kyc.Record, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// GetForUpdate implements repository.KYCRepository.
func (r *repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*kyc.Record, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

// LatestByUser implements repository.KYCRepository.
func (r *repository) LatestByUser(ctx context.Context, userID uuid.UUID) (*kyc.Record, error) {
	return r.first(r.db.WithContext(ctx).Order("submitted_at DESC"), "user_id = ?", userID)
}

// Update implements repository.KYCRepository.
func (r *repository) Update(ctx context.Context, rec *kyc.Record) error {
	m := mapDomainToModel(rec)
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Save(&m).Error
	})
}

// ListExpired implements repository.KYCRepository.
func (r *repository) ListExpired(ctx context.Context, now time.Time) ([]*kyc.Record, error) {
	var rows []Record
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(kyc.StatusApproved), now).
		Find(&rows).Error
	if err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*kyc.Record, 0, len(rows))
	for i := range rows {
		out = append(out, mapModelToDomain(&rows[i]))
	}
	return out, nil
}
