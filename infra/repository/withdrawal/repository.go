// Package withdrawal persists withdrawal records.
package withdrawal

import (
	"context"
	"time"

	infrarepo "github.com/amirasaad/payminute/infra/repository"
	"github.com/amirasaad/payminute/pkg/domain/withdrawal"
	repo "github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates a withdrawal repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.WithdrawalRepository {
	return &repository{db: db}
}

// Create implements repository.WithdrawalRepository.
func (r *repository) Create(ctx context.Context, w *withdrawal.Withdrawal) error {
	m := mapDomainToModel(w)
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *repository) first(q *gorm.DB, query string, args ...any) (*withdrawal.Withdrawal, error) {
	var m Withdrawal
	if err := q.Where(query, args...).First(&m).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

// Get implements repository.WithdrawalRepository.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// GetForUpdate implements repository.WithdrawalRepository.
func (r *repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

// GetByProviderReference implements repository.WithdrawalRepository.
func (r *repository) GetByProviderReference(ctx context.Context, ref string) (*withdrawal.Withdrawal, error) {
	return r.first(r.db.WithContext(ctx), "provider_reference = ?", ref)
}

// GetByIdempotencyKey implements repository.WithdrawalRepository.
func (r *repository) GetByIdempotencyKey(ctx context.Context, streamerID uuid.UUID, key string) (*withdrawal.Withdrawal, error) {
	return r.first(r.db.WithContext(ctx), "streamer_id = ? AND idempotency_key = ?", streamerID, key)
}

// Update implements repository.WithdrawalRepository.
func (r *repository) Update(ctx context.Context, w *withdrawal.Withdrawal) error {
	m := mapDomainToModel(w)
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Save(&m).Error
	})
}

// CountPendingSince implements repository.WithdrawalRepository.
func (r *repository) CountPendingSince(ctx context.Context, streamerID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Withdrawal{}).
		Where("streamer_id = ? AND status = ? AND requested_at >= ?", streamerID, string(withdrawal.StatusPending), since).
		Count(&n).Error
	return n, infrarepo.MapGormErrorToDomain(err)
}

// ListByStreamer implements repository.WithdrawalRepository.
func (r *repository) ListByStreamer(ctx context.Context, streamerID uuid.UUID) ([]*withdrawal.Withdrawal, error) {
	var rows []Withdrawal
	err := r.db.WithContext(ctx).
		Where("streamer_id = ?", streamerID).
		Order("requested_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*withdrawal.Withdrawal, 0, len(rows))
	for i := range rows {
		out = append(out, mapModelToDomain(&rows[i]))
	}
	return out, nil
}

// SumAnticipationFees implements repository.WithdrawalRepository.
func (r *repository) SumAnticipationFees(ctx context.Context, streamerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&Withdrawal{}).
		Select("COALESCE(SUM(fee), 0)").
		Where("streamer_id = ? AND is_anticipated", streamerID).
		Scan(&total).Error
	return total, infrarepo.MapGormErrorToDomain(err)
}
