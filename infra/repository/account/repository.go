// Package account persists ledger account balances.
package account

import (
	"context"

	infrarepo "github.com/amirasaad/payminute/infra/repository"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/ledger"
	repo "github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates an account repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.AccountRepository {
	return &repository{db: db}
}

func (r *repository) find(ctx context.Context, userID uuid.UUID, lock bool) (*ledger.Account, error) {
	var m Account
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&m, "user_id = ?", userID).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m)
}

// Get implements repository.AccountRepository.
func (r *repository) Get(ctx context.Context, userID uuid.UUID) (*ledger.Account, error) {
	return r.find(ctx, userID, false)
}

// GetForUpdate implements repository.AccountRepository.
func (r *repository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*ledger.Account, error) {
	return r.find(ctx, userID, true)
}

// Create implements repository.AccountRepository. An account opened
// concurrently by another transaction yields domain.ErrAlreadyExists and
// leaves the surrounding transaction usable.
func (r *repository) Create(ctx context.Context, acc *ledger.Account) error {
	m := mapDomainToModel(acc)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&m)
	if res.Error != nil {
		return infrarepo.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Update implements repository.AccountRepository. Only the balance columns change.
func (r *repository) Update(ctx context.Context, acc *ledger.Account) error {
	res := r.db.WithContext(ctx).Model(&Account{}).
		Where("user_id = ?", acc.UserID).
		Updates(map[string]any{
			"balance":        acc.Balance,
			"total_earnings": acc.TotalEarnings,
			"updated_at":     acc.UpdatedAt,
		})
	if res.Error != nil {
		return infrarepo.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return infrarepo.MapGormErrorToDomain(gorm.ErrRecordNotFound)
	}
	return nil
}

// List implements repository.AccountRepository.
func (r *repository) List(ctx context.Context) ([]*ledger.Account, error) {
	var rows []Account
	if err := r.db.WithContext(ctx).Order("user_id").Find(&rows).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*ledger.Account, 0, len(rows))
	for i := range rows {
		acc, err := mapModelToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, nil
}
