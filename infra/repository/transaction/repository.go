// Package transaction persists the append-only ledger transaction log.
package transaction

import (
	"context"

	infrarepo "github.com/amirasaad/payminute/infra/repository"
	"github.com/amirasaad/payminute/pkg/domain/ledger"
	repo "github.com/amirasaad/payminute/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a transaction repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.TransactionRepository {
	return &repository{db: db}
}

// Create implements repository.TransactionRepository.
func (r *repository) Create(ctx context.Context, tx *ledger.Transaction) error {
	m := mapDomainToModel(tx)
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *repository) list(ctx context.Context, query string, arg any) ([]*ledger.Transaction, error) {
	var rows []Transaction
	err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*ledger.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, mapModelToDomain(&rows[i]))
	}
	return out, nil
}

// ListByAccount implements repository.TransactionRepository.
func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Transaction, error) {
	return r.list(ctx, "account_id = ?", accountID)
}

// ListByCall implements repository.TransactionRepository.
func (r *repository) ListByCall(ctx context.Context, callID uuid.UUID) ([]*ledger.Transaction, error) {
	return r.list(ctx, "call_id = ?", callID)
}

// UpdateStatusByWithdrawal implements repository.TransactionRepository.
func (r *repository) UpdateStatusByWithdrawal(ctx context.Context, withdrawalID uuid.UUID, status ledger.Status) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Transaction{}).
			Where("withdrawal_id = ? AND kind = ?", withdrawalID, string(ledger.KindWithdrawal)).
			Update("status", string(status)).Error
	})
}
