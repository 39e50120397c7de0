package infra

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/payminute/internal/fixtures"
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/ledger"
	"github.com/amirasaad/payminute/pkg/repository"
	ledgersvc "github.com/amirasaad/payminute/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockUoW(t *testing.T) (*UoW, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDb.Close() })
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewUoW(db), mock
}

func TestUoW_DoCommitsLockedBalanceUpdate(t *testing.T) {
	uow, mock := newMockUoW(t)
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE user_id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role", "balance", "total_earnings", "created_at", "updated_at"}).
			AddRow(userID.String(), "viewer", int64(10000), int64(0), now, now))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "accounts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var after int64
	err := uow.Do(context.Background(), func(tx repository.UnitOfWork) error {
		accounts, err := tx.AccountRepository()
		if err != nil {
			return err
		}
		acc, err := accounts.GetForUpdate(context.Background(), userID)
		if err != nil {
			return err
		}
		if err := acc.Apply(-398, now); err != nil {
			return err
		}
		after = acc.Balance
		return accounts.Update(context.Background(), acc)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9602), after)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_DoRollsBackOnError(t *testing.T) {
	uow, mock := newMockUoW(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "transactions"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(tx repository.UnitOfWork) error {
		txs, err := tx.TransactionRepository()
		if err != nil {
			return err
		}
		return txs.Create(context.Background(), &ledger.Transaction{
			ID:        uuid.New(),
			AccountID: uuid.New(),
			Kind:      ledger.KindCallCharge,
			Amount:    398,
			Status:    ledger.StatusCompleted,
			CreatedAt: time.Now(),
		})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepository_NotFoundMapsToDomain(t *testing.T) {
	uow, mock := newMockUoW(t)
	mock.ExpectQuery(`SELECT \* FROM "withdrawals" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo, err := uow.WithdrawalRepository()
	require.NoError(t, err)
	_, err = repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepository_SumAnticipationFees(t *testing.T) {
	uow, mock := newMockUoW(t)
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(fee\), 0\) FROM "withdrawals" WHERE \(?streamer_id = \$1 AND is_anticipated`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(5000)))

	repo, err := uow.WithdrawalRepository()
	require.NoError(t, err)
	total, err := repo.SumAnticipationFees(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(5000), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_UpdateStatusByWithdrawalTouchesWithdrawalRowsOnly(t *testing.T) {
	uow, mock := newMockUoW(t)
	withdrawalID := uuid.New()
	mock.ExpectExec(`UPDATE "transactions" SET "status"=\$1 WHERE \(?withdrawal_id = \$2 AND kind = \$3`).
		WithArgs("completed", withdrawalID.String(), "withdrawal").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo, err := uow.TransactionRepository()
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatusByWithdrawal(context.Background(), withdrawalID, ledger.StatusCompleted))
	assert.NoError(t, mock.ExpectationsWereMet())
}

var accountColumns = []string{"user_id", "role", "balance", "total_earnings", "created_at", "updated_at"}

func TestAccountRepository_CreateConflictIsAlreadyExists(t *testing.T) {
	uow, mock := newMockUoW(t)
	mock.ExpectExec(`INSERT INTO "accounts" .*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo, err := uow.AccountRepository()
	require.NoError(t, err)
	now := time.Now().UTC()
	acc, err := ledger.New().WithUserID(uuid.New()).WithRole(ledger.RoleViewer).
		WithCreatedAt(now).WithUpdatedAt(now).Build()
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(context.Background(), acc), domain.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerOpenAccount_RereadsAccountOpenedConcurrently(t *testing.T) {
	uow, mock := newMockUoW(t)
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(accountColumns))
	mock.ExpectExec(`INSERT INTO "accounts" .*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(userID.String(), "viewer", int64(500), int64(0), now, now))
	mock.ExpectCommit()

	svc := ledgersvc.NewService(config.Deps{
		Uow:    uow,
		Logger: fixtures.Logger(),
		Config: fixtures.Config(),
	})
	acc, err := svc.OpenAccount(context.Background(), userID, ledger.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, int64(500), acc.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDBConnection_RequiresURL(t *testing.T) {
	_, err := NewDBConnection(nil, "test")
	assert.Error(t, err)
}
