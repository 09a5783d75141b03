package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableserve-backend/internal/core/domain"
)

func newTransactionRepoMock(t *testing.T) (pgxmock.PgxPoolIface, *TransactionRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewTransactionRepo(mock)
}

func TestTransactionRepo_CreatePending(t *testing.T) {
	mock, repo := newTransactionRepoMock(t)

	txn := &domain.Transaction{
		ID:        uuid.New(),
		WalletID:  uuid.New(),
		Reference: "TOPUP-1",
		Direction: domain.DirectionCredit,
		Purpose:   domain.PurposeTopup,
		Method:    domain.MethodGateway,
		Amount:    5000,
	}

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.WalletID, txn.Reference, txn.Direction, txn.Purpose,
			txn.Method, txn.Amount, domain.TransactionPending).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.CreatePending(context.Background(), txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_CreatePending_DuplicateReference(t *testing.T) {
	mock, repo := newTransactionRepoMock(t)

	txn := &domain.Transaction{
		ID:        uuid.New(),
		WalletID:  uuid.New(),
		Reference: "TOPUP-1",
		Direction: domain.DirectionCredit,
		Purpose:   domain.PurposeTopup,
		Method:    domain.MethodGateway,
		Amount:    5000,
	}

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.WalletID, txn.Reference, txn.Direction, txn.Purpose,
			txn.Method, txn.Amount, domain.TransactionPending).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "transactions_reference_key"})

	err := repo.CreatePending(context.Background(), txn)
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func TestTransactionRepo_GetByReference(t *testing.T) {
	mock, repo := newTransactionRepoMock(t)

	id := uuid.New()
	walletID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "wallet_id", "reference", "direction", "purpose", "method", "amount", "status", "created_at", "updated_at",
	}).AddRow(id, walletID, "TOPUP-1", domain.DirectionCredit, domain.PurposeTopup,
		domain.MethodGateway, int64(5000), domain.TransactionPending, now, now)

	mock.ExpectQuery("SELECT (.+) FROM transactions").
		WithArgs("TOPUP-1").
		WillReturnRows(rows)

	txn, err := repo.GetByReference(context.Background(), "TOPUP-1")
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, "TOPUP-1", txn.Reference)
	assert.Equal(t, int64(5000), txn.Amount)
	assert.Equal(t, domain.TransactionPending, txn.Status)
}

func TestTransactionRepo_GetByReference_NotFound(t *testing.T) {
	mock, repo := newTransactionRepoMock(t)

	mock.ExpectQuery("SELECT (.+) FROM transactions").
		WithArgs("UNKNOWN-REF").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "wallet_id", "reference", "direction", "purpose", "method", "amount", "status", "created_at", "updated_at",
		}))

	txn, err := repo.GetByReference(context.Background(), "UNKNOWN-REF")
	assert.NoError(t, err)
	assert.Nil(t, txn)
}

func TestTransactionRepo_CompleteIfPending(t *testing.T) {
	t.Run("wins the race", func(t *testing.T) {
		mock, repo := newTransactionRepoMock(t)

		mock.ExpectBegin()
		tx, err := mock.Begin(context.Background())
		require.NoError(t, err)

		mock.ExpectExec("UPDATE transactions").
			WithArgs(domain.TransactionCompleted, "TOPUP-1", domain.TransactionPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		won, err := repo.CompleteIfPending(context.Background(), tx, "TOPUP-1")
		require.NoError(t, err)
		assert.True(t, won)
	})

	t.Run("loses the race", func(t *testing.T) {
		mock, repo := newTransactionRepoMock(t)

		mock.ExpectBegin()
		tx, err := mock.Begin(context.Background())
		require.NoError(t, err)

		mock.ExpectExec("UPDATE transactions").
			WithArgs(domain.TransactionCompleted, "TOPUP-1", domain.TransactionPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		won, err := repo.CompleteIfPending(context.Background(), tx, "TOPUP-1")
		require.NoError(t, err)
		assert.False(t, won)
	})
}

func TestTransactionRepo_FailIfPending(t *testing.T) {
	mock, repo := newTransactionRepoMock(t)

	mock.ExpectExec("UPDATE transactions").
		WithArgs(domain.TransactionFailed, "TOPUP-1", domain.TransactionPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	failed, err := repo.FailIfPending(context.Background(), "TOPUP-1")
	require.NoError(t, err)
	assert.True(t, failed)
}

func TestTransactionRepo_LedgerSum(t *testing.T) {
	mock, repo := newTransactionRepoMock(t)
	walletID := uuid.New()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(7500)))

	sum, err := repo.LedgerSum(context.Background(), walletID)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), sum)
}

func TestTransactionRepo_ListByWallet_QueryError(t *testing.T) {
	mock, repo := newTransactionRepoMock(t)
	walletID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM transactions").
		WithArgs(walletID, 20, 0).
		WillReturnError(errors.New("connection reset"))

	txns, err := repo.ListByWallet(context.Background(), walletID, 20, 0)
	assert.Error(t, err)
	assert.Nil(t, txns)
}
