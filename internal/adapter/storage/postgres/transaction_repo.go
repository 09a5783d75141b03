package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tableserve-backend/internal/core/domain"
)

const uniqueViolationCode = "23505"

// TransactionRepo is the pgx implementation of ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const insertTransactionSQL = `
	INSERT INTO transactions (id, wallet_id, reference, direction, purpose, method, amount, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`

func (r *TransactionRepo) CreatePending(ctx context.Context, txn *domain.Transaction) error {
	_, err := r.pool.Exec(ctx, insertTransactionSQL,
		txn.ID, txn.WalletID, txn.Reference, txn.Direction, txn.Purpose,
		txn.Method, txn.Amount, domain.TransactionPending,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("inserting pending transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) CreateCompleted(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	_, err := tx.Exec(ctx, insertTransactionSQL,
		txn.ID, txn.WalletID, txn.Reference, txn.Direction, txn.Purpose,
		txn.Method, txn.Amount, domain.TransactionCompleted,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("inserting completed transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `
		SELECT id, wallet_id, reference, direction, purpose, method, amount, status, created_at, updated_at
		FROM transactions
		WHERE reference = $1`

	var txn domain.Transaction
	err := r.pool.QueryRow(ctx, query, reference).Scan(
		&txn.ID, &txn.WalletID, &txn.Reference, &txn.Direction, &txn.Purpose,
		&txn.Method, &txn.Amount, &txn.Status, &txn.CreatedAt, &txn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying transaction by reference: %w", err)
	}
	return &txn, nil
}

// CompleteIfPending is the settlement CAS. Exactly one caller observes a
// true return for any reference; everyone else loses the race.
func (r *TransactionRepo) CompleteIfPending(ctx context.Context, tx pgx.Tx, reference string) (bool, error) {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = now()
		WHERE reference = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, domain.TransactionCompleted, reference, domain.TransactionPending)
	if err != nil {
		return false, fmt.Errorf("completing transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TransactionRepo) FailIfPending(ctx context.Context, reference string) (bool, error) {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = now()
		WHERE reference = $2 AND status = $3`

	tag, err := r.pool.Exec(ctx, query, domain.TransactionFailed, reference, domain.TransactionPending)
	if err != nil {
		return false, fmt.Errorf("failing transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, wallet_id, reference, direction, purpose, method, amount, status, created_at, updated_at
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(
			&txn.ID, &txn.WalletID, &txn.Reference, &txn.Direction, &txn.Purpose,
			&txn.Method, &txn.Amount, &txn.Status, &txn.CreatedAt, &txn.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}
	return txns, nil
}

// LedgerSum computes the wallet's expected balance from completed rows.
// Gateway-funded booking debits never touched the balance, so only
// wallet-funded debits subtract.
func (r *TransactionRepo) LedgerSum(ctx context.Context, walletID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE
				WHEN direction = 'CREDIT' THEN amount
				WHEN direction = 'DEBIT' AND method = 'WALLET' THEN -amount
				ELSE 0
			END
		), 0)
		FROM transactions
		WHERE wallet_id = $1 AND status = 'COMPLETED'`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, walletID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("summing ledger: %w", err)
	}
	return sum, nil
}
