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

// WalletRepo is the pgx implementation of ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, user_id, balance, loyalty_points, account_number, bank_name, status, created_at, updated_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.ID, &w.UserID, &w.Balance, &w.LoyaltyPoints,
		&w.AccountNumber, &w.BankName, &w.Status, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning wallet row: %w", err)
	}
	return &w, nil
}

func (r *WalletRepo) Create(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, balance, loyalty_points, account_number, bank_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`

	_, err := r.pool.Exec(ctx, query,
		wallet.ID, wallet.UserID, wallet.Balance, wallet.LoyaltyPoints,
		wallet.AccountNumber, wallet.BankName, wallet.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrWalletExists
		}
		return fmt.Errorf("inserting wallet: %w", err)
	}
	return nil
}

func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, id))
}

func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, userID))
}

func (r *WalletRepo) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE account_number = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, accountNumber))
}

// GetByUserIDForUpdate locks the wallet row for the remainder of tx.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, userID))
}

func (r *WalletRepo) Credit(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount, points int64) error {
	query := `
		UPDATE wallets
		SET balance = balance + $1, loyalty_points = loyalty_points + $2, updated_at = now()
		WHERE id = $3`

	tag, err := tx.Exec(ctx, query, amount, points, walletID)
	if err != nil {
		return fmt.Errorf("crediting wallet: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("crediting wallet %s: no row updated", walletID)
	}
	return nil
}

func (r *WalletRepo) Debit(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64) error {
	query := `
		UPDATE wallets
		SET balance = balance - $1, updated_at = now()
		WHERE id = $2 AND balance >= $1`

	tag, err := tx.Exec(ctx, query, amount, walletID)
	if err != nil {
		return fmt.Errorf("debiting wallet: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("debiting wallet %s: insufficient balance or missing row", walletID)
	}
	return nil
}

func (r *WalletRepo) SetAccountNumber(ctx context.Context, walletID uuid.UUID, accountNumber, bankName string) error {
	query := `
		UPDATE wallets
		SET account_number = $1, bank_name = $2, updated_at = now()
		WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, accountNumber, bankName, walletID)
	if err != nil {
		return fmt.Errorf("setting account number: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("setting account number for wallet %s: no row updated", walletID)
	}
	return nil
}

func (r *WalletRepo) AdjustBalance(ctx context.Context, walletID uuid.UUID, newBalance int64) error {
	query := `
		UPDATE wallets
		SET balance = $1, updated_at = now()
		WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, newBalance, walletID)
	if err != nil {
		return fmt.Errorf("adjusting wallet balance: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("adjusting balance for wallet %s: no row updated", walletID)
	}
	return nil
}
