package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tableserve-backend/internal/core/domain"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// DBTransactor begins database transactions for multi-row atomicity.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WalletRepository persists wallets. Methods taking a pgx.Tx participate in
// a caller-managed transaction; the rest use the pool directly.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Wallet, error)

	// GetByUserIDForUpdate locks the wallet row inside tx until commit.
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)

	// Credit adds amount to the balance and points to the loyalty total.
	Credit(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount, points int64) error

	// Debit subtracts amount. Callers must hold the row lock and have
	// verified sufficiency; the balance CHECK constraint is the backstop.
	Debit(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64) error

	// SetAccountNumber records the provisioned virtual account details.
	SetAccountNumber(ctx context.Context, walletID uuid.UUID, accountNumber, bankName string) error

	// AdjustBalance sets the balance to exactly newBalance. Reconciliation
	// repair only.
	AdjustBalance(ctx context.Context, walletID uuid.UUID, newBalance int64) error
}

// TransactionRepository persists the ledger.
type TransactionRepository interface {
	// CreatePending inserts a PENDING row. A duplicate reference returns
	// domain.ErrDuplicateReference.
	CreatePending(ctx context.Context, txn *domain.Transaction) error

	// CreateCompleted inserts an already COMPLETED row inside tx. Used by
	// wallet-paid flows where no external settlement happens.
	CreateCompleted(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error

	// GetByReference returns (nil, nil) when no row matches.
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)

	// CompleteIfPending flips PENDING to COMPLETED inside tx and reports
	// whether this call performed the transition.
	CompleteIfPending(ctx context.Context, tx pgx.Tx, reference string) (bool, error)

	// FailIfPending flips PENDING to FAILED and reports whether this call
	// performed the transition.
	FailIfPending(ctx context.Context, reference string) (bool, error)

	ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*domain.Transaction, error)

	// LedgerSum returns the signed sum of COMPLETED wallet-affecting
	// transactions for the wallet: credits minus wallet-funded debits.
	LedgerSum(ctx context.Context, walletID uuid.UUID) (int64, error)
}

// BookingRepository persists bookings.
type BookingRepository interface {
	// InsertActive inserts the booking; an active booking already holding
	// the (table, date) slot returns domain.ErrSlotTaken.
	InsertActive(ctx context.Context, booking *domain.Booking) error

	// InsertActiveTx is InsertActive inside a caller-managed transaction.
	InsertActiveTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)

	// CancelIfActive flips an active booking to CANCELLED and reports
	// whether this call performed the transition.
	CancelIfActive(ctx context.Context, id uuid.UUID) (bool, error)

	ListByUser(ctx context.Context, userID uuid.UUID, from time.Time) ([]*domain.Booking, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts the user. A duplicate email returns domain.ErrEmailExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail returns (nil, nil) when no row matches.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
