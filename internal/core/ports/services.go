package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tableserve-backend/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// SettlementResult reports the outcome of a settle call. AlreadySettled is
// true when the transaction was COMPLETED before this call; the balances
// reported are current either way.
type SettlementResult struct {
	Reference      string
	Transaction    *domain.Transaction
	NewBalance     int64
	LoyaltyPoints  int64
	AlreadySettled bool
}

// SettlementService finalizes externally paid transactions. Settle is the
// single entry point for every trigger signal; calling it any number of
// times for one reference credits the wallet at most once.
type SettlementService interface {
	Settle(ctx context.Context, reference string) (*SettlementResult, error)

	// Cancel acknowledges an in-app abort. It is permitted only while the
	// transaction is PENDING and persists nothing, because the gateway may
	// still complete the charge asynchronously.
	Cancel(ctx context.Context, reference string) error
}

// VerificationResult is the gateway's answer for one reference.
type VerificationResult struct {
	Success    bool
	PaidAmount int64 // minor units
	RawStatus  string
}

// GatewayVerifier asks the payment gateway what actually happened to a
// transaction. One bounded call, no client-side retry.
type GatewayVerifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*VerificationResult, error)
}

// SettleClaimStore coordinates settlement attempts across processes. The
// claim is an optimization that keeps concurrent processes from issuing
// redundant gateway calls; correctness never depends on it.
type SettleClaimStore interface {
	// Claim attempts to take the settle claim for reference. Returns false
	// when another holder has it.
	Claim(ctx context.Context, reference string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, reference string) error
}

// VirtualAccount is a provisioned dedicated account for bank transfers.
type VirtualAccount struct {
	AccountNumber string
	BankName      string
}

// VirtualAccountProvider provisions dedicated virtual accounts at the
// banking partner.
type VirtualAccountProvider interface {
	CreateAccount(ctx context.Context, userID uuid.UUID, email, fullName string) (*VirtualAccount, error)
}

// TopupInitiation is the pending ledger entry handed back to the client
// before the gateway checkout begins.
type TopupInitiation struct {
	Reference string
	Amount    int64
}

// WalletService manages stored-value accounts.
type WalletService interface {
	// EnsureWallet returns the user's wallet, creating it on first use.
	EnsureWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)

	GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)

	// InitiateTopup records a PENDING credit for the amount and returns the
	// reference the client completes at the gateway.
	InitiateTopup(ctx context.Context, userID uuid.UUID, amount int64, reference string) (*TopupInitiation, error)

	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error)
}

// BookingRequest is what a client submits to reserve a table.
type BookingRequest struct {
	UserID      uuid.UUID
	TableID     uuid.UUID
	BookingDate time.Time
	GuestCount  int
	Amount      int64
}

// BookingPaymentInitiation is the pending gateway debit handed back to the
// client before the checkout begins.
type BookingPaymentInitiation struct {
	Reference string
	Amount    int64
}

// BookingService manages table reservations.
type BookingService interface {
	// TryReserve atomically claims the (table, date) slot with a PENDING
	// booking awaiting payment.
	TryReserve(ctx context.Context, req BookingRequest) (*domain.Booking, error)

	// InitiatePayment records the PENDING gateway debit for the booking
	// amount and returns the reference the client completes at the gateway.
	InitiatePayment(ctx context.Context, userID uuid.UUID, amount int64) (*BookingPaymentInitiation, error)

	// ConfirmAfterPayment settles reference and then inserts the CONFIRMED
	// booking. The reference must be a booking-purpose gateway debit owned
	// by the caller, covering the booking amount and not yet attached to
	// another booking.
	ConfirmAfterPayment(ctx context.Context, req BookingRequest, reference string) (*domain.Booking, error)

	// PayWithWallet debits the wallet and confirms the booking atomically.
	PayWithWallet(ctx context.Context, req BookingRequest) (*domain.Booking, error)

	Cancel(ctx context.Context, userID, bookingID uuid.UUID) error

	ListUpcoming(ctx context.Context, userID uuid.UUID) ([]*domain.Booking, error)
}

// DriftReport describes one wallet whose balance disagrees with its ledger.
type DriftReport struct {
	WalletID      uuid.UUID
	WalletBalance int64
	LedgerSum     int64
	Drift         int64 // WalletBalance - LedgerSum
	Repaired      bool
}

// ReconciliationService audits wallet balances against the ledger.
type ReconciliationService interface {
	// CheckWallet compares one wallet's balance to its ledger sum. When
	// repair is true a drifting balance is reset to the ledger sum.
	CheckWallet(ctx context.Context, walletID uuid.UUID, repair bool) (*DriftReport, error)
}

// AuthTokens is the login/registration result.
type AuthTokens struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *domain.User
}

// AuthService registers and authenticates consumer accounts.
type AuthService interface {
	Register(ctx context.Context, email, password, fullName string) (*AuthTokens, error)
	Login(ctx context.Context, email, password string) (*AuthTokens, error)
}

// TokenService mints and validates bearer tokens.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(token string) (uuid.UUID, error)
}

// HashService hashes and verifies passwords.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}
