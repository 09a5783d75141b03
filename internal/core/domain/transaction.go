package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the lifecycle state of a ledger row.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
)

// IsTerminal reports whether the status admits no further transition.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionCompleted || s == TransactionFailed
}

// TransactionDirection is the sign of the wallet effect.
type TransactionDirection string

const (
	DirectionCredit TransactionDirection = "CREDIT"
	DirectionDebit  TransactionDirection = "DEBIT"
)

// TransactionPurpose records what the money movement was for.
type TransactionPurpose string

const (
	PurposeTopup   TransactionPurpose = "TOPUP"
	PurposeBooking TransactionPurpose = "BOOKING"
)

// PaymentMethod records how the transaction was funded.
type PaymentMethod string

const (
	MethodGateway PaymentMethod = "GATEWAY"
	MethodWallet  PaymentMethod = "WALLET"
)

// Transaction is one row of the append-style ledger. Amount is always a
// positive integer in minor units; Direction carries the sign. Reference
// is globally unique and is the settlement idempotency key.
type Transaction struct {
	ID        uuid.UUID
	WalletID  uuid.UUID
	Reference string
	Direction TransactionDirection
	Purpose   TransactionPurpose
	Method    PaymentMethod
	Amount    int64
	Status    TransactionStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreditsWallet reports whether completing this transaction adds funds
// to the wallet. Gateway-paid bookings settle against the ledger without
// ever passing through the wallet balance.
func (t *Transaction) CreditsWallet() bool {
	return t.Direction == DirectionCredit
}

// LoyaltyAccrual is the number of points earned when this transaction
// completes: one point per 100 minor units, credits only. Debits never
// reduce points.
func (t *Transaction) LoyaltyAccrual() int64 {
	if t.Direction != DirectionCredit {
		return 0
	}
	return t.Amount / 100
}
