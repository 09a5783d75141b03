package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletStatus gates whether a wallet may transact.
type WalletStatus string

const (
	WalletActive WalletStatus = "ACTIVE"
	WalletFrozen WalletStatus = "FROZEN"
)

// Wallet is a user's stored-value account. Balance and LoyaltyPoints are
// integer minor units and whole points. AccountNumber is the dedicated
// virtual account provisioned for bank-transfer top-ups; empty when
// provisioning has not completed.
type Wallet struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Balance       int64
	LoyaltyPoints int64
	AccountNumber string
	BankName      string
	Status        WalletStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanDebit reports whether the wallet is active and holds at least amount.
func (w *Wallet) CanDebit(amount int64) bool {
	return w.Status == WalletActive && amount > 0 && w.Balance >= amount
}
