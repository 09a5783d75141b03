package domain

import "errors"

// Storage-level sentinels. Repositories translate driver errors into these;
// services translate them into apperror values.
var (
	// ErrSlotTaken means an active booking already holds the (table, date) slot.
	ErrSlotTaken = errors.New("booking slot already taken")

	// ErrReferenceConsumed means a booking already carries the payment reference.
	ErrReferenceConsumed = errors.New("payment reference already attached to a booking")

	// ErrDuplicateReference means a transaction with the reference already exists.
	ErrDuplicateReference = errors.New("duplicate transaction reference")

	// ErrWalletExists means the user already has a wallet.
	ErrWalletExists = errors.New("wallet already exists for user")

	// ErrEmailExists means the email is already registered.
	ErrEmailExists = errors.New("email already registered")
)
