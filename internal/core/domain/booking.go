package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a table booking. PENDING and
// CONFIRMED are the active statuses that hold the (table, date) slot.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// IsActive reports whether the status occupies the slot for uniqueness
// purposes.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking reserves one table for one date. At most one active booking may
// exist per (TableID, BookingDate); the storage layer enforces this with a
// partial unique index.
type Booking struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	TableID          uuid.UUID
	BookingDate      time.Time // date component only, normalized to UTC midnight
	GuestCount       int
	Status           BookingStatus
	PaymentReference *string
	Amount           int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
