package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a consumer account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
