package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableserve-backend/config"
)

func newTokenService(expiry time.Duration) *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret: "test-secret-key-for-tokens",
		Expiry: expiry,
		Issuer: "tableserve",
	})
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	s := newTokenService(time.Hour)
	userID := uuid.New()

	token, expiresAt, err := s.Generate(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := s.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenService_Validate_WrongSecret(t *testing.T) {
	s := newTokenService(time.Hour)
	other := NewTokenService(config.JWTConfig{Secret: "different-secret", Expiry: time.Hour, Issuer: "tableserve"})

	token, _, err := s.Generate(uuid.New())
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestTokenService_Validate_Expired(t *testing.T) {
	s := newTokenService(-time.Minute)

	token, _, err := s.Generate(uuid.New())
	require.NoError(t, err)

	_, err = s.Validate(token)
	assert.Error(t, err)
}

func TestTokenService_Validate_Garbage(t *testing.T) {
	s := newTokenService(time.Hour)

	_, err := s.Validate("not.a.token")
	assert.Error(t, err)
}
