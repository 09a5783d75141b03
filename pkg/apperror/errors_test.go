package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewTableUnavailable()
		assert.Equal(t, "BKG_001: table is not available for the requested date", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewGatewayUnavailable(cause)
		assert.Contains(t, err.Error(), "SET_006")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("insert failed")
	err := NewPostSettlementBookingFailed("REF-1", cause)
	assert.ErrorIs(t, err, cause)
}

func TestAppError_Is_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NewAmountMismatch("REF-1", 5000, 2000))
	assert.ErrorIs(t, err, NewAmountMismatch("other", 0, 0))
	assert.NotErrorIs(t, err, NewReferenceNotFound("other"))
}

func TestAppError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("settle: %w", NewAlreadyFailed("REF-9"))

	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "SET_004", appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"reference not found", NewReferenceNotFound("X"), "SET_001", http.StatusNotFound},
		{"verification failed", NewVerificationFailed("X", nil), "SET_002", http.StatusPaymentRequired},
		{"amount mismatch", NewAmountMismatch("X", 5000, 2000), "SET_003", http.StatusUnprocessableEntity},
		{"already failed", NewAlreadyFailed("X"), "SET_004", http.StatusConflict},
		{"settlement in progress", NewSettlementInProgress("X"), "SET_005", http.StatusConflict},
		{"cancel not pending", NewCancelNotPending("X"), "SET_007", http.StatusConflict},
		{"table unavailable", NewTableUnavailable(), "BKG_001", http.StatusConflict},
		{"insufficient funds", NewInsufficientFunds(), "WLT_001", http.StatusPaymentRequired},
		{"invalid amount", NewInvalidAmount(), "WLT_002", http.StatusBadRequest},
		{"duplicate reference", NewDuplicateReference("X"), "WLT_004", http.StatusConflict},
		{"invalid credentials", NewInvalidCredentials(), "AUTH_001", http.StatusUnauthorized},
		{"rate limited", NewRateLimited(), "RATE_001", http.StatusTooManyRequests},
		{"internal", NewInternal(errors.New("boom")), "SYS_002", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
