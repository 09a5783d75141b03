package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the application-level error type carried across service and
// handler boundaries. Code is a stable machine-readable identifier, Message
// is safe to return to clients, and Err holds the underlying cause.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code so errors.Is works against sentinel
// constructors.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// --- Settlement errors ---

// NewReferenceNotFound indicates no ledger row exists for the reference.
func NewReferenceNotFound(reference string) *AppError {
	return &AppError{
		Code:       "SET_001",
		Message:    fmt.Sprintf("no transaction found for reference %q", reference),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewVerificationFailed indicates the gateway did not confirm the payment.
// The ledger row stays PENDING and settlement may be retried.
func NewVerificationFailed(reference string, err error) *AppError {
	return &AppError{
		Code:       "SET_002",
		Message:    fmt.Sprintf("payment %q could not be verified", reference),
		HTTPStatus: http.StatusPaymentRequired,
		Err:        err,
	}
}

// NewAmountMismatch indicates the gateway confirmed a payment smaller than
// the amount the ledger expects. The row stays PENDING.
func NewAmountMismatch(reference string, expected, paid int64) *AppError {
	return &AppError{
		Code:       "SET_003",
		Message:    fmt.Sprintf("payment %q paid %d but %d is required", reference, paid, expected),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewAlreadyFailed indicates the transaction reached a terminal FAILED state.
func NewAlreadyFailed(reference string) *AppError {
	return &AppError{
		Code:       "SET_004",
		Message:    fmt.Sprintf("transaction %q has already failed", reference),
		HTTPStatus: http.StatusConflict,
	}
}

// NewSettlementInProgress indicates another process holds the settle claim
// for the reference. Transient; callers should retry shortly.
func NewSettlementInProgress(reference string) *AppError {
	return &AppError{
		Code:       "SET_005",
		Message:    fmt.Sprintf("settlement for %q is in progress", reference),
		HTTPStatus: http.StatusConflict,
	}
}

// NewGatewayUnavailable indicates the gateway could not be reached within
// the verification timeout.
func NewGatewayUnavailable(err error) *AppError {
	return &AppError{
		Code:       "SET_006",
		Message:    "payment gateway is unavailable",
		HTTPStatus: http.StatusGatewayTimeout,
		Err:        err,
	}
}

// NewCancelNotPending indicates a cancel was requested for a transaction
// that is no longer PENDING.
func NewCancelNotPending(reference string) *AppError {
	return &AppError{
		Code:       "SET_007",
		Message:    fmt.Sprintf("transaction %q is not pending and cannot be cancelled", reference),
		HTTPStatus: http.StatusConflict,
	}
}

// --- Booking errors ---

// NewTableUnavailable indicates the table is already actively booked for the
// requested date.
func NewTableUnavailable() *AppError {
	return &AppError{
		Code:       "BKG_001",
		Message:    "table is not available for the requested date",
		HTTPStatus: http.StatusConflict,
	}
}

// NewPostSettlementBookingFailed indicates the payment settled but the
// booking insert failed afterwards. The money is safe; the booking needs
// operator attention.
func NewPostSettlementBookingFailed(reference string, err error) *AppError {
	return &AppError{
		Code:       "BKG_002",
		Message:    fmt.Sprintf("payment %q settled but the booking could not be created", reference),
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewBookingNotFound indicates no booking exists for the identifier.
func NewBookingNotFound() *AppError {
	return &AppError{
		Code:       "BKG_003",
		Message:    "booking not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// NewBookingPaymentMismatch indicates the payment reference does not belong
// to this booking request: wrong purpose, wrong owner or an amount that does
// not cover the booking.
func NewBookingPaymentMismatch(reference string) *AppError {
	return &AppError{
		Code:       "BKG_004",
		Message:    fmt.Sprintf("payment %q does not match this booking request", reference),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewBookingReferenceUsed indicates the payment reference is already
// attached to another booking.
func NewBookingReferenceUsed(reference string) *AppError {
	return &AppError{
		Code:       "BKG_005",
		Message:    fmt.Sprintf("payment %q is already attached to a booking", reference),
		HTTPStatus: http.StatusConflict,
	}
}

// --- Wallet errors ---

// NewInsufficientFunds indicates the wallet balance cannot cover the debit.
func NewInsufficientFunds() *AppError {
	return &AppError{
		Code:       "WLT_001",
		Message:    "insufficient wallet balance",
		HTTPStatus: http.StatusPaymentRequired,
	}
}

// NewInvalidAmount indicates a non-positive or malformed amount.
func NewInvalidAmount() *AppError {
	return &AppError{
		Code:       "WLT_002",
		Message:    "amount must be a positive integer in minor units",
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewWalletNotFound indicates no wallet exists for the user or identifier.
func NewWalletNotFound() *AppError {
	return &AppError{
		Code:       "WLT_003",
		Message:    "wallet not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// NewDuplicateReference indicates a transaction with the reference already
// exists in the ledger.
func NewDuplicateReference(reference string) *AppError {
	return &AppError{
		Code:       "WLT_004",
		Message:    fmt.Sprintf("transaction reference %q already exists", reference),
		HTTPStatus: http.StatusConflict,
	}
}

// --- Auth errors ---

// NewInvalidCredentials covers bad email/password pairs.
func NewInvalidCredentials() *AppError {
	return &AppError{
		Code:       "AUTH_001",
		Message:    "invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewUnauthorized covers missing or invalid bearer tokens.
func NewUnauthorized(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Code:       "AUTH_002",
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewEmailTaken indicates the email is already registered.
func NewEmailTaken() *AppError {
	return &AppError{
		Code:       "AUTH_003",
		Message:    "email is already registered",
		HTTPStatus: http.StatusConflict,
	}
}

// --- Rate limiting ---

// NewRateLimited indicates the caller exceeded the request budget for the
// current window.
func NewRateLimited() *AppError {
	return &AppError{
		Code:       "RATE_001",
		Message:    "too many requests, slow down",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// --- System errors ---

// NewValidation wraps request validation failures.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       "SYS_001",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInternal wraps unexpected failures. The cause is logged, never
// returned to the client.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       "SYS_002",
		Message:    "an internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
