package dto

import (
	"time"

	"github.com/google/uuid"

	"tableserve-backend/internal/core/domain"
	"tableserve-backend/internal/core/ports"
)

// --- Requests ---

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TopupRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Reference string `json:"reference" binding:"omitempty,max=128"`
}

// SettleRequest is the structured payment signal every trigger adapter
// submits. Outcome and source are validated against the known enums; the
// reference is the only field settlement acts on.
type SettleRequest struct {
	Reference string `json:"reference" binding:"required,max=128"`
	Outcome   string `json:"outcome" binding:"required,oneof=success cancel error"`
	Source    string `json:"source" binding:"required,oneof=browser_redirect deep_link resume_poll post_message"`
}

func (r SettleRequest) Signal() domain.PaymentSignal {
	return domain.PaymentSignal{
		Reference: r.Reference,
		Outcome:   domain.SignalOutcome(r.Outcome),
		Source:    domain.SignalSource(r.Source),
	}
}

// BookingDateLayout is the wire format for booking dates. Date-only on
// purpose: a timestamp's calendar day depends on the zone it is rendered
// in, and the slot key must not shift with the client's clock.
const BookingDateLayout = "2006-01-02"

type ReserveRequest struct {
	TableID     uuid.UUID `json:"table_id" binding:"required"`
	BookingDate string    `json:"booking_date" binding:"required,datetime=2006-01-02"`
	GuestCount  int       `json:"guest_count" binding:"required,gt=0"`
	Amount      int64     `json:"amount" binding:"gte=0"`
}

type BookingPaymentRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type ConfirmBookingRequest struct {
	TableID     uuid.UUID `json:"table_id" binding:"required"`
	BookingDate string    `json:"booking_date" binding:"required,datetime=2006-01-02"`
	GuestCount  int       `json:"guest_count" binding:"required,gt=0"`
	Amount      int64     `json:"amount" binding:"gte=0"`
	Reference   string    `json:"reference" binding:"required,max=128"`
}

type WalletPayBookingRequest struct {
	TableID     uuid.UUID `json:"table_id" binding:"required"`
	BookingDate string    `json:"booking_date" binding:"required,datetime=2006-01-02"`
	GuestCount  int       `json:"guest_count" binding:"required,gt=0"`
	Amount      int64     `json:"amount" binding:"required,gt=0"`
}

// --- Responses ---

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
}

type WalletResponse struct {
	ID            uuid.UUID `json:"id"`
	Balance       int64     `json:"balance"`
	LoyaltyPoints int64     `json:"loyalty_points"`
	AccountNumber string    `json:"account_number,omitempty"`
	BankName      string    `json:"bank_name,omitempty"`
	Status        string    `json:"status"`
}

type SettlementResponse struct {
	Reference      string `json:"reference"`
	Status         string `json:"status"`
	Balance        int64  `json:"balance"`
	LoyaltyPoints  int64  `json:"loyalty_points"`
	AlreadySettled bool   `json:"already_settled"`
}

type TopupResponse struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
}

type BookingPaymentResponse struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
}

type TransactionResponse struct {
	ID        uuid.UUID `json:"id"`
	Reference string    `json:"reference"`
	Direction string    `json:"direction"`
	Purpose   string    `json:"purpose"`
	Method    string    `json:"method"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingResponse struct {
	ID               uuid.UUID `json:"id"`
	TableID          uuid.UUID `json:"table_id"`
	BookingDate      time.Time `json:"booking_date"`
	GuestCount       int       `json:"guest_count"`
	Status           string    `json:"status"`
	PaymentReference *string   `json:"payment_reference,omitempty"`
	Amount           int64     `json:"amount"`
}

type DriftResponse struct {
	WalletID      uuid.UUID `json:"wallet_id"`
	WalletBalance int64     `json:"wallet_balance"`
	LedgerSum     int64     `json:"ledger_sum"`
	Drift         int64     `json:"drift"`
	Repaired      bool      `json:"repaired"`
}

// --- Mappers ---

func FromUser(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

func FromAuthTokens(t *ports.AuthTokens) AuthResponse {
	return AuthResponse{
		AccessToken: t.AccessToken,
		ExpiresAt:   t.ExpiresAt,
		User:        FromUser(t.User),
	}
}

func FromWallet(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:            w.ID,
		Balance:       w.Balance,
		LoyaltyPoints: w.LoyaltyPoints,
		AccountNumber: w.AccountNumber,
		BankName:      w.BankName,
		Status:        string(w.Status),
	}
}

func FromSettlementResult(r *ports.SettlementResult) SettlementResponse {
	return SettlementResponse{
		Reference:      r.Reference,
		Status:         string(r.Transaction.Status),
		Balance:        r.NewBalance,
		LoyaltyPoints:  r.LoyaltyPoints,
		AlreadySettled: r.AlreadySettled,
	}
}

func FromTransaction(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID,
		Reference: t.Reference,
		Direction: string(t.Direction),
		Purpose:   string(t.Purpose),
		Method:    string(t.Method),
		Amount:    t.Amount,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}

func FromTransactions(txns []*domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, FromTransaction(t))
	}
	return out
}

func FromBooking(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		TableID:          b.TableID,
		BookingDate:      b.BookingDate,
		GuestCount:       b.GuestCount,
		Status:           string(b.Status),
		PaymentReference: b.PaymentReference,
		Amount:           b.Amount,
	}
}

func FromBookings(bookings []*domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, FromBooking(b))
	}
	return out
}

func FromBookingPaymentInitiation(i *ports.BookingPaymentInitiation) BookingPaymentResponse {
	return BookingPaymentResponse{Reference: i.Reference, Amount: i.Amount}
}

func FromDriftReport(r *ports.DriftReport) DriftResponse {
	return DriftResponse{
		WalletID:      r.WalletID,
		WalletBalance: r.WalletBalance,
		LedgerSum:     r.LedgerSum,
		Drift:         r.Drift,
		Repaired:      r.Repaired,
	}
}
