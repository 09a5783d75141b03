package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tableserve-backend/internal/adapter/http/dto"
	"tableserve-backend/internal/adapter/http/middleware"
	"tableserve-backend/internal/core/ports"
	"tableserve-backend/pkg/apperror"
	"tableserve-backend/pkg/response"
)

// parseBookingDate decodes the date-only wire format. Binding already
// validated the layout; this is the defensive second decode.
func parseBookingDate(s string) (time.Time, error) {
	return time.Parse(dto.BookingDateLayout, s)
}

type BookingHandler struct {
	bookings ports.BookingService
	logger   zerolog.Logger
}

func NewBookingHandler(bookings ports.BookingService, logger zerolog.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger.With().Str("handler", "booking").Logger(),
	}
}

// Reserve handles POST /bookings. Unpaid flow: holds the slot PENDING.
func (h *BookingHandler) Reserve(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.NewUnauthorized(""))
		return
	}

	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.NewValidation("invalid booking request: "+err.Error()))
		return
	}

	date, err := parseBookingDate(req.BookingDate)
	if err != nil {
		response.Error(c, apperror.NewValidation("booking_date must be YYYY-MM-DD"))
		return
	}

	booking, err := h.bookings.TryReserve(c.Request.Context(), ports.BookingRequest{
		UserID:      userID,
		TableID:     req.TableID,
		BookingDate: date,
		GuestCount:  req.GuestCount,
		Amount:      req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, dto.FromBooking(booking))
}

// Confirm handles POST /bookings/confirm. Paid flow: settles the gateway
// payment, then creates the CONFIRMED booking.
func (h *BookingHandler) Confirm(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.NewUnauthorized(""))
		return
	}

	var req dto.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.NewValidation("invalid booking confirmation: "+err.Error()))
		return
	}

	date, err := parseBookingDate(req.BookingDate)
	if err != nil {
		response.Error(c, apperror.NewValidation("booking_date must be YYYY-MM-DD"))
		return
	}

	booking, err := h.bookings.ConfirmAfterPayment(c.Request.Context(), ports.BookingRequest{
		UserID:      userID,
		TableID:     req.TableID,
		BookingDate: date,
		GuestCount:  req.GuestCount,
		Amount:      req.Amount,
	}, req.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, dto.FromBooking(booking))
}

// PayWithWallet handles POST /bookings/pay-with-wallet.
func (h *BookingHandler) PayWithWallet(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.NewUnauthorized(""))
		return
	}

	var req dto.WalletPayBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.NewValidation("invalid booking payment: "+err.Error()))
		return
	}

	date, err := parseBookingDate(req.BookingDate)
	if err != nil {
		response.Error(c, apperror.NewValidation("booking_date must be YYYY-MM-DD"))
		return
	}

	booking, err := h.bookings.PayWithWallet(c.Request.Context(), ports.BookingRequest{
		UserID:      userID,
		TableID:     req.TableID,
		BookingDate: date,
		GuestCount:  req.GuestCount,
		Amount:      req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, dto.FromBooking(booking))
}

// InitiatePayment handles POST /bookings/initiate-payment. Records the
// pending gateway debit and returns the reference to complete at checkout.
func (h *BookingHandler) InitiatePayment(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.NewUnauthorized(""))
		return
	}

	var req dto.BookingPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.NewValidation("invalid payment initiation: "+err.Error()))
		return
	}

	initiation, err := h.bookings.InitiatePayment(c.Request.Context(), userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, dto.FromBookingPaymentInitiation(initiation))
}

// Cancel handles DELETE /bookings/:id.
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.NewUnauthorized(""))
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.NewValidation("invalid booking id"))
		return
	}

	if err := h.bookings.Cancel(c.Request.Context(), userID, bookingID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"cancelled": true})
}

// List handles GET /bookings.
func (h *BookingHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.NewUnauthorized(""))
		return
	}

	bookings, err := h.bookings.ListUpcoming(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, dto.FromBookings(bookings))
}
