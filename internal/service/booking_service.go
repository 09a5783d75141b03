package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tableserve-backend/internal/core/domain"
	"tableserve-backend/internal/core/ports"
	"tableserve-backend/pkg/apperror"
)

// BookingService manages table reservations. The (table, date) slot race
// is decided by the store's partial unique index, never by application
// locks; every insert path maps domain.ErrSlotTaken to a typed conflict.
type BookingService struct {
	transactor  ports.DBTransactor
	bookingRepo ports.BookingRepository
	walletRepo  ports.WalletRepository
	txRepo      ports.TransactionRepository
	wallets     ports.WalletService
	settlement  ports.SettlementService
	logger      zerolog.Logger
}

func NewBookingService(
	transactor ports.DBTransactor,
	bookingRepo ports.BookingRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	wallets ports.WalletService,
	settlement ports.SettlementService,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		transactor:  transactor,
		bookingRepo: bookingRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		wallets:     wallets,
		settlement:  settlement,
		logger:      logger.With().Str("component", "booking").Logger(),
	}
}

func validateBookingRequest(req ports.BookingRequest) error {
	if req.UserID == uuid.Nil || req.TableID == uuid.Nil {
		return apperror.NewValidation("user_id and table_id are required")
	}
	if req.GuestCount <= 0 {
		return apperror.NewValidation("guest_count must be positive")
	}
	if req.BookingDate.IsZero() {
		return apperror.NewValidation("booking_date is required")
	}
	return nil
}

// normalizeDate strips the time component so the slot key is the calendar
// date the index sees.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TryReserve claims the slot with a PENDING booking awaiting payment.
func (s *BookingService) TryReserve(ctx context.Context, req ports.BookingRequest) (*domain.Booking, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:          uuid.New(),
		UserID:      req.UserID,
		TableID:     req.TableID,
		BookingDate: normalizeDate(req.BookingDate),
		GuestCount:  req.GuestCount,
		Status:      domain.BookingPending,
		Amount:      req.Amount,
	}

	if err := s.bookingRepo.InsertActive(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			return nil, apperror.NewTableUnavailable()
		}
		return nil, apperror.NewInternal(err)
	}

	s.logger.Info().
		Str("booking_id", booking.ID.String()).
		Str("table_id", booking.TableID.String()).
		Time("booking_date", booking.BookingDate).
		Msg("slot reserved")
	return booking, nil
}

// InitiatePayment records the PENDING gateway debit before the client is
// handed to the checkout. ConfirmAfterPayment later settles this exact row,
// so the reference is bound to the caller's wallet from the start.
func (s *BookingService) InitiatePayment(ctx context.Context, userID uuid.UUID, amount int64) (*ports.BookingPaymentInitiation, error) {
	if userID == uuid.Nil {
		return nil, apperror.NewValidation("user_id is required")
	}
	if amount <= 0 {
		return nil, apperror.NewInvalidAmount()
	}

	wallet, err := s.wallets.EnsureWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("BK-GW-%s", uuid.NewString())
	txn := &domain.Transaction{
		ID:        uuid.New(),
		WalletID:  wallet.ID,
		Reference: reference,
		Direction: domain.DirectionDebit,
		Purpose:   domain.PurposeBooking,
		Method:    domain.MethodGateway,
		Amount:    amount,
	}
	if err := s.txRepo.CreatePending(ctx, txn); err != nil {
		return nil, apperror.NewInternal(err)
	}

	s.logger.Info().
		Str("reference", reference).
		Int64("amount", amount).
		Msg("booking payment initiated")
	return &ports.BookingPaymentInitiation{Reference: reference, Amount: amount}, nil
}

// ConfirmAfterPayment settles the gateway payment first and only then
// creates the CONFIRMED booking. The booking is never written
// speculatively: an unverified payment must not hold a slot.
func (s *BookingService) ConfirmAfterPayment(ctx context.Context, req ports.BookingRequest, reference string) (*domain.Booking, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}
	if reference == "" {
		return nil, apperror.NewValidation("payment reference is required")
	}

	// Bind the reference to this request before settling anything. These
	// fields are immutable after initiation, so checking here also covers
	// the post-settlement state.
	if err := s.checkPaymentBinding(ctx, req, reference); err != nil {
		return nil, err
	}

	if _, err := s.settlement.Settle(ctx, reference); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:               uuid.New(),
		UserID:           req.UserID,
		TableID:          req.TableID,
		BookingDate:      normalizeDate(req.BookingDate),
		GuestCount:       req.GuestCount,
		Status:           domain.BookingConfirmed,
		PaymentReference: &reference,
		Amount:           req.Amount,
	}

	if err := s.bookingRepo.InsertActive(ctx, booking); err != nil {
		// A reference can back at most one booking; losing that race is an
		// ordinary conflict, not an operator incident.
		if errors.Is(err, domain.ErrReferenceConsumed) {
			return nil, apperror.NewBookingReferenceUsed(reference)
		}
		// The money settled but the booking did not land. This includes
		// losing the slot race while paying; operators must resolve it
		// (refund or reseat), so it is never folded into TableUnavailable.
		s.logger.Error().
			Err(err).
			Str("reference", reference).
			Str("table_id", req.TableID.String()).
			Msg("booking insert failed after successful settlement")
		return nil, apperror.NewPostSettlementBookingFailed(reference, err)
	}

	s.logger.Info().
		Str("booking_id", booking.ID.String()).
		Str("reference", reference).
		Msg("booking confirmed after settlement")
	return booking, nil
}

// checkPaymentBinding rejects references that were not initiated for a
// booking by this user or do not cover the booking amount. Without it any
// settleable reference, a top-up included, could confirm a booking.
func (s *BookingService) checkPaymentBinding(ctx context.Context, req ports.BookingRequest, reference string) error {
	txn, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if txn == nil {
		return apperror.NewReferenceNotFound(reference)
	}
	if txn.Purpose != domain.PurposeBooking ||
		txn.Direction != domain.DirectionDebit ||
		txn.Method != domain.MethodGateway ||
		txn.Amount < req.Amount {
		return apperror.NewBookingPaymentMismatch(reference)
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if wallet == nil || wallet.ID != txn.WalletID {
		return apperror.NewBookingPaymentMismatch(reference)
	}
	return nil
}

// PayWithWallet debits the wallet and confirms the booking in one database
// transaction. No gateway is involved, so the ledger row is written
// COMPLETED directly.
func (s *BookingService) PayWithWallet(ctx context.Context, req ports.BookingRequest) (*domain.Booking, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, apperror.NewInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck // no-op after commit

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if wallet == nil {
		return nil, apperror.NewWalletNotFound()
	}
	if !wallet.CanDebit(req.Amount) {
		return nil, apperror.NewInsufficientFunds()
	}

	if err := s.walletRepo.Debit(ctx, dbTx, wallet.ID, req.Amount); err != nil {
		return nil, apperror.NewInternal(err)
	}

	reference := fmt.Sprintf("BK-WLT-%s", uuid.NewString())
	txn := &domain.Transaction{
		ID:        uuid.New(),
		WalletID:  wallet.ID,
		Reference: reference,
		Direction: domain.DirectionDebit,
		Purpose:   domain.PurposeBooking,
		Method:    domain.MethodWallet,
		Amount:    req.Amount,
	}
	if err := s.txRepo.CreateCompleted(ctx, dbTx, txn); err != nil {
		return nil, apperror.NewInternal(err)
	}

	booking := &domain.Booking{
		ID:               uuid.New(),
		UserID:           req.UserID,
		TableID:          req.TableID,
		BookingDate:      normalizeDate(req.BookingDate),
		GuestCount:       req.GuestCount,
		Status:           domain.BookingConfirmed,
		PaymentReference: &reference,
		Amount:           req.Amount,
	}
	if err := s.bookingRepo.InsertActiveTx(ctx, dbTx, booking); err != nil {
		// Rolling back also returns the debited funds.
		if errors.Is(err, domain.ErrSlotTaken) {
			return nil, apperror.NewTableUnavailable()
		}
		return nil, apperror.NewInternal(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.NewInternal(err)
	}

	s.logger.Info().
		Str("booking_id", booking.ID.String()).
		Str("reference", reference).
		Int64("amount", req.Amount).
		Msg("booking paid from wallet")
	return booking, nil
}

// Cancel releases the slot. Only the booking owner may cancel.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID uuid.UUID) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if booking == nil || booking.UserID != userID {
		return apperror.NewBookingNotFound()
	}

	ok, err := s.bookingRepo.CancelIfActive(ctx, bookingID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !ok {
		return apperror.NewValidation("booking is not active")
	}

	s.logger.Info().Str("booking_id", bookingID.String()).Msg("booking cancelled")
	return nil
}

func (s *BookingService) ListUpcoming(ctx context.Context, userID uuid.UUID) ([]*domain.Booking, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID, normalizeDate(time.Now()))
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return bookings, nil
}
