package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableserve-backend/internal/core/domain"
)

func newBookingRepoMock(t *testing.T) (pgxmock.PgxPoolIface, *BookingRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewBookingRepo(mock)
}

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		TableID:     uuid.New(),
		BookingDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		GuestCount:  4,
		Status:      domain.BookingPending,
		Amount:      15000,
	}
}

func TestBookingRepo_InsertActive(t *testing.T) {
	mock, repo := newBookingRepoMock(t)
	b := testBooking()

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(b.ID, b.UserID, b.TableID, b.BookingDate, b.GuestCount, b.Status, b.PaymentReference, b.Amount).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.InsertActive(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_InsertActive_SlotTaken(t *testing.T) {
	mock, repo := newBookingRepoMock(t)
	b := testBooking()

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(b.ID, b.UserID, b.TableID, b.BookingDate, b.GuestCount, b.Status, b.PaymentReference, b.Amount).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_bookings_active_slot"})

	assert.ErrorIs(t, repo.InsertActive(context.Background(), b), domain.ErrSlotTaken)
}

func TestBookingRepo_InsertActiveTx_SlotTaken(t *testing.T) {
	mock, repo := newBookingRepoMock(t)
	b := testBooking()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(b.ID, b.UserID, b.TableID, b.BookingDate, b.GuestCount, b.Status, b.PaymentReference, b.Amount).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_bookings_active_slot"})

	assert.ErrorIs(t, repo.InsertActiveTx(context.Background(), tx, b), domain.ErrSlotTaken)
}

func TestBookingRepo_CancelIfActive(t *testing.T) {
	t.Run("active booking cancelled", func(t *testing.T) {
		mock, repo := newBookingRepoMock(t)
		id := uuid.New()

		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.BookingCancelled, id, domain.BookingPending, domain.BookingConfirmed).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		ok, err := repo.CancelIfActive(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("terminal booking untouched", func(t *testing.T) {
		mock, repo := newBookingRepoMock(t)
		id := uuid.New()

		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.BookingCancelled, id, domain.BookingPending, domain.BookingConfirmed).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		ok, err := repo.CancelIfActive(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingRepo_GetByID_NotFound(t *testing.T) {
	mock, repo := newBookingRepoMock(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "table_id", "booking_date", "guest_count", "status", "payment_reference", "amount", "created_at", "updated_at",
		}))

	b, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, b)
}
