package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tableserve-backend/internal/core/domain"
)

// BookingRepo is the pgx implementation of ports.BookingRepository.
type BookingRepo struct {
	pool Pool
}

func NewBookingRepo(pool Pool) *BookingRepo {
	return &BookingRepo{pool: pool}
}

const bookingColumns = `id, user_id, table_id, booking_date, guest_count, status, payment_reference, amount, created_at, updated_at`

const insertBookingSQL = `
	INSERT INTO bookings (id, user_id, table_id, booking_date, guest_count, status, payment_reference, amount, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`

const paymentReferenceIndex = "idx_bookings_payment_reference"

func mapBookingInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		if pgErr.ConstraintName == paymentReferenceIndex {
			return domain.ErrReferenceConsumed
		}
		return domain.ErrSlotTaken
	}
	return fmt.Errorf("inserting booking: %w", err)
}

// InsertActive relies on the partial unique index over active statuses to
// decide the slot race. The database is the arbiter; no pre-check is done.
func (r *BookingRepo) InsertActive(ctx context.Context, booking *domain.Booking) error {
	_, err := r.pool.Exec(ctx, insertBookingSQL,
		booking.ID, booking.UserID, booking.TableID, booking.BookingDate,
		booking.GuestCount, booking.Status, booking.PaymentReference, booking.Amount,
	)
	if err != nil {
		return mapBookingInsertErr(err)
	}
	return nil
}

func (r *BookingRepo) InsertActiveTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	_, err := tx.Exec(ctx, insertBookingSQL,
		booking.ID, booking.UserID, booking.TableID, booking.BookingDate,
		booking.GuestCount, booking.Status, booking.PaymentReference, booking.Amount,
	)
	if err != nil {
		return mapBookingInsertErr(err)
	}
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b domain.Booking
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.TableID, &b.BookingDate, &b.GuestCount,
		&b.Status, &b.PaymentReference, &b.Amount, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepo) CancelIfActive(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status IN ($3, $4)`

	tag, err := r.pool.Exec(ctx, query,
		domain.BookingCancelled, id, domain.BookingPending, domain.BookingConfirmed,
	)
	if err != nil {
		return false, fmt.Errorf("cancelling booking: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID uuid.UUID, from time.Time) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND booking_date >= $2
		ORDER BY booking_date ASC`

	rows, err := r.pool.Query(ctx, query, userID, from)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.TableID, &b.BookingDate, &b.GuestCount,
			&b.Status, &b.PaymentReference, &b.Amount, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning booking row: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating booking rows: %w", err)
	}
	return bookings, nil
}
