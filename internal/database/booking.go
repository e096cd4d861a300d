package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"findly/internal/apperror"
	"findly/internal/models"
)

const bookingColumns = `id, business_id, service_id, customer_id,
	guest_name, guest_phone, guest_email,
	date, start_time, end_time, status, notes, rejection_reason,
	booked_at, confirmed_at, cancelled_at, completed_at`

// nonTerminalStatuses filters to bookings that still occupy their slot.
const nonTerminalStatuses = `('PENDING', 'APPROVED')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var id, bid, sid string
	var customerID sql.NullString
	var date, start, end string
	var confirmedAt, cancelledAt, completedAt sql.NullTime

	err := row.Scan(&id, &bid, &sid, &customerID,
		&b.GuestName, &b.GuestPhone, &b.GuestEmail,
		&date, &start, &end, &b.Status, &b.Notes, &b.RejectionReason,
		&b.BookedAt, &confirmedAt, &cancelledAt, &completedAt)
	if err != nil {
		return nil, err
	}

	b.ID, _ = uuid.Parse(id)
	b.BusinessID, _ = uuid.Parse(bid)
	b.ServiceID, _ = uuid.Parse(sid)
	if customerID.Valid {
		cid, err := uuid.Parse(customerID.String)
		if err != nil {
			return nil, fmt.Errorf("parse customer_id: %w", err)
		}
		b.CustomerID = &cid
	}

	if b.Date, err = time.Parse(DateFormat, date); err != nil {
		return nil, fmt.Errorf("parse booking date: %w", err)
	}
	if b.StartTime, err = models.ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("parse start_time: %w", err)
	}
	if b.EndTime, err = models.ParseTimeOfDay(end); err != nil {
		return nil, fmt.Errorf("parse end_time: %w", err)
	}

	if confirmedAt.Valid {
		b.ConfirmedAt = &confirmedAt.Time
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return &b, nil
}

// FindNonTerminalBookings returns PENDING and APPROVED bookings for a
// business on a date, ordered by start time.
func (db *DB) FindNonTerminalBookings(ctx context.Context, businessID uuid.UUID, date time.Time) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE business_id = ? AND date = ? AND status IN `+nonTerminalStatuses+`
		ORDER BY start_time`,
		businessID.String(), date.Format(DateFormat))
	if err != nil {
		return nil, fmt.Errorf("find non-terminal bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// CreateBooking inserts the booking after re-checking for conflicts inside a
// single write transaction. The DSN makes the transaction immediate, so the
// check and the insert happen under the database write lock: of two
// concurrent creates for overlapping slots, exactly one commits and the
// other fails with SlotUnavailable.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create booking: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var conflicts int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE business_id = ? AND date = ?
		  AND status IN `+nonTerminalStatuses+`
		  AND start_time < ? AND ? < end_time`,
		b.BusinessID.String(), b.Date.Format(DateFormat),
		b.EndTime.String(), b.StartTime.String(),
	).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("check booking conflicts: %w", err)
	}
	if conflicts > 0 {
		return apperror.New(apperror.KindSlotUnavailable, "this time slot is no longer available")
	}

	var customerID any
	if b.CustomerID != nil {
		customerID = b.CustomerID.String()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings
			(id, business_id, service_id, customer_id,
			 guest_name, guest_phone, guest_email,
			 date, start_time, end_time, status, notes, rejection_reason, booked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID.String(), b.BusinessID.String(), b.ServiceID.String(), customerID,
		b.GuestName, b.GuestPhone, b.GuestEmail,
		b.Date.Format(DateFormat), b.StartTime.String(), b.EndTime.String(),
		string(b.Status), b.Notes, b.RejectionReason, b.BookedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// GetBooking returns a booking by id, or a NotFound error.
func (db *DB) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id.String())
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.KindNotFound, "booking %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// GetBookingForOwner returns the booking only when its business belongs to
// ownerID. Foreign bookings are NotFound, matching GetBusinessForOwner.
func (db *DB) GetBookingForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `
		SELECT b.id, b.business_id, b.service_id, b.customer_id,
		       b.guest_name, b.guest_phone, b.guest_email,
		       b.date, b.start_time, b.end_time, b.status, b.notes, b.rejection_reason,
		       b.booked_at, b.confirmed_at, b.cancelled_at, b.completed_at
		FROM bookings b
		JOIN businesses biz ON biz.id = b.business_id
		WHERE b.id = ? AND biz.owner_id = ?`,
		id.String(), ownerID.String())
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.KindNotFound, "booking %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking for owner: %w", err)
	}
	return b, nil
}

// ApplyTransition writes lifecycle effects, guarded by the status the caller
// computed them from. A zero row count means the booking changed (or
// vanished) in between; surfaced as InvalidTransition so callers can detect
// the stale-state race.
func (db *DB) ApplyTransition(ctx context.Context, id uuid.UUID, from models.BookingStatus, eff models.Effects) error {
	res, err := db.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?,
		    rejection_reason = CASE WHEN ? != '' THEN ? ELSE rejection_reason END,
		    confirmed_at = COALESCE(?, confirmed_at),
		    cancelled_at = COALESCE(?, cancelled_at),
		    completed_at = COALESCE(?, completed_at)
		WHERE id = ? AND status = ?`,
		string(eff.Status),
		eff.RejectionReason, eff.RejectionReason,
		nullTime(eff.ConfirmedAt), nullTime(eff.CancelledAt), nullTime(eff.CompletedAt),
		id.String(), string(from))
	if err != nil {
		return fmt.Errorf("apply transition: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply transition rows: %w", err)
	}
	if n == 0 {
		return apperror.Newf(apperror.KindInvalidTransition,
			"booking %s is no longer in status %s", id, from)
	}
	return nil
}

// OwnerBookingFilter narrows ListOwnerBookings.
type OwnerBookingFilter struct {
	Status *models.BookingStatus
	Date   *time.Time
}

// ListOwnerBookings returns a business's bookings, newest first.
func (db *DB) ListOwnerBookings(ctx context.Context, businessID uuid.UUID, filter OwnerBookingFilter) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE business_id = ?`
	args := []any{businessID.String()}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	if filter.Date != nil {
		query += ` AND date = ?`
		args = append(args, filter.Date.Format(DateFormat))
	}
	query += ` ORDER BY date DESC, start_time DESC`

	return db.queryBookings(ctx, query, args...)
}

// ListCustomerBookings returns a customer's bookings, newest first.
func (db *DB) ListCustomerBookings(ctx context.Context, customerID uuid.UUID) ([]models.Booking, error) {
	return db.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE customer_id = ?
		ORDER BY date DESC, start_time DESC`, customerID.String())
}

// ListBookingsInRange returns a business's bookings between two dates
// inclusive, ordered by date and start time. Used by report export.
func (db *DB) ListBookingsInRange(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]models.Booking, error) {
	return db.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE business_id = ? AND date >= ? AND date <= ?
		ORDER BY date, start_time`,
		businessID.String(), from.Format(DateFormat), to.Format(DateFormat))
}

// ListApprovedForDate returns every APPROVED booking across all businesses
// for one date. Used by the reminder sweep.
func (db *DB) ListApprovedForDate(ctx context.Context, date time.Time) ([]models.Booking, error) {
	return db.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE date = ? AND status = ?
		ORDER BY start_time`,
		date.Format(DateFormat), string(models.StatusApproved))
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
