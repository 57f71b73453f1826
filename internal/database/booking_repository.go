package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/models"
)

// BookingRepository handles booking data operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// overlapCondition matches bookings that hold a slot against the half-open
// window [$2, $3). Only pending and confirmed bookings hold slots.
const overlapCondition = `
	space_id = $1
	AND status IN ('pending', 'confirmed')
	AND start_at < $3
	AND end_at > $2`

// CountOverlapping returns how many slot-holding bookings intersect the
// window. excludeID skips one booking, for self-checks; pass uuid.Nil to
// check all.
func (r *BookingRepository) CountOverlapping(spaceID uuid.UUID, startAt, endAt time.Time, excludeID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE` + overlapCondition + ` AND id <> $4`

	if err := r.db.Get(&count, query, spaceID, startAt, endAt, excludeID); err != nil {
		return 0, apperrors.Internal("failed to count overlapping bookings", err)
	}
	return count, nil
}

// CreateWithSlotCheck atomically verifies the slot is free and inserts the
// booking. The space row is locked FOR UPDATE first, which serializes
// concurrent attempts on the same space: of two racing requests, one blocks
// until the other commits and then sees its row in the overlap count.
func (r *BookingRepository) CreateWithSlotCheck(booking *models.Booking) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return apperrors.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var spaceStatus string
	err = tx.Get(&spaceStatus, `SELECT status FROM spaces WHERE id = $1 FOR UPDATE`, booking.SpaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("space not found")
		}
		return apperrors.Internal("failed to lock space", err)
	}
	if spaceStatus != string(models.SpaceStatusActive) {
		return apperrors.InvalidState("space is not accepting bookings")
	}

	var count int
	countQuery := `SELECT COUNT(*) FROM bookings WHERE` + overlapCondition
	if err := tx.Get(&count, countQuery, booking.SpaceID, booking.StartAt, booking.EndAt); err != nil {
		return apperrors.Internal("failed to check slot availability", err)
	}
	if count > 0 {
		return apperrors.Conflict("space is already booked for the requested window")
	}

	now := time.Now()
	booking.ID = uuid.New()
	booking.Status = models.BookingStatusPending
	booking.CreatedAt = now
	booking.UpdatedAt = now

	insertQuery := `
		INSERT INTO bookings (id, space_id, user_id, start_date, end_date,
			start_time, end_time, start_at, end_at, people_count, total_price,
			currency, status, special_requests, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = tx.Exec(insertQuery,
		booking.ID, booking.SpaceID, booking.UserID,
		booking.StartDate, booking.EndDate, booking.StartTime, booking.EndTime,
		booking.StartAt, booking.EndAt, booking.PeopleCount, booking.TotalPrice,
		booking.Currency, booking.Status, booking.SpecialRequests,
		booking.CreatedAt, booking.UpdatedAt)
	if err != nil {
		return apperrors.Internal("failed to create booking", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Internal("failed to commit booking", err)
	}
	return nil
}

const bookingColumns = `
	id, space_id, user_id, start_date, end_date, start_time, end_time,
	start_at, end_at, people_count, total_price, currency, status,
	special_requests, cancel_reason, created_at, updated_at`

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`

	err := r.db.Get(&booking, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, apperrors.Internal("failed to get booking", err)
	}
	return &booking, nil
}

// ListByUser retrieves a user's bookings, newest first
func (r *BookingRepository) ListByUser(userID uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	if err := r.db.Select(&bookings, query, userID); err != nil {
		return nil, apperrors.Internal("failed to list bookings", err)
	}
	return bookings, nil
}

// ListBySpace retrieves a space's bookings, newest first
func (r *BookingRepository) ListBySpace(spaceID uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE space_id = $1 ORDER BY created_at DESC`

	if err := r.db.Select(&bookings, query, spaceID); err != nil {
		return nil, apperrors.Internal("failed to list bookings", err)
	}
	return bookings, nil
}

// Confirm transitions a booking from pending to confirmed. The guard in the
// WHERE clause makes the transition a no-op rather than a corruption when
// the booking has moved on; callers distinguish via the returned flag.
func (r *BookingRepository) Confirm(id uuid.UUID) (bool, error) {
	query := `UPDATE bookings SET status = 'confirmed', updated_at = $2 WHERE id = $1 AND status = 'pending'`

	result, err := r.db.Exec(query, id, time.Now())
	if err != nil {
		return false, apperrors.Internal("failed to confirm booking", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Internal("failed to check confirm result", err)
	}
	return rows > 0, nil
}

// Cancel transitions a pending or confirmed booking to cancelled
func (r *BookingRepository) Cancel(id uuid.UUID, reason string) (bool, error) {
	query := `
		UPDATE bookings SET status = 'cancelled', cancel_reason = $2, updated_at = $3
		WHERE id = $1 AND status IN ('pending', 'confirmed')`

	var reasonArg *string
	if reason != "" {
		reasonArg = &reason
	}
	result, err := r.db.Exec(query, id, reasonArg, time.Now())
	if err != nil {
		return false, apperrors.Internal("failed to cancel booking", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Internal("failed to check cancel result", err)
	}
	return rows > 0, nil
}

// UpdateDetails edits the fields a pending booking still accepts
func (r *BookingRepository) UpdateDetails(id uuid.UUID, req *models.UpdateBookingRequest) (bool, error) {
	query := `
		UPDATE bookings SET
			people_count = COALESCE($2, people_count),
			special_requests = COALESCE($3, special_requests),
			updated_at = $4
		WHERE id = $1 AND status = 'pending'`

	result, err := r.db.Exec(query, id, req.PeopleCount, req.SpecialRequests, time.Now())
	if err != nil {
		return false, apperrors.Internal("failed to update booking", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Internal("failed to check update result", err)
	}
	return rows > 0, nil
}

// CompleteElapsed moves confirmed bookings whose window has passed to
// completed. Returns the number of bookings transitioned.
func (r *BookingRepository) CompleteElapsed(now time.Time) (int64, error) {
	query := `
		UPDATE bookings SET status = 'completed', updated_at = $1
		WHERE status = 'confirmed' AND end_at <= $1`

	result, err := r.db.Exec(query, now)
	if err != nil {
		return 0, apperrors.Internal("failed to complete elapsed bookings", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Internal("failed to check completion result", err)
	}
	return rows, nil
}
