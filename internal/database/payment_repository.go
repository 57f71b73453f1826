package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/models"
)

// PaymentRepository handles payment data operations
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, booking_id, external_intent_id, amount, currency, status,
	payment_method, completed_at, failure_reason, created_at, updated_at`

// Create inserts a new payment row. external_intent_id carries a unique
// constraint; a duplicate maps to a conflict.
func (r *PaymentRepository) Create(payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, external_intent_id, amount,
			currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	payment.ID = uuid.New()
	payment.Status = models.PaymentStatusPending
	payment.CreatedAt = now
	payment.UpdatedAt = now

	_, err := r.db.Exec(query,
		payment.ID, payment.BookingID, payment.ExternalIntentID,
		payment.Amount, payment.Currency, payment.Status,
		payment.CreatedAt, payment.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.Conflict("payment intent already recorded")
		}
		return apperrors.Internal("failed to create payment", err)
	}
	return nil
}

// GetByIntentID retrieves a payment by its processor intent ID
func (r *PaymentRepository) GetByIntentID(intentID string) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT` + paymentColumns + ` FROM payments WHERE external_intent_id = $1`

	err := r.db.Get(&payment, query, intentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("payment not found")
		}
		return nil, apperrors.Internal("failed to get payment", err)
	}
	return &payment, nil
}

// GetPendingByBooking retrieves the most recent pending payment for a
// booking, if one exists
func (r *PaymentRepository) GetPendingByBooking(bookingID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT` + paymentColumns + `
		FROM payments WHERE booking_id = $1 AND status = 'pending'
		ORDER BY created_at DESC LIMIT 1`

	err := r.db.Get(&payment, query, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Internal("failed to get pending payment", err)
	}
	return &payment, nil
}

// ListByBooking retrieves all payment rows for a booking, newest first
func (r *PaymentRepository) ListByBooking(bookingID uuid.UUID) ([]models.Payment, error) {
	payments := []models.Payment{}
	query := `SELECT` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at DESC`

	if err := r.db.Select(&payments, query, bookingID); err != nil {
		return nil, apperrors.Internal("failed to list payments", err)
	}
	return payments, nil
}

// MarkSucceeded records a successful charge. The status guard makes the
// operation idempotent: replaying a success affects zero rows, and the
// caller treats that as already-processed rather than an error.
func (r *PaymentRepository) MarkSucceeded(intentID string, paymentMethod *string, completedAt time.Time) (bool, error) {
	query := `
		UPDATE payments SET status = 'succeeded', payment_method = $2,
			completed_at = $3, failure_reason = NULL, updated_at = $4
		WHERE external_intent_id = $1 AND status <> 'succeeded'`

	result, err := r.db.Exec(query, intentID, paymentMethod, completedAt, time.Now())
	if err != nil {
		return false, apperrors.Internal("failed to mark payment succeeded", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Internal("failed to check payment update", err)
	}
	return rows > 0, nil
}

// MarkFailed records a failed charge. Succeeded is terminal, so a late or
// out-of-order failure event never overwrites a success; only pending rows
// transition.
func (r *PaymentRepository) MarkFailed(intentID string, failureReason *string) (bool, error) {
	query := `
		UPDATE payments SET status = 'failed', failure_reason = $2, updated_at = $3
		WHERE external_intent_id = $1 AND status = 'pending'`

	result, err := r.db.Exec(query, intentID, failureReason, time.Now())
	if err != nil {
		return false, apperrors.Internal("failed to mark payment failed", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Internal("failed to check payment update", err)
	}
	return rows > 0, nil
}
