package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/models"
)

// PaymentAuditRepository persists the payment audit trail
type PaymentAuditRepository struct {
	db DB
}

// NewPaymentAuditRepository creates a new payment audit repository
func NewPaymentAuditRepository(db DB) *PaymentAuditRepository {
	return &PaymentAuditRepository{db: db}
}

// Log appends an audit entry. Entries are append-only; there is no update
// or delete path.
func (r *PaymentAuditRepository) Log(entry *models.PaymentAudit) error {
	query := `
		INSERT INTO payment_audits (id, booking_id, payment_id, intent_id,
			event_type, event_source, amount, currency, error_message,
			raw_body, ip_address, user_agent, client_info, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()

	_, err := r.db.Exec(query,
		entry.ID, entry.BookingID, entry.PaymentID, entry.IntentID,
		entry.EventType, entry.EventSource, entry.Amount, entry.Currency,
		entry.ErrorMessage, entry.RawBody, entry.IPAddress, entry.UserAgent,
		entry.ClientInfo, entry.CreatedAt)
	if err != nil {
		return apperrors.Internal("failed to write payment audit entry", err)
	}
	return nil
}

// ListByBooking retrieves the audit trail for a booking, oldest first
func (r *PaymentAuditRepository) ListByBooking(bookingID uuid.UUID) ([]models.PaymentAudit, error) {
	entries := []models.PaymentAudit{}
	query := `
		SELECT id, booking_id, payment_id, intent_id, event_type, event_source,
			amount, currency, error_message, raw_body, ip_address, user_agent,
			client_info, created_at
		FROM payment_audits WHERE booking_id = $1 ORDER BY created_at ASC`

	if err := r.db.Select(&entries, query, bookingID); err != nil {
		return nil, apperrors.Internal("failed to list payment audit entries", err)
	}
	return entries, nil
}
