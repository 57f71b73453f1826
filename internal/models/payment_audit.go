package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event being audited
type PaymentEventType string

const (
	PaymentEventIntentCreated        PaymentEventType = "intent_created"
	PaymentEventIntentReused         PaymentEventType = "intent_reused"
	PaymentEventWebhookReceived      PaymentEventType = "webhook_received"
	PaymentEventWebhookRejected      PaymentEventType = "webhook_rejected"
	PaymentEventSuccess              PaymentEventType = "payment_success"
	PaymentEventFailed               PaymentEventType = "payment_failed"
	PaymentEventReplayIgnored        PaymentEventType = "replay_ignored"
	PaymentEventBookingConfirmed     PaymentEventType = "booking_confirmed"
	PaymentEventBookingConfirmFailed PaymentEventType = "booking_confirmation_failed"
)

// PaymentEventSource identifies where the event originated
type PaymentEventSource string

const (
	PaymentSourceBackend PaymentEventSource = "backend"
	PaymentSourceWebhook PaymentEventSource = "processor_webhook"
	PaymentSourceUser    PaymentEventSource = "user"
	PaymentSourceSystem  PaymentEventSource = "system"
)

// PaymentAudit is an immutable audit entry for payment lifecycle events.
// A succeeded payment on a booking that can no longer be confirmed lands
// here as booking_confirmation_failed and is handled manually (refund).
type PaymentAudit struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	BookingID    *uuid.UUID         `json:"booking_id,omitempty" db:"booking_id"`
	PaymentID    *uuid.UUID         `json:"payment_id,omitempty" db:"payment_id"`
	IntentID     *string            `json:"intent_id,omitempty" db:"intent_id"`
	EventType    PaymentEventType   `json:"event_type" db:"event_type"`
	EventSource  PaymentEventSource `json:"event_source" db:"event_source"`
	Amount       *float64           `json:"amount,omitempty" db:"amount"`
	Currency     *string            `json:"currency,omitempty" db:"currency"`
	ErrorMessage *string            `json:"error_message,omitempty" db:"error_message"`
	RawBody      *string            `json:"raw_body,omitempty" db:"raw_body"`
	IPAddress    *string            `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent    *string            `json:"user_agent,omitempty" db:"user_agent"`
	ClientInfo   *string            `json:"client_info,omitempty" db:"client_info"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}
