package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the state of a charge attempt
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is the durable record of one charge attempt against a booking.
// A booking may accumulate several rows across retries; rows are never
// deleted, and a row never leaves the succeeded state once it reaches it.
// Amount is stored in major units, matching Booking.TotalPrice.
type Payment struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	BookingID        uuid.UUID     `json:"booking_id" db:"booking_id"`
	ExternalIntentID string        `json:"external_intent_id" db:"external_intent_id"`
	Amount           float64       `json:"amount" db:"amount"`
	Currency         string        `json:"currency" db:"currency"`
	Status           PaymentStatus `json:"status" db:"status"`
	PaymentMethod    *string       `json:"payment_method,omitempty" db:"payment_method"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	FailureReason    *string       `json:"failure_reason,omitempty" db:"failure_reason"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// CreateIntentRequest is the payload for POST /payments/create-intent
type CreateIntentRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

// IntentDescriptor is what the client receives to complete a payment.
// The processor's secret key never appears here.
type IntentDescriptor struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	AmountMinor  int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// PaymentEventOutcome normalizes processor outcomes
type PaymentEventOutcome string

const (
	PaymentOutcomeSucceeded PaymentEventOutcome = "succeeded"
	PaymentOutcomeFailed    PaymentEventOutcome = "failed"
)

// PaymentEvent is the normalized reconciliation input. Both the verified
// webhook path and the test-mode confirm endpoint produce one of these, so
// the idempotency and monotonicity guarantees live in a single place.
type PaymentEvent struct {
	IntentID      string              `json:"intent_id"`
	Outcome       PaymentEventOutcome `json:"outcome"`
	PaymentMethod *string             `json:"payment_method,omitempty"`
	FailureReason *string             `json:"failure_reason,omitempty"`
	Source        string              `json:"source"` // "webhook" or "confirm"
	RawBody       []byte              `json:"-"`
}

// ConfirmPaymentRequest is the payload for the test-mode POST /payments/confirm
type ConfirmPaymentRequest struct {
	IntentID      string  `json:"intent_id" binding:"required"`
	Outcome       string  `json:"outcome" binding:"required"`
	FailureReason *string `json:"failure_reason,omitempty"`
}
