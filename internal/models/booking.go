package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// IsTerminal reports whether no further transition is possible
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// Booking is a reservation of a space for a time window by a user.
//
// StartDate/EndDate are calendar dates; StartTime/EndTime are optional
// "HH:MM" time-of-day bounds. StartAt/EndAt are the composed half-open
// instants the overlap check runs against: date-only bookings block whole
// days, so EndAt is the day after EndDate at midnight.
type Booking struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	SpaceID         uuid.UUID     `json:"space_id" db:"space_id"`
	UserID          uuid.UUID     `json:"user_id" db:"user_id"`
	StartDate       string        `json:"start_date" db:"start_date"`
	EndDate         string        `json:"end_date" db:"end_date"`
	StartTime       *string       `json:"start_time,omitempty" db:"start_time"`
	EndTime         *string       `json:"end_time,omitempty" db:"end_time"`
	StartAt         time.Time     `json:"start_at" db:"start_at"`
	EndAt           time.Time     `json:"end_at" db:"end_at"`
	PeopleCount     int           `json:"people_count" db:"people_count"`
	TotalPrice      float64       `json:"total_price" db:"total_price"`
	Currency        string        `json:"currency" db:"currency"`
	Status          BookingStatus `json:"status" db:"status"`
	SpecialRequests *string       `json:"special_requests,omitempty" db:"special_requests"`
	CancelReason    *string       `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// CreateBookingRequest is the payload for POST /bookings
type CreateBookingRequest struct {
	SpaceID         string  `json:"space_id" binding:"required"`
	StartDate       string  `json:"start_date" binding:"required"`
	EndDate         string  `json:"end_date" binding:"required"`
	StartTime       *string `json:"start_time,omitempty"`
	EndTime         *string `json:"end_time,omitempty"`
	PeopleCount     int     `json:"people_count" binding:"required,min=1"`
	SpecialRequests *string `json:"special_requests,omitempty"`
}

// UpdateBookingRequest is the payload for PUT /bookings/:id.
// Only pending bookings accept edits, and only these fields.
type UpdateBookingRequest struct {
	PeopleCount     *int    `json:"people_count,omitempty"`
	SpecialRequests *string `json:"special_requests,omitempty"`
}

// CancelBookingRequest carries the cancellation reason
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// AvailabilityQuery is the bound query for GET /bookings/check-availability
type AvailabilityQuery struct {
	SpaceID   string  `form:"space_id" binding:"required"`
	StartDate string  `form:"start_date" binding:"required"`
	EndDate   string  `form:"end_date" binding:"required"`
	StartTime *string `form:"start_time"`
	EndTime   *string `form:"end_time"`
}

// BookingWindow is a validated, composed half-open [StartAt, EndAt) interval
type BookingWindow struct {
	StartDate string
	EndDate   string
	StartTime *string
	EndTime   *string
	StartAt   time.Time
	EndAt     time.Time
	// Days is the inclusive calendar-day span, Hours the time-of-day span
	// (zero unless both times are present)
	Days  int
	Hours float64
}

// HasTimes reports whether the window carries a time-of-day range
func (w BookingWindow) HasTimes() bool {
	return w.StartTime != nil && w.EndTime != nil
}
