package models

import (
	"time"

	"github.com/google/uuid"
)

// SpaceStatus represents the listing state of a space
type SpaceStatus string

const (
	SpaceStatusActive   SpaceStatus = "active"
	SpaceStatusArchived SpaceStatus = "archived"
)

// Space is a bookable coworking space listed by a manager.
// DailyRate prices whole-day bookings; when HourlyRate is set, bookings
// that carry a time-of-day window are priced per hour instead.
type Space struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	ManagerID   uuid.UUID   `json:"manager_id" db:"manager_id"`
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description" db:"description"`
	City        string      `json:"city" db:"city"`
	Address     string      `json:"address" db:"address"`
	Capacity    int         `json:"capacity" db:"capacity"`
	DailyRate   float64     `json:"daily_rate" db:"daily_rate"`
	HourlyRate  *float64    `json:"hourly_rate,omitempty" db:"hourly_rate"`
	Currency    string      `json:"currency" db:"currency"`
	Status      SpaceStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateSpaceRequest is the payload for POST /spaces
type CreateSpaceRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	City        string   `json:"city" binding:"required"`
	Address     string   `json:"address" binding:"required"`
	Capacity    int      `json:"capacity" binding:"required,min=1"`
	DailyRate   float64  `json:"daily_rate" binding:"required,gt=0"`
	HourlyRate  *float64 `json:"hourly_rate,omitempty"`
	Currency    string   `json:"currency"`
}

// UpdateSpaceRequest is the payload for PUT /spaces/:id
type UpdateSpaceRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	City        *string  `json:"city,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Capacity    *int     `json:"capacity,omitempty"`
	DailyRate   *float64 `json:"daily_rate,omitempty"`
	HourlyRate  *float64 `json:"hourly_rate,omitempty"`
}
