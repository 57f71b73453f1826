package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies what a principal is allowed to do on the platform.
type Role string

const (
	RoleClient  Role = "client"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// User represents a platform account. Clients book spaces, managers list
// them, admins operate the platform.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FullName     string    `json:"full_name" db:"full_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	Status       string    `json:"status" db:"status"` // active, suspended
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateProfileRequest is the payload for PUT /users/me
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
}
