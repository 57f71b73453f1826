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

// UserRepository handles user data operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, email, full_name, password_hash, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = "active"
	}

	_, err := r.db.Exec(query,
		user.ID, user.Email, user.FullName, user.PasswordHash,
		user.Role, user.Status, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.Conflict("email already registered")
		}
		return apperrors.Internal("failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, email, full_name, password_hash, role, status, created_at, updated_at
		FROM users WHERE id = $1`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to get user", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, email, full_name, password_hash, role, status, created_at, updated_at
		FROM users WHERE email = $1`

	err := r.db.Get(&user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to get user", err)
	}
	return &user, nil
}

// List retrieves all users, newest first
func (r *UserRepository) List() ([]models.User, error) {
	users := []models.User{}
	query := `
		SELECT id, email, full_name, password_hash, role, status, created_at, updated_at
		FROM users ORDER BY created_at DESC`

	if err := r.db.Select(&users, query); err != nil {
		return nil, apperrors.Internal("failed to list users", err)
	}
	return users, nil
}

// UpdateProfile updates the mutable profile fields
func (r *UserRepository) UpdateProfile(id uuid.UUID, fullName *string, passwordHash *string) error {
	query := `
		UPDATE users SET
			full_name = COALESCE($2, full_name),
			password_hash = COALESCE($3, password_hash),
			updated_at = $4
		WHERE id = $1`

	result, err := r.db.Exec(query, id, fullName, passwordHash, time.Now())
	if err != nil {
		return apperrors.Internal("failed to update user", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to check update result", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}
