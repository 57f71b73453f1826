package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/models"
)

// SpaceRepository handles space data operations
type SpaceRepository struct {
	db DB
}

// NewSpaceRepository creates a new space repository
func NewSpaceRepository(db DB) *SpaceRepository {
	return &SpaceRepository{db: db}
}

// Create inserts a new space
func (r *SpaceRepository) Create(space *models.Space) error {
	query := `
		INSERT INTO spaces (id, manager_id, name, description, city, address,
			capacity, daily_rate, hourly_rate, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	space.ID = uuid.New()
	space.Status = models.SpaceStatusActive
	space.CreatedAt = now
	space.UpdatedAt = now

	_, err := r.db.Exec(query,
		space.ID, space.ManagerID, space.Name, space.Description, space.City,
		space.Address, space.Capacity, space.DailyRate, space.HourlyRate,
		space.Currency, space.Status, space.CreatedAt, space.UpdatedAt)
	if err != nil {
		return apperrors.Internal("failed to create space", err)
	}
	return nil
}

// GetByID retrieves a space by ID
func (r *SpaceRepository) GetByID(id uuid.UUID) (*models.Space, error) {
	var space models.Space
	query := `
		SELECT id, manager_id, name, description, city, address, capacity,
			daily_rate, hourly_rate, currency, status, created_at, updated_at
		FROM spaces WHERE id = $1`

	err := r.db.Get(&space, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("space not found")
		}
		return nil, apperrors.Internal("failed to get space", err)
	}
	return &space, nil
}

// ListActive retrieves active spaces, optionally filtered by city
func (r *SpaceRepository) ListActive(city string) ([]models.Space, error) {
	spaces := []models.Space{}
	query := `
		SELECT id, manager_id, name, description, city, address, capacity,
			daily_rate, hourly_rate, currency, status, created_at, updated_at
		FROM spaces WHERE status = 'active'`
	args := []interface{}{}

	if city != "" {
		query += ` AND city = $1`
		args = append(args, city)
	}
	query += ` ORDER BY created_at DESC`

	if err := r.db.Select(&spaces, query, args...); err != nil {
		return nil, apperrors.Internal("failed to list spaces", err)
	}
	return spaces, nil
}

// ListByManager retrieves all spaces owned by a manager
func (r *SpaceRepository) ListByManager(managerID uuid.UUID) ([]models.Space, error) {
	spaces := []models.Space{}
	query := `
		SELECT id, manager_id, name, description, city, address, capacity,
			daily_rate, hourly_rate, currency, status, created_at, updated_at
		FROM spaces WHERE manager_id = $1 ORDER BY created_at DESC`

	if err := r.db.Select(&spaces, query, managerID); err != nil {
		return nil, apperrors.Internal("failed to list spaces", err)
	}
	return spaces, nil
}

// Update applies the provided fields to a space
func (r *SpaceRepository) Update(id uuid.UUID, req *models.UpdateSpaceRequest) error {
	query := `
		UPDATE spaces SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			city = COALESCE($4, city),
			address = COALESCE($5, address),
			capacity = COALESCE($6, capacity),
			daily_rate = COALESCE($7, daily_rate),
			hourly_rate = COALESCE($8, hourly_rate),
			updated_at = $9
		WHERE id = $1`

	result, err := r.db.Exec(query, id,
		req.Name, req.Description, req.City, req.Address,
		req.Capacity, req.DailyRate, req.HourlyRate, time.Now())
	if err != nil {
		return apperrors.Internal("failed to update space", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to check update result", err)
	}
	if rows == 0 {
		return apperrors.NotFound("space not found")
	}
	return nil
}

// Archive marks a space as archived so it no longer accepts bookings.
// Existing bookings are untouched.
func (r *SpaceRepository) Archive(id uuid.UUID) error {
	query := `UPDATE spaces SET status = 'archived', updated_at = $2 WHERE id = $1 AND status = 'active'`

	result, err := r.db.Exec(query, id, time.Now())
	if err != nil {
		return apperrors.Internal("failed to archive space", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to check archive result", err)
	}
	if rows == 0 {
		return apperrors.NotFound("space not found or already archived")
	}
	return nil
}
