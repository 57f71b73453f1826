package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/models"
)

func TestUserRepository_Create(t *testing.T) {
	t.Run("inserts a new user with defaults", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewUserRepository(db)

		user := &models.User{
			Email:        "alex@example.com",
			FullName:     "Alex Doe",
			PasswordHash: "$2a$12$hash",
			Role:         models.RoleClient,
		}

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(user)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "active", user.Status)
	})

	t.Run("maps duplicate email to conflict", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewUserRepository(db)

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(&models.User{Email: "alex@example.com", Role: models.RoleClient})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	t.Run("returns the user", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewUserRepository(db)

		userID := uuid.New()
		rows := sqlmock.NewRows([]string{
			"id", "email", "full_name", "password_hash", "role", "status",
			"created_at", "updated_at",
		}).AddRow(userID, "alex@example.com", "Alex Doe", "$2a$12$hash",
			"client", "active", time.Now(), time.Now())

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
			WithArgs("alex@example.com").
			WillReturnRows(rows)

		user, err := repo.GetByEmail("alex@example.com")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, models.RoleClient, user.Role)
	})

	t.Run("maps a missing row to not found", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByEmail("ghost@example.com")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}
