package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/models"
)

func testBooking(spaceID, userID uuid.UUID) *models.Booking {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &models.Booking{
		SpaceID:     spaceID,
		UserID:      userID,
		StartDate:   "2026-03-10",
		EndDate:     "2026-03-11",
		StartAt:     start,
		EndAt:       start.AddDate(0, 0, 2),
		PeopleCount: 2,
		TotalPrice:  100,
		Currency:    "USD",
	}
}

func TestBookingRepository_CreateWithSlotCheck(t *testing.T) {
	spaceID := uuid.New()
	userID := uuid.New()

	t.Run("creates booking when slot is free", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewBookingRepository(db)

		booking := testBooking(spaceID, userID)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM spaces WHERE id = \$1 FOR UPDATE`).
			WithArgs(spaceID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
			WithArgs(spaceID, booking.StartAt, booking.EndAt).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO bookings`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.CreateWithSlotCheck(booking)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, booking.ID)
		assert.Equal(t, models.BookingStatusPending, booking.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when slot is taken", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewBookingRepository(db)

		booking := testBooking(spaceID, userID)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM spaces WHERE id = \$1 FOR UPDATE`).
			WithArgs(spaceID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
			WithArgs(spaceID, booking.StartAt, booking.EndAt).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.CreateWithSlotCheck(booking)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects booking on archived space", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewBookingRepository(db)

		booking := testBooking(spaceID, userID)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM spaces WHERE id = \$1 FOR UPDATE`).
			WithArgs(spaceID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("archived"))
		mock.ExpectRollback()

		err := repo.CreateWithSlotCheck(booking)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("returns not found for unknown space", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewBookingRepository(db)

		booking := testBooking(spaceID, userID)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM spaces WHERE id = \$1 FOR UPDATE`).
			WithArgs(spaceID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))
		mock.ExpectRollback()

		err := repo.CreateWithSlotCheck(booking)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestBookingRepository_Confirm(t *testing.T) {
	bookingID := uuid.New()

	t.Run("confirms a pending booking", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewBookingRepository(db)

		mock.ExpectExec(`UPDATE bookings SET status = 'confirmed'`).
			WithArgs(bookingID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Confirm(bookingID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reports no-op when booking is not pending", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewBookingRepository(db)

		mock.ExpectExec(`UPDATE bookings SET status = 'confirmed'`).
			WithArgs(bookingID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Confirm(bookingID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingRepository_Cancel(t *testing.T) {
	bookingID := uuid.New()

	t.Run("cancels a confirmed booking with reason", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewBookingRepository(db)

		mock.ExpectExec(`UPDATE bookings SET status = 'cancelled'`).
			WithArgs(bookingID, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Cancel(bookingID, "change of plans")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reports no-op for a terminal booking", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewBookingRepository(db)

		mock.ExpectExec(`UPDATE bookings SET status = 'cancelled'`).
			WithArgs(bookingID, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Cancel(bookingID, "")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingRepository_CountOverlapping(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	spaceID := uuid.New()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WithArgs(spaceID, start, end, uuid.Nil).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountOverlapping(spaceID, start, end, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBookingRepository_CompleteElapsed(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE bookings SET status = 'completed'`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.CompleteElapsed(now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
