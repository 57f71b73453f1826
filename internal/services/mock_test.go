package services

import (
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/workhaven/coworking-backend/internal/models"
)

// mockDatabase adapts sqlmock to the database.DB interface
type mockDatabase struct {
	db *sqlx.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) Beginx() (*sqlx.Tx, error) {
	return m.db.Beginx()
}

func (m *mockDatabase) Ping() error { return m.db.Ping() }

func (m *mockDatabase) Close() error { return m.db.Close() }

func newMockDB(t *testing.T) (*mockDatabase, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return &mockDatabase{db: sqlxDB}, mock, func() { sqlxDB.Close() }
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// spaceRows builds the full column set the space queries return
func spaceRows(space *models.Space) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "manager_id", "name", "description", "city", "address",
		"capacity", "daily_rate", "hourly_rate", "currency", "status",
		"created_at", "updated_at",
	}).AddRow(space.ID, space.ManagerID, space.Name, space.Description,
		space.City, space.Address, space.Capacity, space.DailyRate,
		space.HourlyRate, space.Currency, space.Status,
		space.CreatedAt, space.UpdatedAt)
}

// bookingRows builds the full column set the booking queries return
func bookingRows(booking *models.Booking) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "space_id", "user_id", "start_date", "end_date", "start_time",
		"end_time", "start_at", "end_at", "people_count", "total_price",
		"currency", "status", "special_requests", "cancel_reason",
		"created_at", "updated_at",
	}).AddRow(booking.ID, booking.SpaceID, booking.UserID,
		booking.StartDate, booking.EndDate, booking.StartTime, booking.EndTime,
		booking.StartAt, booking.EndAt, booking.PeopleCount, booking.TotalPrice,
		booking.Currency, booking.Status, booking.SpecialRequests,
		booking.CancelReason, booking.CreatedAt, booking.UpdatedAt)
}

// paymentRows builds the full column set the payment queries return
func paymentRows(payment *models.Payment) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "booking_id", "external_intent_id", "amount", "currency",
		"status", "payment_method", "completed_at", "failure_reason",
		"created_at", "updated_at",
	}).AddRow(payment.ID, payment.BookingID, payment.ExternalIntentID,
		payment.Amount, payment.Currency, payment.Status,
		payment.PaymentMethod, payment.CompletedAt, payment.FailureReason,
		payment.CreatedAt, payment.UpdatedAt)
}

func activeSpace(managerID uuid.UUID) *models.Space {
	now := time.Now()
	return &models.Space{
		ID:          uuid.New(),
		ManagerID:   managerID,
		Name:        "Downtown Loft",
		Description: "Open plan loft with meeting rooms",
		City:        "Lisbon",
		Address:     "Rua Augusta 12",
		Capacity:    10,
		DailyRate:   80,
		Currency:    "USD",
		Status:      models.SpaceStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func pendingBooking(spaceID, userID uuid.UUID) *models.Booking {
	now := time.Now()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:          uuid.New(),
		SpaceID:     spaceID,
		UserID:      userID,
		StartDate:   "2026-03-10",
		EndDate:     "2026-03-11",
		StartAt:     start,
		EndAt:       start.AddDate(0, 0, 2),
		PeopleCount: 2,
		TotalPrice:  160,
		Currency:    "USD",
		Status:      models.BookingStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
