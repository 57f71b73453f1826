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

func TestPaymentRepository_Create(t *testing.T) {
	bookingID := uuid.New()

	t.Run("inserts a pending payment", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewPaymentRepository(db)

		payment := &models.Payment{
			BookingID:        bookingID,
			ExternalIntentID: "pi_test_123",
			Amount:           150.00,
			Currency:         "USD",
		}

		mock.ExpectExec(`INSERT INTO payments`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(payment)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
		assert.NotEqual(t, uuid.Nil, payment.ID)
	})

	t.Run("maps duplicate intent to conflict", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewPaymentRepository(db)

		payment := &models.Payment{
			BookingID:        bookingID,
			ExternalIntentID: "pi_test_123",
			Amount:           150.00,
			Currency:         "USD",
		}

		mock.ExpectExec(`INSERT INTO payments`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(payment)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})
}

func TestPaymentRepository_MarkSucceeded(t *testing.T) {
	method := "card"

	t.Run("updates a pending payment", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewPaymentRepository(db)

		mock.ExpectExec(`UPDATE payments SET status = 'succeeded'`).
			WithArgs("pi_test_123", &method, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkSucceeded("pi_test_123", &method, time.Now())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("is a no-op on an already succeeded payment", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewPaymentRepository(db)

		mock.ExpectExec(`UPDATE payments SET status = 'succeeded'`).
			WithArgs("pi_test_123", &method, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkSucceeded("pi_test_123", &method, time.Now())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPaymentRepository_MarkFailed(t *testing.T) {
	reason := "card_declined"

	t.Run("fails a pending payment", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewPaymentRepository(db)

		mock.ExpectExec(`UPDATE payments SET status = 'failed'`).
			WithArgs("pi_test_123", &reason, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkFailed("pi_test_123", &reason)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("never demotes a succeeded payment", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewPaymentRepository(db)

		// The row is succeeded, so the status guard matches nothing
		mock.ExpectExec(`UPDATE payments SET status = 'failed'`).
			WithArgs("pi_test_123", &reason, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkFailed("pi_test_123", &reason)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPaymentRepository_GetPendingByBooking(t *testing.T) {
	bookingID := uuid.New()

	t.Run("returns nil when no pending payment exists", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewPaymentRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM payments WHERE booking_id = \$1 AND status = 'pending'`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		payment, err := repo.GetPendingByBooking(bookingID)
		require.NoError(t, err)
		assert.Nil(t, payment)
	})

	t.Run("returns the pending payment", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewPaymentRepository(db)

		paymentID := uuid.New()
		rows := sqlmock.NewRows([]string{
			"id", "booking_id", "external_intent_id", "amount", "currency",
			"status", "payment_method", "completed_at", "failure_reason",
			"created_at", "updated_at",
		}).AddRow(paymentID, bookingID, "pi_test_123", 150.00, "USD",
			"pending", nil, nil, nil, time.Now(), time.Now())

		mock.ExpectQuery(`SELECT (.+) FROM payments WHERE booking_id = \$1 AND status = 'pending'`).
			WithArgs(bookingID).
			WillReturnRows(rows)

		payment, err := repo.GetPendingByBooking(bookingID)
		require.NoError(t, err)
		require.NotNil(t, payment)
		assert.Equal(t, "pi_test_123", payment.ExternalIntentID)
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
	})
}
