package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhaven/coworking-backend/internal/apperrors"
)

func strPtr(s string) *string { return &s }

func TestResolveWindow(t *testing.T) {
	t.Run("date-only window blocks whole days", func(t *testing.T) {
		window, err := ResolveWindow("2026-03-10", "2026-03-11", nil, nil)
		require.NoError(t, err)

		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), window.StartAt)
		// EndAt is midnight after the last day, so the 11th is fully blocked
		assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), window.EndAt)
		assert.Equal(t, 2, window.Days)
		assert.False(t, window.HasTimes())
	})

	t.Run("single day date-only window", func(t *testing.T) {
		window, err := ResolveWindow("2026-03-10", "2026-03-10", nil, nil)
		require.NoError(t, err)

		assert.Equal(t, 1, window.Days)
		assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), window.EndAt)
	})

	t.Run("timed window ends exactly at end_time", func(t *testing.T) {
		window, err := ResolveWindow("2026-03-10", "2026-03-10", strPtr("09:00"), strPtr("12:30"))
		require.NoError(t, err)

		assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), window.StartAt)
		assert.Equal(t, time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC), window.EndAt)
		assert.InDelta(t, 3.5, window.Hours, 0.001)
		assert.True(t, window.HasTimes())
	})

	t.Run("back-to-back timed windows do not intersect", func(t *testing.T) {
		first, err := ResolveWindow("2026-03-10", "2026-03-10", strPtr("10:00"), strPtr("12:00"))
		require.NoError(t, err)
		second, err := ResolveWindow("2026-03-10", "2026-03-10", strPtr("12:00"), strPtr("14:00"))
		require.NoError(t, err)

		// Half-open intervals: first ends exactly where second starts
		assert.Equal(t, first.EndAt, second.StartAt)
		assert.False(t, first.StartAt.Before(second.EndAt) && second.StartAt.Before(first.EndAt) &&
			first.EndAt.After(second.StartAt) && second.EndAt.After(first.StartAt))
	})

	t.Run("rejects end_date before start_date", func(t *testing.T) {
		_, err := ResolveWindow("2026-03-11", "2026-03-10", nil, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("rejects a single time bound", func(t *testing.T) {
		_, err := ResolveWindow("2026-03-10", "2026-03-10", strPtr("09:00"), nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("rejects inverted time bounds", func(t *testing.T) {
		_, err := ResolveWindow("2026-03-10", "2026-03-10", strPtr("14:00"), strPtr("09:00"))
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		_, err := ResolveWindow("10-03-2026", "2026-03-10", nil, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("rejects malformed time", func(t *testing.T) {
		_, err := ResolveWindow("2026-03-10", "2026-03-10", strPtr("9am"), strPtr("12:00"))
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}
