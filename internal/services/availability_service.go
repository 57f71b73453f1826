package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/database"
	"github.com/workhaven/coworking-backend/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// AvailabilityService answers whether a space is free for a window
type AvailabilityService struct {
	bookingRepo *database.BookingRepository
	spaceRepo   *database.SpaceRepository
	logger      *logrus.Logger
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(bookingRepo *database.BookingRepository, spaceRepo *database.SpaceRepository, logger *logrus.Logger) *AvailabilityService {
	return &AvailabilityService{
		bookingRepo: bookingRepo,
		spaceRepo:   spaceRepo,
		logger:      logger,
	}
}

// AvailabilityResult is the outcome of an availability check
type AvailabilityResult struct {
	Available bool                 `json:"available"`
	SpaceID   uuid.UUID            `json:"space_id"`
	Window    models.BookingWindow `json:"-"`
}

// ResolveWindow validates the raw date/time inputs and composes the
// half-open [StartAt, EndAt) interval the overlap check runs against.
//
// Date-only requests block whole days: EndAt is midnight after EndDate,
// so a booking ending on the 10th and one starting on the 11th never
// collide, while two date bookings sharing the 10th always do. Timed
// requests end exactly at EndTime, so back-to-back hourly bookings
// (10:00-12:00 and 12:00-14:00) coexist.
func ResolveWindow(startDate, endDate string, startTime, endTime *string) (*models.BookingWindow, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, time.UTC)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid start_date %q, expected YYYY-MM-DD", startDate))
	}
	end, err := time.ParseInLocation(dateLayout, endDate, time.UTC)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid end_date %q, expected YYYY-MM-DD", endDate))
	}
	if end.Before(start) {
		return nil, apperrors.Validation("end_date must not be before start_date")
	}

	if (startTime == nil) != (endTime == nil) {
		return nil, apperrors.Validation("start_time and end_time must be provided together")
	}

	window := &models.BookingWindow{
		StartDate: startDate,
		EndDate:   endDate,
		StartTime: startTime,
		EndTime:   endTime,
		Days:      int(end.Sub(start).Hours()/24) + 1,
	}

	if startTime == nil {
		window.StartAt = start
		window.EndAt = end.AddDate(0, 0, 1)
		return window, nil
	}

	st, err := time.Parse(timeLayout, *startTime)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid start_time %q, expected HH:MM", *startTime))
	}
	et, err := time.Parse(timeLayout, *endTime)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid end_time %q, expected HH:MM", *endTime))
	}

	window.StartAt = start.Add(time.Duration(st.Hour())*time.Hour + time.Duration(st.Minute())*time.Minute)
	window.EndAt = end.Add(time.Duration(et.Hour())*time.Hour + time.Duration(et.Minute())*time.Minute)
	if !window.StartAt.Before(window.EndAt) {
		return nil, apperrors.Validation("booking window must end after it starts")
	}
	window.Hours = window.EndAt.Sub(window.StartAt).Hours()

	return window, nil
}

// Check reports whether the space is free for the requested window. The
// answer is advisory: the authoritative check re-runs inside the booking
// creation transaction.
func (s *AvailabilityService) Check(query *models.AvailabilityQuery) (*AvailabilityResult, error) {
	spaceID, err := uuid.Parse(query.SpaceID)
	if err != nil {
		return nil, apperrors.Validation("invalid space_id")
	}

	window, err := ResolveWindow(query.StartDate, query.EndDate, query.StartTime, query.EndTime)
	if err != nil {
		return nil, err
	}

	space, err := s.spaceRepo.GetByID(spaceID)
	if err != nil {
		return nil, err
	}
	if space.Status != models.SpaceStatusActive {
		return nil, apperrors.InvalidState("space is not accepting bookings")
	}

	count, err := s.bookingRepo.CountOverlapping(spaceID, window.StartAt, window.EndAt, uuid.Nil)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"space_id":  spaceID,
		"start_at":  window.StartAt,
		"end_at":    window.EndAt,
		"conflicts": count,
	}).Debug("Availability check completed")

	return &AvailabilityResult{
		Available: count == 0,
		SpaceID:   spaceID,
		Window:    *window,
	}, nil
}
