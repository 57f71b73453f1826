package services

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/database"
	"github.com/workhaven/coworking-backend/internal/middleware"
	"github.com/workhaven/coworking-backend/internal/models"
)

// BookingService owns the booking lifecycle: creation against a free slot,
// pending-only edits, cancellation, and completion of elapsed stays.
type BookingService struct {
	bookingRepo     *database.BookingRepository
	spaceRepo       *database.SpaceRepository
	defaultCurrency string
	logger          *logrus.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(bookingRepo *database.BookingRepository, spaceRepo *database.SpaceRepository, defaultCurrency string, logger *logrus.Logger) *BookingService {
	return &BookingService{
		bookingRepo:     bookingRepo,
		spaceRepo:       spaceRepo,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// Create validates the request, prices the stay and inserts the booking
// behind the transactional slot check. The booking starts pending; only a
// reconciled payment confirms it.
func (s *BookingService) Create(userCtx *middleware.UserContext, req *models.CreateBookingRequest) (*models.Booking, error) {
	spaceID, err := uuid.Parse(req.SpaceID)
	if err != nil {
		return nil, apperrors.Validation("invalid space_id")
	}

	window, err := ResolveWindow(req.StartDate, req.EndDate, req.StartTime, req.EndTime)
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
	if req.PeopleCount > space.Capacity {
		return nil, apperrors.Validation("people_count exceeds space capacity")
	}

	currency := space.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	booking := &models.Booking{
		SpaceID:         spaceID,
		UserID:          userCtx.UserID,
		StartDate:       window.StartDate,
		EndDate:         window.EndDate,
		StartTime:       window.StartTime,
		EndTime:         window.EndTime,
		StartAt:         window.StartAt,
		EndAt:           window.EndAt,
		PeopleCount:     req.PeopleCount,
		TotalPrice:      PriceStay(space, window),
		Currency:        currency,
		SpecialRequests: req.SpecialRequests,
	}

	if err := s.bookingRepo.CreateWithSlotCheck(booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"space_id":    spaceID,
		"user_id":     userCtx.UserID,
		"total_price": booking.TotalPrice,
	}).Info("Booking created")

	return booking, nil
}

// PriceStay computes the total price for a window against a space's rates.
// A timed window on a space with an hourly rate is billed per hour;
// everything else is billed per inclusive calendar day.
func PriceStay(space *models.Space, window *models.BookingWindow) float64 {
	var total float64
	if window.HasTimes() && space.HourlyRate != nil {
		total = *space.HourlyRate * window.Hours
	} else {
		total = space.DailyRate * float64(window.Days)
	}
	return math.Round(total*100) / 100
}

// Get retrieves a booking the caller is allowed to see
func (s *BookingService) Get(userCtx *middleware.UserContext, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(userCtx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListMine retrieves the caller's own bookings
func (s *BookingService) ListMine(userCtx *middleware.UserContext) ([]models.Booking, error) {
	return s.bookingRepo.ListByUser(userCtx.UserID)
}

// ListForSpace retrieves a space's bookings for its manager or an admin
func (s *BookingService) ListForSpace(userCtx *middleware.UserContext, spaceID uuid.UUID) ([]models.Booking, error) {
	space, err := s.spaceRepo.GetByID(spaceID)
	if err != nil {
		return nil, err
	}
	if userCtx.Role != models.RoleAdmin && space.ManagerID != userCtx.UserID {
		return nil, apperrors.Forbidden("not allowed to view bookings for this space")
	}
	return s.bookingRepo.ListBySpace(spaceID)
}

// Update edits a pending booking. Only the owner may edit, and only while
// the booking has not been confirmed, cancelled or completed.
func (s *BookingService) Update(userCtx *middleware.UserContext, bookingID uuid.UUID, req *models.UpdateBookingRequest) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userCtx.UserID {
		return nil, apperrors.Forbidden("not allowed to edit this booking")
	}

	if req.PeopleCount != nil {
		space, err := s.spaceRepo.GetByID(booking.SpaceID)
		if err != nil {
			return nil, err
		}
		if *req.PeopleCount < 1 {
			return nil, apperrors.Validation("people_count must be at least 1")
		}
		if *req.PeopleCount > space.Capacity {
			return nil, apperrors.Validation("people_count exceeds space capacity")
		}
	}

	updated, err := s.bookingRepo.UpdateDetails(bookingID, req)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperrors.InvalidState("only pending bookings can be edited")
	}

	return s.bookingRepo.GetByID(bookingID)
}

// Confirm transitions a pending booking to confirmed on behalf of the
// space's manager or an admin. Confirming an already-confirmed booking is
// a no-op success, so repeated calls change nothing.
func (s *BookingService) Confirm(userCtx *middleware.UserContext, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if userCtx.Role != models.RoleAdmin {
		space, err := s.spaceRepo.GetByID(booking.SpaceID)
		if err != nil {
			return nil, err
		}
		if space.ManagerID != userCtx.UserID {
			return nil, apperrors.Forbidden("not allowed to confirm this booking")
		}
	}

	confirmed, err := s.bookingRepo.Confirm(bookingID)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		if booking.Status == models.BookingStatusConfirmed {
			return booking, nil
		}
		return nil, apperrors.InvalidState("only pending bookings can be confirmed")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    userCtx.UserID,
	}).Info("Booking confirmed by operator")

	return s.bookingRepo.GetByID(bookingID)
}

// Cancel moves a pending or confirmed booking to cancelled, releasing its
// slot. The owner, the space's manager or an admin may cancel; cancelling
// a terminal booking is an invalid-state error.
func (s *BookingService) Cancel(userCtx *middleware.UserContext, bookingID uuid.UUID, reason string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(userCtx, booking); err != nil {
		return nil, apperrors.Forbidden("not allowed to cancel this booking")
	}

	cancelled, err := s.bookingRepo.Cancel(bookingID, reason)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		return nil, apperrors.InvalidState("booking is already cancelled or completed")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    userCtx.UserID,
	}).Info("Booking cancelled")

	return s.bookingRepo.GetByID(bookingID)
}

// CompleteElapsed moves confirmed bookings whose window has passed to
// completed. Invoked by the scheduled sweep.
func (s *BookingService) CompleteElapsed(now time.Time) (int64, error) {
	count, err := s.bookingRepo.CompleteElapsed(now)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.WithField("count", count).Info("Completed elapsed bookings")
	}
	return count, nil
}

func (s *BookingService) authorizeView(userCtx *middleware.UserContext, booking *models.Booking) error {
	if booking.UserID == userCtx.UserID || userCtx.Role == models.RoleAdmin {
		return nil
	}
	if userCtx.Role == models.RoleManager {
		space, err := s.spaceRepo.GetByID(booking.SpaceID)
		if err == nil && space.ManagerID == userCtx.UserID {
			return nil
		}
	}
	return apperrors.Forbidden("not allowed to view this booking")
}
