package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/database"
	"github.com/workhaven/coworking-backend/internal/middleware"
	"github.com/workhaven/coworking-backend/internal/models"
)

// SpaceService handles space listings
type SpaceService struct {
	spaceRepo       *database.SpaceRepository
	defaultCurrency string
	logger          *logrus.Logger
}

// NewSpaceService creates a new space service
func NewSpaceService(spaceRepo *database.SpaceRepository, defaultCurrency string, logger *logrus.Logger) *SpaceService {
	return &SpaceService{
		spaceRepo:       spaceRepo,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// Create lists a new space owned by the calling manager
func (s *SpaceService) Create(userCtx *middleware.UserContext, req *models.CreateSpaceRequest) (*models.Space, error) {
	if req.HourlyRate != nil && *req.HourlyRate <= 0 {
		return nil, apperrors.Validation("hourly_rate must be positive")
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	space := &models.Space{
		ManagerID:   userCtx.UserID,
		Name:        req.Name,
		Description: req.Description,
		City:        req.City,
		Address:     req.Address,
		Capacity:    req.Capacity,
		DailyRate:   req.DailyRate,
		HourlyRate:  req.HourlyRate,
		Currency:    currency,
	}
	if err := s.spaceRepo.Create(space); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"space_id":   space.ID,
		"manager_id": userCtx.UserID,
		"city":       space.City,
	}).Info("Space listed")

	return space, nil
}

// Get retrieves a space by ID
func (s *SpaceService) Get(spaceID uuid.UUID) (*models.Space, error) {
	return s.spaceRepo.GetByID(spaceID)
}

// List retrieves active spaces, optionally filtered by city
func (s *SpaceService) List(city string) ([]models.Space, error) {
	return s.spaceRepo.ListActive(city)
}

// ListMine retrieves the calling manager's spaces, archived included
func (s *SpaceService) ListMine(userCtx *middleware.UserContext) ([]models.Space, error) {
	return s.spaceRepo.ListByManager(userCtx.UserID)
}

// Update edits a space the caller owns
func (s *SpaceService) Update(userCtx *middleware.UserContext, spaceID uuid.UUID, req *models.UpdateSpaceRequest) (*models.Space, error) {
	if err := s.authorizeManage(userCtx, spaceID); err != nil {
		return nil, err
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		return nil, apperrors.Validation("capacity must be at least 1")
	}
	if req.DailyRate != nil && *req.DailyRate <= 0 {
		return nil, apperrors.Validation("daily_rate must be positive")
	}
	if req.HourlyRate != nil && *req.HourlyRate <= 0 {
		return nil, apperrors.Validation("hourly_rate must be positive")
	}

	if err := s.spaceRepo.Update(spaceID, req); err != nil {
		return nil, err
	}
	return s.spaceRepo.GetByID(spaceID)
}

// Archive delists a space. Existing bookings keep their slots; only new
// bookings are blocked.
func (s *SpaceService) Archive(userCtx *middleware.UserContext, spaceID uuid.UUID) error {
	if err := s.authorizeManage(userCtx, spaceID); err != nil {
		return err
	}
	return s.spaceRepo.Archive(spaceID)
}

func (s *SpaceService) authorizeManage(userCtx *middleware.UserContext, spaceID uuid.UUID) error {
	if userCtx.Role == models.RoleAdmin {
		return nil
	}
	space, err := s.spaceRepo.GetByID(spaceID)
	if err != nil {
		return err
	}
	if space.ManagerID != userCtx.UserID {
		return apperrors.Forbidden("not allowed to manage this space")
	}
	return nil
}
