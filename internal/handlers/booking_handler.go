package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/middleware"
	"github.com/workhaven/coworking-backend/internal/models"
	"github.com/workhaven/coworking-backend/internal/services"
)

// BookingHandler handles booking lifecycle endpoints
type BookingHandler struct {
	bookingService      *services.BookingService
	availabilityService *services.AvailabilityService
	logger              *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService, availabilityService *services.AvailabilityService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService:      bookingService,
		availabilityService: availabilityService,
		logger:              logger,
	}
}

// CheckAvailability handles GET /api/v1/bookings/check-availability
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var query models.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.availabilityService.Check(&query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"space_id":  result.SpaceID,
			"available": result.Available,
		},
	})
}

// Create handles POST /api/v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookingService.Create(userCtx, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": booking})
}

// ListMine handles GET /api/v1/bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	bookings, err := h.bookingService.ListMine(userCtx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": bookings})
}

// ListForSpace handles GET /api/v1/spaces/:id/bookings
func (h *BookingHandler) ListForSpace(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, apperrors.Validation("invalid space id"))
		return
	}

	bookings, err := h.bookingService.ListForSpace(userCtx, spaceID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": bookings})
}

// Get handles GET /api/v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, apperrors.Validation("invalid booking id"))
		return
	}

	booking, err := h.bookingService.Get(userCtx, bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": booking})
}

// Update handles PUT /api/v1/bookings/:id
func (h *BookingHandler) Update(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, apperrors.Validation("invalid booking id"))
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookingService.Update(userCtx, bookingID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": booking})
}

// Confirm handles POST /api/v1/bookings/:id/confirm
func (h *BookingHandler) Confirm(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, apperrors.Validation("invalid booking id"))
		return
	}

	booking, err := h.bookingService.Confirm(userCtx, bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": booking})
}

// Cancel handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, apperrors.Validation("invalid booking id"))
		return
	}

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookingService.Cancel(userCtx, bookingID, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": booking})
}
