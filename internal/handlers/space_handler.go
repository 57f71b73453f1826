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

// SpaceHandler handles space listing endpoints
type SpaceHandler struct {
	spaceService *services.SpaceService
	logger       *logrus.Logger
}

// NewSpaceHandler creates a new space handler
func NewSpaceHandler(spaceService *services.SpaceService, logger *logrus.Logger) *SpaceHandler {
	return &SpaceHandler{spaceService: spaceService, logger: logger}
}

// Create handles POST /api/v1/spaces
func (h *SpaceHandler) Create(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	var req models.CreateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	space, err := h.spaceService.Create(userCtx, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": space})
}

// List handles GET /api/v1/spaces
func (h *SpaceHandler) List(c *gin.Context) {
	spaces, err := h.spaceService.List(c.Query("city"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": spaces})
}

// ListMine handles GET /api/v1/spaces/mine
func (h *SpaceHandler) ListMine(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	spaces, err := h.spaceService.ListMine(userCtx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": spaces})
}

// Get handles GET /api/v1/spaces/:id
func (h *SpaceHandler) Get(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, apperrors.Validation("invalid space id"))
		return
	}

	space, err := h.spaceService.Get(spaceID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": space})
}

// Update handles PUT /api/v1/spaces/:id
func (h *SpaceHandler) Update(c *gin.Context) {
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

	var req models.UpdateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	space, err := h.spaceService.Update(userCtx, spaceID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": space})
}

// Archive handles DELETE /api/v1/spaces/:id
func (h *SpaceHandler) Archive(c *gin.Context) {
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

	if err := h.spaceService.Archive(userCtx, spaceID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Space archived"})
}
