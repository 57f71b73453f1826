package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/workhaven/coworking-backend/internal/apperrors"
)

// statusFor maps error kinds to HTTP status codes
func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindInvalidState:
		return http.StatusUnprocessableEntity
	case apperrors.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the uniform failure envelope. Internal and upstream
// details are logged but replaced with a generic message so infrastructure
// errors never leak to clients.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := apperrors.KindOf(err)
	status := statusFor(kind)

	message := err.Error()
	if kind == apperrors.KindInternal || kind == apperrors.KindUpstream {
		logger.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Error("Request failed")
		if kind == apperrors.KindInternal {
			message = "An internal error occurred"
		} else {
			message = "Payment processor is unavailable"
		}
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   string(kind),
		"message": message,
	})
}

// respondBindError wraps gin binding failures in the validation envelope
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   string(apperrors.KindValidation),
		"message": err.Error(),
	})
}
