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

// SignatureHeader carries the processor's webhook signature
const SignatureHeader = "X-Processor-Signature"

// PaymentHandler handles payment intent and reconciliation endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, logger: logger}
}

func clientMeta(c *gin.Context) services.ClientMeta {
	return services.ClientMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// CreateIntent handles POST /api/v1/payments/create-intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	var req models.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		respondError(c, h.logger, apperrors.Validation("invalid booking_id"))
		return
	}

	descriptor, err := h.paymentService.CreateIntent(c.Request.Context(), userCtx, bookingID, clientMeta(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": descriptor})
}

// Webhook handles POST /api/v1/payments/webhook.
//
// An invalid signature is rejected with 401. Once the signature checks
// out, the endpoint always acknowledges with 200: reconciliation problems
// are recorded server-side, and a non-2xx here would only make the
// processor redeliver an event we have already dealt with.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, h.logger, apperrors.Validation("failed to read webhook body"))
		return
	}

	err = h.paymentService.HandleWebhook(c.GetHeader(SignatureHeader), body, clientMeta(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Webhook processed"})
}

// ConfirmTest handles POST /api/v1/payments/confirm, the test-mode
// reconciliation path. The service refuses it in production.
func (h *PaymentHandler) ConfirmTest(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.paymentService.ConfirmTestPayment(userCtx, &req, clientMeta(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment reconciled"})
}

// AuditTrail handles GET /api/v1/bookings/:id/payment-audit
func (h *PaymentHandler) AuditTrail(c *gin.Context) {
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

	entries, err := h.paymentService.AuditTrail(userCtx, bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}
