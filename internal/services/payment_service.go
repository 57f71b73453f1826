package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/database"
	"github.com/workhaven/coworking-backend/internal/middleware"
	"github.com/workhaven/coworking-backend/internal/models"
	"github.com/workhaven/coworking-backend/internal/utils"
	"github.com/workhaven/coworking-backend/pkg/paygate"
)

// ClientMeta carries request metadata into the audit trail
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// PaymentService bridges bookings to the card processor and reconciles the
// processor's outcome events back onto payments and bookings. Both the
// webhook path and the test-mode confirm path funnel through Reconcile, so
// idempotency and status monotonicity are enforced in one place.
type PaymentService struct {
	paymentRepo *database.PaymentRepository
	bookingRepo *database.BookingRepository
	auditRepo   *database.PaymentAuditRepository
	gateway     paygate.Gateway
	environment string
	logger      *logrus.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo *database.PaymentRepository,
	bookingRepo *database.BookingRepository,
	auditRepo *database.PaymentAuditRepository,
	gateway paygate.Gateway,
	environment string,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		auditRepo:   auditRepo,
		gateway:     gateway,
		environment: environment,
		logger:      logger,
	}
}

// CreateIntent creates (or reuses) a payment intent for a pending booking.
// An existing pending payment is reused rather than duplicated, so a user
// who abandons the payment page and returns keeps the same intent. The
// descriptor returned to the client never contains the processor secret key.
func (s *PaymentService) CreateIntent(ctx context.Context, userCtx *middleware.UserContext, bookingID uuid.UUID, meta ClientMeta) (*models.IntentDescriptor, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userCtx.UserID {
		return nil, apperrors.Forbidden("not allowed to pay for this booking")
	}
	if booking.Status != models.BookingStatusPending {
		return nil, apperrors.InvalidState("booking is not awaiting payment")
	}

	if existing, err := s.paymentRepo.GetPendingByBooking(bookingID); err != nil {
		return nil, err
	} else if existing != nil {
		intent, err := s.gateway.RetrieveIntent(ctx, existing.ExternalIntentID)
		if err != nil {
			return nil, apperrors.Upstream("failed to retrieve payment intent", err)
		}
		s.audit(&models.PaymentAudit{
			BookingID:   &booking.ID,
			PaymentID:   &existing.ID,
			IntentID:    &existing.ExternalIntentID,
			EventType:   models.PaymentEventIntentReused,
			EventSource: models.PaymentSourceBackend,
			Amount:      &existing.Amount,
			Currency:    &existing.Currency,
		}, meta)
		return s.describeIntent(intent), nil
	}

	amountMinor := toMinorUnits(booking.TotalPrice)
	intent, err := s.gateway.CreateIntent(ctx, amountMinor, booking.Currency, map[string]string{
		"booking_id": booking.ID.String(),
	})
	if err != nil {
		return nil, apperrors.Upstream("failed to create payment intent", err)
	}

	payment := &models.Payment{
		BookingID:        booking.ID,
		ExternalIntentID: intent.ID,
		Amount:           booking.TotalPrice,
		Currency:         booking.Currency,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	s.audit(&models.PaymentAudit{
		BookingID:   &booking.ID,
		PaymentID:   &payment.ID,
		IntentID:    &intent.ID,
		EventType:   models.PaymentEventIntentCreated,
		EventSource: models.PaymentSourceBackend,
		Amount:      &payment.Amount,
		Currency:    &payment.Currency,
	}, meta)

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"intent_id":    intent.ID,
		"amount_minor": amountMinor,
		"currency":     booking.Currency,
	}).Info("Payment intent created")

	return s.describeIntent(intent), nil
}

// toMinorUnits converts a major-unit price to the integer minor units the
// processor expects, rounding half away from zero.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (s *PaymentService) describeIntent(intent *paygate.Intent) *models.IntentDescriptor {
	return &models.IntentDescriptor{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountMinor:  intent.Amount,
		Currency:     intent.Currency,
		Status:       intent.Status,
	}
}

// HandleWebhook verifies and reconciles a processor callback. A signature
// mismatch is rejected with an error before any state changes; after
// verification, reconciliation problems are logged and audited but not
// returned, so the handler acknowledges the delivery and the processor
// does not retry forever.
func (s *PaymentService) HandleWebhook(signature string, body []byte, meta ClientMeta) error {
	if err := s.gateway.VerifyWebhook(signature, body); err != nil {
		msg := err.Error()
		raw := string(body)
		s.audit(&models.PaymentAudit{
			EventType:    models.PaymentEventWebhookRejected,
			EventSource:  models.PaymentSourceWebhook,
			ErrorMessage: &msg,
			RawBody:      &raw,
		}, meta)
		s.logger.WithField("error", msg).Warn("Rejected webhook with invalid signature")
		return apperrors.Unauthorized("invalid webhook signature")
	}

	event, err := s.gateway.ParseWebhook(body)
	if err != nil {
		msg := err.Error()
		raw := string(body)
		s.audit(&models.PaymentAudit{
			EventType:    models.PaymentEventWebhookRejected,
			EventSource:  models.PaymentSourceWebhook,
			ErrorMessage: &msg,
			RawBody:      &raw,
		}, meta)
		return apperrors.Validation("malformed webhook payload")
	}

	var outcome models.PaymentEventOutcome
	switch event.Type {
	case paygate.EventIntentSucceeded:
		outcome = models.PaymentOutcomeSucceeded
	case paygate.EventIntentFailed:
		outcome = models.PaymentOutcomeFailed
	default:
		// Unknown event types are acknowledged and dropped
		s.logger.WithField("event_type", event.Type).Info("Ignored unhandled webhook event type")
		return nil
	}

	if event.IntentID == "" {
		msg := "webhook payload missing intent_id"
		raw := string(body)
		s.audit(&models.PaymentAudit{
			EventType:    models.PaymentEventWebhookRejected,
			EventSource:  models.PaymentSourceWebhook,
			ErrorMessage: &msg,
			RawBody:      &raw,
		}, meta)
		return apperrors.Validation(msg)
	}

	raw := string(body)
	s.audit(&models.PaymentAudit{
		IntentID:    &event.IntentID,
		EventType:   models.PaymentEventWebhookReceived,
		EventSource: models.PaymentSourceWebhook,
		RawBody:     &raw,
	}, meta)

	if err := s.Reconcile(&models.PaymentEvent{
		IntentID:      event.IntentID,
		Outcome:       outcome,
		PaymentMethod: event.PaymentMethod,
		FailureReason: event.FailureReason,
		Source:        "webhook",
		RawBody:       body,
	}, models.PaymentSourceWebhook, meta); err != nil {
		s.logger.WithFields(logrus.Fields{
			"intent_id": event.IntentID,
			"error":     err.Error(),
		}).Error("Webhook reconciliation failed")
	}
	return nil
}

// ConfirmTestPayment drives reconciliation without a processor callback.
// Available outside production only; it exists so integration environments
// without webhook connectivity can exercise the full lifecycle.
func (s *PaymentService) ConfirmTestPayment(userCtx *middleware.UserContext, req *models.ConfirmPaymentRequest, meta ClientMeta) error {
	if s.environment == "production" {
		return apperrors.Forbidden("test confirmation is disabled in production")
	}

	var outcome models.PaymentEventOutcome
	switch req.Outcome {
	case string(models.PaymentOutcomeSucceeded):
		outcome = models.PaymentOutcomeSucceeded
	case string(models.PaymentOutcomeFailed):
		outcome = models.PaymentOutcomeFailed
	default:
		return apperrors.Validation("outcome must be succeeded or failed")
	}

	payment, err := s.paymentRepo.GetByIntentID(req.IntentID)
	if err != nil {
		return err
	}
	booking, err := s.bookingRepo.GetByID(payment.BookingID)
	if err != nil {
		return err
	}
	if booking.UserID != userCtx.UserID && userCtx.Role != models.RoleAdmin {
		return apperrors.Forbidden("not allowed to confirm this payment")
	}

	return s.Reconcile(&models.PaymentEvent{
		IntentID:      req.IntentID,
		Outcome:       outcome,
		FailureReason: req.FailureReason,
		Source:        "confirm",
	}, models.PaymentSourceUser, meta)
}

// Reconcile applies a normalized payment outcome to the payment row and,
// on success, confirms the booking.
//
// Guarantees, regardless of delivery order or duplication:
//   - a replayed success is a no-op (the conditional update hits zero rows)
//   - a failure never demotes a succeeded payment
//   - a booking is confirmed at most once, and only from pending
func (s *PaymentService) Reconcile(event *models.PaymentEvent, source models.PaymentEventSource, meta ClientMeta) error {
	payment, err := s.paymentRepo.GetByIntentID(event.IntentID)
	if err != nil {
		return err
	}

	if event.Outcome == models.PaymentOutcomeFailed {
		updated, err := s.paymentRepo.MarkFailed(event.IntentID, event.FailureReason)
		if err != nil {
			return err
		}
		if !updated {
			s.auditReplay(payment, event, source, meta)
			return nil
		}
		s.audit(&models.PaymentAudit{
			BookingID:    &payment.BookingID,
			PaymentID:    &payment.ID,
			IntentID:     &event.IntentID,
			EventType:    models.PaymentEventFailed,
			EventSource:  source,
			Amount:       &payment.Amount,
			Currency:     &payment.Currency,
			ErrorMessage: event.FailureReason,
		}, meta)
		s.logger.WithFields(logrus.Fields{
			"intent_id":  event.IntentID,
			"booking_id": payment.BookingID,
		}).Info("Payment failed, booking remains pending")
		return nil
	}

	updated, err := s.paymentRepo.MarkSucceeded(event.IntentID, event.PaymentMethod, time.Now())
	if err != nil {
		return err
	}
	if !updated {
		s.auditReplay(payment, event, source, meta)
		return nil
	}

	s.audit(&models.PaymentAudit{
		BookingID:   &payment.BookingID,
		PaymentID:   &payment.ID,
		IntentID:    &event.IntentID,
		EventType:   models.PaymentEventSuccess,
		EventSource: source,
		Amount:      &payment.Amount,
		Currency:    &payment.Currency,
	}, meta)

	confirmed, err := s.bookingRepo.Confirm(payment.BookingID)
	if err != nil {
		return err
	}
	if !confirmed {
		// Paid but unconfirmable: the booking was cancelled or completed
		// before the money arrived. Flag it for a manual refund.
		msg := "payment succeeded but booking was not pending"
		s.audit(&models.PaymentAudit{
			BookingID:    &payment.BookingID,
			PaymentID:    &payment.ID,
			IntentID:     &event.IntentID,
			EventType:    models.PaymentEventBookingConfirmFailed,
			EventSource:  models.PaymentSourceSystem,
			Amount:       &payment.Amount,
			Currency:     &payment.Currency,
			ErrorMessage: &msg,
		}, meta)
		s.logger.WithFields(logrus.Fields{
			"intent_id":  event.IntentID,
			"booking_id": payment.BookingID,
		}).Error("Payment succeeded for a booking that is no longer pending")
		return nil
	}

	s.audit(&models.PaymentAudit{
		BookingID:   &payment.BookingID,
		PaymentID:   &payment.ID,
		IntentID:    &event.IntentID,
		EventType:   models.PaymentEventBookingConfirmed,
		EventSource: models.PaymentSourceSystem,
	}, meta)

	s.logger.WithFields(logrus.Fields{
		"intent_id":  event.IntentID,
		"booking_id": payment.BookingID,
	}).Info("Payment reconciled, booking confirmed")
	return nil
}

// AuditTrail returns the payment audit entries for a booking the caller
// may see
func (s *PaymentService) AuditTrail(userCtx *middleware.UserContext, bookingID uuid.UUID) ([]models.PaymentAudit, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userCtx.UserID && userCtx.Role != models.RoleAdmin {
		return nil, apperrors.Forbidden("not allowed to view this audit trail")
	}
	return s.auditRepo.ListByBooking(bookingID)
}

func (s *PaymentService) auditReplay(payment *models.Payment, event *models.PaymentEvent, source models.PaymentEventSource, meta ClientMeta) {
	s.audit(&models.PaymentAudit{
		BookingID:   &payment.BookingID,
		PaymentID:   &payment.ID,
		IntentID:    &event.IntentID,
		EventType:   models.PaymentEventReplayIgnored,
		EventSource: source,
	}, meta)
	s.logger.WithFields(logrus.Fields{
		"intent_id": event.IntentID,
		"outcome":   event.Outcome,
		"source":    event.Source,
	}).Info("Ignored replayed payment event")
}

// audit writes an entry and logs on failure; a broken audit insert never
// blocks the payment path.
func (s *PaymentService) audit(entry *models.PaymentAudit, meta ClientMeta) {
	if meta.IPAddress != "" {
		entry.IPAddress = &meta.IPAddress
	}
	if meta.UserAgent != "" {
		entry.UserAgent = &meta.UserAgent
		info := utils.DescribeClient(meta.UserAgent)
		entry.ClientInfo = &info
	}
	if err := s.auditRepo.Log(entry); err != nil {
		s.logger.WithFields(logrus.Fields{
			"event_type": entry.EventType,
			"error":      err.Error(),
		}).Error("Failed to write payment audit entry")
	}
}
