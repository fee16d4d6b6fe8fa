package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/app/repository"
	"github.com/ManuelReschke/EventDesk/internal/pkg/gateway"
	"github.com/ManuelReschke/EventDesk/internal/pkg/metrics"
)

// VerifyInput is a gateway callback as posted by the checkout page.
type VerifyInput struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	Status    string `json:"status"`
}

type VerifyResult struct {
	OrderID            string `json:"order_id"`
	Status             string `json:"status"`
	NotificationStatus string `json:"notification_status,omitempty"`
	// Idempotent is true when the record was already terminal and nothing changed.
	Idempotent bool `json:"idempotent"`
}

// Verify applies a gateway callback to the payment record. Terminal records
// are never modified; every state change is a single conditional update
// guarded by status = PENDING.
func (s *Service) Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	asserted := models.NormalizePaymentStatus(in.Status)

	audit := &models.PaymentCallback{
		OrderID:        truncate(in.OrderID, 64),
		PaymentID:      truncate(in.PaymentID, 64),
		AssertedStatus: truncate(asserted, 32),
	}
	res, err := s.verify(ctx, in, asserted, audit)
	s.recordCallback(in, audit, res, err)

	outcome := audit.Outcome
	metrics.VerificationsTotal.WithLabelValues(metricStatus(asserted), outcome).Inc()
	return res, err
}

func (s *Service) verify(ctx context.Context, in VerifyInput, asserted string, audit *models.PaymentCallback) (*VerifyResult, error) {
	if in.OrderID == "" {
		return nil, validationError("razorpay_order_id is required")
	}

	rec, err := s.lookup(in.OrderID)
	if err != nil {
		return nil, err
	}
	if rec.IsTerminal() {
		log.Infof("[Payment] Order %s already %s, ignoring %s callback", rec.OrderID, rec.Status, asserted)
		return terminalResult(rec), nil
	}

	var t repository.PaymentTransition
	switch asserted {
	case models.PaymentStatusSuccess:
		audit.SignatureValid = gateway.VerifyCheckoutSignature(in.OrderID, in.PaymentID, in.Signature, s.cfg.KeySecret)
		if !audit.SignatureValid {
			log.Warnf("[Payment] Signature mismatch for order %s", in.OrderID)
			return nil, ErrSignatureMismatch
		}
		if in.PaymentID == "" {
			return nil, validationError("razorpay_payment_id is required for SUCCESS")
		}
		t = repository.PaymentTransition{
			Status:             models.PaymentStatusSuccess,
			TransactionID:      in.PaymentID,
			NotificationStatus: models.NotificationSuccessSent,
		}
	case models.PaymentStatusFailed:
		t = repository.PaymentTransition{
			Status:             models.PaymentStatusFailed,
			TransactionID:      in.PaymentID,
			NotificationStatus: models.NotificationFailedSent,
		}
	case models.PaymentStatusPending:
		t = repository.PaymentTransition{
			Status:        models.PaymentStatusPending,
			TransactionID: in.PaymentID,
		}
		if rec.NotificationStatusValue() == models.NotificationPendingSent {
			// the pending mail already went out; do not arm a second one
			t.NotificationStatus = models.NotificationPendingSent
		} else {
			due := s.now().Add(s.cfg.PendingCheckDelay)
			t.NotificationStatus = models.NotificationPendingWait
			t.NextCheckAt = &due
		}
	default:
		return nil, ErrInvalidStatus
	}

	applied, err := s.payments.TransitionFromPending(rec.OrderID, t)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Either a concurrent callback made the record terminal, or the
		// driver reported zero rows because nothing changed.
		current, lerr := s.lookup(rec.OrderID)
		if lerr != nil {
			return nil, lerr
		}
		if current.IsTerminal() {
			log.Infof("[Payment] Order %s became %s concurrently, %s callback is a no-op", current.OrderID, current.Status, asserted)
			return terminalResult(current), nil
		}
		if t.NotificationStatus == models.NotificationPendingWait && current.NotificationStatusValue() == models.NotificationPendingSent {
			// the deferred check sent the pending mail in between; keep its marker
			log.Infof("[Payment] Pending mail for order %s went out concurrently, not re-arming", current.OrderID)
			t.NotificationStatus = models.NotificationPendingSent
			t.NextCheckAt = nil
			rec.NextCheckAt = nil
			if _, err := s.payments.TransitionFromPending(rec.OrderID, t); err != nil {
				return nil, err
			}
		}
	}

	rec.Status = t.Status
	if t.TransactionID != "" {
		txn := t.TransactionID
		rec.TransactionID = &txn
	}
	ns := t.NotificationStatus
	rec.NotificationStatus = &ns
	if t.NextCheckAt != nil {
		rec.NextCheckAt = t.NextCheckAt
	}
	log.Infof("[Payment] Order %s -> %s (%s)", rec.OrderID, rec.Status, ns)
	s.publish(ctx, rec)

	switch ns {
	case models.NotificationSuccessSent, models.NotificationFailedSent:
		s.dispatch(ctx, rec.OrderID, rec.Status)
	case models.NotificationPendingWait:
		s.arm(ctx, rec.OrderID, *t.NextCheckAt)
	}

	return &VerifyResult{
		OrderID:            rec.OrderID,
		Status:             rec.Status,
		NotificationStatus: ns,
	}, nil
}

func terminalResult(rec *models.PaymentHistory) *VerifyResult {
	return &VerifyResult{
		OrderID:            rec.OrderID,
		Status:             rec.Status,
		NotificationStatus: rec.NotificationStatusValue(),
		Idempotent:         true,
	}
}

func (s *Service) recordCallback(in VerifyInput, audit *models.PaymentCallback, res *VerifyResult, err error) {
	switch {
	case err == nil && res != nil && res.Idempotent:
		audit.Outcome = models.CallbackOutcomeNoop
	case err == nil:
		audit.Outcome = models.CallbackOutcomeApplied
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrSignatureMismatch), errors.Is(err, ErrInvalidStatus):
		audit.Outcome = models.CallbackOutcomeRejected
		audit.ProcessingError = err.Error()
	default:
		audit.Outcome = models.CallbackOutcomeError
		audit.ProcessingError = err.Error()
	}

	if s.callbacks == nil {
		return
	}
	if payload, merr := json.Marshal(in); merr == nil {
		audit.PayloadJSON = datatypes.JSON(payload)
	}
	if cerr := s.callbacks.Create(audit); cerr != nil {
		log.Warnf("[Payment] Failed to store callback audit for order %s: %v", in.OrderID, cerr)
	}
}

func metricStatus(status string) string {
	switch status {
	case models.PaymentStatusSuccess, models.PaymentStatusFailed, models.PaymentStatusPending, models.PaymentStatusRefunded:
		return status
	default:
		return "OTHER"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
