package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/internal/pkg/metrics"
	"github.com/ManuelReschke/EventDesk/internal/pkg/notify"
)

// SendNotification renders and sends the mail for status to the payer of
// orderID. It is the job handler behind DispatchNotification and returns an
// ErrUpstream wrapped error when the relay fails so the queue can retry.
func (s *Service) SendNotification(ctx context.Context, orderID, status string) error {
	if s.sender == nil {
		return upstreamError("send notification", errors.New("no notification sender configured"))
	}
	rec, err := s.payments.GetByOrderIDWithPayer(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	n := notificationFor(rec, status)
	template := notify.TemplateFor(n.Status)
	if err := s.sender.Send(ctx, n); err != nil {
		metrics.NotificationsTotal.WithLabelValues(template, "error").Inc()
		return upstreamError("send notification", err)
	}
	metrics.NotificationsTotal.WithLabelValues(template, "sent").Inc()
	return nil
}

func notificationFor(rec *models.PaymentHistory, status string) notify.Notification {
	return notify.Notification{
		To:            rec.User.Email,
		Name:          rec.User.Name,
		EventTitle:    rec.Event.Title,
		Amount:        models.FormatMinorAmount(rec.AmountMinor),
		Currency:      rec.Currency,
		TransactionID: rec.TransactionIDValue(),
		OrderID:       rec.OrderID,
		Status:        status,
	}
}

// dispatch hands the mail to the dispatcher. Without one, or when enqueueing
// fails, the mail is sent inline. Failures are logged only.
func (s *Service) dispatch(ctx context.Context, orderID, status string) {
	if s.dispatcher != nil {
		err := s.dispatcher.DispatchNotification(ctx, orderID, status)
		if err == nil {
			return
		}
		log.Warnf("[Payment] Failed to enqueue %s notification for order %s, sending inline: %v", status, orderID, err)
	}
	if err := s.SendNotification(ctx, orderID, status); err != nil {
		log.Errorf("[Payment] Failed to send %s notification for order %s: %v", status, orderID, err)
	}
}

// ResendNotification re-dispatches the mail matching the current status of
// orderID and returns that status.
func (s *Service) ResendNotification(ctx context.Context, orderID string) (string, error) {
	rec, err := s.lookup(orderID)
	if err != nil {
		return "", err
	}
	if s.dispatcher != nil {
		err := s.dispatcher.DispatchNotification(ctx, rec.OrderID, rec.Status)
		if err == nil {
			log.Infof("[Payment] Re-dispatched %s notification for order %s", rec.Status, rec.OrderID)
			return rec.Status, nil
		}
		log.Warnf("[Payment] Failed to enqueue resend for order %s, sending inline: %v", rec.OrderID, err)
	}
	if err := s.SendNotification(ctx, rec.OrderID, rec.Status); err != nil {
		return "", err
	}
	return rec.Status, nil
}
