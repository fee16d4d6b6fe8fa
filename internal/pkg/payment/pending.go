package payment

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/internal/pkg/metrics"
)

// arm schedules the deferred check. The due time is already persisted in
// next_check_at, so a scheduling failure only delays the mail until the
// next sweep.
func (s *Service) arm(ctx context.Context, orderID string, at time.Time) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.SchedulePendingCheck(ctx, orderID, at); err != nil {
		log.Warnf("[Payment] Failed to schedule pending check for order %s, sweeper will pick it up: %v", orderID, err)
	}
}

// HandlePendingCheck fires the deferred check for orderID. When the payment is
// still PENDING and the pending mail has not gone out, it claims
// PENDING_WAIT -> PENDING_SENT and sends the mail. In every other case it
// returns false without touching the record. Safe to call repeatedly.
func (s *Service) HandlePendingCheck(ctx context.Context, orderID string) (bool, error) {
	rec, err := s.lookup(orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warnf("[Payment] Pending check for unknown order %s dropped", orderID)
			metrics.PendingChecksTotal.WithLabelValues("not_found").Inc()
			return false, nil
		}
		return false, err
	}
	if rec.Status != models.PaymentStatusPending || rec.NotificationStatusValue() == models.NotificationPendingSent {
		log.Debugf("[Payment] Pending check for order %s is a no-op (status=%s, notification=%s)", orderID, rec.Status, rec.NotificationStatusValue())
		metrics.PendingChecksTotal.WithLabelValues("noop").Inc()
		return false, nil
	}

	claimed, err := s.payments.ClaimPendingNotification(orderID)
	if err != nil {
		return false, err
	}
	if !claimed {
		metrics.PendingChecksTotal.WithLabelValues("noop").Inc()
		return false, nil
	}

	if err := s.SendNotification(ctx, orderID, models.PaymentStatusPending); err != nil {
		retryAt := s.now().Add(s.cfg.PendingCheckDelay)
		if _, rerr := s.payments.RearmPendingCheck(orderID, retryAt); rerr != nil {
			log.Errorf("[Payment] Failed to re-arm pending check for order %s: %v", orderID, rerr)
		}
		metrics.PendingChecksTotal.WithLabelValues("error").Inc()
		return false, err
	}

	pendingSent := models.NotificationPendingSent
	rec.NotificationStatus = &pendingSent
	rec.NextCheckAt = nil
	log.Infof("[Payment] Sent pending notification for order %s", orderID)
	metrics.PendingChecksTotal.WithLabelValues("sent").Inc()
	s.publish(ctx, rec)
	return true, nil
}

// RunDueChecks fires every overdue pending check recorded in the database and
// returns how many pending mails went out. It backs the job queue sweeper and
// the paymentctl sweep command.
func (s *Service) RunDueChecks(ctx context.Context) (int, error) {
	due, err := s.payments.ListDuePendingChecks(s.now(), s.cfg.SweepBatchSize)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, p := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		ok, err := s.HandlePendingCheck(ctx, p.OrderID)
		if err != nil {
			log.Errorf("[Payment] Due check for order %s failed: %v", p.OrderID, err)
			continue
		}
		if ok {
			sent++
		}
	}
	if len(due) > 0 {
		log.Infof("[Payment] Due-check sweep handled %d orders, %d pending mails sent", len(due), sent)
	}
	return sent, nil
}
