package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EventDesk/internal/pkg/payment"
)

// ErrPermanent marks job failures that retrying cannot fix
var ErrPermanent = errors.New("permanent job failure")

// PaymentHandler is the part of the payment workflow executed by workers
type PaymentHandler interface {
	HandlePendingCheck(ctx context.Context, orderID string) (bool, error)
	SendNotification(ctx context.Context, orderID, status string) error
	RunDueChecks(ctx context.Context) (int, error)
}

// SchedulePendingCheck arms a deferred pending check for orderID at the given time
func (q *Queue) SchedulePendingCheck(ctx context.Context, orderID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := q.EnqueueJobAt(JobTypePaymentPendingCheck, PendingCheckJobPayload{OrderID: orderID}.ToMap(), at)
	return err
}

// DispatchNotification enqueues a status mail for immediate delivery
func (q *Queue) DispatchNotification(ctx context.Context, orderID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := q.EnqueueJob(JobTypePaymentNotification, NotificationJobPayload{OrderID: orderID, Status: status}.ToMap())
	return err
}

func (q *Queue) processPendingCheckJob(ctx context.Context, job *Job) error {
	handler := q.getHandler()
	if handler == nil {
		return errors.New("no payment handler registered")
	}
	payload, err := PendingCheckJobPayloadFromMap(job.Payload)
	if err != nil || payload.OrderID == "" {
		return fmt.Errorf("%w: invalid pending check payload: %v", ErrPermanent, err)
	}

	sent, err := handler.HandlePendingCheck(ctx, payload.OrderID)
	if err != nil {
		return err
	}
	if !sent {
		log.Debugf("[JobQueue] Pending check for order %s had nothing to do", payload.OrderID)
	}
	return nil
}

func (q *Queue) processNotificationJob(ctx context.Context, job *Job) error {
	handler := q.getHandler()
	if handler == nil {
		return errors.New("no payment handler registered")
	}
	payload, err := NotificationJobPayloadFromMap(job.Payload)
	if err != nil || payload.OrderID == "" || payload.Status == "" {
		return fmt.Errorf("%w: invalid notification payload: %v", ErrPermanent, err)
	}

	if err := handler.SendNotification(ctx, payload.OrderID, payload.Status); err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrPermanent, err)
		}
		return err
	}
	return nil
}
