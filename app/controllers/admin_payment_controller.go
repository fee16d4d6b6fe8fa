package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/app/repository"
	"github.com/ManuelReschke/EventDesk/internal/pkg/jobqueue"
	"github.com/ManuelReschke/EventDesk/internal/pkg/statistics"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// QueueInspector exposes job queue counters for the admin API.
type QueueInspector interface {
	GetJobStats(ctx context.Context) (map[jobqueue.JobStatus]int64, error)
	GetQueueSize(ctx context.Context) (int64, error)
	GetProcessingSize(ctx context.Context) (int64, error)
	GetDelayedSize(ctx context.Context) (int64, error)
}

// StatsProvider returns the cached payment summary.
type StatsProvider interface {
	Summary(ctx context.Context) (*statistics.PaymentSummary, error)
}

// AdminPaymentController handles the admin payment API using repository pattern
type AdminPaymentController struct {
	repos    *repository.Repositories
	payments PaymentService
	queue    QueueInspector
	stats    StatsProvider
}

// NewAdminPaymentController creates the admin controller. queue and stats
// may be nil when those backends are not running.
func NewAdminPaymentController(repos *repository.Repositories, payments PaymentService, queue QueueInspector, stats StatsProvider) *AdminPaymentController {
	return &AdminPaymentController{
		repos:    repos,
		payments: payments,
		queue:    queue,
		stats:    stats,
	}
}

type paymentListItem struct {
	OrderID            string      `json:"order_id"`
	TransactionID      string      `json:"transaction_id,omitempty"`
	UserID             uint        `json:"user_id"`
	EventID            uint        `json:"event_id"`
	Amount             string      `json:"amount"`
	Currency           string      `json:"currency"`
	Status             string      `json:"status"`
	NotificationStatus string      `json:"notification_status,omitempty"`
	NextCheckAt        interface{} `json:"next_check_at,omitempty"`
	CreatedAt          string      `json:"created_at"`
}

// HandleListPayments lists payments, newest first.
// GET /admin/api/payments?status=&offset=&limit=
func (ac *AdminPaymentController) HandleListPayments(c *fiber.Ctx) error {
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	if status != "" && status != models.PaymentStatusPending && !models.IsTerminalPaymentStatus(status) {
		return badRequest(c, "unknown status filter")
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return badRequest(c, err.Error())
	}
	limit, err := queryInt(c, "limit", defaultPageLimit)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if limit == 0 || limit > maxPageLimit {
		limit = maxPageLimit
	}

	rows, err := ac.repos.Payment.List(status, offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	total, err := ac.repos.Payment.Count(status)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]paymentListItem, 0, len(rows))
	for i := range rows {
		items = append(items, toListItem(&rows[i]))
	}
	return c.JSON(fiber.Map{
		"payments": items,
		"total":    total,
		"offset":   offset,
		"limit":    limit,
	})
}

// HandleResendNotification re-dispatches the mail for the current status.
// POST /admin/api/payments/:order_id/notify
func (ac *AdminPaymentController) HandleResendNotification(c *fiber.Ctx) error {
	orderID := c.Params("order_id")
	status, err := ac.payments.ResendNotification(c.UserContext(), orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"order_id": orderID,
		"status":   status,
		"message":  "notification dispatched",
	})
}

// HandleListCallbacks returns the verifier audit log of an order.
// GET /admin/api/payments/:order_id/callbacks
func (ac *AdminPaymentController) HandleListCallbacks(c *fiber.Ctx) error {
	orderID := c.Params("order_id")
	if _, err := ac.repos.Payment.GetByOrderID(orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "payment not found"})
		}
		return respondError(c, err)
	}
	callbacks, err := ac.repos.PaymentCallback.ListByOrderID(orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"order_id": orderID, "callbacks": callbacks})
}

// HandleQueueStats reports job queue sizes and counters.
// GET /admin/api/queue
func (ac *AdminPaymentController) HandleQueueStats(c *fiber.Ctx) error {
	if ac.queue == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "job queue is not running"})
	}
	ctx := c.UserContext()
	stats, err := ac.queue.GetJobStats(ctx)
	if err != nil {
		return respondError(c, err)
	}
	queued, err := ac.queue.GetQueueSize(ctx)
	if err != nil {
		return respondError(c, err)
	}
	processing, err := ac.queue.GetProcessingSize(ctx)
	if err != nil {
		return respondError(c, err)
	}
	delayed, err := ac.queue.GetDelayedSize(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"stats":      stats,
		"queued":     queued,
		"processing": processing,
		"delayed":    delayed,
	})
}

// HandleStats returns payment counts per status.
// GET /admin/api/stats
func (ac *AdminPaymentController) HandleStats(c *fiber.Ctx) error {
	if ac.stats == nil {
		total, err := ac.repos.Payment.Count("")
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"total": total})
	}
	summary, err := ac.stats.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

func toListItem(p *models.PaymentHistory) paymentListItem {
	item := paymentListItem{
		OrderID:            p.OrderID,
		TransactionID:      p.TransactionIDValue(),
		UserID:             p.UserID,
		EventID:            p.EventID,
		Amount:             models.FormatMinorAmount(p.AmountMinor),
		Currency:           p.Currency,
		Status:             p.Status,
		NotificationStatus: p.NotificationStatusValue(),
		NextCheckAt:        formatTimePtr(p.NextCheckAt),
		CreatedAt:          p.CreatedAt.UTC().Format(time.RFC3339),
	}
	return item
}
