// Package payment implements the payment lifecycle: order intake, gateway
// callback verification and the deferred "still pending" notification.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/app/repository"
	"github.com/ManuelReschke/EventDesk/internal/pkg/events"
	"github.com/ManuelReschke/EventDesk/internal/pkg/gateway"
	"github.com/ManuelReschke/EventDesk/internal/pkg/notify"
)

// OrderCreator mints gateway orders.
type OrderCreator interface {
	CreateOrder(ctx context.Context, in gateway.OrderRequest) (*gateway.Order, error)
}

// NotificationSender delivers a rendered payment mail.
type NotificationSender interface {
	Send(ctx context.Context, n notify.Notification) error
}

// Scheduler arms the deferred pending check for an order.
type Scheduler interface {
	SchedulePendingCheck(ctx context.Context, orderID string, at time.Time) error
}

// Dispatcher hands a notification off for asynchronous delivery.
type Dispatcher interface {
	DispatchNotification(ctx context.Context, orderID, status string) error
}

// StatsInvalidator drops cached payment counts after a record changes.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Dependencies struct {
	Payments  repository.PaymentRepository
	Callbacks repository.PaymentCallbackRepository
	Gateway   OrderCreator
	Sender    NotificationSender
	Publisher events.Publisher
	// Scheduler and Dispatcher are optional. Without a scheduler the due-check
	// sweeper alone fires pending checks; without a dispatcher mails are sent inline.
	Scheduler  Scheduler
	Dispatcher Dispatcher
	Stats      StatsInvalidator
}

type Service struct {
	payments   repository.PaymentRepository
	callbacks  repository.PaymentCallbackRepository
	gateway    OrderCreator
	sender     NotificationSender
	publisher  events.Publisher
	scheduler  Scheduler
	dispatcher Dispatcher
	stats      StatsInvalidator
	ids        *snowflake.Node
	cfg        Config
	now        func() time.Time
}

func NewService(deps Dependencies, cfg Config) (*Service, error) {
	if deps.Payments == nil {
		return nil, errors.New("payment repository is required")
	}
	cfg = cfg.withDefaults()
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		payments:   deps.Payments,
		callbacks:  deps.Callbacks,
		gateway:    deps.Gateway,
		sender:     deps.Sender,
		publisher:  publisher,
		scheduler:  deps.Scheduler,
		dispatcher: deps.Dispatcher,
		stats:      deps.Stats,
		ids:        node,
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

func (s *Service) Config() Config {
	return s.cfg
}

func (s *Service) lookup(orderID string) (*models.PaymentHistory, error) {
	rec, err := s.payments.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	return rec, nil
}

// publish announces a record change: the status event goes out and cached
// counts are dropped. Both are best effort.
func (s *Service) publish(ctx context.Context, rec *models.PaymentHistory) {
	evt := events.StatusChanged{
		OrderID:            rec.OrderID,
		TransactionID:      rec.TransactionIDValue(),
		UserID:             rec.UserID,
		EventID:            rec.EventID,
		Status:             rec.Status,
		NotificationStatus: rec.NotificationStatusValue(),
		AmountMinor:        rec.AmountMinor,
		Currency:           rec.Currency,
		OccurredAt:         s.now().UTC(),
	}
	if err := s.publisher.PublishStatusChanged(ctx, evt); err != nil {
		log.Warnf("[Payment] Failed to publish status event for order %s: %v", rec.OrderID, err)
	}
	if s.stats != nil {
		if err := s.stats.Invalidate(ctx); err != nil {
			log.Warnf("[Payment] Failed to invalidate payment statistics: %v", err)
		}
	}
}
