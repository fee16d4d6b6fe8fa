// Package bootstrap wires the payment workflow from environment configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/EventDesk/app/repository"
	"github.com/ManuelReschke/EventDesk/internal/pkg/cache"
	"github.com/ManuelReschke/EventDesk/internal/pkg/database"
	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
	"github.com/ManuelReschke/EventDesk/internal/pkg/events"
	"github.com/ManuelReschke/EventDesk/internal/pkg/gateway"
	"github.com/ManuelReschke/EventDesk/internal/pkg/jobqueue"
	"github.com/ManuelReschke/EventDesk/internal/pkg/mail"
	"github.com/ManuelReschke/EventDesk/internal/pkg/notify"
	"github.com/ManuelReschke/EventDesk/internal/pkg/payment"
	"github.com/ManuelReschke/EventDesk/internal/pkg/receipt"
	"github.com/ManuelReschke/EventDesk/internal/pkg/s3store"
	"github.com/ManuelReschke/EventDesk/internal/pkg/statistics"
)

// App holds the wired services shared by the server and the CLI.
type App struct {
	Repos     *repository.Repositories
	Payments  *payment.Service
	Receipts  *receipt.Service
	Jobs      *jobqueue.Manager
	Stats     *statistics.Service
	Publisher events.Publisher
}

// Options overrides collaborators, used by tests. Zero values are built
// from the environment.
type Options struct {
	Gateway   payment.OrderCreator
	Mailer    mail.Mailer
	Publisher events.Publisher
	Renderer  receipt.PDFRenderer
	Archive   receipt.Archive
	// StatsCache holds the admin payment summary; nil disables caching.
	StatsCache *redis.Client
}

// Setup connects the database and wires the services around the global job
// queue manager.
func Setup(ctx context.Context) (*App, error) {
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())
	return Wire(ctx, repository.GetGlobalFactory().GetRepositories(), jobqueue.GetManager(), Options{
		StatsCache: cache.GetClient(),
	})
}

// Wire builds the services on top of repos. jobs may be nil, then mails are
// sent inline and pending checks rely on the due-check sweep alone.
func Wire(ctx context.Context, repos *repository.Repositories, jobs *jobqueue.Manager, opts Options) (*App, error) {
	loc := Location()

	if opts.Gateway == nil {
		opts.Gateway = gateway.NewClientFromEnv()
	}
	if opts.Mailer == nil {
		opts.Mailer = mail.NewSMTPMailerFromEnv()
	}
	if opts.Publisher == nil {
		pub, err := events.NewPublisherFromEnv()
		if err != nil {
			log.Warnf("[Bootstrap] Kafka unavailable, status events disabled: %v", err)
			pub = events.NopPublisher{}
		}
		opts.Publisher = pub
	}
	if opts.Renderer == nil {
		opts.Renderer = receipt.NewChromeRendererFromEnv()
	}
	if opts.Archive == nil {
		archive, err := receiptArchive(ctx)
		if err != nil {
			return nil, err
		}
		if archive != nil {
			opts.Archive = archive
		}
	}

	sender, err := notify.NewSender(opts.Mailer, env.GetEnv("PUBLIC_DOMAIN", ""), loc)
	if err != nil {
		return nil, err
	}

	stats := statistics.NewService(repos.Payment, opts.StatsCache, env.GetEnvDuration("STATS_CACHE_TTL", statistics.CacheExpiration))

	deps := payment.Dependencies{
		Payments:  repos.Payment,
		Callbacks: repos.PaymentCallback,
		Gateway:   opts.Gateway,
		Sender:    sender,
		Publisher: opts.Publisher,
		Stats:     stats,
	}
	if jobs != nil {
		deps.Scheduler = jobs.GetQueue()
		deps.Dispatcher = jobs.GetQueue()
	}
	payments, err := payment.NewService(deps, payment.LoadConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create payment service: %w", err)
	}
	if jobs != nil {
		jobs.SetPaymentHandler(payments)
	}

	receipts, err := receipt.NewService(repos.Payment, opts.Renderer, opts.Archive, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt service: %w", err)
	}

	return &App{
		Repos:     repos,
		Payments:  payments,
		Receipts:  receipts,
		Jobs:      jobs,
		Stats:     stats,
		Publisher: opts.Publisher,
	}, nil
}

// Close releases the event publisher.
func (a *App) Close() {
	if a.Publisher == nil {
		return
	}
	if err := a.Publisher.Close(); err != nil {
		log.Warnf("[Bootstrap] Failed to close event publisher: %v", err)
	}
}

// Location is the display time zone from APP_TIMEZONE.
func Location() *time.Location {
	loc, err := time.LoadLocation(env.GetEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		log.Warnf("[Bootstrap] Unknown APP_TIMEZONE, falling back to UTC: %v", err)
		return time.UTC
	}
	return loc
}

func receiptArchive(ctx context.Context) (*s3store.Client, error) {
	cfg, err := s3store.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsEnabled() {
		log.Info("[Bootstrap] Receipt archive disabled")
		return nil, nil
	}
	client, err := s3store.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt archive client: %w", err)
	}
	log.Infof("[Bootstrap] Receipt archive enabled (bucket %s)", cfg.BucketName)
	return client, nil
}
