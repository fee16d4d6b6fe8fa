package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/EventDesk/app/controllers"
	"github.com/ManuelReschke/EventDesk/internal/pkg/health"
	"github.com/ManuelReschke/EventDesk/internal/pkg/middleware"
	"github.com/ManuelReschke/EventDesk/internal/pkg/ratelimit"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Handlers bundles the controllers and middleware settings the routers need.
type Handlers struct {
	Payment *controllers.PaymentController
	Receipt *controllers.ReceiptController
	Admin   *controllers.AdminPaymentController
	// Health serves /healthz when set.
	Health *health.Checker

	AdminCredentials middleware.AdminCredentials
	RateLimit        ratelimit.Config
	// LimiterStorage keeps limiter counters; nil means in-memory.
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, h *Handlers) {
	setup(app, NewHttpRouter(h), NewApiRouter(h))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
