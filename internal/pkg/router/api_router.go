package router

import (
	apiv1 "github.com/ManuelReschke/EventDesk/internal/api/v1"
	"github.com/ManuelReschke/EventDesk/internal/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
)

type ApiRouter struct {
	handlers *Handlers
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", ratelimit.New(h.handlers.RateLimit, h.handlers.LimiterStorage))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer(h.handlers.Payment, h.handlers.Receipt)
	apiv1.RegisterHandlers(v1, apiServer)
}

func NewApiRouter(h *Handlers) *ApiRouter {
	return &ApiRouter{handlers: h}
}
