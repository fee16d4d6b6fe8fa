package router

import (
	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
	handlers *Handlers
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	if h.handlers.Health != nil {
		app.Get("/healthz", h.handlers.Health.Handler)
	}
	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
}

func NewHttpRouter(h *Handlers) *HttpRouter {
	return &HttpRouter{handlers: h}
}
