package router

import (
	"github.com/ManuelReschke/EventDesk/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	ac := h.handlers.Admin
	adminGroup := app.Group("/admin/api", middleware.RequireAdmin(h.handlers.AdminCredentials))

	// Payment management
	adminGroup.Get("/payments", ac.HandleListPayments)
	adminGroup.Get("/payments/:order_id/callbacks", ac.HandleListCallbacks)
	adminGroup.Post("/payments/:order_id/notify", ac.HandleResendNotification)

	// Statistics + queue monitor
	adminGroup.Get("/stats", ac.HandleStats)
	adminGroup.Get("/queue", ac.HandleQueueStats)
}
