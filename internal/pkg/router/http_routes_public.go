package router

import (
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	rc := h.handlers.Receipt

	// Receipt pages linked from the notification mails
	receipts := app.Group("/payment/receipt")
	receipts.Get("/:transaction_id", rc.HandleReceiptPage)
	receipts.Get("/:transaction_id/pdf", rc.HandleReceiptPagePDF)
	receipts.Get("/:transaction_id/print", rc.HandleReceiptPrint)
}
