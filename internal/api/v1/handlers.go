package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to controllers to keep the response shape in one place
	"github.com/ManuelReschke/EventDesk/app/controllers"
)

// Pong is the body of GET /ping.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer serves the public v1 payment API
type APIServer struct {
	payments *controllers.PaymentController
	receipts *controllers.ReceiptController
}

// NewAPIServer creates a new API server instance
func NewAPIServer(payments *controllers.PaymentController, receipts *controllers.ReceiptController) *APIServer {
	return &APIServer{payments: payments, receipts: receipts}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// PostPaymentOrder creates a gateway order for an event registration.
func (s *APIServer) PostPaymentOrder(c *fiber.Ctx) error {
	return s.payments.HandleCreateOrder(c)
}

// PostPaymentVerify receives the checkout callback of the gateway.
func (s *APIServer) PostPaymentVerify(c *fiber.Ctx) error {
	return s.payments.HandleVerify(c)
}

// GetPaymentReceipt returns a receipt as JSON.
func (s *APIServer) GetPaymentReceipt(c *fiber.Ctx, transactionID string) error {
	if transactionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "transaction_id missing"})
	}
	return s.receipts.HandleGetReceipt(c)
}

// GetPaymentReceiptPDF downloads a receipt as PDF.
func (s *APIServer) GetPaymentReceiptPDF(c *fiber.Ctx, transactionID string) error {
	if transactionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "transaction_id missing"})
	}
	return s.receipts.HandleDownloadReceiptPDF(c)
}

// RegisterHandlers mounts the v1 operations documented in
// public/docs/v1/openapi.yml on router.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	payments := router.Group("/payments")
	payments.Post("/orders", s.PostPaymentOrder)
	payments.Post("/verify", s.PostPaymentVerify)
	payments.Get("/receipts/:transaction_id", func(c *fiber.Ctx) error {
		return s.GetPaymentReceipt(c, c.Params("transaction_id"))
	})
	payments.Get("/receipts/:transaction_id/pdf", func(c *fiber.Ctx) error {
		return s.GetPaymentReceiptPDF(c, c.Params("transaction_id"))
	})
}
