package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EventDesk/internal/pkg/payment"
)

// PaymentService is the part of payment.Service used by the HTTP layer.
type PaymentService interface {
	CreateOrder(ctx context.Context, in payment.CreateOrderInput) (*payment.CreateOrderResult, error)
	Verify(ctx context.Context, in payment.VerifyInput) (*payment.VerifyResult, error)
	ResendNotification(ctx context.Context, orderID string) (string, error)
}

// PaymentController handles order intake and gateway callbacks
type PaymentController struct {
	payments PaymentService
}

func NewPaymentController(payments PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// HandleCreateOrder creates a gateway order and the pending payment record.
// POST /api/v1/payments/orders
func (pc *PaymentController) HandleCreateOrder(c *fiber.Ctx) error {
	var in payment.CreateOrderInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := pc.payments.CreateOrder(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// HandleVerify applies the status the gateway reported for an order.
// POST /api/v1/payments/verify
func (pc *PaymentController) HandleVerify(c *fiber.Ctx) error {
	var in payment.VerifyInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := pc.payments.Verify(c.UserContext(), in)
	if err != nil {
		log.Infof("[PaymentController] Verify rejected for order %q from %s: %v", in.OrderID, GetClientIP(c), err)
		return respondError(c, err)
	}
	return c.JSON(res)
}
