package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/EventDesk/internal/pkg/payment"
	"github.com/ManuelReschke/EventDesk/internal/pkg/receipt"
)

// ReceiptService is the part of receipt.Service used by the HTTP layer.
type ReceiptService interface {
	Get(ctx context.Context, transactionID string) (*receipt.Projection, error)
	RenderHTML(p *receipt.Projection) ([]byte, error)
	ExportPDF(ctx context.Context, transactionID string) ([]byte, error)
}

// ReceiptController serves receipts as JSON, PDF and HTML page
type ReceiptController struct {
	receipts ReceiptService
}

func NewReceiptController(receipts ReceiptService) *ReceiptController {
	return &ReceiptController{receipts: receipts}
}

// HandleGetReceipt returns the receipt projection as JSON.
// GET /api/v1/payments/receipts/:transaction_id
func (rc *ReceiptController) HandleGetReceipt(c *fiber.Ctx) error {
	p, err := rc.receipts.Get(c.UserContext(), c.Params("transaction_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// HandleDownloadReceiptPDF streams the receipt PDF as attachment.
// GET /api/v1/payments/receipts/:transaction_id/pdf
func (rc *ReceiptController) HandleDownloadReceiptPDF(c *fiber.Ctx) error {
	txn := c.Params("transaction_id")
	pdf, err := rc.receipts.ExportPDF(c.UserContext(), txn)
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, txn, pdf)
}

// HandleReceiptPage renders the receipt page for a transaction.
// GET /payment/receipt/:transaction_id
func (rc *ReceiptController) HandleReceiptPage(c *fiber.Ctx) error {
	txn := c.Params("transaction_id")
	p, err := rc.receipts.Get(c.UserContext(), txn)
	if err != nil {
		status := StatusForError(err)
		message := "Receipt could not be loaded. Please try again later."
		if errors.Is(err, payment.ErrNotFound) || errors.Is(err, payment.ErrValidation) {
			message = "No receipt was found for this transaction."
		} else {
			log.Errorf("[ReceiptController] Failed to load receipt %s: %v", txn, err)
		}
		return c.Status(status).Render("receipt", fiber.Map{
			"Title":   "Receipt",
			"Flash":   flash.Get(c),
			"Missing": true,
			"Message": message,
		})
	}

	return c.Render("receipt", fiber.Map{
		"Title":    "Receipt " + p.TransactionID,
		"Flash":    flash.Get(c),
		"Receipt":  p,
		"PDFURL":   fmt.Sprintf("/payment/receipt/%s/pdf", p.TransactionID),
		"PrintURL": fmt.Sprintf("/payment/receipt/%s/print", p.TransactionID),
	})
}

// HandleReceiptPrint returns the print layout used for the PDF export.
// GET /payment/receipt/:transaction_id/print
func (rc *ReceiptController) HandleReceiptPrint(c *fiber.Ctx) error {
	p, err := rc.receipts.Get(c.UserContext(), c.Params("transaction_id"))
	if err != nil {
		return respondError(c, err)
	}
	doc, err := rc.receipts.RenderHTML(p)
	if err != nil {
		return respondError(c, err)
	}
	c.Type("html", "utf-8")
	return c.Send(doc)
}

// HandleReceiptPagePDF downloads the PDF from the receipt page. Failures
// redirect back to the page with a flash message.
// GET /payment/receipt/:transaction_id/pdf
func (rc *ReceiptController) HandleReceiptPagePDF(c *fiber.Ctx) error {
	txn := c.Params("transaction_id")
	pdf, err := rc.receipts.ExportPDF(c.UserContext(), txn)
	if err != nil {
		log.Warnf("[ReceiptController] PDF download failed for %s: %v", txn, err)
		fm := fiber.Map{
			"type":    "error",
			"message": "The PDF receipt could not be generated. Please try again in a few minutes.",
		}
		return flash.WithError(c, fm).Redirect("/payment/receipt/"+txn, fiber.StatusSeeOther)
	}
	return sendPDF(c, txn, pdf)
}

func sendPDF(c *fiber.Ctx, txn string, pdf []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", receipt.Filename(txn)))
	return c.Send(pdf)
}
