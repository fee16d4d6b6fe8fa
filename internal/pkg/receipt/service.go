// Package receipt projects payment records into receipts and renders them as
// HTML and PDF.
package receipt

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/template/html/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/app/repository"
	"github.com/ManuelReschke/EventDesk/internal/pkg/metrics"
	"github.com/ManuelReschke/EventDesk/internal/pkg/payment"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	printTemplate   = "receipt_print"
	timestampLayout = "02 Jan 2006, 15:04 MST"
	pdfContentType  = "application/pdf"
)

// Projection is the read-only view of a payment shown on receipts.
type Projection struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	Receipt       string `json:"receipt,omitempty"`
	Amount        string `json:"amount"`
	AmountMinor   int64  `json:"amount_minor"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	PayerName     string `json:"payer_name"`
	PayerEmail    string `json:"payer_email"`
	PayerPhone    string `json:"payer_phone,omitempty"`
	EventTitle    string `json:"event_title"`
	EventVenue    string `json:"event_venue,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// PDFRenderer prints an HTML document to PDF.
type PDFRenderer interface {
	PrintToPDF(ctx context.Context, html []byte) ([]byte, error)
}

// Archive stores rendered receipts. Implemented by s3store.Client.
type Archive interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	ReceiptKey(transactionID string) string
}

type Service struct {
	payments repository.PaymentRepository
	renderer PDFRenderer
	archive  Archive
	engine   *html.Engine
	location *time.Location
}

// NewService creates the receipt service. renderer and archive may be nil;
// without a renderer ExportPDF fails with ErrUpstream.
func NewService(payments repository.PaymentRepository, renderer PDFRenderer, archive Archive, location *time.Location) (*Service, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load receipt templates: %w", err)
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		payments: payments,
		renderer: renderer,
		archive:  archive,
		engine:   engine,
		location: location,
	}, nil
}

// Get looks up the payment by transaction id and projects it.
func (s *Service) Get(ctx context.Context, transactionID string) (*Projection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transaction id is required", payment.ErrValidation)
	}
	rec, err := s.payments.GetByTransactionID(transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no receipt for transaction %s", payment.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}
	return s.project(rec), nil
}

func (s *Service) project(rec *models.PaymentHistory) *Projection {
	return &Projection{
		OrderID:       rec.OrderID,
		TransactionID: rec.TransactionIDValue(),
		Receipt:       rec.Receipt,
		Amount:        models.FormatMinorAmount(rec.AmountMinor),
		AmountMinor:   rec.AmountMinor,
		Currency:      rec.Currency,
		Status:        rec.Status,
		PayerName:     rec.User.Name,
		PayerEmail:    rec.User.Email,
		PayerPhone:    rec.User.Phone,
		EventTitle:    rec.Event.Title,
		EventVenue:    rec.Event.Venue,
		CreatedAt:     rec.CreatedAt.In(s.location).Format(timestampLayout),
	}
}

// RenderHTML renders the fixed print layout of p.
func (s *Service) RenderHTML(p *Projection) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.engine.Render(&buf, printTemplate, p); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportPDF returns the receipt of transactionID as PDF. Receipts of
// terminal payments are archived and served from the archive afterwards.
func (s *Service) ExportPDF(ctx context.Context, transactionID string) ([]byte, error) {
	p, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	archivable := s.archive != nil && models.IsTerminalPaymentStatus(p.Status)
	if archivable {
		data, err := s.archive.Get(ctx, s.archive.ReceiptKey(p.TransactionID))
		if err == nil {
			log.Debugf("[Receipt] Serving archived receipt for %s", p.TransactionID)
			return data, nil
		}
		log.Debugf("[Receipt] No archived receipt for %s: %v", p.TransactionID, err)
	}

	if s.renderer == nil {
		return nil, fmt.Errorf("%w: pdf rendering is not configured", payment.ErrUpstream)
	}
	doc, err := s.RenderHTML(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pdf, err := s.renderer.PrintToPDF(ctx, doc)
	metrics.ReceiptPDFDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Errorf("[Receipt] PDF rendering failed for %s: %v", p.TransactionID, err)
		return nil, fmt.Errorf("%w: pdf rendering failed: %v", payment.ErrUpstream, err)
	}

	if archivable {
		if err := s.archive.Put(ctx, s.archive.ReceiptKey(p.TransactionID), pdf, pdfContentType); err != nil {
			log.Warnf("[Receipt] Failed to archive receipt for %s: %v", p.TransactionID, err)
		}
	}
	return pdf, nil
}

// Filename is the download name of a receipt PDF.
func Filename(transactionID string) string {
	return fmt.Sprintf("receipt-%s.pdf", transactionID)
}
