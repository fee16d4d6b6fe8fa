// Package notify renders status specific payment mails and hands them to the
// mail relay.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/template/html/v2"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
	"github.com/ManuelReschke/EventDesk/internal/pkg/mail"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	TemplatePaymentSuccess  = "paymentSuccess"
	TemplatePaymentFailed   = "paymentFailed"
	TemplatePaymentRefunded = "paymentRefunded"
	TemplatePaymentPending  = "paymentPending"
)

// Notification carries everything a payment mail shows. Amount is already
// formatted in major units.
type Notification struct {
	To            string
	Name          string
	EventTitle    string
	Amount        string
	Currency      string
	TransactionID string
	OrderID       string
	Status        string
}

type templateData struct {
	Notification
	Subject    string
	Timestamp  string
	ReceiptURL string
}

type Sender struct {
	mailer   mail.Mailer
	engine   *html.Engine
	baseURL  string
	location *time.Location
	now      func() time.Time
}

// NewSender parses the embedded templates. baseURL is used to build receipt links.
func NewSender(mailer mail.Mailer, baseURL string, location *time.Location) (*Sender, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}
	if location == nil {
		location = time.UTC
	}
	return &Sender{
		mailer:   mailer,
		engine:   engine,
		baseURL:  strings.TrimRight(baseURL, "/"),
		location: location,
		now:      time.Now,
	}, nil
}

func NewSenderFromEnv(mailer mail.Mailer) (*Sender, error) {
	loc, err := time.LoadLocation(env.GetEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		log.Warnf("[Notify] Unknown APP_TIMEZONE, falling back to UTC: %v", err)
		loc = time.UTC
	}
	return NewSender(mailer, env.GetEnv("PUBLIC_DOMAIN", ""), loc)
}

// TemplateFor selects the template for a payment status. Unknown statuses get
// the pending template.
func TemplateFor(status string) string {
	switch models.NormalizePaymentStatus(status) {
	case models.PaymentStatusSuccess:
		return TemplatePaymentSuccess
	case models.PaymentStatusFailed:
		return TemplatePaymentFailed
	case models.PaymentStatusRefunded:
		return TemplatePaymentRefunded
	default:
		return TemplatePaymentPending
	}
}

func SubjectFor(status, eventTitle string) string {
	var prefix string
	switch TemplateFor(status) {
	case TemplatePaymentSuccess:
		prefix = "Payment successful"
	case TemplatePaymentFailed:
		prefix = "Payment failed"
	case TemplatePaymentRefunded:
		prefix = "Payment refunded"
	default:
		prefix = "Payment pending"
	}
	if eventTitle == "" {
		return prefix
	}
	return prefix + ": " + eventTitle
}

// ReceiptURL builds the public receipt link; it is empty without a transaction id.
func (s *Sender) ReceiptURL(transactionID string) string {
	if transactionID == "" {
		return ""
	}
	return s.baseURL + "/payment/receipt/" + transactionID
}

// Render returns subject and HTML body for n.
func (s *Sender) Render(n Notification) (string, string, error) {
	subject := SubjectFor(n.Status, n.EventTitle)
	data := templateData{
		Notification: n,
		Subject:      subject,
		Timestamp:    s.now().In(s.location).Format("02 Jan 2006, 15:04 MST"),
		ReceiptURL:   s.ReceiptURL(n.TransactionID),
	}

	var buf bytes.Buffer
	if err := s.engine.Render(&buf, TemplateFor(n.Status), data); err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", TemplateFor(n.Status), err)
	}
	return subject, buf.String(), nil
}

// Send renders and dispatches n. It does not retry; the job queue does.
func (s *Sender) Send(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(n.To) == "" {
		return fmt.Errorf("notification for order %s has no recipient", n.OrderID)
	}
	subject, body, err := s.Render(n)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(n.To, subject, body); err != nil {
		return fmt.Errorf("failed to send %s mail for order %s: %w", TemplateFor(n.Status), n.OrderID, err)
	}
	log.Infof("[Notify] Sent %s mail for order %s", TemplateFor(n.Status), n.OrderID)
	return nil
}
