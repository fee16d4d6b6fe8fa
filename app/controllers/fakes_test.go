package controllers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/EventDesk/internal/pkg/payment"
	"github.com/ManuelReschke/EventDesk/internal/pkg/receipt"
)

type fakePayments struct {
	createIn  payment.CreateOrderInput
	createRes *payment.CreateOrderResult
	verifyIn  payment.VerifyInput
	verifyRes *payment.VerifyResult
	resent    []string
	status    string
	err       error
}

func (f *fakePayments) CreateOrder(_ context.Context, in payment.CreateOrderInput) (*payment.CreateOrderResult, error) {
	f.createIn = in
	return f.createRes, f.err
}

func (f *fakePayments) Verify(_ context.Context, in payment.VerifyInput) (*payment.VerifyResult, error) {
	f.verifyIn = in
	return f.verifyRes, f.err
}

func (f *fakePayments) ResendNotification(_ context.Context, orderID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.resent = append(f.resent, orderID)
	return f.status, nil
}

type fakeReceipts struct {
	projection *receipt.Projection
	pdf        []byte
	getErr     error
	pdfErr     error
}

func (f *fakeReceipts) Get(_ context.Context, _ string) (*receipt.Projection, error) {
	return f.projection, f.getErr
}

func (f *fakeReceipts) RenderHTML(p *receipt.Projection) ([]byte, error) {
	return []byte("<html><body>Receipt " + p.TransactionID + "</body></html>"), nil
}

func (f *fakeReceipts) ExportPDF(_ context.Context, _ string) ([]byte, error) {
	return f.pdf, f.pdfErr
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{Views: html.New("../../views", ".html")})
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func sampleProjection() *receipt.Projection {
	return &receipt.Projection{
		OrderID:       "order_1",
		TransactionID: "pay_1",
		Amount:        "500.00",
		AmountMinor:   50000,
		Currency:      "INR",
		Status:        "SUCCESS",
		PayerName:     "Asha Rao",
		PayerEmail:    "asha@example.com",
		EventTitle:    "Annual Tech Summit",
		CreatedAt:     "14 Mar 2026, 15:00 IST",
	}
}
