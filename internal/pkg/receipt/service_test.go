package receipt

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/app/repository"
	"github.com/ManuelReschke/EventDesk/internal/pkg/payment"
	"github.com/ManuelReschke/EventDesk/internal/pkg/testutil"
)

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	last  string
	err   error
}

func (r *fakeRenderer) PrintToPDF(_ context.Context, html []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = string(html)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

type memArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func (a *memArchive) Get(_ context.Context, key string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (a *memArchive) Put(_ context.Context, key string, data []byte, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.putErr != nil {
		return a.putErr
	}
	a.objects[key] = data
	return nil
}

func (a *memArchive) ReceiptKey(transactionID string) string {
	return "receipts/" + transactionID + ".pdf"
}

func seedReceipt(t *testing.T, db *gorm.DB, orderID, txn, status string) {
	t.Helper()
	p := testutil.SeedPayment(t, db, orderID, status)
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, db.Model(p).Updates(map[string]interface{}{
		"transaction_id": txn,
		"receipt":        "rcpt_1",
		"created_at":     created,
	}).Error)
}

func newTestService(t *testing.T, renderer PDFRenderer, archive Archive) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	svc, err := NewService(repository.NewPaymentRepository(db), renderer, archive, loc)
	require.NoError(t, err)
	return svc, db
}

func TestGet(t *testing.T) {
	svc, db := newTestService(t, nil, nil)
	seedReceipt(t, db, "order_1", "pay_1", models.PaymentStatusSuccess)

	p, err := svc.Get(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "order_1", p.OrderID)
	assert.Equal(t, "pay_1", p.TransactionID)
	assert.Equal(t, "500.00", p.Amount)
	assert.Equal(t, int64(50000), p.AmountMinor)
	assert.Equal(t, "INR", p.Currency)
	assert.Equal(t, models.PaymentStatusSuccess, p.Status)
	assert.Equal(t, "Asha Rao", p.PayerName)
	assert.Equal(t, "+91 98450 00000", p.PayerPhone)
	assert.True(t, strings.HasPrefix(p.PayerEmail, "asha+"))
	assert.Equal(t, "Annual Tech Summit", p.EventTitle)
	assert.Equal(t, "14 Mar 2026, 15:00 IST", p.CreatedAt)
}

func TestGet_UnknownTransaction(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	_, err := svc.Get(context.Background(), "pay_missing")
	assert.ErrorIs(t, err, payment.ErrNotFound)

	_, err = svc.Get(context.Background(), "  ")
	assert.ErrorIs(t, err, payment.ErrValidation)
}

func TestRenderHTML(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	doc, err := svc.RenderHTML(&Projection{
		OrderID:       "order_1",
		TransactionID: "pay_1",
		Amount:        "500.00",
		Currency:      "INR",
		Status:        "SUCCESS",
		PayerName:     "Asha <Rao>",
		PayerEmail:    "asha@example.org",
		EventTitle:    "Annual Tech Summit",
		CreatedAt:     "14 Mar 2026, 15:00 IST",
	})
	require.NoError(t, err)
	html := string(doc)
	assert.Contains(t, html, "Payment receipt")
	assert.Contains(t, html, "INR 500.00")
	assert.Contains(t, html, "pay_1")
	assert.Contains(t, html, "Asha &lt;Rao&gt;")
	assert.NotContains(t, html, "Phone")
}

func TestExportPDF_RendersAndArchivesTerminalReceipts(t *testing.T) {
	renderer := &fakeRenderer{}
	archive := &memArchive{objects: map[string][]byte{}}
	svc, db := newTestService(t, renderer, archive)
	seedReceipt(t, db, "order_2", "pay_2", models.PaymentStatusSuccess)

	pdf, err := svc.ExportPDF(context.Background(), "pay_2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
	assert.Equal(t, 1, renderer.calls)
	assert.Contains(t, renderer.last, "pay_2")
	assert.Contains(t, archive.objects, "receipts/pay_2.pdf")

	// second export comes from the archive
	_, err = svc.ExportPDF(context.Background(), "pay_2")
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)
}

func TestExportPDF_PendingReceiptsAreNotArchived(t *testing.T) {
	renderer := &fakeRenderer{}
	archive := &memArchive{objects: map[string][]byte{}}
	svc, db := newTestService(t, renderer, archive)
	seedReceipt(t, db, "order_3", "pay_3", models.PaymentStatusPending)

	_, err := svc.ExportPDF(context.Background(), "pay_3")
	require.NoError(t, err)
	assert.Empty(t, archive.objects)
}

func TestExportPDF_ArchiveFailureStillReturnsPDF(t *testing.T) {
	archive := &memArchive{objects: map[string][]byte{}, putErr: errors.New("bucket gone")}
	svc, db := newTestService(t, &fakeRenderer{}, archive)
	seedReceipt(t, db, "order_4", "pay_4", models.PaymentStatusFailed)

	pdf, err := svc.ExportPDF(context.Background(), "pay_4")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestExportPDF_Errors(t *testing.T) {
	svc, db := newTestService(t, &fakeRenderer{err: errors.New("chrome crashed")}, nil)
	seedReceipt(t, db, "order_5", "pay_5", models.PaymentStatusSuccess)

	_, err := svc.ExportPDF(context.Background(), "pay_5")
	assert.ErrorIs(t, err, payment.ErrUpstream)

	_, err = svc.ExportPDF(context.Background(), "pay_unknown")
	assert.ErrorIs(t, err, payment.ErrNotFound)

	noRenderer, db2 := newTestService(t, nil, nil)
	seedReceipt(t, db2, "order_6", "pay_6", models.PaymentStatusSuccess)
	_, err = noRenderer.ExportPDF(context.Background(), "pay_6")
	assert.ErrorIs(t, err, payment.ErrUpstream)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "receipt-pay_1.pdf", Filename("pay_1"))
}

func TestChromeRenderer_PrintToPDF(t *testing.T) {
	var found bool
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			found = true
			break
		}
	}
	if !found {
		t.Skip("Skipping PDF rendering test: no Chrome binary on PATH")
	}

	r := &ChromeRenderer{Timeout: 30 * time.Second}
	pdf, err := r.PrintToPDF(context.Background(), []byte("<html><body><h1>Receipt</h1></body></html>"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}
