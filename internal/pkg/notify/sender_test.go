package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func newTestSender(t *testing.T, m *fakeMailer) *Sender {
	t.Helper()
	s, err := NewSender(m, "https://events.example.org/", time.UTC)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return s
}

func TestTemplateFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SUCCESS", TemplatePaymentSuccess},
		{"success", TemplatePaymentSuccess},
		{"FAILED", TemplatePaymentFailed},
		{"REFUNDED", TemplatePaymentRefunded},
		{"PENDING", TemplatePaymentPending},
		{"whatever", TemplatePaymentPending},
		{"", TemplatePaymentPending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TemplateFor(tt.in), tt.in)
	}
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "Payment successful: Summit", SubjectFor("SUCCESS", "Summit"))
	assert.Equal(t, "Payment pending", SubjectFor("PENDING", ""))
}

func TestSenderRender(t *testing.T) {
	s := newTestSender(t, &fakeMailer{})

	subject, body, err := s.Render(Notification{
		To:            "asha@example.org",
		Name:          "Asha",
		EventTitle:    "Annual Tech Summit",
		Amount:        "500.00",
		Currency:      "INR",
		TransactionID: "pay_1",
		OrderID:       "order_1",
		Status:        "SUCCESS",
	})
	require.NoError(t, err)
	assert.Equal(t, "Payment successful: Annual Tech Summit", subject)
	assert.Contains(t, body, "Hi Asha")
	assert.Contains(t, body, "INR 500.00")
	assert.Contains(t, body, "order_1")
	assert.Contains(t, body, "14 Mar 2026, 09:30 UTC")
	assert.Contains(t, body, "https://events.example.org/payment/receipt/pay_1")
}

func TestSenderRender_PendingWithoutTransaction(t *testing.T) {
	s := newTestSender(t, &fakeMailer{})

	_, body, err := s.Render(Notification{Name: "Asha", EventTitle: "Summit", OrderID: "order_2", Status: "PENDING"})
	require.NoError(t, err)
	assert.Contains(t, body, "still being processed")
	assert.NotContains(t, body, "/payment/receipt/")
}

func TestSenderRender_EscapesInput(t *testing.T) {
	s := newTestSender(t, &fakeMailer{})

	_, body, err := s.Render(Notification{Name: "<script>x</script>", Status: "FAILED"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>x</script>")
}

func TestSenderSend(t *testing.T) {
	m := &fakeMailer{}
	s := newTestSender(t, m)

	require.NoError(t, s.Send(context.Background(), Notification{To: "asha@example.org", Name: "Asha", OrderID: "order_3", Status: "REFUNDED"}))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "asha@example.org", m.sent[0].to)
	assert.Equal(t, "Payment refunded", m.sent[0].subject)
	assert.Contains(t, m.sent[0].body, "has been refunded")
}

func TestSenderSend_Errors(t *testing.T) {
	m := &fakeMailer{err: errors.New("relay down")}
	s := newTestSender(t, m)

	err := s.Send(context.Background(), Notification{To: "a@example.org", OrderID: "order_4", Status: "SUCCESS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay down")

	err = s.Send(context.Background(), Notification{OrderID: "order_5", Status: "SUCCESS"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Notification{To: "a@example.org"}), context.Canceled)
}
