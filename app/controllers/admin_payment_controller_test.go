package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/app/repository"
	"github.com/ManuelReschke/EventDesk/internal/pkg/jobqueue"
	"github.com/ManuelReschke/EventDesk/internal/pkg/payment"
	"github.com/ManuelReschke/EventDesk/internal/pkg/statistics"
	"github.com/ManuelReschke/EventDesk/internal/pkg/testutil"
)

type fakeQueue struct {
	err error
}

func (q *fakeQueue) GetJobStats(context.Context) (map[jobqueue.JobStatus]int64, error) {
	if q.err != nil {
		return nil, q.err
	}
	return map[jobqueue.JobStatus]int64{jobqueue.JobStatusCompleted: 4, jobqueue.JobStatusFailed: 1}, nil
}
func (q *fakeQueue) GetQueueSize(context.Context) (int64, error)      { return 2, nil }
func (q *fakeQueue) GetProcessingSize(context.Context) (int64, error) { return 1, nil }
func (q *fakeQueue) GetDelayedSize(context.Context) (int64, error)    { return 3, nil }

func newAdminApp(t *testing.T, f *fakePayments, q QueueInspector) (*fiber.App, *repository.Repositories) {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedPayment(t, db, "order_A", models.PaymentStatusPending)
	testutil.SeedPayment(t, db, "order_B", models.PaymentStatusSuccess)
	testutil.SeedPayment(t, db, "order_C", models.PaymentStatusSuccess)
	repos := repository.NewRepositories(db)

	app := fiber.New()
	ac := NewAdminPaymentController(repos, f, q, statistics.NewService(repos.Payment, nil, 0))
	app.Get("/payments", ac.HandleListPayments)
	app.Get("/payments/:order_id/callbacks", ac.HandleListCallbacks)
	app.Post("/payments/:order_id/notify", ac.HandleResendNotification)
	app.Get("/queue", ac.HandleQueueStats)
	app.Get("/stats", ac.HandleStats)
	return app, repos
}

type listResponse struct {
	Payments []map[string]interface{} `json:"payments"`
	Total    int64                    `json:"total"`
	Limit    int                      `json:"limit"`
}

func TestHandleListPayments(t *testing.T) {
	app, _ := newAdminApp(t, &fakePayments{}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/payments", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var all listResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	assert.Len(t, all.Payments, 3)
	assert.Equal(t, int64(3), all.Total)
	assert.Equal(t, defaultPageLimit, all.Limit)

	resp, err = app.Test(httptest.NewRequest("GET", "/payments?status=success&limit=1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var page listResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Len(t, page.Payments, 1)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, "SUCCESS", page.Payments[0]["status"])
	assert.Equal(t, "500.00", page.Payments[0]["amount"])
}

func TestHandleListPayments_BadQuery(t *testing.T) {
	app, _ := newAdminApp(t, &fakePayments{}, nil)

	for _, url := range []string{"/payments?status=LOST", "/payments?offset=-1", "/payments?limit=abc"} {
		resp, err := app.Test(httptest.NewRequest("GET", url, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, url)
	}
}

func TestHandleResendNotification(t *testing.T) {
	f := &fakePayments{status: models.PaymentStatusSuccess}
	app, _ := newAdminApp(t, f, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/payments/order_B/notify", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []string{"order_B"}, f.resent)
	assert.Contains(t, readBody(t, resp), `"status":"SUCCESS"`)
}

func TestHandleResendNotification_NotFound(t *testing.T) {
	app, _ := newAdminApp(t, &fakePayments{err: payment.ErrNotFound}, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/payments/nope/notify", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleListCallbacks(t *testing.T) {
	app, repos := newAdminApp(t, &fakePayments{}, nil)
	require.NoError(t, repos.PaymentCallback.Create(&models.PaymentCallback{
		OrderID:        "order_A",
		AssertedStatus: models.PaymentStatusPending,
		Outcome:        models.CallbackOutcomeApplied,
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/payments/order_A/callbacks", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"outcome":"applied"`)

	resp, err = app.Test(httptest.NewRequest("GET", "/payments/unknown/callbacks", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleQueueStats(t *testing.T) {
	app, _ := newAdminApp(t, &fakePayments{}, &fakeQueue{})
	resp, err := app.Test(httptest.NewRequest("GET", "/queue", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `"delayed":3`)
	assert.Contains(t, body, `"completed":4`)

	app, _ = newAdminApp(t, &fakePayments{}, &fakeQueue{err: errors.New("redis down")})
	resp, err = app.Test(httptest.NewRequest("GET", "/queue", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandleQueueStats_Unavailable(t *testing.T) {
	app, _ := newAdminApp(t, &fakePayments{}, nil)
	resp, err := app.Test(httptest.NewRequest("GET", "/queue", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleStats(t *testing.T) {
	app, _ := newAdminApp(t, &fakePayments{}, nil)
	resp, err := app.Test(httptest.NewRequest("GET", "/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary statistics.PaymentSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, int64(3), summary.Total)
	assert.Equal(t, int64(2), summary.ByStatus[models.PaymentStatusSuccess])
}
