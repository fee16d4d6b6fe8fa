package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/EventDesk/internal/pkg/testutil"
)

func TestCheck_AllHealthy(t *testing.T) {
	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(gw.Close)

	report := NewChecker(db, client, gw.URL).Check(context.Background())
	assert.True(t, report.Healthy)
	assert.Len(t, report.Components, 3)
	assert.True(t, report.Components["gateway"].Healthy, "4xx still means reachable")
}

func TestCheck_CacheDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	report := NewChecker(nil, client, "").Check(context.Background())
	assert.False(t, report.Healthy)
	assert.NotEmpty(t, report.Components["cache"].Error)
	_, hasDB := report.Components["database"]
	assert.False(t, hasDB)
}

func TestHandler_StatusCodes(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(gw.Close)

	app := fiber.New()
	app.Get("/healthz", NewChecker(testutil.NewTestDB(t), nil, gw.URL).Handler)
	app.Get("/ok", NewChecker(testutil.NewTestDB(t), nil, "").Handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var report Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Components["database"].Healthy)
}

func TestMonitor_CachesReport(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewChecker(nil, client, "")
	c.StartMonitor(time.Hour)
	defer c.StopMonitor()

	assert.Eventually(t, func() bool { return mr.Exists(CacheKeyReport) }, 2*time.Second, 10*time.Millisecond)
}
