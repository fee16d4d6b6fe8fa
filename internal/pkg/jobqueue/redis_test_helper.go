package jobqueue

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestRedis starts an in-process Redis and returns a client bound to it.
func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type handlerCall struct {
	kind, orderID, status string
}

type fakeHandler struct {
	mu       sync.Mutex
	calls    []handlerCall
	sendErr  error
	checkErr error
	sweeps   int
}

func (h *fakeHandler) HandlePendingCheck(_ context.Context, orderID string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, handlerCall{kind: "check", orderID: orderID})
	if h.checkErr != nil {
		return false, h.checkErr
	}
	return true, nil
}

func (h *fakeHandler) SendNotification(_ context.Context, orderID, status string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, handlerCall{"send", orderID, status})
	return h.sendErr
}

func (h *fakeHandler) RunDueChecks(context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sweeps++
	return 0, nil
}

func (h *fakeHandler) snapshot() []handlerCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]handlerCall(nil), h.calls...)
}

func (h *fakeHandler) sweepCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sweeps
}
