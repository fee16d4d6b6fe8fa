package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EventDesk/app/repository"
	"github.com/ManuelReschke/EventDesk/internal/pkg/events"
	"github.com/ManuelReschke/EventDesk/internal/pkg/gateway"
	"github.com/ManuelReschke/EventDesk/internal/pkg/notify"
	"github.com/ManuelReschke/EventDesk/internal/pkg/testutil"
)

const testSecret = "k"

type fakeGateway struct {
	mu       sync.Mutex
	requests []gateway.OrderRequest
	err      error
	nextID   string
}

func (g *fakeGateway) CreateOrder(_ context.Context, in gateway.OrderRequest) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, in)
	if g.err != nil {
		return nil, g.err
	}
	id := g.nextID
	if id == "" {
		id = "order_" + in.Receipt
	}
	return &gateway.Order{ID: id, Amount: in.Amount, Currency: in.Currency, Receipt: in.Receipt, Status: "created"}, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (f *fakeSender) Send(_ context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type scheduled struct {
	orderID string
	at      time.Time
}

type fakeScheduler struct {
	mu    sync.Mutex
	armed []scheduled
	err   error
}

func (f *fakeScheduler) SchedulePendingCheck(_ context.Context, orderID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.armed = append(f.armed, scheduled{orderID, at})
	return nil
}

type dispatched struct {
	orderID, status string
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatched
	err   error
}

func (f *fakeDispatcher) DispatchNotification(_ context.Context, orderID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, dispatched{orderID, status})
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.StatusChanged
}

func (f *fakePublisher) PublishStatusChanged(_ context.Context, evt events.StatusChanged) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeStats struct {
	mu    sync.Mutex
	drops int
}

func (f *fakeStats) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drops++
	return nil
}

func (f *fakeStats) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drops
}

type harness struct {
	db         *gorm.DB
	repos      *repository.Repositories
	svc        *Service
	gateway    *fakeGateway
	sender     *fakeSender
	scheduler  *fakeScheduler
	dispatcher *fakeDispatcher
	publisher  *fakePublisher
	stats      *fakeStats
	clock      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewTestDB(t)
	h := &harness{
		db:         db,
		repos:      repository.NewRepositories(db),
		gateway:    &fakeGateway{},
		sender:     &fakeSender{},
		scheduler:  &fakeScheduler{},
		dispatcher: &fakeDispatcher{},
		publisher:  &fakePublisher{},
		stats:      &fakeStats{},
		clock:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	svc, err := NewService(Dependencies{
		Payments:   h.repos.Payment,
		Callbacks:  h.repos.PaymentCallback,
		Gateway:    h.gateway,
		Sender:     h.sender,
		Publisher:  h.publisher,
		Scheduler:  h.scheduler,
		Dispatcher: h.dispatcher,
		Stats:      h.stats,
	}, Config{KeySecret: testSecret, PendingCheckDelay: time.Minute})
	require.NoError(t, err)
	svc.now = func() time.Time { return h.clock }
	h.svc = svc
	return h
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func seedPayer(t *testing.T, h *harness) (uint, uint) {
	t.Helper()
	return testutil.SeedPayer(t, h.db)
}

func (h *harness) seed(t *testing.T, orderID, status string) {
	t.Helper()
	testutil.SeedPayment(t, h.db, orderID, status)
}
