package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
)

const DefaultDueCheckInterval = 30 * time.Second

// Manager manages the global job queue and background tasks
type Manager struct {
	queue            *Queue
	dueCheckInterval time.Duration
	dueCheckTicker   *time.Ticker
	stopCh           chan struct{}
	wg               sync.WaitGroup
	mu               sync.Mutex
	running          bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = NewManager(
			NewQueue(env.GetEnvInt("JOBQUEUE_WORKERS", 5)),
			env.GetEnvDuration("PAYMENT_SWEEP_INTERVAL", DefaultDueCheckInterval),
		)
	})
	return globalManager
}

// NewManager wraps queue; dueCheckInterval controls the overdue pending-check sweeper
func NewManager(queue *Queue, dueCheckInterval time.Duration) *Manager {
	if dueCheckInterval <= 0 {
		dueCheckInterval = DefaultDueCheckInterval
	}
	return &Manager{
		queue:            queue,
		dueCheckInterval: dueCheckInterval,
		stopCh:           make(chan struct{}),
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// SetPaymentHandler wires the payment workflow into workers and the sweeper
func (m *Manager) SetPaymentHandler(h PaymentHandler) {
	m.queue.SetHandler(h)
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.dueCheckTicker = time.NewTicker(m.dueCheckInterval)
	m.wg.Add(1)
	go m.dueCheckWorker(m.stopCh, m.dueCheckTicker)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.dueCheckTicker != nil {
		m.dueCheckTicker.Stop()
	}

	close(m.stopCh)
	m.running = false

	m.wg.Wait()
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// dueCheckWorker re-fires pending checks whose persisted due time passed,
// covering delayed jobs lost with a Redis flush or never scheduled.
func (m *Manager) dueCheckWorker(stopCh <-chan struct{}, ticker *time.Ticker) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started due-check sweeper (interval: %s)", m.dueCheckInterval)

	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Due-check sweeper stopping")
			return
		case <-ticker.C:
			if _, err := m.RunDueChecksOnce(context.Background()); err != nil {
				log.Errorf("[JobQueue Manager] Due-check sweep error: %v", err)
			}
		}
	}
}

// RunDueChecksOnce runs a single sweep of overdue pending checks
func (m *Manager) RunDueChecksOnce(ctx context.Context) (int, error) {
	handler := m.queue.getHandler()
	if handler == nil {
		return 0, nil
	}
	return handler.RunDueChecks(ctx)
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
