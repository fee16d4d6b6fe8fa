// Package health reports the reachability of the services payments depend on.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	CacheKeyReport = "health:report"
	checkTimeout   = 2 * time.Second
)

// Component is the state of one dependency.
type Component struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Report aggregates component states. Healthy is false when any component is.
type Report struct {
	Healthy    bool                 `json:"healthy"`
	Components map[string]Component `json:"components"`
	CheckedAt  time.Time            `json:"checked_at"`
}

type Checker struct {
	db         *gorm.DB
	redis      *redis.Client
	gatewayURL string
	httpClient *http.Client

	mu     sync.Mutex
	stopCh chan struct{}
}

// NewChecker creates a checker. Nil dependencies and an empty gateway URL are
// skipped.
func NewChecker(db *gorm.DB, client *redis.Client, gatewayURL string) *Checker {
	return &Checker{
		db:         db,
		redis:      client,
		gatewayURL: strings.TrimSpace(gatewayURL),
		httpClient: &http.Client{Timeout: checkTimeout},
	}
}

// Check probes every configured dependency once.
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{Healthy: true, Components: map[string]Component{}, CheckedAt: time.Now().UTC()}

	record := func(name string, probe func(context.Context) error) {
		pctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		start := time.Now()
		err := probe(pctx)
		comp := Component{Healthy: err == nil, Latency: time.Since(start).Round(time.Millisecond).String()}
		if err != nil {
			comp.Error = err.Error()
			report.Healthy = false
		}
		report.Components[name] = comp
	}

	if c.db != nil {
		record("database", func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	if c.redis != nil {
		record("cache", func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		})
	}
	if c.gatewayURL != "" {
		record("gateway", c.probeGateway)
	}
	return report
}

// probeGateway treats any response below 500 as reachable
func (c *Checker) probeGateway(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.gatewayURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fiber.NewError(resp.StatusCode, "gateway returned "+resp.Status)
	}
	return nil
}

// Handler serves a fresh report, 503 when unhealthy.
func (c *Checker) Handler(ctx *fiber.Ctx) error {
	report := c.Check(ctx.UserContext())
	status := fiber.StatusOK
	if !report.Healthy {
		status = fiber.StatusServiceUnavailable
	}
	return ctx.Status(status).JSON(report)
}

// StartMonitor runs Check every interval, logs degraded components and caches
// the latest report in Redis.
func (c *Checker) StartMonitor(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopCh != nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	stopCh := make(chan struct{})
	c.stopCh = stopCh

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Infof("[Health] Monitor started (interval: %s)", interval)

		// run once immediately
		c.runOnce()

		for {
			select {
			case <-stopCh:
				log.Info("[Health] Monitor stopped")
				return
			case <-ticker.C:
				c.runOnce()
			}
		}
	}()
}

// StopMonitor stops the background monitor.
func (c *Checker) StopMonitor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
}

func (c *Checker) runOnce() {
	ctx := context.Background()
	report := c.Check(ctx)
	for name, comp := range report.Components {
		if !comp.Healthy {
			log.Warnf("[Health] %s unhealthy: %s", name, comp.Error)
		}
	}
	if c.redis == nil {
		return
	}
	b, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, CacheKeyReport, b, 2*time.Minute).Err(); err != nil {
		log.Errorf("[Health] Cache set failed: %v", err)
	}
}
