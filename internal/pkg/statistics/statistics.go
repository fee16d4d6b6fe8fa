// Package statistics keeps a cached summary of payment counts for the admin API.
package statistics

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/app/repository"
)

const (
	CacheKeyPaymentSummary = "statistics:payments:summary"
	CacheExpiration        = 5 * time.Minute
)

var trackedStatuses = []string{
	models.PaymentStatusPending,
	models.PaymentStatusSuccess,
	models.PaymentStatusFailed,
	models.PaymentStatusRefunded,
}

// PaymentSummary holds payment counts per status.
type PaymentSummary struct {
	Total     int64            `json:"total"`
	ByStatus  map[string]int64 `json:"by_status"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type Service struct {
	payments repository.PaymentRepository
	client   *redis.Client
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates the summary service. Without a client every call reads
// the database.
func NewService(payments repository.PaymentRepository, client *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = CacheExpiration
	}
	return &Service{payments: payments, client: client, ttl: ttl, now: time.Now}
}

// Summary returns the cached summary, rebuilding it from the database on a miss.
func (s *Service) Summary(ctx context.Context) (*PaymentSummary, error) {
	if s.client != nil {
		raw, err := s.client.Get(ctx, CacheKeyPaymentSummary).Bytes()
		if err == nil {
			var cached PaymentSummary
			if jerr := json.Unmarshal(raw, &cached); jerr == nil {
				return &cached, nil
			}
			log.Warnf("[Statistics] Dropping unreadable cached summary")
		} else if !errors.Is(err, redis.Nil) {
			log.Warnf("[Statistics] Cache read failed, counting from database: %v", err)
		}
	}

	summary, err := s.count()
	if err != nil {
		return nil, err
	}

	if s.client != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.client.Set(ctx, CacheKeyPaymentSummary, data, s.ttl).Err(); err != nil {
				log.Warnf("[Statistics] Failed to cache payment summary: %v", err)
			}
		}
	}
	return summary, nil
}

// Invalidate drops the cached summary so the next read recounts.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, CacheKeyPaymentSummary).Err()
}

func (s *Service) count() (*PaymentSummary, error) {
	summary := &PaymentSummary{
		ByStatus:  make(map[string]int64, len(trackedStatuses)),
		UpdatedAt: s.now().UTC(),
	}
	for _, status := range trackedStatuses {
		n, err := s.payments.Count(status)
		if err != nil {
			return nil, err
		}
		summary.ByStatus[status] = n
		summary.Total += n
	}
	return summary, nil
}
