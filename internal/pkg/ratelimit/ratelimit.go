// Package ratelimit builds fiber limiters backed by the shared Redis cache.
package ratelimit

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/EventDesk/internal/pkg/cache"
	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
)

// limiterDatabase keeps limiter counters apart from the job queue (DB 0).
const limiterDatabase = 1

// Config controls a limiter instance.
type Config struct {
	Max        int
	Expiration time.Duration
}

// LoadConfig reads API_RATE_LIMIT_MAX and API_RATE_LIMIT_WINDOW.
func LoadConfig() Config {
	return Config{
		Max:        env.GetEnvInt("API_RATE_LIMIT_MAX", 60),
		Expiration: env.GetEnvDuration("API_RATE_LIMIT_WINDOW", time.Minute),
	}
}

// NewRedisStorage connects limiter storage to the host of the cache client.
func NewRedisStorage() *redis.Storage {
	cacheClient := cache.GetClient()
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	username := ""
	if cacheClient != nil {
		opts := cacheClient.Options()
		if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if opts.Password != "" {
			password = opts.Password
		}
		username = opts.Username
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Database: limiterDatabase,
		Reset:    false,
	})
}

// New returns a limiter keyed by client IP. A nil storage keeps counters in
// memory.
func New(cfg Config, storage fiber.Storage) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = 60
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = time.Minute
	}
	lc := limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Expiration,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "too many requests, please retry later",
			})
		},
	}
	if storage != nil {
		lc.Storage = storage
	}
	return limiter.New(lc)
}
