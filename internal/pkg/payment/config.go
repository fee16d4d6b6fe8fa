package payment

import (
	"strings"
	"time"

	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
)

const (
	DefaultPendingCheckDelay = 60 * time.Second
	DefaultSweepBatchSize    = 100
)

type Config struct {
	// KeySecret is the shared gateway secret used for callback signatures.
	KeySecret string
	// PendingCheckDelay is how long a PENDING payment waits before the
	// "still pending" mail goes out.
	PendingCheckDelay time.Duration
	SweepBatchSize    int
	// SnowflakeNode identifies this instance in receipt labels.
	SnowflakeNode int64
}

func LoadConfig() Config {
	return Config{
		KeySecret:         strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_SECRET", "")),
		PendingCheckDelay: env.GetEnvDuration("PAYMENT_PENDING_CHECK_DELAY", DefaultPendingCheckDelay),
		SweepBatchSize:    env.GetEnvInt("PAYMENT_SWEEP_BATCH_SIZE", DefaultSweepBatchSize),
		SnowflakeNode:     int64(env.GetEnvInt("SNOWFLAKE_NODE", 1)),
	}
}

func (c Config) withDefaults() Config {
	if c.PendingCheckDelay <= 0 {
		c.PendingCheckDelay = DefaultPendingCheckDelay
	}
	if c.SweepBatchSize <= 0 {
		c.SweepBatchSize = DefaultSweepBatchSize
	}
	if c.SnowflakeNode < 0 || c.SnowflakeNode > 1023 {
		c.SnowflakeNode = 1
	}
	return c
}
