package s3store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
)

// Config holds the object storage settings for the receipt archive
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Prefix          string
	Enabled         bool
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Prefix:          strings.Trim(env.GetEnv("S3_RECEIPT_PREFIX", "receipts"), "/"),
		Enabled:         env.GetEnvBool("S3_RECEIPTS_ENABLED", false),
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when the receipt archive is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when the receipt archive is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when the receipt archive is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the receipt archive is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ReceiptKey returns the object key of an archived receipt PDF.
// Format: receipts/<transaction_id>.pdf
func (c *Config) ReceiptKey(transactionID string) string {
	if c.Prefix == "" {
		return fmt.Sprintf("%s.pdf", transactionID)
	}
	return fmt.Sprintf("%s/%s.pdf", c.Prefix, transactionID)
}
