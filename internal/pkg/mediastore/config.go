package mediastore

import (
	"errors"
	"fmt"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/env"
)

// Config holds S3 media storage configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads media store configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("S3_MEDIA_ENABLED", "false") == "true",
	}

	// Validate required fields if the media store is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when the media store is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when the media store is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when the media store is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the media store is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// AttachmentKey generates a standardized S3 object key for a contribution
// attachment. Format: attachments/YYYY/MM/UUID.ext
func (c *Config) AttachmentKey(contributionUUID, fileExtension string, year, month int) string {
	return fmt.Sprintf("attachments/%04d/%02d/%s%s", year, month, contributionUUID, fileExtension)
}

// GetAppEnv returns the current application environment
func GetAppEnv() string {
	return env.GetEnv("APP_ENV", "dev")
}

// GetBucketName returns the bucket name as configured
func (c *Config) GetBucketName() string {
	return c.BucketName
}
