package config

import (
	"fmt"
	"os"
)

// DatabaseConfiguration holds the connection values of the document store.
type DatabaseConfiguration struct {
	URL string
}

// RedisConfiguration holds the values of the standings cache.
type RedisConfiguration struct {
	Host     string
	Port     string
	Password string
}

// BucketConfiguration holds the S3 values used for log shipping.
type BucketConfiguration struct {
	Region       string
	Endpoint     string
	AccessKey    string
	AccessSecret string
	LogBucket    string
}

// Config aggregates the whole environment configuration.
type Config struct {
	Environment string
	Database    DatabaseConfiguration
	Redis       RedisConfiguration
	Bucket      BucketConfiguration
}

// Load reads the configuration from the environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: os.Getenv("ENVIRONMENT"),
		Database: DatabaseConfiguration{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfiguration{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     os.Getenv("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Bucket: BucketConfiguration{
			Region:       os.Getenv("BUCKET_REGION"),
			Endpoint:     os.Getenv("BUCKET_ENDPOINT"),
			AccessKey:    os.Getenv("BUCKET_ACCESS_KEY"),
			AccessSecret: os.Getenv("BUCKET_ACCESS_SECRET"),
			LogBucket:    os.Getenv("BUCKET_LOG_NAME"),
		},
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	return cfg, nil
}
