package common

import (
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	Extract ExtractConfig
	Cache   CacheConfig
	Ledger  LedgerConfig
}

// ExtractConfig holds extraction-service configuration
type ExtractConfig struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

// CacheConfig holds extraction-cache configuration
type CacheConfig struct {
	Dir string
}

// LedgerConfig holds run-ledger configuration
type LedgerConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			APIURL:  getEnv("EXTRACT_API_URL", "https://api.taggun.io/api/receipt/v1/verbose/file"),
			APIKey:  getEnv("RECEIPT_API_KEY", ""),
			Timeout: getEnvAsDuration("EXTRACT_TIMEOUT", 90*time.Second),
		},
		Cache: CacheConfig{
			Dir: getEnv("EXTRACT_CACHE_DIR", "./extract-cache"),
		},
		Ledger: LedgerConfig{
			Path: getEnv("LEDGER_PATH", "./reconcile-ledger.db"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Extract.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "RECEIPT_API_KEY is required", ErrInvalidInput)
	}
	if c.Extract.APIURL == "" {
		return NewAppError("CONFIG_ERROR", "EXTRACT_API_URL is required", ErrInvalidInput)
	}
	if c.Cache.Dir == "" {
		return NewAppError("CONFIG_ERROR", "EXTRACT_CACHE_DIR is required", ErrInvalidInput)
	}
	return nil
}
