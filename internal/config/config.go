package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Backend holds settings for the remote REST backend.
type Backend struct {
	BaseURL string
	Timeout time.Duration
}

// Retry describes the retrying gateway behaviour.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Store holds settings for the device-local state store.
type Store struct {
	Path string
}

// Materialize holds settings for delivery materialization on route finish.
type Materialize struct {
	Workers int
}

// RateLimit holds settings for the HTTP rate limiting middleware.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Config stores route-runner service settings.
type Config struct {
	Port        int
	PprofPort   int
	Backend     Backend
	Retry       Retry
	Store       Store
	Materialize Materialize
	RateLimit   RateLimit
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:        envInt("PORT", DefaultPort()),
		PprofPort:   envInt("PPROF_PORT", DefaultPprofPort()),
		Backend:     DefaultBackend(),
		Retry:       DefaultRetry(),
		Store:       DefaultStore(),
		Materialize: DefaultMaterialize(),
		RateLimit:   DefaultRateLimit(),
	}

	cfg.Backend.BaseURL = envString("BACKEND_BASE_URL", cfg.Backend.BaseURL)
	cfg.Backend.Timeout = envDuration("BACKEND_TIMEOUT", cfg.Backend.Timeout)
	cfg.Retry.MaxAttempts = envInt("RETRY_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)
	cfg.Retry.BaseDelay = envDuration("RETRY_BASE_DELAY", cfg.Retry.BaseDelay)
	cfg.Retry.MaxDelay = envDuration("RETRY_MAX_DELAY", cfg.Retry.MaxDelay)
	cfg.Store.Path = envString("STORE_PATH", cfg.Store.Path)
	cfg.Materialize.Workers = envInt("MATERIALIZE_WORKERS", cfg.Materialize.Workers)
	cfg.RateLimit.Enabled = envBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.Rate = envFloat("RATE_LIMIT_RATE", cfg.RateLimit.Rate)
	cfg.RateLimit.Burst = envInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst)

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.StringVar(&cfg.Backend.BaseURL, "backend-url", cfg.Backend.BaseURL, "base URL of the delivery backend")
	pflag.StringVar(&cfg.Store.Path, "store-path", cfg.Store.Path, "path of the local state database")
	pflag.Parse()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("invalid backend timeout: %s", c.Backend.Timeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("invalid retry attempts: %d", c.Retry.MaxAttempts)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}
	if c.Materialize.Workers < 1 {
		return fmt.Errorf("invalid materialize workers: %d", c.Materialize.Workers)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
