package config

import "time"

const (
	defaultPort      = 8080
	defaultPprofPort = 6060
)

var defaultBackend = Backend{
	BaseURL: "http://localhost:8000/api",
	Timeout: 10 * time.Second,
}

var defaultRetry = Retry{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

var defaultStore = Store{
	Path: "pontual-runner.db",
}

var defaultMaterialize = Materialize{
	Workers: 4,
}

var defaultRateLimit = RateLimit{
	Enabled:    false,
	Rate:       20,
	Burst:      40,
	TTL:        10 * time.Minute,
	MaxBuckets: 10_000,
}

// DefaultPort returns the default HTTP port.
func DefaultPort() int { return defaultPort }

// DefaultPprofPort returns the default pprof side-server port.
func DefaultPprofPort() int { return defaultPprofPort }

// DefaultBackend returns the default backend settings.
func DefaultBackend() Backend { return defaultBackend }

// DefaultRetry returns the default gateway retry settings.
func DefaultRetry() Retry { return defaultRetry }

// DefaultStore returns the default local store settings.
func DefaultStore() Store { return defaultStore }

// DefaultMaterialize returns the default materializer settings.
func DefaultMaterialize() Materialize { return defaultMaterialize }

// DefaultRateLimit returns the default rate limiting settings.
func DefaultRateLimit() RateLimit { return defaultRateLimit }
