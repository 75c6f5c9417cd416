package rategate

import (
	"errors"
	"time"
)

// ErrorPredicate classifies which failures of a guarded operation count
// against the limit. A nil predicate counts every failure.
type ErrorPredicate func(error) bool

// Logger is the minimal logging surface the gate writes rejection and
// fail-open lines to. The stdlib *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// Config holds the gate's policy knobs. Instances are canonicalized and
// validated once at Build time and treated as immutable afterwards.
type Config struct {
	// Rate is the "N/unit" limit string, unit one of second, minute, hour,
	// or day. Required.
	Rate string

	// Message is the body of a blocking rejection response.
	// Defaults to "Too Many Errors".
	Message string

	// LogOnly computes and logs every decision but never enforces it;
	// over-limit requests still proceed.
	LogOnly bool

	// DisableLogging suppresses the per-decision log lines.
	DisableLogging bool

	Audit    AuditConfig
	Metrics  MetricsConfig
	Fallback FallbackConfig
}

// AuditConfig controls the buffered audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process atomic counters.
type MetricsConfig struct {
	Enabled bool
}

// FallbackConfig controls the optional in-process limiter consulted only
// while the store is unreachable. Disabled by default: the documented policy
// for store failures is plain fail-open.
type FallbackConfig struct {
	Enabled bool
	// RPS and Burst parameterize the local per-partition token bucket.
	RPS   float64
	Burst int
	// IdleTTL bounds how long an idle partition's local limiter is kept.
	IdleTTL time.Duration
}

func defaultConfig() Config {
	return Config{
		Message: "Too Many Errors",
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Fallback: FallbackConfig{
			IdleTTL: 15 * time.Minute,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// canonicalize fills defaults for fields the caller left zero.
func (c *Config) canonicalize() {
	if c.Message == "" {
		c.Message = "Too Many Errors"
	}
	if c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = 1024
	}
	if c.Fallback.IdleTTL <= 0 {
		c.Fallback.IdleTTL = 15 * time.Minute
	}
}

// Validate rejects invalid configuration synchronously, before any request
// is served.
func (c *Config) Validate() error {
	if c.Rate == "" {
		return errors.New("Rate is required")
	}
	if _, err := ParseRate(c.Rate); err != nil {
		return err
	}

	if c.Fallback.Enabled {
		if c.Fallback.RPS <= 0 {
			return errors.New("Fallback RPS must be > 0")
		}
		if c.Fallback.Burst <= 0 {
			return errors.New("Fallback Burst must be > 0")
		}
	}

	return nil
}
