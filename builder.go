package rategate

import (
	"errors"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/rategate/rategate/internal/window"
)

// Builder assembles a [Gate]. Configure it with the With* methods and call
// [Builder.Build] exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	predicate ErrorPredicate
	logger    Logger
	auditSink AuditSink

	built bool
}

// New returns a Builder pre-loaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Defaults for fields left zero
// are filled back in at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the store client. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRate sets the "N/unit" limit string. Required.
func (b *Builder) WithRate(rate string) *Builder {
	b.config.Rate = rate
	return b
}

// WithMessage sets the rejection response body.
func (b *Builder) WithMessage(message string) *Builder {
	b.config.Message = message
	return b
}

// WithLogOnly switches the gate between enforcing and log-only mode.
func (b *Builder) WithLogOnly(logOnly bool) *Builder {
	b.config.LogOnly = logOnly
	return b
}

// WithErrorPredicate sets the failure classifier used by [Gate.Guard].
// Unset means every failure counts.
func (b *Builder) WithErrorPredicate(predicate ErrorPredicate) *Builder {
	b.predicate = predicate
	return b
}

// WithLogger replaces the default stdlib logger.
func (b *Builder) WithLogger(logger Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink enables audit dispatch into the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLocalFallback enables the in-process degraded-mode limiter consulted
// while the store is unreachable.
func (b *Builder) WithLocalFallback(rps float64, burst int) *Builder {
	b.config.Fallback.Enabled = true
	b.config.Fallback.RPS = rps
	b.config.Fallback.Burst = burst
	return b
}

// Build validates the configuration and returns the Gate. All configuration
// errors surface here, never at request time.
func (b *Builder) Build() (*Gate, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	cfg.canonicalize()

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rate, err := ParseRate(cfg.Rate)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = log.Default()
	}
	if cfg.DisableLogging {
		logger = nopLogger{}
	}

	b.built = true

	return &Gate{
		config:    cfg,
		rate:      rate,
		counter:   window.NewCounter(b.redis, logger),
		predicate: b.predicate,
		logger:    logger,
		metrics:   newMetrics(cfg.Metrics),
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		fallback:  newFallbackStore(cfg.Fallback),
	}, nil
}
