package rategate

import "sync/atomic"

// MetricID identifies one gate counter.
type MetricID uint8

const (
	// MetricAllowed counts requests that passed the gate.
	MetricAllowed MetricID = iota
	// MetricBlocked counts requests rejected in blocking mode.
	MetricBlocked
	// MetricOverLimitLogOnly counts over-limit decisions that were only logged.
	MetricOverLimitLogOnly
	// MetricErrorsCounted counts guarded failures that matched the predicate.
	MetricErrorsCounted
	// MetricStoreErrors counts transport-level store failures.
	MetricStoreErrors
	// MetricFailOpen counts requests allowed because the store was down.
	MetricFailOpen
	// MetricFallbackBlocked counts requests rejected by the local fallback
	// limiter while the store was down.
	MetricFallbackBlocked
	metricIDCount
)

// Metrics is a fixed set of lock-free counters. All methods are safe for
// concurrent use; a nil *Metrics is a no-op.
type Metrics struct {
	counters [metricIDCount]atomic.Uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{}
}

func (m *Metrics) inc(id MetricID) {
	if m == nil || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of the gate counters.
type MetricsSnapshot struct {
	Allowed          uint64
	Blocked          uint64
	OverLimitLogOnly uint64
	ErrorsCounted    uint64
	StoreErrors      uint64
	FailOpen         uint64
	FallbackBlocked  uint64
}

// Snapshot returns the current counter values. Zero-valued when metrics are
// disabled.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Allowed:          m.counters[MetricAllowed].Load(),
		Blocked:          m.counters[MetricBlocked].Load(),
		OverLimitLogOnly: m.counters[MetricOverLimitLogOnly].Load(),
		ErrorsCounted:    m.counters[MetricErrorsCounted].Load(),
		StoreErrors:      m.counters[MetricStoreErrors].Load(),
		FailOpen:         m.counters[MetricFailOpen].Load(),
		FallbackBlocked:  m.counters[MetricFallbackBlocked].Load(),
	}
}
