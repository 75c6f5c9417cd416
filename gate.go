package rategate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rategate/rategate/internal/window"
)

// Decision is the outcome of one gate evaluation.
type Decision struct {
	// Limited reports that the partition's count has reached the limit.
	Limited bool
	// Blocked reports the enforcement outcome. It stays false in log-only
	// mode and under fail-open, even when Limited is true.
	Blocked bool
	// Count is the partition's counter value at evaluation time. Zero when
	// the store was unreachable.
	Count int64
	// FailedOpen reports that the store was unreachable and the documented
	// fail-open policy decided the outcome.
	FailedOpen bool
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Gate enforces a fixed-window rate limit shared across every process that
// points at the same store. All methods are safe for concurrent use; the gate
// holds no mutable state beyond its configuration and counters.
type Gate struct {
	config    Config
	rate      Rate
	counter   *window.Counter
	predicate ErrorPredicate
	logger    Logger
	metrics   *Metrics
	audit     *auditDispatcher
	fallback  *fallbackStore
}

// Rate returns the parsed limit and window length.
func (g *Gate) Rate() Rate {
	return g.rate
}

// Message returns the configured rejection body.
func (g *Gate) Message() string {
	return g.config.Message
}

// ShouldBlock reads the partition's current count and compares it against
// the limit. The read is a plain get, deliberately decoupled from the
// increment path; ShouldBlock never increments. A count at or above the
// limit blocks.
//
// Store transport failures are returned raw — use Allow for the
// policy-applied (fail-open) evaluation.
func (g *Gate) ShouldBlock(ctx context.Context, partition string) (blocked bool, count int64, err error) {
	count, err = g.counter.Count(ctx, partition)
	if err != nil {
		return false, 0, err
	}
	return count >= g.rate.Limit, count, nil
}

// Increment records one qualifying event for the partition and returns the
// count for the current window. Store transport failures are returned raw.
func (g *Gate) Increment(ctx context.Context, partition string) (int64, error) {
	return g.counter.Increment(ctx, partition, g.rate.Window)
}

// Allow evaluates the gate with policy applied: log-only mode is honored,
// store failures fail open (optionally capped by the local fallback
// limiter), and every rejection produces exactly one log line. Allow never
// increments the counter.
func (g *Gate) Allow(ctx context.Context, partition string) Decision {
	limited, count, err := g.ShouldBlock(ctx, partition)
	if err != nil {
		return g.failOpen(ctx, partition, err)
	}

	dec := Decision{Limited: limited, Count: count}
	switch {
	case !limited:
		g.metrics.inc(MetricAllowed)
		g.emitAudit(ctx, auditEventAllowed, partition, count, true, nil)
	case g.config.LogOnly:
		g.metrics.inc(MetricOverLimitLogOnly)
		g.logger.Printf("rategate: partition %q over limit (count=%d, limit=%d), log-only mode, allowing",
			partition, count, g.rate.Limit)
		g.emitAudit(ctx, auditEventOverLimit, partition, count, true, nil)
	default:
		dec.Blocked = true
		g.metrics.inc(MetricBlocked)
		g.logger.Printf("rategate: partition %q blocked (count=%d, limit=%d)",
			partition, count, g.rate.Limit)
		g.emitAudit(ctx, auditEventBlocked, partition, count, false, nil)
	}
	return dec
}

// Record counts one passed-through request. Store failures are logged and
// swallowed; the request already ran, losing the count is the lesser harm.
func (g *Gate) Record(ctx context.Context, partition string) int64 {
	count, err := g.Increment(ctx, partition)
	if err != nil {
		g.metrics.inc(MetricStoreErrors)
		g.logger.Printf("rategate: request count increment failed for partition %q: %v", partition, err)
		return 0
	}
	return count
}

func (g *Gate) failOpen(ctx context.Context, partition string, err error) Decision {
	g.metrics.inc(MetricStoreErrors)

	if !g.fallback.Allow(partition) && !g.config.LogOnly {
		g.metrics.inc(MetricFallbackBlocked)
		g.logger.Printf("rategate: store unavailable, local fallback blocked partition %q: %v", partition, err)
		g.emitAudit(ctx, auditEventFallbackBlock, partition, 0, false, err)
		return Decision{Limited: true, Blocked: true, FailedOpen: true}
	}

	g.metrics.inc(MetricFailOpen)
	g.logger.Printf("rategate: store unavailable, failing open for partition %q: %v", partition, err)
	g.emitAudit(ctx, auditEventFailOpen, partition, 0, true, err)
	return Decision{FailedOpen: true}
}

// MetricsSnapshot returns the current counter values. Zero-valued when
// metrics are disabled.
func (g *Gate) MetricsSnapshot() MetricsSnapshot {
	return g.metrics.Snapshot()
}

// AuditDropped returns how many audit events were dropped because the
// dispatcher buffer was full.
func (g *Gate) AuditDropped() uint64 {
	return g.audit.Dropped()
}

// Close flushes and stops the audit dispatcher. The gate must not be used
// after Close.
func (g *Gate) Close() {
	g.audit.Close()
}

func (g *Gate) emitAudit(ctx context.Context, eventType, partition string, count int64, allowed bool, err error) {
	if g.audit == nil {
		return
	}

	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Partition: partition,
		Count:     count,
		Limit:     g.rate.Limit,
		Allowed:   allowed,
	}
	if err != nil {
		event.Error = err.Error()
	}

	g.audit.Emit(ctx, event)
}
