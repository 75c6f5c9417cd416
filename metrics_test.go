package rategate

import (
	"context"
	"testing"
)

func TestMetrics_SnapshotTracksDecisions(t *testing.T) {
	gate, _, done := newTestGate(t, func(b *Builder) {
		b.WithConfig(Config{Rate: "2/minute", DisableLogging: true, Metrics: MetricsConfig{Enabled: true}})
	})
	defer done()

	ctx := context.Background()

	gate.Allow(ctx, "A") // allowed
	gate.Record(ctx, "A")
	gate.Allow(ctx, "A") // allowed
	gate.Record(ctx, "A")
	gate.Allow(ctx, "A") // blocked
	gate.Allow(ctx, "A") // blocked

	snap := gate.MetricsSnapshot()
	if snap.Allowed != 2 {
		t.Fatalf("expected 2 allowed, got %+v", snap)
	}
	if snap.Blocked != 2 {
		t.Fatalf("expected 2 blocked, got %+v", snap)
	}
	if snap.StoreErrors != 0 {
		t.Fatalf("expected no store errors, got %+v", snap)
	}
}

func TestMetrics_DisabledIsNoOp(t *testing.T) {
	var m *Metrics
	m.inc(MetricAllowed)

	if snap := m.Snapshot(); snap != (MetricsSnapshot{}) {
		t.Fatalf("nil metrics must snapshot zero, got %+v", snap)
	}
}
