package rategate

import (
	"context"
	"testing"
)

func TestFallback_CapsTrafficWhileStoreIsDown(t *testing.T) {
	gate, mr, done := newTestGate(t, func(b *Builder) {
		b.WithConfig(Config{Rate: "100/minute", DisableLogging: true, Metrics: MetricsConfig{Enabled: true}}).
			WithLocalFallback(1, 3)
	})
	defer done()

	mr.Close()

	ctx := context.Background()

	// The local bucket admits the burst, then blocks.
	allowed, blocked := 0, 0
	for i := 0; i < 10; i++ {
		dec := gate.Allow(ctx, "A")
		if !dec.FailedOpen {
			t.Fatalf("expected fail-open decision, got %+v", dec)
		}
		if dec.Blocked {
			blocked++
		} else {
			allowed++
		}
	}

	if allowed != 3 {
		t.Fatalf("expected burst of 3 allowed, got %d", allowed)
	}
	if blocked != 7 {
		t.Fatalf("expected 7 blocked, got %d", blocked)
	}

	snap := gate.MetricsSnapshot()
	if snap.FallbackBlocked != 7 {
		t.Fatalf("expected 7 fallback blocks recorded, got %+v", snap)
	}
}

func TestFallback_PartitionsGetSeparateBuckets(t *testing.T) {
	gate, mr, done := newTestGate(t, func(b *Builder) {
		b.WithConfig(Config{Rate: "100/minute", DisableLogging: true}).
			WithLocalFallback(1, 1)
	})
	defer done()

	mr.Close()

	ctx := context.Background()

	if dec := gate.Allow(ctx, "b"); dec.Blocked {
		t.Fatalf("first request for b should pass, got %+v", dec)
	}
	if dec := gate.Allow(ctx, "b"); !dec.Blocked {
		t.Fatalf("second request for b should be capped, got %+v", dec)
	}
	if dec := gate.Allow(ctx, "c"); dec.Blocked {
		t.Fatalf("partition c has its own bucket, got %+v", dec)
	}
}

func TestFallback_DisabledMeansPlainFailOpen(t *testing.T) {
	var s *fallbackStore
	if !s.Allow("anything") {
		t.Fatal("nil fallback store must allow")
	}
}
