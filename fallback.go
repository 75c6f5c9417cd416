package rategate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// fallbackStore keeps an in-process token-bucket limiter per partition. It is
// consulted only while the backing store is unreachable, so the pipeline
// keeps a degraded-mode cap instead of going fully unprotected. Idle entries
// are dropped lazily on access.
type fallbackStore struct {
	mu      sync.Mutex
	entries map[string]*fallbackEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration

	lastSweep time.Time
}

type fallbackEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newFallbackStore(cfg FallbackConfig) *fallbackStore {
	if !cfg.Enabled {
		return nil
	}
	return &fallbackStore{
		entries: make(map[string]*fallbackEntry),
		rps:     rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		idleTTL: cfg.IdleTTL,
	}
}

// Allow reports whether the partition may proceed under the local cap.
// A nil store allows everything (plain fail-open).
func (s *fallbackStore) Allow(partition string) bool {
	if s == nil {
		return true
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > s.idleTTL {
		s.sweepLocked(now)
		s.lastSweep = now
	}

	ent, ok := s.entries[partition]
	if !ok {
		ent = &fallbackEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.entries[partition] = ent
	}
	ent.lastSeen = now

	return ent.lim.Allow()
}

func (s *fallbackStore) sweepLocked(now time.Time) {
	cutoff := now.Add(-s.idleTTL)
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}
