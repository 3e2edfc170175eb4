package strategy

import (
	"sync"
	"time"
)

// rateLimiter caps emitted signals per instrument over a sliding window.
// Timestamps are pruned on every call, so the per-instrument slice never
// grows past the cap. Mutex-guarded: multiple instrument streams may
// share one engine instance.
type rateLimiter struct {
	mu     sync.Mutex
	cap    int
	window time.Duration
	hits   map[string][]time.Time
}

func newRateLimiter(cap int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		cap:    cap,
		window: window,
		hits:   make(map[string][]time.Time),
	}
}

// allow reports whether another signal may be emitted for the
// instrument at time now. It does not record; record is called only
// after a candidate is actually built.
func (l *rateLimiter) allow(instrument string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.pruneLocked(instrument, now)
	return len(kept) < l.cap
}

// record registers an emitted signal.
func (l *rateLimiter) record(instrument string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hits[instrument] = append(l.pruneLocked(instrument, now), now)
}

// pruneLocked drops timestamps older than the window. Caller holds l.mu.
func (l *rateLimiter) pruneLocked(instrument string, now time.Time) []time.Time {
	old := l.hits[instrument]
	kept := old[:0]
	cutoff := now.Add(-l.window)
	for _, ts := range old {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.hits[instrument] = kept
	return kept
}
