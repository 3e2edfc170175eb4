// Package candle decides whether a timestamp marks a freshly closed
// candle of a given timeframe, and suppresses duplicate processing of
// the same candle for the same (instrument, timeframe) pair.
package candle

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"signal-enginev1/internal/model"
)

const (
	// DefaultWindow is the drift tolerance after a boundary: a poll loop
	// firing up to this long after the true boundary still catches it.
	DefaultWindow = 60 * time.Second

	// DefaultMaxEntries is the dedup cache high-water mark.
	DefaultMaxEntries = 1000

	// DefaultKeepEntries is how many of the most recent entries survive
	// an eviction pass.
	DefaultKeepEntries = 750
)

// ParseTimeframe converts a timeframe string ("Nm", "Nh", "Nd") into a
// duration. Malformed strings are a fatal input error — the detector
// rejects rather than guesses.
func ParseTimeframe(tf string) (time.Duration, error) {
	if len(tf) < 2 {
		return 0, fmt.Errorf("%w: unsupported timeframe %q", model.ErrValidation, tf)
	}
	unit := tf[len(tf)-1]
	n, err := strconv.Atoi(strings.TrimSpace(tf[:len(tf)-1]))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: unsupported timeframe %q", model.ErrValidation, tf)
	}
	switch unit {
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: unsupported timeframe %q", model.ErrValidation, tf)
	}
}

// CandleStart floors ts to the timeframe's interval boundary.
func CandleStart(ts time.Time, tf string) (time.Time, error) {
	interval, err := ParseTimeframe(tf)
	if err != nil {
		return time.Time{}, err
	}
	sec := int64(interval / time.Second)
	return time.Unix(ts.Unix()/sec*sec, 0).UTC(), nil
}

// Detector tracks which candles have already been processed. The dedup
// cache is bounded: once it grows past maxEntries, the oldest entries
// are evicted down to keepEntries. Safe for use from multiple
// instrument streams; all cache access is serialized by a mutex.
type Detector struct {
	// Window is the post-boundary grace period (default 60s).
	Window time.Duration

	mu          sync.Mutex
	seen        map[string]time.Time // key → last-seen wall time
	order       []string             // insertion order, oldest first
	maxEntries  int
	keepEntries int

	log zerolog.Logger
}

// NewDetector creates a boundary detector with default bounds.
func NewDetector(log zerolog.Logger) *Detector {
	return &Detector{
		Window:      DefaultWindow,
		seen:        make(map[string]time.Time, DefaultMaxEntries),
		maxEntries:  DefaultMaxEntries,
		keepEntries: DefaultKeepEntries,
		log:         log.With().Str("component", "candle").Logger(),
	}
}

// SetBounds overrides the cache high-water and keep marks. Values below
// 1 are ignored; keep is clamped below max.
func (d *Detector) SetBounds(max, keep int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if max >= 1 {
		d.maxEntries = max
	}
	if keep >= 1 && keep < d.maxEntries {
		d.keepEntries = keep
	}
}

// IsNewCandle reports whether ts falls within the grace window after a
// timeframe boundary, i.e. a candle of that timeframe just closed.
func (d *Detector) IsNewCandle(ts time.Time, tf string) (bool, error) {
	interval, err := ParseTimeframe(tf)
	if err != nil {
		return false, err
	}
	secondsIn := ts.Unix() % int64(interval/time.Second)
	return secondsIn <= int64(d.Window/time.Second), nil
}

// ShouldProcess reports whether the candle closing at ts for the given
// (instrument, timeframe) should be processed now. It returns false when
// ts is not on a boundary, or when that candle was already recorded.
// On a fresh candle it records the key and returns true.
func (d *Detector) ShouldProcess(instrument, tf string, ts time.Time) (bool, error) {
	newCandle, err := d.IsNewCandle(ts, tf)
	if err != nil {
		return false, err
	}
	if !newCandle {
		return false, nil
	}
	start, err := CandleStart(ts, tf)
	if err != nil {
		return false, err
	}
	key := instrument + "|" + tf + "|" + strconv.FormatInt(start.Unix(), 10)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.seen[key]; dup {
		return false, nil
	}
	d.seen[key] = ts
	d.order = append(d.order, key)
	if len(d.seen) > d.maxEntries {
		d.evictLocked()
	}
	return true, nil
}

// Len returns the current dedup cache size.
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// evictLocked drops the oldest entries, keeping the most recent
// keepEntries. Caller holds d.mu.
func (d *Detector) evictLocked() {
	drop := len(d.order) - d.keepEntries
	if drop <= 0 {
		return
	}
	for _, key := range d.order[:drop] {
		delete(d.seen, key)
	}
	d.order = append(d.order[:0], d.order[drop:]...)
	d.log.Debug().Int("dropped", drop).Int("kept", len(d.seen)).Msg("dedup cache evicted")
}
