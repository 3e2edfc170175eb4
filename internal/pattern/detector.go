// Package pattern scans a bar series with an aligned RSI series for
// completed SHORT/LONG crossing setups.
//
// A SHORT setup triggers when RSI crosses above the high threshold,
// marks the price high over the bars where RSI stays above it, and
// completes when RSI crosses back below the low threshold within the
// completion window, marking the price low over the bars where RSI
// stays below. LONG mirrors the sequence. The detector holds no state
// between calls; duplicate suppression is the boundary detector's job
// upstream, keyed by candle.
package pattern

import (
	"fmt"
	"time"

	"signal-enginev1/internal/model"
)

const (
	// DefaultHighThreshold is the overbought RSI level.
	DefaultHighThreshold = 70.0

	// DefaultLowThreshold is the oversold RSI level.
	DefaultLowThreshold = 40.0

	// DefaultCompletionWindow bounds how long after the trigger a setup
	// may take to complete. A domain timeout expressed as data, not a
	// scheduling timeout.
	DefaultCompletionWindow = 100 * time.Hour
)

// Detector finds completed crossing setups. Zero-value thresholds are
// replaced with the defaults on first use via New.
type Detector struct {
	HighThreshold    float64
	LowThreshold     float64
	CompletionWindow time.Duration
}

// New creates a detector with the default thresholds and window.
func New() *Detector {
	return &Detector{
		HighThreshold:    DefaultHighThreshold,
		LowThreshold:     DefaultLowThreshold,
		CompletionWindow: DefaultCompletionWindow,
	}
}

// Detect scans chronologically from the earliest bar, trying SHORT
// first and then LONG, and returns the first completed setup found.
// A nil setup with nil error means no pattern completed — that is an
// expected outcome, not a failure.
func (d *Detector) Detect(bars []model.Bar, rsi []float64) (*model.PatternSetup, error) {
	if len(bars) != len(rsi) {
		return nil, fmt.Errorf("%w: bar series (%d) and RSI series (%d) are not aligned",
			model.ErrValidation, len(bars), len(rsi))
	}
	if len(bars) < 2 {
		return nil, nil
	}
	if setup := d.scanShort(bars, rsi); setup != nil {
		return setup, nil
	}
	if setup := d.scanLong(bars, rsi); setup != nil {
		return setup, nil
	}
	return nil, nil
}

// scanShort looks for RSI crossing above HighThreshold and back below
// LowThreshold: sell the exhaustion after an overbought excursion.
func (d *Detector) scanShort(bars []model.Bar, rsi []float64) *model.PatternSetup {
	n := len(bars)
	latest := bars[n-1].TS

	for i := 1; i < n; i++ {
		if !(rsi[i-1] < d.HighThreshold && rsi[i] >= d.HighThreshold) {
			continue
		}
		trigger := i

		// Price high over the contiguous range where RSI stays overbought.
		highIdx := trigger
		j := trigger
		for ; j < n && rsi[j] >= d.HighThreshold; j++ {
			if bars[j].High > bars[highIdx].High {
				highIdx = j
			}
		}

		// Completion: RSI crossing back below the low threshold, bounded
		// by the completion window from the trigger bar.
		completion := -1
		for k := j; k < n; k++ {
			if bars[k].TS.Sub(bars[trigger].TS) > d.CompletionWindow {
				break
			}
			if rsi[k] <= d.LowThreshold {
				completion = k
				break
			}
		}
		if completion == -1 {
			i = j // next trigger
			continue
		}

		// Price low over the contiguous range where RSI stays oversold.
		lowIdx := completion
		for m := completion; m < n && rsi[m] <= d.LowThreshold; m++ {
			if bars[m].Low < bars[lowIdx].Low {
				lowIdx = m
			}
		}

		setup := d.build(model.SetupShort, bars, rsi, highIdx, lowIdx, completion, latest)
		if setup != nil {
			return setup
		}
		i = j
	}
	return nil
}

// scanLong mirrors scanShort: RSI crossing below LowThreshold and back
// above HighThreshold.
func (d *Detector) scanLong(bars []model.Bar, rsi []float64) *model.PatternSetup {
	n := len(bars)
	latest := bars[n-1].TS

	for i := 1; i < n; i++ {
		if !(rsi[i-1] > d.LowThreshold && rsi[i] <= d.LowThreshold) {
			continue
		}
		trigger := i

		lowIdx := trigger
		j := trigger
		for ; j < n && rsi[j] <= d.LowThreshold; j++ {
			if bars[j].Low < bars[lowIdx].Low {
				lowIdx = j
			}
		}

		completion := -1
		for k := j; k < n; k++ {
			if bars[k].TS.Sub(bars[trigger].TS) > d.CompletionWindow {
				break
			}
			if rsi[k] >= d.HighThreshold {
				completion = k
				break
			}
		}
		if completion == -1 {
			i = j
			continue
		}

		highIdx := completion
		for m := completion; m < n && rsi[m] >= d.HighThreshold; m++ {
			if bars[m].High > bars[highIdx].High {
				highIdx = m
			}
		}

		setup := d.build(model.SetupLong, bars, rsi, highIdx, lowIdx, completion, latest)
		if setup != nil {
			return setup
		}
		i = j
	}
	return nil
}

// build validates a candidate and assembles the setup. A candidate whose
// extremes are too far apart in time, or whose range has collapsed, is
// discarded (nil) so scanning can continue from the next trigger.
func (d *Detector) build(kind model.SetupKind, bars []model.Bar, rsi []float64,
	highIdx, lowIdx, completion int, latest time.Time) *model.PatternSetup {

	highTime := bars[highIdx].TS
	lowTime := bars[lowIdx].TS

	elapsed := highTime.Sub(lowTime)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	if elapsed > d.CompletionWindow {
		return nil
	}

	priceHigh := bars[highIdx].High
	priceLow := bars[lowIdx].Low
	if priceHigh <= priceLow {
		return nil
	}

	completionTime := bars[completion].TS
	return &model.PatternSetup{
		Kind:           kind,
		PriceHigh:      priceHigh,
		PriceLow:       priceLow,
		RSIHighValue:   rsi[highIdx],
		RSILowValue:    rsi[lowIdx],
		HighTime:       highTime,
		LowTime:        lowTime,
		CompletionTime: completionTime,
		AgeHours:       latest.Sub(completionTime).Hours(),
	}
}
