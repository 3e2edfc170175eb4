package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bar represents one OHLCV observation for a fixed time interval.
// Prices are quoted in the instrument's native units; the series a
// caller hands to the engine is borrowed read-only.
type Bar struct {
	TS     time.Time `json:"ts"` // bucket start time (UTC)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// JSON returns the JSON-encoded bar (ignoring errors for hot-path usage).
func (b *Bar) JSON() []byte {
	out, _ := json.Marshal(b)
	return out
}

// Closes extracts the close series from a bar slice.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Close
	}
	return out
}

// Highs extracts the high series from a bar slice.
func Highs(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].High
	}
	return out
}

// Lows extracts the low series from a bar slice.
func Lows(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Low
	}
	return out
}

// ValidateBars checks that a bar series is usable for analysis:
// at least minBars entries, all prices and volumes positive, high ≥ low,
// and strictly increasing timestamps. Any violation is fatal to the
// current call — the engine never guesses around bad input.
func ValidateBars(bars []Bar, minBars int) error {
	if len(bars) < minBars {
		return fmt.Errorf("%w: need at least %d bars, have %d", ErrValidation, minBars, len(bars))
	}
	for i := range bars {
		b := &bars[i]
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("%w: non-positive price at bar %d (O=%v H=%v L=%v C=%v)",
				ErrValidation, i, b.Open, b.High, b.Low, b.Close)
		}
		if b.Volume <= 0 {
			return fmt.Errorf("%w: non-positive volume %v at bar %d", ErrValidation, b.Volume, i)
		}
		if b.High < b.Low {
			return fmt.Errorf("%w: high %v below low %v at bar %d", ErrValidation, b.High, b.Low, i)
		}
		if b.TS.IsZero() {
			return fmt.Errorf("%w: missing timestamp at bar %d", ErrValidation, i)
		}
		if i > 0 && !bars[i-1].TS.Before(b.TS) {
			return fmt.Errorf("%w: timestamps not strictly increasing at bar %d (%s then %s)",
				ErrValidation, i, bars[i-1].TS.Format(time.RFC3339), b.TS.Format(time.RFC3339))
		}
	}
	return nil
}
