package indicator

import (
	"fmt"

	"signal-enginev1/internal/model"
)

// Params selects the lookbacks for a full snapshot computation.
type Params struct {
	RSIPeriod     int
	ROCPeriod     int
	ATRPeriod     int
	SwingLookback int
	FibRatios     []float64 // nil means DefaultFibRatios
}

// Snapshot is the derived per-call view of a bar series: the latest RSI,
// ROC and ATR values, the swing extremes, and the Fibonacci levels
// spanned by them. Recomputed per call, never persisted.
type Snapshot struct {
	RSI       float64
	ROC       float64
	ATR       float64
	SwingHigh SwingPoint
	SwingLow  SwingPoint
	FibLevels map[float64]float64

	// RSISeries is the full RSI series aligned with the input bars,
	// kept for the pattern detector so RSI is computed once per call.
	RSISeries []float64
}

// ComputeSnapshot runs the full indicator stack over a bar series.
// The bars are borrowed read-only; all outputs are freshly allocated.
func ComputeSnapshot(bars []model.Bar, p Params) (*Snapshot, error) {
	closes := model.Closes(bars)

	rsi, err := RSI(closes, p.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	roc, err := ROC(closes, p.ROCPeriod)
	if err != nil {
		return nil, fmt.Errorf("roc: %w", err)
	}
	atr, err := ATR(model.Highs(bars), model.Lows(bars), closes, p.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("atr: %w", err)
	}
	high, low, err := Swing(bars, p.SwingLookback)
	if err != nil {
		return nil, fmt.Errorf("swing: %w", err)
	}
	levels, err := FibLevels(high.Price, low.Price, p.FibRatios)
	if err != nil {
		return nil, fmt.Errorf("fib: %w", err)
	}

	last := len(bars) - 1
	return &Snapshot{
		RSI:       rsi[last],
		ROC:       roc[last],
		ATR:       atr[last],
		SwingHigh: high,
		SwingLow:  low,
		FibLevels: levels,
		RSISeries: rsi,
	}, nil
}
