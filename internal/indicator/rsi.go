package indicator

import (
	"fmt"

	"signal-enginev1/internal/model"
)

// neutralRSI fills the warm-up prefix where no prior delta window exists.
const neutralRSI = 50.0

// RSI computes the Relative Strength Index over a close series using
// Wilder's smoothing. The returned slice is aligned with closes: the
// first period entries are the neutral placeholder 50.0, the value at
// index period is seeded from a simple mean of the first window's
// gains/losses, and every later value applies Wilder smoothing
// (avg = (avg*(period-1) + value) / period).
func RSI(closes []float64, period int) ([]float64, error) {
	if len(closes) < 2 {
		return nil, fmt.Errorf("%w: RSI needs at least 2 closes, have %d", model.ErrValidation, len(closes))
	}
	if period < 2 {
		return nil, fmt.Errorf("%w: RSI period must be >= 2, got %d", model.ErrValidation, period)
	}

	out := make([]float64, len(closes))
	for i := 0; i < len(out) && i < period; i++ {
		out[i] = neutralRSI
	}
	if len(closes) <= period {
		return out, nil
	}

	// Seed averages from the first window of deltas (closes[0..period]).
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain > 0 {
			return 100.0
		}
		return neutralRSI
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
