package indicator

import (
	"fmt"
	"math"

	"signal-enginev1/internal/model"
)

// ATR computes the Average True Range. True range is high−low for the
// first bar and max(high−low, |high−prevClose|, |low−prevClose|) after
// that. The ATR at index period−1 is the simple mean of the first
// period true ranges; later values use Wilder smoothing
// ((prevATR*(period-1) + TR) / period). Entries before the window is
// full are zero.
func ATR(highs, lows, closes []float64, period int) ([]float64, error) {
	n := len(highs)
	if n == 0 {
		return nil, fmt.Errorf("%w: ATR needs at least 1 bar", model.ErrValidation)
	}
	if len(lows) != n || len(closes) != n {
		return nil, fmt.Errorf("%w: ATR input lengths differ (highs=%d lows=%d closes=%d)",
			model.ErrValidation, n, len(lows), len(closes))
	}
	if period < 1 {
		return nil, fmt.Errorf("%w: ATR period must be >= 1, got %d", model.ErrValidation, period)
	}

	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	out := make([]float64, n)
	if n < period {
		return out, nil
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	out[period-1] = sum / float64(period)

	p := float64(period)
	for i := period; i < n; i++ {
		out[i] = (out[i-1]*(p-1) + tr[i]) / p
	}
	return out, nil
}
