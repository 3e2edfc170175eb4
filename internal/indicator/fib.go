package indicator

import (
	"fmt"
	"math"

	"signal-enginev1/internal/model"
)

// DefaultFibRatios are the standard retracement ratios, ordered.
var DefaultFibRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786, 1.0}

// fibPrecision is the fixed decimal precision for level prices.
const fibPrecision = 1e5 // 5 decimal places

// pipScale converts a price distance into pips.
const pipScale = 10000.0

// FibLevels computes retracement levels between a swing high and low:
// level = swingHigh − (swingHigh−swingLow)·ratio, rounded to 5 decimal
// places. Every ratio must lie in [0,1] and swingHigh must exceed
// swingLow, otherwise the range has collapsed and no levels exist.
func FibLevels(swingHigh, swingLow float64, ratios []float64) (map[float64]float64, error) {
	if swingHigh <= swingLow {
		return nil, fmt.Errorf("%w: fibonacci range collapsed (high=%v low=%v)",
			model.ErrInvariant, swingHigh, swingLow)
	}
	if len(ratios) == 0 {
		ratios = DefaultFibRatios
	}
	levels := make(map[float64]float64, len(ratios))
	span := swingHigh - swingLow
	for _, r := range ratios {
		if r < 0 || r > 1 {
			return nil, fmt.Errorf("%w: fibonacci ratio %v outside [0,1]", model.ErrValidation, r)
		}
		levels[r] = math.Round((swingHigh-span*r)*fibPrecision) / fibPrecision
	}
	return levels, nil
}

// NearestLevel returns the level closest to price within tolerancePips,
// measured as |price−level|·10000. ok is false when no level qualifies.
func NearestLevel(price float64, levels map[float64]float64, tolerancePips float64) (ratio, level float64, ok bool) {
	best := math.MaxFloat64
	for r, l := range levels {
		pips := math.Abs(price-l) * pipScale
		if pips <= tolerancePips && pips < best {
			best = pips
			ratio, level, ok = r, l, true
		}
	}
	return ratio, level, ok
}
