package indicator

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// closesGen generates a close series of 20-80 positive prices.
func closesGen() gopter.Gen {
	return gen.SliceOfN(80, gen.Float64Range(0.5, 5000.0)).Map(func(closes []float64) []float64 {
		if len(closes) < 20 {
			for len(closes) < 20 {
				closes = append(closes, 100.0)
			}
		}
		return closes
	})
}

// Property: RSI stays within [0, 100] for any positive close series,
// regardless of period.
func TestRSI_Bounds_Property(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("RSI bounded in [0,100]", prop.ForAll(
		func(closes []float64, period int) bool {
			out, err := RSI(closes, period)
			if err != nil {
				return false
			}
			for _, v := range out {
				if v < 0 || v > 100 {
					return false
				}
			}
			return true
		},
		closesGen(),
		gen.IntRange(2, 30),
	))

	properties.TestingRun(t)
}

// Property: ATR is never negative for any aligned positive series.
func TestATR_NonNegative_Property(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ATR non-negative", prop.ForAll(
		func(mids []float64, period int) bool {
			highs := make([]float64, len(mids))
			lows := make([]float64, len(mids))
			for i, m := range mids {
				highs[i] = m * 1.01
				lows[i] = m * 0.99
			}
			out, err := ATR(highs, lows, mids, period)
			if err != nil {
				return false
			}
			for _, v := range out {
				if v < 0 {
					return false
				}
			}
			return true
		},
		closesGen(),
		gen.IntRange(2, 30),
	))

	properties.TestingRun(t)
}

// Property: every Fibonacci level lies within [swingLow, swingHigh].
// The 0.0 ratio maps to the high, 1.0 to the low.
func TestFibLevels_WithinRange_Property(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("fib levels inside the swing range", prop.ForAll(
		func(low, span float64) bool {
			high := low + span
			levels, err := FibLevels(high, low, nil)
			if err != nil {
				return false
			}
			// Rounding to 5 decimals can nudge a boundary level by half a unit.
			const slack = 0.000005
			for _, l := range levels {
				if l < low-slack || l > high+slack {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0.1, 5000.0),
		gen.Float64Range(0.001, 500.0),
	))

	properties.TestingRun(t)
}
