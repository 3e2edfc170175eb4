package strategy

import (
	"fmt"

	"signal-enginev1/internal/indicator"
	"signal-enginev1/internal/model"
)

// Fibonacci multipliers applied to the setup's price range when
// deriving entry and stop.
const (
	FibEntryRatio = 0.74
	FibStopRatio  = 0.27
)

// derivePrices turns a completed setup into entry/stop/target prices.
//
// SHORT: entry = low + range·0.74, stop = high + range·0.27,
// target = entry − (stop−entry)·rr. LONG mirrors the formulas. The
// resulting ordering (stop > entry > target for SHORT, target > entry
// > stop for LONG) is validated, never silently repaired.
func derivePrices(setup *model.PatternSetup, rr float64) (entry, stop, target float64, side model.Side, err error) {
	rng := setup.Range()

	switch setup.Kind {
	case model.SetupShort:
		entry = setup.PriceLow + rng*FibEntryRatio
		stop = setup.PriceHigh + rng*FibStopRatio
		target = entry - (stop-entry)*rr
		side = model.SideSell
		if !(stop > entry && entry > target) {
			return 0, 0, 0, "", fmt.Errorf("%w: SHORT ordering violated (stop=%.5f entry=%.5f target=%.5f)",
				model.ErrInvariant, stop, entry, target)
		}
	case model.SetupLong:
		entry = setup.PriceHigh - rng*FibEntryRatio
		stop = setup.PriceLow - rng*FibStopRatio
		target = entry + (entry-stop)*rr
		side = model.SideBuy
		if !(target > entry && entry > stop) {
			return 0, 0, 0, "", fmt.Errorf("%w: LONG ordering violated (target=%.5f entry=%.5f stop=%.5f)",
				model.ErrInvariant, target, entry, stop)
		}
	default:
		return 0, 0, 0, "", fmt.Errorf("%w: unknown setup kind %q", model.ErrValidation, setup.Kind)
	}
	return entry, stop, target, side, nil
}

// confidence scores a candidate in [0,1]: a completed crossing setup
// starts at 0.6, momentum agreement (ROC pointing with the trade) adds
// 0.2, and a fresh setup (under a day old) adds 0.1.
func confidence(setup *model.PatternSetup, snap *indicator.Snapshot) float64 {
	c := 0.6
	if (setup.Kind == model.SetupShort && snap.ROC < 0) ||
		(setup.Kind == model.SetupLong && snap.ROC > 0) {
		c += 0.2
	}
	if setup.AgeHours < 24 {
		c += 0.1
	}
	if c > 1 {
		c = 1
	}
	return c
}
