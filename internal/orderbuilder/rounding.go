package orderbuilder

import "github.com/shopspring/decimal"

// Tick rounding goes through decimals end to end: float arithmetic on
// 5-decimal FX prices drifts enough to flip a boundary comparison, and
// the realized reward:risk check accepts exact equality with the
// minimum.

// RoundToTick snaps price to the nearest tick multiple, rounding half
// away from zero. Idempotent on already-aligned prices.
func RoundToTick(price, tick float64) float64 {
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	f, _ := p.Div(t).Round(0).Mul(t).Float64()
	return f
}

// RoundToTickUp snaps price to the tick multiple at or above it.
func RoundToTickUp(price, tick float64) float64 {
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	f, _ := p.Div(t).Ceil().Mul(t).Float64()
	return f
}

// RoundToTickDown snaps price to the tick multiple at or below it.
func RoundToTickDown(price, tick float64) float64 {
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	f, _ := p.Div(t).Floor().Mul(t).Float64()
	return f
}

// ratioAtLeast reports whether reward/risk ≥ min, compared in decimal
// so the boundary case is exact.
func ratioAtLeast(reward, risk, min float64) (float64, bool) {
	rw := decimal.NewFromFloat(reward)
	rk := decimal.NewFromFloat(risk)
	ratio := rw.Div(rk)
	f, _ := ratio.Float64()
	return f, ratio.GreaterThanOrEqual(decimal.NewFromFloat(min))
}
