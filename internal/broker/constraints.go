// Package broker holds the static per-instrument constraint table the
// order constraint engine enforces against. The table is read-only; an
// unknown symbol is an unsupported instrument, never a guess.
package broker

import (
	"fmt"
	"strings"

	"signal-enginev1/internal/model"
)

// constraintTable is keyed by uppercased symbol. Tick sizes and
// distances follow common retail FX/CFD contract specs.
var constraintTable = map[string]model.BrokerConstraints{
	"EURUSD": {Symbol: "EURUSD", TickSize: 0.00001, MinStopDistPips: 50, MinTPDistPips: 50, MaxStopDistPips: 5000, PointValue: 10.0},
	"GBPUSD": {Symbol: "GBPUSD", TickSize: 0.00001, MinStopDistPips: 50, MinTPDistPips: 50, MaxStopDistPips: 5000, PointValue: 10.0},
	"AUDUSD": {Symbol: "AUDUSD", TickSize: 0.00001, MinStopDistPips: 50, MinTPDistPips: 50, MaxStopDistPips: 5000, PointValue: 10.0},
	"USDCAD": {Symbol: "USDCAD", TickSize: 0.00001, MinStopDistPips: 50, MinTPDistPips: 50, MaxStopDistPips: 5000, PointValue: 10.0},
	"USDJPY": {Symbol: "USDJPY", TickSize: 0.001, MinStopDistPips: 50, MinTPDistPips: 50, MaxStopDistPips: 5000, PointValue: 9.1},
	"XAUUSD": {Symbol: "XAUUSD", TickSize: 0.01, MinStopDistPips: 100, MinTPDistPips: 100, MaxStopDistPips: 20000, PointValue: 1.0},
	"BTCUSD": {Symbol: "BTCUSD", TickSize: 0.01, MinStopDistPips: 500, MinTPDistPips: 500, MaxStopDistPips: 100000, PointValue: 1.0},
	"ETHUSD": {Symbol: "ETHUSD", TickSize: 0.01, MinStopDistPips: 200, MinTPDistPips: 200, MaxStopDistPips: 50000, PointValue: 1.0},
}

// Constraints returns the broker constraints for a symbol. Lookup is
// case-insensitive; an unknown symbol is a fatal input error.
func Constraints(symbol string) (model.BrokerConstraints, error) {
	c, ok := constraintTable[strings.ToUpper(symbol)]
	if !ok {
		return model.BrokerConstraints{}, fmt.Errorf("%w: unsupported instrument %q",
			model.ErrValidation, symbol)
	}
	return c, nil
}

// Symbols returns the supported symbols (for diagnostics and CLI help).
func Symbols() []string {
	out := make([]string, 0, len(constraintTable))
	for s := range constraintTable {
		out = append(out, s)
	}
	return out
}
