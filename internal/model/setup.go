package model

import "time"

// SetupKind identifies the direction of a completed crossing pattern.
type SetupKind string

const (
	SetupShort SetupKind = "SHORT"
	SetupLong  SetupKind = "LONG"
)

// PatternSetup is a completed RSI-crossing setup found by the pattern
// detector. PriceHigh > PriceLow always holds; the detector discards
// candidates that violate it. Consumed once by the strategy engine.
type PatternSetup struct {
	Kind           SetupKind `json:"kind"`
	PriceHigh      float64   `json:"price_high"`
	PriceLow       float64   `json:"price_low"`
	RSIHighValue   float64   `json:"rsi_high_value"` // RSI at the price-high extreme
	RSILowValue    float64   `json:"rsi_low_value"`  // RSI at the price-low extreme
	HighTime       time.Time `json:"high_time"`
	LowTime        time.Time `json:"low_time"`
	CompletionTime time.Time `json:"completion_time"`
	AgeHours       float64   `json:"age_hours"` // relative to the latest bar
}

// Range returns the setup's price range (always positive).
func (s *PatternSetup) Range() float64 {
	return s.PriceHigh - s.PriceLow
}
