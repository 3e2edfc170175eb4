package model

// BrokerConstraints holds the per-instrument limits the order constraint
// engine enforces. Looked up by uppercased symbol from a static table;
// read-only once loaded.
type BrokerConstraints struct {
	Symbol          string  `json:"symbol"`
	TickSize        float64 `json:"tick_size"` // minimum price increment, > 0
	MinStopDistPips float64 `json:"min_stop_distance_pips"`
	MinTPDistPips   float64 `json:"min_tp_distance_pips"`
	MaxStopDistPips float64 `json:"max_stop_distance_pips"`
	PointValue      float64 `json:"point_value"`
}
