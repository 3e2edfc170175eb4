package model

import (
	"encoding/json"
	"time"
)

// Side is the trade direction of a signal.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// SignalCandidate is the strategy engine's output: a derived trade idea
// before broker constraints are applied. Immutable once built.
//
// Price ordering invariant: BUY has StopLoss < EntryPrice < TakeProfit;
// SELL has TakeProfit < EntryPrice < StopLoss.
type SignalCandidate struct {
	Instrument string            `json:"instrument"`
	Side       Side              `json:"side"`
	EntryPrice float64           `json:"entry_price"`
	StopLoss   float64           `json:"stop_loss"`
	TakeProfit float64           `json:"take_profit"`
	Confidence float64           `json:"confidence"` // [0,1]
	Timestamp  time.Time         `json:"timestamp"`
	Reason     string            `json:"reason"`
	Payload    map[string]string `json:"payload,omitempty"`
}

// JSON returns the JSON-encoded candidate (ignoring errors for hot-path usage).
func (s *SignalCandidate) JSON() []byte {
	out, _ := json.Marshal(s)
	return out
}
