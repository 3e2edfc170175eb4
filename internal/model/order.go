package model

import "time"

// OrderType is the pending-order direction submitted to the broker.
type OrderType string

const (
	OrderPendingBuy  OrderType = "PENDING_BUY"
	OrderPendingSell OrderType = "PENDING_SELL"
)

// Order is a fully-validated, broker-submittable pending order produced
// by the order constraint engine. Created once, never mutated; ownership
// passes to the transport layer after construction.
type Order struct {
	ID         string    `json:"id"`
	SignalID   string    `json:"signal_id"`
	Symbol     string    `json:"symbol"`
	OrderType  OrderType `json:"order_type"`
	Volume     float64   `json:"volume"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	ExpiryTime time.Time `json:"expiry_time"` // CreatedAt + fixed horizon
	CreatedAt  time.Time `json:"created_at"`

	// Audit fields for downstream risk/compliance consumers.
	RiskAmount      float64 `json:"risk_amount"`       // |entry − stop| after rounding
	RewardAmount    float64 `json:"reward_amount"`     // |target − entry| after rounding
	RiskRewardRatio float64 `json:"risk_reward_ratio"` // ≥ the configured minimum
	MinStopDistPips float64 `json:"min_stop_distance_pips"`
	StrategyName    string  `json:"strategy_name"`
}
