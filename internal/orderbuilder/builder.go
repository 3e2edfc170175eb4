// Package orderbuilder turns signal candidates into fully-validated,
// broker-submittable pending orders: minimum stop distance enforcement,
// tick rounding, realized reward:risk validation, and expiry.
//
// The builder never emits an internally inconsistent order; every
// constraint failure aborts that single order with the offending values
// in the error.
package orderbuilder

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"signal-enginev1/internal/broker"
	"signal-enginev1/internal/metrics"
	"signal-enginev1/internal/model"
)

// DefaultExpiryHours is the fixed order-expiry horizon.
const DefaultExpiryHours = 100

// Options configures the builder. Volume is defaulted by the caller:
// this core does not size positions.
type Options struct {
	MinRewardRisk float64 // realized ratio floor; equality accepted
	ExpiryHours   int     // 0 is legal (expiry == createdAt); negative is fatal
	Volume        float64
	StrategyName  string
}

// Builder is the order constraint engine. Stateless after construction;
// safe for concurrent use.
type Builder struct {
	opts Options
	met  *metrics.Metrics // optional
	log  zerolog.Logger
}

// New validates opts and creates a builder. met may be nil.
func New(opts Options, met *metrics.Metrics, log zerolog.Logger) (*Builder, error) {
	if opts.MinRewardRisk < 1.0 {
		return nil, fmt.Errorf("%w: minimum reward:risk %v below 1.0", model.ErrValidation, opts.MinRewardRisk)
	}
	if opts.ExpiryHours < 0 {
		return nil, fmt.Errorf("%w: negative expiry horizon %d hours", model.ErrValidation, opts.ExpiryHours)
	}
	if opts.Volume <= 0 {
		return nil, fmt.Errorf("%w: volume %v must be positive", model.ErrValidation, opts.Volume)
	}
	return &Builder{
		opts: opts,
		met:  met,
		log:  log.With().Str("component", "orderbuilder").Logger(),
	}, nil
}

// Build produces an order from a candidate under the given constraints.
// createdAt stamps the order and anchors its expiry.
func (b *Builder) Build(cand *model.SignalCandidate, cons model.BrokerConstraints, createdAt time.Time) (*model.Order, error) {
	order, err := b.build(cand, cons, createdAt)
	if err != nil {
		if b.met != nil {
			b.met.OrdersRejected.WithLabelValues(rejectReason(err)).Inc()
		}
		return nil, err
	}
	if b.met != nil {
		b.met.OrdersBuilt.WithLabelValues(order.Symbol).Inc()
	}
	b.log.Info().
		Str("order_id", order.ID).
		Str("symbol", order.Symbol).
		Str("type", string(order.OrderType)).
		Float64("entry", order.EntryPrice).
		Float64("stop", order.StopLoss).
		Float64("target", order.TakeProfit).
		Float64("rr", order.RiskRewardRatio).
		Msg("order built")
	return order, nil
}

func (b *Builder) build(cand *model.SignalCandidate, cons model.BrokerConstraints, createdAt time.Time) (*model.Order, error) {
	if cons.TickSize <= 0 {
		return nil, fmt.Errorf("%w: tick size %v for %s must be positive",
			model.ErrValidation, cons.TickSize, cons.Symbol)
	}
	if cand.EntryPrice <= 0 || cand.StopLoss <= 0 || cand.TakeProfit <= 0 {
		return nil, fmt.Errorf("%w: candidate for %s missing prices (entry=%v stop=%v target=%v)",
			model.ErrValidation, cand.Instrument, cand.EntryPrice, cand.StopLoss, cand.TakeProfit)
	}

	entry := cand.EntryPrice
	stop := cand.StopLoss
	target := cand.TakeProfit

	var orderType model.OrderType
	switch cand.Side {
	case model.SideBuy:
		if !(stop < entry && entry < target) {
			return nil, fmt.Errorf("%w: BUY ordering violated (stop=%v entry=%v target=%v)",
				model.ErrInvariant, stop, entry, target)
		}
		orderType = model.OrderPendingBuy
	case model.SideSell:
		if !(target < entry && entry < stop) {
			return nil, fmt.Errorf("%w: SELL ordering violated (target=%v entry=%v stop=%v)",
				model.ErrInvariant, target, entry, stop)
		}
		orderType = model.OrderPendingSell
	default:
		return nil, fmt.Errorf("%w: unrecognized side %q", model.ErrValidation, cand.Side)
	}

	// Minimum stop distance. Only ever moves the stop further from
	// entry, never closer.
	minDist := cons.MinStopDistPips * cons.TickSize
	if cand.Side == model.SideBuy && stop > entry-minDist {
		stop = entry - minDist
	}
	if cand.Side == model.SideSell && stop < entry+minDist {
		stop = entry + minDist
	}

	entry = RoundToTick(entry, cons.TickSize)
	stop = RoundToTick(stop, cons.TickSize)
	target = RoundToTick(target, cons.TickSize)

	risk := math.Abs(entry - stop)
	reward := math.Abs(target - entry)
	if risk <= 0 {
		return nil, fmt.Errorf("%w: realized risk %v is not positive after rounding", model.ErrInvariant, risk)
	}
	if reward <= 0 {
		return nil, fmt.Errorf("%w: realized reward %v is not positive after rounding", model.ErrInvariant, reward)
	}
	ratio, ok := ratioAtLeast(reward, risk, b.opts.MinRewardRisk)
	if !ok {
		return nil, fmt.Errorf("%w: reward:risk %.4f below required minimum %.4f",
			model.ErrConstraint, ratio, b.opts.MinRewardRisk)
	}

	if cons.MaxStopDistPips > 0 && risk > cons.MaxStopDistPips*cons.TickSize {
		return nil, fmt.Errorf("%w: stop distance %v exceeds maximum %v pips for %s",
			model.ErrConstraint, risk, cons.MaxStopDistPips, cons.Symbol)
	}
	if cons.MinTPDistPips > 0 && reward < cons.MinTPDistPips*cons.TickSize {
		return nil, fmt.Errorf("%w: take-profit distance %v below minimum %v pips for %s",
			model.ErrConstraint, reward, cons.MinTPDistPips, cons.Symbol)
	}

	return &model.Order{
		ID:              uuid.NewString(),
		SignalID:        fmt.Sprintf("%s-%d", cand.Instrument, cand.Timestamp.UnixNano()),
		Symbol:          cons.Symbol,
		OrderType:       orderType,
		Volume:          b.opts.Volume,
		EntryPrice:      entry,
		StopLoss:        stop,
		TakeProfit:      target,
		ExpiryTime:      createdAt.Add(time.Duration(b.opts.ExpiryHours) * time.Hour),
		CreatedAt:       createdAt,
		RiskAmount:      risk,
		RewardAmount:    reward,
		RiskRewardRatio: ratio,
		MinStopDistPips: cons.MinStopDistPips,
		StrategyName:    b.opts.StrategyName,
	}, nil
}

// Failure pairs a rejected candidate with the reason it was rejected.
type Failure struct {
	Candidate *model.SignalCandidate
	Err       error
}

// BatchResult partitions a batch build into orders and failures.
type BatchResult struct {
	Orders   []*model.Order
	Failures []Failure
}

// BuildBatch builds each candidate independently, looking up broker
// constraints per instrument. A failing candidate never aborts the
// batch; valid siblings still produce orders.
func (b *Builder) BuildBatch(cands []*model.SignalCandidate, createdAt time.Time) BatchResult {
	var res BatchResult
	for _, cand := range cands {
		cons, err := broker.Constraints(cand.Instrument)
		if err == nil {
			var order *model.Order
			order, err = b.Build(cand, cons, createdAt)
			if err == nil {
				res.Orders = append(res.Orders, order)
				continue
			}
		} else if b.met != nil {
			b.met.OrdersRejected.WithLabelValues(rejectReason(err)).Inc()
		}
		res.Failures = append(res.Failures, Failure{Candidate: cand, Err: err})
	}
	b.log.Info().
		Int("built", len(res.Orders)).
		Int("failed", len(res.Failures)).
		Msg("batch build finished")
	return res
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, model.ErrConstraint):
		return "constraint"
	case errors.Is(err, model.ErrInvariant):
		return "invariant"
	default:
		return "validation"
	}
}
