// Package pipeline wires the signal engine end to end for one
// instrument stream: candle boundary detection and dedup, strategy
// evaluation, and order construction under broker constraints.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"signal-enginev1/internal/broker"
	"signal-enginev1/internal/candle"
	"signal-enginev1/internal/metrics"
	"signal-enginev1/internal/model"
	"signal-enginev1/internal/orderbuilder"
	"signal-enginev1/internal/strategy"
)

// DefaultWindowBars caps the rolling bar window handed to the engine.
const DefaultWindowBars = 500

// Pipeline processes a bar stream for a single (instrument, timeframe)
// pair. Not safe for concurrent OnBar calls; run one pipeline per
// stream, or serialize externally.
type Pipeline struct {
	instrument string
	timeframe  string

	detector *candle.Detector
	engine   *strategy.Engine
	builder  *orderbuilder.Builder
	cons     model.BrokerConstraints

	met    *metrics.Metrics // optional
	health *metrics.HealthStatus
	log    zerolog.Logger

	window    []model.Bar
	maxWindow int

	// OnOrder receives every successfully built order. Optional.
	OnOrder func(*model.Order)
}

// New assembles a pipeline. The broker constraint lookup happens once
// here; an unsupported instrument fails construction.
func New(instrument, timeframe string, detector *candle.Detector, engine *strategy.Engine,
	builder *orderbuilder.Builder, met *metrics.Metrics, health *metrics.HealthStatus,
	log zerolog.Logger) (*Pipeline, error) {

	if _, err := candle.ParseTimeframe(timeframe); err != nil {
		return nil, err
	}
	cons, err := broker.Constraints(instrument)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		instrument: instrument,
		timeframe:  timeframe,
		detector:   detector,
		engine:     engine,
		builder:    builder,
		cons:       cons,
		met:        met,
		health:     health,
		log:        log.With().Str("component", "pipeline").Str("instrument", instrument).Logger(),
	}, nil
}

// OnBar feeds one bar through the pipeline. It returns the built order
// when the bar closed a fresh candle that produced a valid signal, or
// nil when there is nothing to do. Invariant and constraint failures
// abort only the current candle and are returned for the caller to log.
func (p *Pipeline) OnBar(bar model.Bar) (*model.Order, error) {
	p.window = append(p.window, bar)
	if max := p.maxBars(); len(p.window) > max {
		p.window = p.window[len(p.window)-max:]
	}
	if p.met != nil {
		p.met.BarsProcessed.Inc()
	}
	if p.health != nil {
		p.health.Observe(bar.TS)
	}

	isNew, err := p.detector.IsNewCandle(bar.TS, p.timeframe)
	if err != nil {
		return nil, err
	}
	if !isNew {
		return nil, nil
	}
	ok, err := p.detector.ShouldProcess(p.instrument, p.timeframe, bar.TS)
	if err != nil {
		return nil, err
	}
	if !ok {
		if p.met != nil {
			p.met.CandlesDeduped.Inc()
		}
		return nil, nil
	}
	if p.met != nil {
		p.met.CandlesAccepted.Inc()
	}

	// Not enough history yet: expected during warm-up, not an error.
	if len(p.window) < p.engine.Config().MinBars {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		if p.met != nil {
			p.met.EvaluateDur.Observe(time.Since(start).Seconds())
		}
	}()

	cand, err := p.engine.Evaluate(p.instrument, p.window)
	if err != nil || cand == nil {
		return nil, err
	}
	order, err := p.builder.Build(cand, p.cons, bar.TS)
	if err != nil {
		return nil, err
	}
	if p.OnOrder != nil {
		p.OnOrder(order)
	}
	return order, nil
}

// Run consumes bars from barCh until ctx is done or the channel closes.
// Per-candle failures are logged and the stream continues; only a
// cancelled context stops the loop early.
func (p *Pipeline) Run(ctx context.Context, barCh <-chan model.Bar) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case bar, ok := <-barCh:
			if !ok {
				return nil
			}
			if _, err := p.OnBar(bar); err != nil {
				if errors.Is(err, model.ErrValidation) {
					return err
				}
				p.log.Error().Err(err).Time("bar", bar.TS).Msg("candle aborted")
			}
		}
	}
}

func (p *Pipeline) maxBars() int {
	if p.maxWindow > 0 {
		return p.maxWindow
	}
	return DefaultWindowBars
}

// SetMaxWindow overrides the rolling window cap (for tests and smaller
// replay runs).
func (p *Pipeline) SetMaxWindow(n int) {
	if n > 0 {
		p.maxWindow = n
	}
}
