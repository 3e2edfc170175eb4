// Package strategy orchestrates one signal-generation attempt per
// (instrument, bar series) invocation: input validation, market-hours
// and rate-limit gates, indicator computation, pattern detection, and
// Fibonacci-based price derivation.
package strategy

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"signal-enginev1/internal/indicator"
	"signal-enginev1/internal/metrics"
	"signal-enginev1/internal/model"
	"signal-enginev1/internal/pattern"
)

// MarketCalendar is the external collaborator answering whether an
// instrument's market is open. Implementations may fail; the engine
// fails open on error, favoring availability over a missed signal.
type MarketCalendar interface {
	IsMarketOpen(instrument string, t time.Time) (bool, error)
}

// Config holds every numeric knob of the engine. All bounds are
// validated eagerly at construction; a violated bound fails NewEngine
// rather than producing a partially-valid engine.
type Config struct {
	StrategyName string

	RSIPeriod     int
	RSIOverbought float64
	RSIOversold   float64
	ROCPeriod     int
	ATRPeriod     int
	SwingLookback int
	MinBars       int

	RiskPerTrade    float64 // fraction of equity, informational for downstream sizing
	RewardRiskRatio float64 // minimum reward:risk multiplier used in derivation
	MinStopPoints   float64
	ATRStopMult     float64
	ATRTargetMult   float64

	CompletionWindowHours int // pattern completion window
	ExpiryHours           int // signal/order expiry horizon
	RateLimitPerHour      int
	MarketHoursEnabled    bool

	FibRatios []float64 // nil means indicator.DefaultFibRatios
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		StrategyName:          "rsi-fib-reversal",
		RSIPeriod:             14,
		RSIOverbought:         70,
		RSIOversold:           40,
		ROCPeriod:             12,
		ATRPeriod:             14,
		SwingLookback:         20,
		MinBars:               30,
		RiskPerTrade:          0.02,
		RewardRiskRatio:       2.0,
		MinStopPoints:         1,
		ATRStopMult:           1.5,
		ATRTargetMult:         3.0,
		CompletionWindowHours: 100,
		ExpiryHours:           100,
		RateLimitPerHour:      5,
		MarketHoursEnabled:    true,
	}
}

// Validate checks every bound. The error names the offending knob and
// value so misconfiguration is diagnosable from the message alone.
func (c Config) Validate() error {
	switch {
	case c.RSIPeriod < 2:
		return fmt.Errorf("%w: rsi period %d < 2", model.ErrValidation, c.RSIPeriod)
	case c.RSIOverbought <= 0 || c.RSIOverbought >= 100:
		return fmt.Errorf("%w: overbought threshold %v outside (0,100)", model.ErrValidation, c.RSIOverbought)
	case c.RSIOversold <= 0 || c.RSIOversold >= 100:
		return fmt.Errorf("%w: oversold threshold %v outside (0,100)", model.ErrValidation, c.RSIOversold)
	case c.RSIOverbought <= c.RSIOversold:
		return fmt.Errorf("%w: overbought %v not above oversold %v", model.ErrValidation, c.RSIOverbought, c.RSIOversold)
	case c.ROCPeriod < 2:
		return fmt.Errorf("%w: roc period %d < 2", model.ErrValidation, c.ROCPeriod)
	case c.ATRPeriod < 2:
		return fmt.Errorf("%w: atr period %d < 2", model.ErrValidation, c.ATRPeriod)
	case c.SwingLookback < 2:
		return fmt.Errorf("%w: swing lookback %d < 2", model.ErrValidation, c.SwingLookback)
	case c.SwingLookback >= c.MinBars:
		return fmt.Errorf("%w: swing lookback %d must be below min bars %d", model.ErrValidation, c.SwingLookback, c.MinBars)
	case c.RiskPerTrade <= 0 || c.RiskPerTrade >= 1:
		return fmt.Errorf("%w: risk per trade %v outside (0,1)", model.ErrValidation, c.RiskPerTrade)
	case c.RewardRiskRatio < 0.5 || c.RewardRiskRatio > 10:
		return fmt.Errorf("%w: reward:risk ratio %v outside [0.5,10]", model.ErrValidation, c.RewardRiskRatio)
	case c.MinStopPoints < 1:
		return fmt.Errorf("%w: min stop distance %v < 1 point", model.ErrValidation, c.MinStopPoints)
	case c.ATRStopMult < 0.1:
		return fmt.Errorf("%w: atr stop multiplier %v < 0.1", model.ErrValidation, c.ATRStopMult)
	case c.ATRTargetMult < 0.1:
		return fmt.Errorf("%w: atr target multiplier %v < 0.1", model.ErrValidation, c.ATRTargetMult)
	case c.CompletionWindowHours < 1:
		return fmt.Errorf("%w: completion window %d hours < 1", model.ErrValidation, c.CompletionWindowHours)
	case c.ExpiryHours < 1:
		return fmt.Errorf("%w: signal expiry %d hours < 1", model.ErrValidation, c.ExpiryHours)
	case c.RateLimitPerHour < 1:
		return fmt.Errorf("%w: rate limit %d per hour < 1", model.ErrValidation, c.RateLimitPerHour)
	}
	return nil
}

// Engine runs the signal-generation pipeline. Construct once at process
// start and share by reference; the only mutable state is the
// per-instrument rate-limit window, which is mutex-guarded.
type Engine struct {
	cfg      Config
	calendar MarketCalendar
	detector *pattern.Detector
	limiter  *rateLimiter
	met      *metrics.Metrics // optional
	log      zerolog.Logger
}

// NewEngine validates cfg and builds an engine. calendar may be nil
// only when the market-hours gate is disabled. met may be nil.
func NewEngine(cfg Config, calendar MarketCalendar, met *metrics.Metrics, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MarketHoursEnabled && calendar == nil {
		return nil, fmt.Errorf("%w: market-hours gate enabled but no calendar provided", model.ErrValidation)
	}
	det := &pattern.Detector{
		HighThreshold:    cfg.RSIOverbought,
		LowThreshold:     cfg.RSIOversold,
		CompletionWindow: time.Duration(cfg.CompletionWindowHours) * time.Hour,
	}
	return &Engine{
		cfg:      cfg,
		calendar: calendar,
		detector: det,
		limiter:  newRateLimiter(cfg.RateLimitPerHour, time.Hour),
		met:      met,
		log:      log.With().Str("component", "strategy").Str("strategy", cfg.StrategyName).Logger(),
	}, nil
}

// Config returns the engine's validated configuration.
func (e *Engine) Config() Config { return e.cfg }

// Evaluate runs one signal-generation attempt over the bar series.
// A nil candidate with nil error means no signal (market closed, rate
// limited, or no completed pattern) — expected outcomes, not failures.
func (e *Engine) Evaluate(instrument string, bars []model.Bar) (*model.SignalCandidate, error) {
	if err := model.ValidateBars(bars, e.cfg.MinBars); err != nil {
		return nil, fmt.Errorf("bar series for %s: %w", instrument, err)
	}
	ts := bars[len(bars)-1].TS

	if e.cfg.MarketHoursEnabled {
		open, err := e.calendar.IsMarketOpen(instrument, ts)
		if err != nil {
			// Fail open: a broken calendar must not cost us a signal.
			e.log.Warn().Err(err).Str("instrument", instrument).Msg("market calendar failed, treating as open")
			open = true
		}
		if !open {
			e.suppress(instrument, "market_closed")
			return nil, nil
		}
	}

	if !e.limiter.allow(instrument, ts) {
		e.suppress(instrument, "rate_limited")
		return nil, nil
	}

	snap, err := indicator.ComputeSnapshot(bars, indicator.Params{
		RSIPeriod:     e.cfg.RSIPeriod,
		ROCPeriod:     e.cfg.ROCPeriod,
		ATRPeriod:     e.cfg.ATRPeriod,
		SwingLookback: e.cfg.SwingLookback,
		FibRatios:     e.cfg.FibRatios,
	})
	if err != nil {
		return nil, fmt.Errorf("indicators for %s: %w", instrument, err)
	}

	setup, err := e.detector.Detect(bars, snap.RSISeries)
	if err != nil {
		return nil, fmt.Errorf("pattern scan for %s: %w", instrument, err)
	}
	if setup == nil {
		e.suppress(instrument, "no_setup")
		return nil, nil
	}
	if e.met != nil {
		e.met.SetupsDetected.WithLabelValues(string(setup.Kind)).Inc()
	}

	entry, stop, target, side, err := derivePrices(setup, e.cfg.RewardRiskRatio)
	if err != nil {
		return nil, fmt.Errorf("price derivation for %s: %w", instrument, err)
	}

	cand := &model.SignalCandidate{
		Instrument: instrument,
		Side:       side,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
		Confidence: confidence(setup, snap),
		Timestamp:  ts,
		Reason: fmt.Sprintf("%s RSI crossing setup: high %.5f @ RSI %.1f, low %.5f @ RSI %.1f",
			setup.Kind, setup.PriceHigh, setup.RSIHighValue, setup.PriceLow, setup.RSILowValue),
		Payload: map[string]string{
			"setup_kind":     string(setup.Kind),
			"price_high":     strconv.FormatFloat(setup.PriceHigh, 'f', -1, 64),
			"price_low":      strconv.FormatFloat(setup.PriceLow, 'f', -1, 64),
			"setup_age_h":    strconv.FormatFloat(setup.AgeHours, 'f', 2, 64),
			"rsi":            strconv.FormatFloat(snap.RSI, 'f', 2, 64),
			"roc":            strconv.FormatFloat(snap.ROC, 'f', 4, 64),
			"atr":            strconv.FormatFloat(snap.ATR, 'f', 6, 64),
			"swing_high":     strconv.FormatFloat(snap.SwingHigh.Price, 'f', -1, 64),
			"swing_low":      strconv.FormatFloat(snap.SwingLow.Price, 'f', -1, 64),
		},
	}

	e.limiter.record(instrument, ts)
	if e.met != nil {
		e.met.SignalsEmitted.WithLabelValues(instrument, string(side)).Inc()
	}
	e.log.Info().
		Str("instrument", instrument).
		Str("side", string(side)).
		Float64("entry", entry).
		Float64("stop", stop).
		Float64("target", target).
		Float64("confidence", cand.Confidence).
		Msg("signal candidate emitted")
	return cand, nil
}

func (e *Engine) suppress(instrument, reason string) {
	if e.met != nil {
		e.met.SignalsSuppressed.WithLabelValues(reason).Inc()
	}
	e.log.Debug().Str("instrument", instrument).Str("reason", reason).Msg("no signal")
}
