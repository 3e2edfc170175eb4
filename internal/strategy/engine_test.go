package strategy

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"signal-enginev1/internal/model"
)

func TestConfig_Validate(t *testing.T) {
	mutate := func(f func(*Config)) Config {
		c := DefaultConfig()
		f(&c)
		return c
	}

	cases := []struct {
		name string
		cfg  Config
	}{
		{"rsi period too small", mutate(func(c *Config) { c.RSIPeriod = 1 })},
		{"overbought out of range", mutate(func(c *Config) { c.RSIOverbought = 100 })},
		{"oversold out of range", mutate(func(c *Config) { c.RSIOversold = 0 })},
		{"overbought below oversold", mutate(func(c *Config) { c.RSIOverbought = 30; c.RSIOversold = 40 })},
		{"roc period too small", mutate(func(c *Config) { c.ROCPeriod = 1 })},
		{"atr period too small", mutate(func(c *Config) { c.ATRPeriod = 0 })},
		{"swing lookback too small", mutate(func(c *Config) { c.SwingLookback = 1 })},
		{"swing lookback above min bars", mutate(func(c *Config) { c.SwingLookback = 40; c.MinBars = 30 })},
		{"risk per trade out of range", mutate(func(c *Config) { c.RiskPerTrade = 1.0 })},
		{"reward risk too low", mutate(func(c *Config) { c.RewardRiskRatio = 0.4 })},
		{"reward risk too high", mutate(func(c *Config) { c.RewardRiskRatio = 11 })},
		{"min stop below one point", mutate(func(c *Config) { c.MinStopPoints = 0.5 })},
		{"atr stop mult too small", mutate(func(c *Config) { c.ATRStopMult = 0.05 })},
		{"atr target mult too small", mutate(func(c *Config) { c.ATRTargetMult = 0 })},
		{"completion window too short", mutate(func(c *Config) { c.CompletionWindowHours = 0 })},
		{"expiry too short", mutate(func(c *Config) { c.ExpiryHours = 0 })},
		{"rate limit too low", mutate(func(c *Config) { c.RateLimitPerHour = 0 })},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); !errors.Is(err, model.ErrValidation) {
			t.Errorf("%s: got %v, want ErrValidation", tc.name, err)
		}
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

type stubCalendar struct {
	open bool
	err  error
}

func (s stubCalendar) IsMarketOpen(string, time.Time) (bool, error) {
	return s.open, s.err
}

// reversalBars builds 40 hourly bars that rally hard, crash, then drift,
// driving a 2-period RSI above 70 and back below 40. A textbook SHORT.
func reversalBars() []model.Bar {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 40)
	c := 100.0
	for i := 0; i < 15; i++ {
		closes[i] = c
		c += 2
	}
	c -= 4
	for i := 15; i < 30; i++ {
		closes[i] = c
		c -= 2
	}
	c += 2
	for i := 30; i < 40; i++ {
		closes[i] = c
		c += 0.2
	}
	bars := make([]model.Bar, len(closes))
	for i, cl := range closes {
		bars[i] = model.Bar{
			TS:     base.Add(time.Duration(i) * time.Hour),
			Open:   cl,
			High:   cl + 1,
			Low:    cl - 1,
			Close:  cl,
			Volume: 1000,
		}
	}
	return bars
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RSIPeriod = 2
	cfg.ROCPeriod = 2
	cfg.ATRPeriod = 2
	cfg.SwingLookback = 5
	cfg.MarketHoursEnabled = false
	return cfg
}

func TestNewEngine_RequiresCalendarWhenGated(t *testing.T) {
	cfg := testConfig()
	cfg.MarketHoursEnabled = true
	if _, err := NewEngine(cfg, nil, nil, zerolog.Nop()); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("gated engine without calendar: got %v, want ErrValidation", err)
	}
}

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.RSIPeriod = 0
	if _, err := NewEngine(cfg, nil, nil, zerolog.Nop()); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("bad config: got %v, want ErrValidation", err)
	}
}

func TestEvaluate_EmitsShortCandidate(t *testing.T) {
	eng, err := NewEngine(testConfig(), nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	bars := reversalBars()

	cand, err := eng.Evaluate("EURUSD", bars)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if cand == nil {
		t.Fatal("expected a SHORT candidate from the reversal series")
	}
	if cand.Side != model.SideSell {
		t.Fatalf("side = %v, want SELL", cand.Side)
	}
	if !(cand.StopLoss > cand.EntryPrice && cand.EntryPrice > cand.TakeProfit) {
		t.Errorf("SELL price ordering violated: stop=%v entry=%v target=%v",
			cand.StopLoss, cand.EntryPrice, cand.TakeProfit)
	}
	if cand.Confidence < 0.6 || cand.Confidence > 1 {
		t.Errorf("confidence %v outside [0.6, 1]", cand.Confidence)
	}
	if !cand.Timestamp.Equal(bars[len(bars)-1].TS) {
		t.Errorf("candidate timestamp = %v, want latest bar %v", cand.Timestamp, bars[len(bars)-1].TS)
	}
	if cand.Payload["setup_kind"] != string(model.SetupShort) {
		t.Errorf("payload setup_kind = %q, want SHORT", cand.Payload["setup_kind"])
	}
}

func TestEvaluate_TooFewBars(t *testing.T) {
	eng, _ := NewEngine(testConfig(), nil, nil, zerolog.Nop())
	bars := reversalBars()[:20]

	_, err := eng.Evaluate("EURUSD", bars)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("short series: got %v, want ErrValidation", err)
	}
}

func TestEvaluate_MarketClosedSuppresses(t *testing.T) {
	cfg := testConfig()
	cfg.MarketHoursEnabled = true
	eng, err := NewEngine(cfg, stubCalendar{open: false}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	cand, err := eng.Evaluate("EURUSD", reversalBars())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if cand != nil {
		t.Fatalf("candidate = %+v, want nil when the market is closed", cand)
	}
}

func TestEvaluate_CalendarFailureFailsOpen(t *testing.T) {
	cfg := testConfig()
	cfg.MarketHoursEnabled = true
	eng, err := NewEngine(cfg, stubCalendar{err: fmt.Errorf("calendar backend down")}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	cand, err := eng.Evaluate("EURUSD", reversalBars())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if cand == nil {
		t.Fatal("a broken calendar must not suppress the signal")
	}
}

func TestEvaluate_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerHour = 1
	eng, err := NewEngine(cfg, nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	bars := reversalBars()

	first, err := eng.Evaluate("EURUSD", bars)
	if err != nil || first == nil {
		t.Fatalf("first evaluate: got (%+v, %v), want a candidate", first, err)
	}

	second, err := eng.Evaluate("EURUSD", bars)
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if second != nil {
		t.Fatalf("candidate = %+v, want nil once the hourly cap is hit", second)
	}

	// Another instrument has its own window.
	other, err := eng.Evaluate("GBPUSD", bars)
	if err != nil || other == nil {
		t.Fatalf("other instrument: got (%+v, %v), want a candidate", other, err)
	}
}

func TestEvaluate_NoSetupIsNotAnError(t *testing.T) {
	eng, _ := NewEngine(testConfig(), nil, nil, zerolog.Nop())

	// A flat series: RSI never leaves the neutral band.
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, 40)
	for i := range bars {
		c := 100.0
		if i%2 == 0 {
			c = 100.1
		}
		bars[i] = model.Bar{
			TS:     base.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}

	cand, err := eng.Evaluate("EURUSD", bars)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if cand != nil {
		t.Fatalf("candidate = %+v, want nil on a flat series", cand)
	}
}
