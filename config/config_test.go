package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"signal-enginev1/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signal-engine.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "instrument: EURUSD\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Instrument != "EURUSD" || cfg.Timeframe != "1h" {
		t.Errorf("instrument/timeframe = %s/%s, want EURUSD/1h", cfg.Instrument, cfg.Timeframe)
	}
	if cfg.Strategy.RSIPeriod != 14 || cfg.Strategy.RateLimitPerHour != 5 {
		t.Errorf("strategy defaults not applied: %+v", cfg.Strategy)
	}
	if cfg.Volume != 0.1 {
		t.Errorf("volume default = %v, want 0.1", cfg.Volume)
	}
	if err := cfg.Strategy.ToStrategy().Validate(); err != nil {
		t.Errorf("defaulted strategy config should validate: %v", err)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
instrument: XAUUSD
timeframe: 15m
volume: 0.5
strategy:
  rsi_period: 7
  rate_limit_per_hour: 2
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Instrument != "XAUUSD" || cfg.Timeframe != "15m" || cfg.Volume != 0.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Strategy.RSIPeriod != 7 || cfg.Strategy.RateLimitPerHour != 2 {
		t.Errorf("strategy overrides not applied: %+v", cfg.Strategy)
	}
	// Untouched knobs keep their defaults.
	if cfg.Strategy.RSIOverbought != 70 {
		t.Errorf("overbought = %v, want default 70", cfg.Strategy.RSIOverbought)
	}
}

func TestLoad_RejectsBadStrategy(t *testing.T) {
	_, err := Load(writeConfig(t, "strategy:\n  rsi_period: 1\n"))
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("bad rsi period: got %v, want ErrValidation", err)
	}
}

func TestLoad_RejectsBadVolume(t *testing.T) {
	_, err := Load(writeConfig(t, "volume: -1\n"))
	if err == nil {
		t.Fatal("negative volume must fail the load")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicitly named missing file must fail")
	}
}
