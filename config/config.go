// Package config loads the signal engine's configuration from a YAML
// file with SIGNAL_-prefixed environment overrides. Strategy bounds are
// validated eagerly at load time: a bad knob fails the load, it never
// reaches a half-configured engine.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"signal-enginev1/internal/logging"
	"signal-enginev1/internal/strategy"
)

// Config is the full application configuration.
type Config struct {
	Instrument  string  `mapstructure:"instrument"`
	Timeframe   string  `mapstructure:"timeframe"`
	BarsFile    string  `mapstructure:"bars_file"`
	Speed       float64 `mapstructure:"speed"`
	MetricsAddr string  `mapstructure:"metrics_addr"`
	Volume      float64 `mapstructure:"volume"`

	Strategy StrategyConfig `mapstructure:"strategy"`
	Logging  logging.Config `mapstructure:"logging"`
}

// StrategyConfig mirrors strategy.Config with config-file keys.
type StrategyConfig struct {
	Name                  string    `mapstructure:"name"`
	RSIPeriod             int       `mapstructure:"rsi_period"`
	RSIOverbought         float64   `mapstructure:"rsi_overbought"`
	RSIOversold           float64   `mapstructure:"rsi_oversold"`
	ROCPeriod             int       `mapstructure:"roc_period"`
	ATRPeriod             int       `mapstructure:"atr_period"`
	SwingLookback         int       `mapstructure:"swing_lookback"`
	MinBars               int       `mapstructure:"min_bars"`
	RiskPerTrade          float64   `mapstructure:"risk_per_trade"`
	RewardRiskRatio       float64   `mapstructure:"reward_risk_ratio"`
	MinStopPoints         float64   `mapstructure:"min_stop_points"`
	ATRStopMult           float64   `mapstructure:"atr_stop_mult"`
	ATRTargetMult         float64   `mapstructure:"atr_target_mult"`
	CompletionWindowHours int       `mapstructure:"completion_window_hours"`
	ExpiryHours           int       `mapstructure:"expiry_hours"`
	RateLimitPerHour      int       `mapstructure:"rate_limit_per_hour"`
	MarketHoursEnabled    bool      `mapstructure:"market_hours_enabled"`
	FibRatios             []float64 `mapstructure:"fib_ratios"`
}

// ToStrategy converts to the engine's config type.
func (s StrategyConfig) ToStrategy() strategy.Config {
	return strategy.Config{
		StrategyName:          s.Name,
		RSIPeriod:             s.RSIPeriod,
		RSIOverbought:         s.RSIOverbought,
		RSIOversold:           s.RSIOversold,
		ROCPeriod:             s.ROCPeriod,
		ATRPeriod:             s.ATRPeriod,
		SwingLookback:         s.SwingLookback,
		MinBars:               s.MinBars,
		RiskPerTrade:          s.RiskPerTrade,
		RewardRiskRatio:       s.RewardRiskRatio,
		MinStopPoints:         s.MinStopPoints,
		ATRStopMult:           s.ATRStopMult,
		ATRTargetMult:         s.ATRTargetMult,
		CompletionWindowHours: s.CompletionWindowHours,
		ExpiryHours:           s.ExpiryHours,
		RateLimitPerHour:      s.RateLimitPerHour,
		MarketHoursEnabled:    s.MarketHoursEnabled,
		FibRatios:             s.FibRatios,
	}
}

// Load reads configuration from the given file (optional) plus
// environment variables, applies defaults, and validates.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SIGNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("signal-engine")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/signal-engine")
		// Missing file is fine: defaults plus env cover everything.
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Strategy.ToStrategy().Validate(); err != nil {
		return nil, err
	}
	if cfg.Volume <= 0 {
		return nil, fmt.Errorf("volume %v must be positive", cfg.Volume)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := strategy.DefaultConfig()
	logDef := logging.DefaultConfig()

	v.SetDefault("instrument", "EURUSD")
	v.SetDefault("timeframe", "1h")
	v.SetDefault("speed", 0.0)
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("volume", 0.1)

	v.SetDefault("strategy.name", def.StrategyName)
	v.SetDefault("strategy.rsi_period", def.RSIPeriod)
	v.SetDefault("strategy.rsi_overbought", def.RSIOverbought)
	v.SetDefault("strategy.rsi_oversold", def.RSIOversold)
	v.SetDefault("strategy.roc_period", def.ROCPeriod)
	v.SetDefault("strategy.atr_period", def.ATRPeriod)
	v.SetDefault("strategy.swing_lookback", def.SwingLookback)
	v.SetDefault("strategy.min_bars", def.MinBars)
	v.SetDefault("strategy.risk_per_trade", def.RiskPerTrade)
	v.SetDefault("strategy.reward_risk_ratio", def.RewardRiskRatio)
	v.SetDefault("strategy.min_stop_points", def.MinStopPoints)
	v.SetDefault("strategy.atr_stop_mult", def.ATRStopMult)
	v.SetDefault("strategy.atr_target_mult", def.ATRTargetMult)
	v.SetDefault("strategy.completion_window_hours", def.CompletionWindowHours)
	v.SetDefault("strategy.expiry_hours", def.ExpiryHours)
	v.SetDefault("strategy.rate_limit_per_hour", def.RateLimitPerHour)
	v.SetDefault("strategy.market_hours_enabled", def.MarketHoursEnabled)

	v.SetDefault("logging.level", logDef.Level)
	v.SetDefault("logging.console", logDef.Console)
	v.SetDefault("logging.file", logDef.File)
	v.SetDefault("logging.file_path", logDef.FilePath)
	v.SetDefault("logging.max_size_mb", logDef.MaxSizeMB)
	v.SetDefault("logging.max_backups", logDef.MaxBackups)
	v.SetDefault("logging.max_age_days", logDef.MaxAgeDays)
}
