// Package config loads the quantlab YAML configuration and applies
// environment variable overrides.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for quantlab.
type Config struct {
	Storage       Storage             `yaml:"storage"`
	Server        Server              `yaml:"server"`
	Alpaca        Alpaca              `yaml:"alpaca"`
	Logging       Logging             `yaml:"logging"`
	Backtest      BacktestConfig      `yaml:"backtest"`
	Recalculation RecalculationPolicy `yaml:"recalculation"`
	Refresh       RefreshConfig       `yaml:"refresh"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
// When the key is empty the server falls back to the synthetic provider.
type Alpaca struct {
	APIKey          string `yaml:"api_key"`
	APISecret       string `yaml:"api_secret"`
	DataURL         string `yaml:"data_url"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BacktestConfig holds simulation defaults.
type BacktestConfig struct {
	RiskFreeRate       float64 `yaml:"risk_free_rate"`      // annual, e.g. 0.04
	RebalanceFrequency string  `yaml:"rebalance_frequency"` // monthly or quarterly
}

// RecalculationPolicy tells API clients how aggressively to recompute. The
// engine itself is stateless; this is advisory host configuration echoed to
// the UI layer.
type RecalculationPolicy struct {
	DebounceMs   int `yaml:"debounce_ms" json:"debounceMs"`
	StaleAfterMs int `yaml:"stale_after_ms" json:"staleAfterMs"`
}

// RefreshConfig schedules the nightly bar-cache refresh.
type RefreshConfig struct {
	CronSpec string `yaml:"cron_spec"` // e.g. "0 22 * * 1-5"
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides, and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Backtest.RiskFreeRate == 0 {
		cfg.Backtest.RiskFreeRate = 0.04
	}
	if cfg.Backtest.RebalanceFrequency == "" {
		cfg.Backtest.RebalanceFrequency = "monthly"
	}
	if cfg.Recalculation.DebounceMs == 0 {
		cfg.Recalculation.DebounceMs = 300
	}
	if cfg.Recalculation.StaleAfterMs == 0 {
		cfg.Recalculation.StaleAfterMs = 60_000
	}
	if cfg.Refresh.CronSpec == "" {
		cfg.Refresh.CronSpec = "0 22 * * 1-5"
	}
}
