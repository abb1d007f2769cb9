// Package config loads and validates the monitor configuration. A loaded
// Config is immutable; live reconfiguration swaps the whole snapshot through
// a Provider.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/motion"
)

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "memory" or "postgres".
	Backend     string `yaml:"backend"`
	PostgresDSN string `yaml:"postgres_dsn"`
	// ClickhouseDSN enables the raw trade archive when set.
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// RedisConfig enables the pub/sub alert sink when Addr is set.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// EnrichmentConfig controls the external holder-data client.
type EnrichmentConfig struct {
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
	Burst          int     `yaml:"burst"`
}

// IngestionConfig controls the event intake loop.
type IngestionConfig struct {
	BufferSize                 int     `yaml:"buffer_size"`
	RegressionToleranceSeconds float64 `yaml:"regression_tolerance_seconds"`
	InactivityEvictionMinutes  float64 `yaml:"inactivity_eviction_minutes"`
	EvictionSweepMinutes       float64 `yaml:"eviction_sweep_minutes"`
}

// WindowConfig controls the per-token feature windows.
type WindowConfig struct {
	Tier0Minutes int `yaml:"tier0_minutes"`
	Tier1Minutes int `yaml:"tier1_minutes"`
	MaxTrades    int `yaml:"max_trades"`
}

// ValidationConfig controls the Tier-1 sweep.
type ValidationConfig struct {
	IntervalMinutes    float64 `yaml:"interval_minutes"`
	Tier1MinAgeMinutes float64 `yaml:"tier1_min_age_minutes"`
}

// WalletConfig controls the profitability ledger.
type WalletConfig struct {
	RefreshIntervalMinutes float64 `yaml:"refresh_interval_minutes"`
	LookbackDays           float64 `yaml:"lookback_days"`
	MinTrades              int     `yaml:"min_trades"`
	MinWinRate             float64 `yaml:"min_win_rate"`
	MinTotalPnLSOL         float64 `yaml:"min_total_pnl_sol"`
}

// Config is the full monitor configuration.
type Config struct {
	Log        LogConfig              `yaml:"log"`
	Storage    StorageConfig          `yaml:"storage"`
	Redis      RedisConfig            `yaml:"redis"`
	Metrics    MetricsConfig          `yaml:"metrics"`
	Enrichment EnrichmentConfig       `yaml:"enrichment"`
	Ingestion  IngestionConfig        `yaml:"ingestion"`
	Windows    WindowConfig           `yaml:"windows"`
	Validation ValidationConfig       `yaml:"validation"`
	Wallets    WalletConfig           `yaml:"wallets"`
	Tier0      motion.Tier0Thresholds `yaml:"tier0"`
	Tier1      motion.Tier1Thresholds `yaml:"tier1"`
}

// Default returns the production defaults. A config file overrides fields
// selectively.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: "json"},
		Storage: StorageConfig{Backend: "memory"},
		Metrics: MetricsConfig{Addr: ":9100"},
		Enrichment: EnrichmentConfig{
			TimeoutSeconds: 10,
			RatePerSecond:  5,
			Burst:          5,
		},
		Ingestion: IngestionConfig{
			BufferSize:                 1024,
			RegressionToleranceSeconds: 2,
			InactivityEvictionMinutes:  120,
			EvictionSweepMinutes:       10,
		},
		Windows: WindowConfig{
			Tier0Minutes: 3,
			Tier1Minutes: 60,
			MaxTrades:    1000,
		},
		Validation: ValidationConfig{
			IntervalMinutes:    5,
			Tier1MinAgeMinutes: 60,
		},
		Wallets: WalletConfig{
			RefreshIntervalMinutes: 60,
			LookbackDays:           7,
			MinTrades:              5,
			MinWinRate:             0.40,
			MinTotalPnLSOL:         5.0,
		},
		Tier0: motion.DefaultTier0Thresholds(),
		Tier1: motion.DefaultTier1Thresholds(),
	}
}

// Load reads a YAML file over the defaults and validates the result.
// An empty path returns validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the monitor cannot run with. Called at
// startup; any error is fatal.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn required for postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend must be memory or postgres, got %q", c.Storage.Backend)
	}

	if c.Windows.Tier0Minutes <= 0 || c.Windows.Tier1Minutes <= 0 {
		return fmt.Errorf("window durations must be positive")
	}
	if c.Windows.Tier0Minutes > c.Windows.Tier1Minutes {
		return fmt.Errorf("tier0 window (%dm) cannot exceed tier1 window (%dm)",
			c.Windows.Tier0Minutes, c.Windows.Tier1Minutes)
	}
	if c.Windows.MaxTrades <= 0 {
		return fmt.Errorf("windows.max_trades must be positive")
	}

	if c.Tier0.MinBuyVolumeSOL < 0 || c.Tier0.MinTxnVelocity < 0 ||
		c.Tier0.MinUniqueBuyers < 0 || c.Tier0.MinKnownWallets < 0 {
		return fmt.Errorf("tier0 thresholds must be non-negative")
	}
	if c.Tier0.MaxMarketCap <= 0 {
		return fmt.Errorf("tier0.max_market_cap must be positive")
	}
	if c.Tier0.MaxBondingCurvePct <= 0 || c.Tier0.MaxBondingCurvePct > 100 {
		return fmt.Errorf("tier0.max_bonding_curve_pct must be in (0, 100]")
	}

	if c.Tier1.MinMarketCap < 0 || c.Tier1.MaxMarketCap <= c.Tier1.MinMarketCap {
		return fmt.Errorf("tier1 market cap band invalid: [%f, %f]",
			c.Tier1.MinMarketCap, c.Tier1.MaxMarketCap)
	}
	if c.Tier1.MinVolumeMCRatio < 0 || c.Tier1.MaxVolumeMCRatio <= c.Tier1.MinVolumeMCRatio {
		return fmt.Errorf("tier1 volume/mc band invalid: [%f, %f]",
			c.Tier1.MinVolumeMCRatio, c.Tier1.MaxVolumeMCRatio)
	}

	if c.Wallets.MinWinRate < 0 || c.Wallets.MinWinRate > 1 {
		return fmt.Errorf("wallets.min_win_rate must be in [0, 1]")
	}

	if c.Validation.IntervalMinutes <= 0 {
		return fmt.Errorf("validation.interval_minutes must be positive")
	}
	if c.Enrichment.TimeoutSeconds <= 0 {
		return fmt.Errorf("enrichment.timeout_seconds must be positive")
	}
	if c.Ingestion.BufferSize <= 0 {
		return fmt.Errorf("ingestion.buffer_size must be positive")
	}
	if c.Ingestion.RegressionToleranceSeconds < 0 {
		return fmt.Errorf("ingestion.regression_tolerance_seconds must be non-negative")
	}

	return nil
}

// Duration helpers, so callers never re-derive units.

func (c *Config) Tier0Window() time.Duration {
	return time.Duration(c.Windows.Tier0Minutes) * time.Minute
}

func (c *Config) Tier1Window() time.Duration {
	return time.Duration(c.Windows.Tier1Minutes) * time.Minute
}

func (c *Config) ValidationInterval() time.Duration {
	return time.Duration(c.Validation.IntervalMinutes * float64(time.Minute))
}

func (c *Config) Tier1MinAge() time.Duration {
	return time.Duration(c.Validation.Tier1MinAgeMinutes * float64(time.Minute))
}

func (c *Config) EnrichmentTimeout() time.Duration {
	return time.Duration(c.Enrichment.TimeoutSeconds * float64(time.Second))
}

func (c *Config) RegressionTolerance() time.Duration {
	return time.Duration(c.Ingestion.RegressionToleranceSeconds * float64(time.Second))
}

func (c *Config) InactivityEviction() time.Duration {
	return time.Duration(c.Ingestion.InactivityEvictionMinutes * float64(time.Minute))
}

func (c *Config) EvictionSweep() time.Duration {
	return time.Duration(c.Ingestion.EvictionSweepMinutes * float64(time.Minute))
}

func (c *Config) WalletRefreshInterval() time.Duration {
	return time.Duration(c.Wallets.RefreshIntervalMinutes * float64(time.Minute))
}

func (c *Config) WalletLookback() time.Duration {
	return time.Duration(c.Wallets.LookbackDays * 24 * float64(time.Hour))
}
