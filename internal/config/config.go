// Package config loads application configuration from an optional JSON file,
// a .env file, and environment variable overrides, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the root application configuration.
type Config struct {
	App     AppConfig     `json:"app"`
	Fetch   FetchConfig   `json:"fetch"`
	Storage StorageConfig `json:"storage"`
	Logging LoggingConfig `json:"logging"`
}

// AppConfig identifies the running application.
type AppConfig struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FetchConfig holds the defaults for candle fetches.
type FetchConfig struct {
	Symbol      string        `json:"symbol"`
	Timeframe   string        `json:"timeframe"`
	Lookback    time.Duration `json:"lookback"`
	Exchanges   []string      `json:"exchanges"`
	HTTPTimeout time.Duration `json:"http_timeout"`
}

// StorageConfig configures the parquet store.
type StorageConfig struct {
	BaseDir        string `json:"base_dir"`
	PartitionByDay bool   `json:"partition_by_day"`
	Overwrite      bool   `json:"overwrite"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	Output     string `json:"output"`
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"`
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"`
	Compress   bool   `json:"compress"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "crypto-candles",
			Version: "1.0.0",
		},
		Fetch: FetchConfig{
			Symbol:      "BTC-BRL",
			Timeframe:   "1h",
			Lookback:    24 * time.Hour,
			Exchanges:   nil, // nil means all registered exchanges
			HTTPTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			BaseDir:        "data",
			PartitionByDay: false,
			Overwrite:      false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stderr",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
	}
}

// Load builds the configuration. A missing file is not an error: defaults
// plus environment overrides are used. The .env file, when present, is
// loaded before the environment is read.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is the common case.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("APP_NAME"); val != "" {
		cfg.App.Name = val
	}
	if val := os.Getenv("FETCH_SYMBOL"); val != "" {
		cfg.Fetch.Symbol = val
	}
	if val := os.Getenv("FETCH_TIMEFRAME"); val != "" {
		cfg.Fetch.Timeframe = val
	}
	if val := os.Getenv("FETCH_LOOKBACK"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Fetch.Lookback = d
		}
	}
	if val := os.Getenv("FETCH_EXCHANGES"); val != "" {
		cfg.Fetch.Exchanges = splitCSV(val)
	}
	if val := os.Getenv("HTTP_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Fetch.HTTPTimeout = d
		}
	}
	if val := os.Getenv("STORAGE_BASE_DIR"); val != "" {
		cfg.Storage.BaseDir = val
	}
	if val := os.Getenv("STORAGE_PARTITION_BY_DAY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Storage.PartitionByDay = b
		}
	}
	if val := os.Getenv("STORAGE_OVERWRITE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Storage.Overwrite = b
		}
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("LOG_OUTPUT"); val != "" {
		cfg.Logging.Output = val
	}
	if val := os.Getenv("LOG_FILE_PATH"); val != "" {
		cfg.Logging.FilePath = val
	}
}

func splitCSV(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if c.Fetch.Symbol == "" {
		return fmt.Errorf("fetch symbol cannot be empty")
	}
	if !strings.Contains(c.Fetch.Symbol, "-") {
		return fmt.Errorf("fetch symbol must be in BASE-QUOTE form, got %q", c.Fetch.Symbol)
	}
	if c.Fetch.Timeframe == "" {
		return fmt.Errorf("fetch timeframe cannot be empty")
	}
	if c.Fetch.Lookback <= 0 {
		return fmt.Errorf("fetch lookback must be positive")
	}
	if c.Fetch.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage base dir cannot be empty")
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr":
	case "file":
		if c.Logging.FilePath == "" {
			return fmt.Errorf("log file path is required when output is 'file'")
		}
	default:
		return fmt.Errorf("unknown log output %q", c.Logging.Output)
	}
	return nil
}
