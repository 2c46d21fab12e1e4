package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "BTC-BRL", cfg.Fetch.Symbol)
	assert.Equal(t, "1h", cfg.Fetch.Timeframe)
	assert.Equal(t, 24*time.Hour, cfg.Fetch.Lookback)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"fetch": {"symbol": "ETH-BRL", "timeframe": "1d", "lookback": 86400000000000},
		"storage": {"base_dir": "/var/data", "partition_by_day": true}
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ETH-BRL", cfg.Fetch.Symbol)
	assert.Equal(t, "1d", cfg.Fetch.Timeframe)
	assert.Equal(t, "/var/data", cfg.Storage.BaseDir)
	assert.True(t, cfg.Storage.PartitionByDay)

	// Untouched sections keep their defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, "BTC-BRL", cfg.Fetch.Symbol)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FETCH_SYMBOL", "SOL-BRL")
	t.Setenv("FETCH_EXCHANGES", "Binance, OKX")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_PARTITION_BY_DAY", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "SOL-BRL", cfg.Fetch.Symbol)
	assert.Equal(t, []string{"binance", "okx"}, cfg.Fetch.Exchanges)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Storage.PartitionByDay)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Fetch.Symbol = "BTCBRL"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Fetch.Lookback = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Logging.Output = "syslog"
	assert.Error(t, cfg.Validate())
}
