package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbr/crypto-candles/internal/models"
)

func candleAt(ts time.Time) models.Candle {
	return models.Candle{
		Timestamp: ts,
		Open:      100,
		High:      110,
		Low:       90,
		Close:     105,
		Volume:    12.5,
		Symbol:    "BTC-BRL",
		Exchange:  "binance",
		Timeframe: "1h",
	}
}

func TestPartitionKeyMonthly(t *testing.T) {
	s := &ParquetStore{partitionByDay: false}

	candles := []models.Candle{
		candleAt(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)),
		candleAt(time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)),
	}

	key, err := s.PartitionKey(candles, "binance", "BTC-BRL")
	require.NoError(t, err)
	assert.Equal(t, "candles/year=2024/month=03/exchange=binance/symbol=BTC-BRL/data.parquet", key)
}

func TestPartitionKeyDaily(t *testing.T) {
	s := &ParquetStore{partitionByDay: true}

	candles := []models.Candle{
		candleAt(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)),
	}

	key, err := s.PartitionKey(candles, "okx", "ETH-BRL")
	require.NoError(t, err)
	assert.Equal(t, "candles/year=2024/month=12/day=01/exchange=okx/symbol=ETH-BRL/data.parquet", key)
}

func TestPartitionKeyUsesEarliestTimestamp(t *testing.T) {
	s := &ParquetStore{partitionByDay: false}

	// Out of order on purpose: the key must come from the earliest candle,
	// not the first one.
	candles := []models.Candle{
		candleAt(time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)),
		candleAt(time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)),
		candleAt(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)),
	}

	key, err := s.PartitionKey(candles, "bybit", "SOL-BRL")
	require.NoError(t, err)
	assert.Contains(t, key, "year=2024/month=06")
}

func TestPartitionKeyEmptyBatch(t *testing.T) {
	s := &ParquetStore{}

	_, err := s.PartitionKey(nil, "binance", "BTC-BRL")
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestStorageErrorFormatting(t *testing.T) {
	err := &StorageError{Op: "store", Path: "/tmp/x.parquet", Err: ErrEmptyBatch}
	assert.Contains(t, err.Error(), "store")
	assert.Contains(t, err.Error(), "/tmp/x.parquet")
	assert.ErrorIs(t, err, ErrEmptyBatch)
}
