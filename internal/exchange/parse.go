package exchange

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/quantbr/crypto-candles/internal/models"
)

// Exchange payloads mix JSON numbers and numeric strings, often within the
// same kline row. The coercion helpers below accept either form.

// asFloat coerces a JSON cell to float64.
func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return f, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected value type %T", v)
	}
}

// asInt64 coerces a JSON cell to int64, tolerating float and string epochs.
func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q: %w", x, err)
		}
		return n, nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q: %w", x, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected value type %T", v)
	}
}

// rowFloat extracts a float from a positional kline row.
func rowFloat(row []any, idx int) (float64, error) {
	if idx >= len(row) {
		return 0, fmt.Errorf("kline row too short: missing index %d", idx)
	}
	f, err := asFloat(row[idx])
	if err != nil {
		return 0, fmt.Errorf("kline row index %d: %w", idx, err)
	}
	return f, nil
}

// parsePositionalRow converts the common positional kline shape
// [openTime, open, high, low, close, ...] into a canonical candle. The base
// and quote volume positions vary per exchange and are passed explicitly.
func parsePositionalRow(row []any, volIdx, quoteIdx int, symbol, exchange, timeframe string) (models.Candle, error) {
	ts, err := rowEpochMillis(row, 0)
	if err != nil {
		return models.Candle{}, err
	}
	var ohlc [4]float64
	for i := range ohlc {
		v, err := rowFloat(row, i+1)
		if err != nil {
			return models.Candle{}, err
		}
		ohlc[i] = v
	}
	vol, err := rowFloat(row, volIdx)
	if err != nil {
		return models.Candle{}, err
	}
	quote, err := rowFloat(row, quoteIdx)
	if err != nil {
		return models.Candle{}, err
	}
	return models.Candle{
		Timestamp:   ts,
		Open:        ohlc[0],
		High:        ohlc[1],
		Low:         ohlc[2],
		Close:       ohlc[3],
		Volume:      vol,
		QuoteVolume: models.Float64Ptr(quote),
		Symbol:      symbol,
		Exchange:    exchange,
		Timeframe:   timeframe,
	}, nil
}

// rowEpochMillis extracts a millisecond epoch from a positional kline row
// and converts it to UTC calendar time.
func rowEpochMillis(row []any, idx int) (time.Time, error) {
	if idx >= len(row) {
		return time.Time{}, fmt.Errorf("kline row too short: missing index %d", idx)
	}
	ms, err := asInt64(row[idx])
	if err != nil {
		return time.Time{}, fmt.Errorf("kline row index %d: %w", idx, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
