package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsFloat(t *testing.T) {
	f, err := asFloat(12.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, f)

	f, err = asFloat("35000.0")
	require.NoError(t, err)
	assert.Equal(t, 35000.0, f)

	_, err = asFloat("not a number")
	assert.Error(t, err)

	_, err = asFloat(nil)
	assert.Error(t, err)

	_, err = asFloat(true)
	assert.Error(t, err)
}

func TestAsInt64(t *testing.T) {
	n, err := asInt64(float64(1625097600000))
	require.NoError(t, err)
	assert.Equal(t, int64(1625097600000), n)

	n, err = asInt64("1625097600000")
	require.NoError(t, err)
	assert.Equal(t, int64(1625097600000), n)

	_, err = asInt64("12.5")
	assert.Error(t, err)
}

func TestParsePositionalRow(t *testing.T) {
	row := []any{
		float64(1625097600000), "35000", "35500", "34800", "35200",
		"12.5", "440000",
	}

	c, err := parsePositionalRow(row, 5, 6, "BTC-BRL", "okx", "1h")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC), c.Timestamp)
	assert.Equal(t, 35000.0, c.Open)
	assert.Equal(t, 35500.0, c.High)
	assert.Equal(t, 34800.0, c.Low)
	assert.Equal(t, 35200.0, c.Close)
	assert.Equal(t, 12.5, c.Volume)
	require.NotNil(t, c.QuoteVolume)
	assert.Equal(t, 440000.0, *c.QuoteVolume)
	assert.Equal(t, "okx", c.Exchange)
}

func TestParsePositionalRowTooShort(t *testing.T) {
	_, err := parsePositionalRow([]any{float64(1625097600000), "1", "2"}, 5, 6, "BTC-BRL", "okx", "1h")
	assert.Error(t, err)
}

func TestRowEpochMillisStringEpoch(t *testing.T) {
	ts, err := rowEpochMillis([]any{"1625097600000"}, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC), ts)
	assert.Equal(t, time.UTC, ts.Location())
}
