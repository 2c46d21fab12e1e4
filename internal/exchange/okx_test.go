package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKXGetCandles(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `{"code":"0","data":[
		["1625097600000", "35000", "35500", "34800", "35200", "12.5", "440000", "1"]
	]}`)

	o := NewOKXWithLogger(testLogger())
	o.baseURL = srv.URL

	candles, err := o.GetCandles(context.Background(), "BTC-BRL", "1h", testStart, testEnd)
	require.NoError(t, err)
	require.Len(t, candles, 1)

	c := candles[0]
	assert.Equal(t, time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC), c.Timestamp)
	require.NotNil(t, c.QuoteVolume)
	assert.Equal(t, 440000.0, *c.QuoteVolume)

	assert.Equal(t, "/api/v5/market/history-candles", rec.path)
	assert.Equal(t, "BTC-BRL", rec.query.Get("instId"), "instrument id passes through verbatim")
	assert.Equal(t, "1H", rec.query.Get("bar"))

	// OKX pagination params are reversed relative to the other exchanges:
	// after carries the range end, before the range start.
	assert.Equal(t, "1625184000000", rec.query.Get("after"))
	assert.Equal(t, "1625097600000", rec.query.Get("before"))
}

func TestOKXNativeBars(t *testing.T) {
	o := NewOKXWithLogger(testLogger())

	for canonical, native := range map[string]string{
		"1m": "1m", "1h": "1H", "4h": "4H", "1d": "1D", "1w": "1W",
	} {
		got, ok := o.timeframes.Native(canonical)
		require.True(t, ok, canonical)
		assert.Equal(t, native, got, canonical)
	}
}

func TestOKXRejectsUnknownTimeframeBeforeRequest(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `{"data":[]}`)

	o := NewOKXWithLogger(testLogger())
	o.baseURL = srv.URL

	_, err := o.GetCandles(context.Background(), "BTC-BRL", "8h", testStart, testEnd)
	require.ErrorIs(t, err, ErrUnsupportedTimeframe)
	assert.Equal(t, int64(0), rec.hits.Load())
}

func TestOKXGetSupportedPairs(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `{"data":[
		{"baseCcy":"BTC","quoteCcy":"BRL"},
		{"baseCcy":"BTC","quoteCcy":"USDT"},
		{"baseCcy":"ETH","quoteCcy":"BRL"}
	]}`)

	o := NewOKXWithLogger(testLogger())
	o.baseURL = srv.URL

	pairs, err := o.GetSupportedPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-BRL", "ETH-BRL"}, pairs)
	assert.Equal(t, "SPOT", rec.query.Get("instType"))
}
