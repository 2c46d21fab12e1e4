package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNovadaxGetCandles(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `{"code":"A10000","data":[
		{"score":1625097600,"openPrice":"35000","highPrice":"35500",
		 "lowPrice":"34800","closePrice":"35200","amount":"12.5","vol":"440000"}
	]}`)

	n := NewNovadaxWithLogger(testLogger())
	n.baseURL = srv.URL

	candles, err := n.GetCandles(context.Background(), "BTC-BRL", "1h", testStart, testEnd)
	require.NoError(t, err)
	require.Len(t, candles, 1)

	c := candles[0]
	// score is a second-precision epoch.
	assert.Equal(t, time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC), c.Timestamp)
	assert.Equal(t, 35000.0, c.Open)
	// amount is the base volume, vol the quote volume.
	assert.Equal(t, 12.5, c.Volume)
	require.NotNil(t, c.QuoteVolume)
	assert.Equal(t, 440000.0, *c.QuoteVolume)

	assert.Equal(t, "/market/kline/history", rec.path)
	assert.Equal(t, "BTC_BRL", rec.query.Get("symbol"))
	assert.Equal(t, "ONE_HOU", rec.query.Get("unit"))
	assert.Equal(t, "1625097600", rec.query.Get("from"))
	assert.Equal(t, "1625184000", rec.query.Get("to"))
}

func TestNovadaxNativeUnits(t *testing.T) {
	n := NewNovadaxWithLogger(testLogger())

	for canonical, native := range map[string]string{
		"1m":  "ONE_MIN",
		"30m": "HALF_HOU",
		"1h":  "ONE_HOU",
		"1d":  "ONE_DAY",
		"1w":  "ONE_WEE",
	} {
		got, ok := n.timeframes.Native(canonical)
		require.True(t, ok, canonical)
		assert.Equal(t, native, got, canonical)
	}
}

func TestNovadaxRejectsUnknownTimeframeBeforeRequest(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `{"data":[]}`)

	n := NewNovadaxWithLogger(testLogger())
	n.baseURL = srv.URL

	_, err := n.GetCandles(context.Background(), "BTC-BRL", "1M", testStart, testEnd)
	require.ErrorIs(t, err, ErrUnsupportedTimeframe)
	assert.Equal(t, int64(0), rec.hits.Load())
}

func TestNovadaxGetSupportedPairs(t *testing.T) {
	// Every listed symbol is returned; there is no quote-currency filter.
	srv := newJSONServer(t, nil, `{"data":[
		{"symbol":"BTC_BRL"},
		{"symbol":"ETH_USDT"},
		{"symbol":"ADA_BRL"}
	]}`)

	n := NewNovadaxWithLogger(testLogger())
	n.baseURL = srv.URL

	pairs, err := n.GetSupportedPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ADA-BRL", "BTC-BRL", "ETH-USDT"}, pairs)
}
