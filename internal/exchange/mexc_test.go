package exchange

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMEXCGetCandles(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `[
		[1625097600000, "35000", "35500", "34800", "35200", "12.5",
		 1625101199999, "440000"]
	]`)

	m := NewMEXCWithLogger(testLogger())
	m.baseURL = srv.URL

	candles, err := m.GetCandles(context.Background(), "BTC-BRL", "1h", testStart, testEnd)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	require.NotNil(t, candles[0].QuoteVolume)
	assert.Equal(t, 440000.0, *candles[0].QuoteVolume)

	assert.Equal(t, "/klines", rec.path)
	assert.Equal(t, "BTCBRL", rec.query.Get("symbol"))
	assert.Equal(t, "60m", rec.query.Get("interval"), "1h uses the 60m native key")
}

func TestMEXCRejectsUnknownTimeframeBeforeRequest(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `[]`)

	m := NewMEXCWithLogger(testLogger())
	m.baseURL = srv.URL

	_, err := m.GetCandles(context.Background(), "BTC-BRL", "2h", testStart, testEnd)
	require.ErrorIs(t, err, ErrUnsupportedTimeframe)

	var mErr *MEXCError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, int64(0), rec.hits.Load())
}

func TestMEXCGetSupportedPairs(t *testing.T) {
	srv := newJSONServer(t, nil, `{"symbols":[
		{"status":"1","baseAsset":"BTC","quoteAsset":"BRL"},
		{"status":"0","baseAsset":"ETH","quoteAsset":"BRL"},
		{"status":"1","baseAsset":"BTC","quoteAsset":"USDT"}
	]}`)

	m := NewMEXCWithLogger(testLogger())
	m.baseURL = srv.URL

	pairs, err := m.GetSupportedPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-BRL"}, pairs)
}
