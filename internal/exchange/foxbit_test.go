package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoxbitGetCandles(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `[
		["1625097600000", "35000", "35500", "34800", "35200",
		 "1625101199999", "12.5", "440000"]
	]`)

	f := NewFoxbitWithLogger(testLogger())
	f.baseURL = srv.URL

	candles, err := f.GetCandles(context.Background(), "BTC-BRL", "1h", testStart, testEnd)
	require.NoError(t, err)
	require.Len(t, candles, 1)

	c := candles[0]
	assert.Equal(t, time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC), c.Timestamp)
	assert.Equal(t, 12.5, c.Volume)
	require.NotNil(t, c.QuoteVolume)
	assert.Equal(t, 440000.0, *c.QuoteVolume)

	// The symbol is lowercased into the URL path, not a query parameter.
	assert.Equal(t, "/rest/v3/markets/btcbrl/candlesticks", rec.path)
	assert.Equal(t, "1h", rec.query.Get("interval"))
	assert.Equal(t, "500", rec.query.Get("limit"))
	assert.Equal(t, "1625097600000", rec.query.Get("start_time"))
	assert.Equal(t, "1625184000000", rec.query.Get("end_time"))
}

func TestFoxbitPassesUnknownTimeframeThrough(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `[]`)

	f := NewFoxbitWithLogger(testLogger())
	f.baseURL = srv.URL

	candles, err := f.GetCandles(context.Background(), "BTC-BRL", "2w", testStart, testEnd)
	require.NoError(t, err)
	assert.Empty(t, candles)
	assert.Equal(t, int64(1), rec.hits.Load(), "request goes out despite the unknown timeframe")
}

func TestFoxbitGetSupportedPairs(t *testing.T) {
	// The catalog's symbols are returned untouched, whatever their form.
	srv := newJSONServer(t, nil, `{"data":[
		{"symbol":"btcbrl"},
		{"symbol":"ethbrl"},
		{"symbol":"btcusdt"}
	]}`)

	f := NewFoxbitWithLogger(testLogger())
	f.baseURL = srv.URL

	pairs, err := f.GetSupportedPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"btcbrl", "btcusdt", "ethbrl"}, pairs)
}

func TestFoxbitSymbolTranslation(t *testing.T) {
	assert.Equal(t, "btcbrl", foxbitSymbol("BTC-BRL"))
}
