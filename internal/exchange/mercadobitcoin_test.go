package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMercadoBitcoinGetCandles(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `{
		"t":[1625097600,1625101200],
		"o":["35000","35200"],
		"h":["35500","35600"],
		"l":["34800","35100"],
		"c":["35200","35400"],
		"v":["12.5","8.0"]
	}`)

	m := NewMercadoBitcoinWithLogger(testLogger())
	m.baseURL = srv.URL

	candles, err := m.GetCandles(context.Background(), "BTC-BRL", "1h", testStart, testEnd)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	// Second-precision epochs, not milliseconds.
	assert.Equal(t, time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC), candles[0].Timestamp)
	assert.Equal(t, time.Date(2021, 7, 1, 1, 0, 0, 0, time.UTC), candles[1].Timestamp)
	assert.Equal(t, 35200.0, candles[0].Close)
	assert.Equal(t, 8.0, candles[1].Volume)

	// No separate quote volume on the wire: base volume is reused.
	require.NotNil(t, candles[0].QuoteVolume)
	assert.Equal(t, candles[0].Volume, *candles[0].QuoteVolume)

	assert.Equal(t, "/candles", rec.path)
	assert.Equal(t, "BTC-BRL", rec.query.Get("symbol"), "symbol passes through verbatim")
	assert.Equal(t, "1h", rec.query.Get("resolution"))
	assert.Equal(t, "1625097600", rec.query.Get("from"))
	assert.Equal(t, "1625184000", rec.query.Get("to"))
}

func TestMercadoBitcoinShortColumn(t *testing.T) {
	srv := newJSONServer(t, nil, `{
		"t":[1625097600,1625101200],
		"o":["35000","35200"],
		"h":["35500","35600"],
		"l":["34800","35100"],
		"c":["35200"],
		"v":["12.5","8.0"]
	}`)

	m := NewMercadoBitcoinWithLogger(testLogger())
	m.baseURL = srv.URL

	_, err := m.GetCandles(context.Background(), "BTC-BRL", "1h", testStart, testEnd)
	require.Error(t, err)

	var mErr *MercadoBitcoinError
	assert.ErrorAs(t, err, &mErr)
}

func TestMercadoBitcoinGetSupportedPairs(t *testing.T) {
	// The catalog filter is the instrument type, not the quote currency.
	srv := newJSONServer(t, nil, `{
		"symbol":["BTC-BRL","ETH-BRL","PETR4-BRL"],
		"type":["CRYPTO","CRYPTO","STOCK"]
	}`)

	m := NewMercadoBitcoinWithLogger(testLogger())
	m.baseURL = srv.URL

	pairs, err := m.GetSupportedPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-BRL", "ETH-BRL"}, pairs)
}

func TestMercadoBitcoinPassesUnknownTimeframeThrough(t *testing.T) {
	var rec capture
	srv := newJSONServer(t, &rec, `{"t":[],"o":[],"h":[],"l":[],"c":[],"v":[]}`)

	m := NewMercadoBitcoinWithLogger(testLogger())
	m.baseURL = srv.URL

	candles, err := m.GetCandles(context.Background(), "BTC-BRL", "2w", testStart, testEnd)
	require.NoError(t, err)
	assert.Empty(t, candles)
	assert.Equal(t, int64(1), rec.hits.Load(), "request goes out despite the unknown timeframe")
}
