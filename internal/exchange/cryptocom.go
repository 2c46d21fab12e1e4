package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quantbr/crypto-candles/internal/models"
)

const (
	cryptoComName    = "crypto_com"
	cryptoComBaseURL = "https://api.crypto.com/v2"
)

// CryptoComError wraps any failure talking to the Crypto.com API.
type CryptoComError struct {
	Op  string
	Err error
}

func (e *CryptoComError) Error() string {
	return cryptoComName + ": " + e.Op + ": " + e.Err.Error()
}

func (e *CryptoComError) Unwrap() error { return e.Err }

// CryptoCom implements the Exchange contract against the Crypto.com v2 API.
// Candlestick rows are named-field objects. The exchange reports no quote
// volume, so the adapter derives a proxy as volume * close.
type CryptoCom struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	timeframes *timeframeTable
}

// NewCryptoCom creates a new Crypto.com adapter.
func NewCryptoCom() *CryptoCom {
	return NewCryptoComWithLogger(slog.Default())
}

// NewCryptoComWithLogger creates a new Crypto.com adapter with a custom logger.
func NewCryptoComWithLogger(logger *slog.Logger) *CryptoCom {
	return &CryptoCom{
		httpClient: newHTTPClient(),
		baseURL:    cryptoComBaseURL,
		logger:     logger,
		timeframes: newTimeframeTable(
			[2]string{"1m", "1m"},
			[2]string{"5m", "5m"},
			[2]string{"15m", "15m"},
			[2]string{"30m", "30m"},
			[2]string{"1h", "1h"},
			[2]string{"4h", "4h"},
			[2]string{"1d", "1d"},
			[2]string{"1w", "1w"},
			[2]string{"1M", "1M"},
		),
	}
}

// Name implements the Exchange interface.
func (c *CryptoCom) Name() string { return cryptoComName }

// GetCandles fetches candlesticks from Crypto.com.
func (c *CryptoCom) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Candle, error) {
	tf, ok := c.timeframes.Native(timeframe)
	if !ok {
		return nil, &CryptoComError{Op: "get candles", Err: fmt.Errorf("%w: %s", ErrUnsupportedTimeframe, timeframe)}
	}

	params := url.Values{}
	params.Set("instrument_name", cryptoComSymbol(symbol))
	params.Set("timeframe", tf)
	params.Set("start_ts", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("end_ts", strconv.FormatInt(end.UnixMilli(), 10))

	c.logger.Debug("fetching candles",
		"exchange", cryptoComName,
		"symbol", symbol,
		"timeframe", timeframe,
		"start", start,
		"end", end)

	var resp struct {
		Result struct {
			Data []struct {
				T int64 `json:"t"`
				O any   `json:"o"`
				H any   `json:"h"`
				L any   `json:"l"`
				C any   `json:"c"`
				V any   `json:"v"`
			} `json:"data"`
		} `json:"result"`
	}
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/public/get-candlestick", params, &resp); err != nil {
		return nil, &CryptoComError{Op: "get candles", Err: err}
	}

	candles := make([]models.Candle, 0, len(resp.Result.Data))
	for _, row := range resp.Result.Data {
		open, err := asFloat(row.O)
		if err != nil {
			return nil, &CryptoComError{Op: "get candles", Err: err}
		}
		high, err := asFloat(row.H)
		if err != nil {
			return nil, &CryptoComError{Op: "get candles", Err: err}
		}
		low, err := asFloat(row.L)
		if err != nil {
			return nil, &CryptoComError{Op: "get candles", Err: err}
		}
		cls, err := asFloat(row.C)
		if err != nil {
			return nil, &CryptoComError{Op: "get candles", Err: err}
		}
		vol, err := asFloat(row.V)
		if err != nil {
			return nil, &CryptoComError{Op: "get candles", Err: err}
		}
		candles = append(candles, models.Candle{
			Timestamp:   time.UnixMilli(row.T).UTC(),
			Open:        open,
			High:        high,
			Low:         low,
			Close:       cls,
			Volume:      vol,
			QuoteVolume: models.Float64Ptr(vol * cls),
			Symbol:      symbol,
			Exchange:    cryptoComName,
			Timeframe:   timeframe,
		})
	}
	return candles, nil
}

// GetSupportedPairs returns all BRL-quoted instruments, derived from the
// ticker catalog by instrument-name suffix.
func (c *CryptoCom) GetSupportedPairs(ctx context.Context) ([]string, error) {
	var resp struct {
		Result struct {
			Data []struct {
				I string `json:"i"`
			} `json:"data"`
		} `json:"result"`
	}
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/public/get-ticker", nil, &resp); err != nil {
		return nil, &CryptoComError{Op: "get supported pairs", Err: err}
	}

	var pairs []string
	for _, t := range resp.Result.Data {
		if strings.HasSuffix(t.I, "_BRL") {
			base := strings.TrimSuffix(t.I, "_BRL")
			pairs = append(pairs, base+"-BRL")
		}
	}
	sort.Strings(pairs)
	return pairs, nil
}

// GetSupportedTimeframes implements the Exchange interface.
func (c *CryptoCom) GetSupportedTimeframes() []string {
	return c.timeframes.Keys()
}

// ValidateSymbol implements the Exchange interface.
func (c *CryptoCom) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return symbolSupported(ctx, c, symbol)
}

// ValidateTimeframe implements the Exchange interface.
func (c *CryptoCom) ValidateTimeframe(timeframe string) bool {
	return c.timeframes.Contains(timeframe)
}

// cryptoComSymbol converts the canonical BTC-BRL form to BTC_BRL.
func cryptoComSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "-", "_")
}

var _ Exchange = (*CryptoCom)(nil)
