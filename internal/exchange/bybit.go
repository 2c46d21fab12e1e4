package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/quantbr/crypto-candles/internal/models"
)

const (
	bybitName    = "bybit"
	bybitBaseURL = "https://api.bybit.com/v5"
)

// BybitError wraps any failure talking to the Bybit API.
type BybitError struct {
	Op  string
	Err error
}

func (e *BybitError) Error() string {
	return bybitName + ": " + e.Op + ": " + e.Err.Error()
}

func (e *BybitError) Unwrap() error { return e.Err }

// Bybit implements the Exchange contract against the Bybit v5 spot API.
// Canonical timeframes remap substantially (1h -> "60", 1d -> "D") and are
// validated eagerly.
type Bybit struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	timeframes *timeframeTable
}

// NewBybit creates a new Bybit adapter.
func NewBybit() *Bybit {
	return NewBybitWithLogger(slog.Default())
}

// NewBybitWithLogger creates a new Bybit adapter with a custom logger.
func NewBybitWithLogger(logger *slog.Logger) *Bybit {
	return &Bybit{
		httpClient: newHTTPClient(),
		baseURL:    bybitBaseURL,
		logger:     logger,
		timeframes: newTimeframeTable(
			[2]string{"1m", "1"},
			[2]string{"3m", "3"},
			[2]string{"5m", "5"},
			[2]string{"15m", "15"},
			[2]string{"30m", "30"},
			[2]string{"1h", "60"},
			[2]string{"2h", "120"},
			[2]string{"4h", "240"},
			[2]string{"6h", "360"},
			[2]string{"12h", "720"},
			[2]string{"1d", "D"},
			[2]string{"1w", "W"},
			[2]string{"1M", "M"},
		),
	}
}

// Name implements the Exchange interface.
func (b *Bybit) Name() string { return bybitName }

// GetCandles fetches spot klines from Bybit. Rows arrive newest-first as
// string arrays under result.list; turnover (quote volume) is index 6.
func (b *Bybit) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Candle, error) {
	interval, ok := b.timeframes.Native(timeframe)
	if !ok {
		return nil, &BybitError{Op: "get candles", Err: fmt.Errorf("%w: %s", ErrUnsupportedTimeframe, timeframe)}
	}

	params := url.Values{}
	params.Set("category", "spot")
	params.Set("symbol", binanceSymbol(symbol))
	params.Set("interval", interval)
	params.Set("start", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("end", strconv.FormatInt(end.UnixMilli(), 10))

	b.logger.Debug("fetching candles",
		"exchange", bybitName,
		"symbol", symbol,
		"timeframe", timeframe,
		"start", start,
		"end", end)

	var resp struct {
		Result struct {
			List [][]any `json:"list"`
		} `json:"result"`
	}
	if err := getJSON(ctx, b.httpClient, b.baseURL+"/market/kline", params, &resp); err != nil {
		return nil, &BybitError{Op: "get candles", Err: err}
	}

	candles := make([]models.Candle, 0, len(resp.Result.List))
	for _, row := range resp.Result.List {
		c, err := parsePositionalRow(row, 5, 6, symbol, bybitName, timeframe)
		if err != nil {
			return nil, &BybitError{Op: "get candles", Err: err}
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// GetSupportedPairs returns all BRL-quoted spot instruments in canonical
// form.
func (b *Bybit) GetSupportedPairs(ctx context.Context) ([]string, error) {
	params := url.Values{}
	params.Set("category", "spot")

	var resp struct {
		Result struct {
			List []struct {
				BaseCoin  string `json:"baseCoin"`
				QuoteCoin string `json:"quoteCoin"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := getJSON(ctx, b.httpClient, b.baseURL+"/market/instruments-info", params, &resp); err != nil {
		return nil, &BybitError{Op: "get supported pairs", Err: err}
	}

	var pairs []string
	for _, s := range resp.Result.List {
		if s.QuoteCoin == "BRL" {
			pairs = append(pairs, s.BaseCoin+"-"+s.QuoteCoin)
		}
	}
	sort.Strings(pairs)
	return pairs, nil
}

// GetSupportedTimeframes implements the Exchange interface.
func (b *Bybit) GetSupportedTimeframes() []string {
	return b.timeframes.Keys()
}

// ValidateSymbol implements the Exchange interface.
func (b *Bybit) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return symbolSupported(ctx, b, symbol)
}

// ValidateTimeframe implements the Exchange interface.
func (b *Bybit) ValidateTimeframe(timeframe string) bool {
	return b.timeframes.Contains(timeframe)
}

var _ Exchange = (*Bybit)(nil)
