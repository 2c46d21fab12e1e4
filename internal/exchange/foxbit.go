package exchange

import (
	"context"
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
	foxbitName    = "foxbit"
	foxbitBaseURL = "https://api.foxbit.com.br"

	// Foxbit caps a candlestick page; one page is all this adapter fetches.
	foxbitCandleLimit = 500
)

// FoxbitError wraps any failure talking to the Foxbit API.
type FoxbitError struct {
	Op  string
	Err error
}

func (e *FoxbitError) Error() string {
	return foxbitName + ": " + e.Op + ": " + e.Err.Error()
}

func (e *FoxbitError) Unwrap() error { return e.Err }

// Foxbit implements the Exchange contract against the Foxbit v3 REST API.
// Like Binance, timeframes are passed through verbatim with no local check.
// Candlestick rows carry the base volume at index 6 and quote volume at 7.
type Foxbit struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	timeframes *timeframeTable
}

// NewFoxbit creates a new Foxbit adapter.
func NewFoxbit() *Foxbit {
	return NewFoxbitWithLogger(slog.Default())
}

// NewFoxbitWithLogger creates a new Foxbit adapter with a custom logger.
func NewFoxbitWithLogger(logger *slog.Logger) *Foxbit {
	return &Foxbit{
		httpClient: newHTTPClient(),
		baseURL:    foxbitBaseURL,
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
		),
	}
}

// Name implements the Exchange interface.
func (f *Foxbit) Name() string { return foxbitName }

// GetCandles fetches candlesticks from Foxbit.
func (f *Foxbit) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("interval", timeframe)
	params.Set("start_time", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("end_time", strconv.FormatInt(end.UnixMilli(), 10))
	params.Set("limit", strconv.Itoa(foxbitCandleLimit))

	f.logger.Debug("fetching candles",
		"exchange", foxbitName,
		"symbol", symbol,
		"timeframe", timeframe,
		"start", start,
		"end", end)

	endpoint := f.baseURL + "/rest/v3/markets/" + foxbitSymbol(symbol) + "/candlesticks"

	var rows [][]any
	if err := getJSON(ctx, f.httpClient, endpoint, params, &rows); err != nil {
		return nil, &FoxbitError{Op: "get candles", Err: err}
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		c, err := parsePositionalRow(row, 6, 7, symbol, foxbitName, timeframe)
		if err != nil {
			return nil, &FoxbitError{Op: "get candles", Err: err}
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// GetSupportedPairs returns the Foxbit market catalog's own pre-formatted
// symbols untouched, sorted. No quote-currency filter is applied.
func (f *Foxbit) GetSupportedPairs(ctx context.Context) ([]string, error) {
	var resp struct {
		Data []struct {
			Symbol string `json:"symbol"`
		} `json:"data"`
	}
	if err := getJSON(ctx, f.httpClient, f.baseURL+"/rest/v3/markets", nil, &resp); err != nil {
		return nil, &FoxbitError{Op: "get supported pairs", Err: err}
	}

	pairs := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		pairs = append(pairs, m.Symbol)
	}
	sort.Strings(pairs)
	return pairs, nil
}

// GetSupportedTimeframes implements the Exchange interface.
func (f *Foxbit) GetSupportedTimeframes() []string {
	return f.timeframes.Keys()
}

// ValidateSymbol implements the Exchange interface.
func (f *Foxbit) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return symbolSupported(ctx, f, symbol)
}

// ValidateTimeframe implements the Exchange interface.
func (f *Foxbit) ValidateTimeframe(timeframe string) bool {
	return f.timeframes.Contains(timeframe)
}

// foxbitSymbol converts the canonical BTC-BRL form to btcbrl.
func foxbitSymbol(symbol string) string {
	return strings.ToLower(strings.ReplaceAll(symbol, "-", ""))
}

var _ Exchange = (*Foxbit)(nil)
