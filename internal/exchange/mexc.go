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
	mexcName    = "mexc"
	mexcBaseURL = "https://api.mexc.com/api/v3"
)

// MEXCError wraps any failure talking to the MEXC API.
type MEXCError struct {
	Op  string
	Err error
}

func (e *MEXCError) Error() string {
	return mexcName + ": " + e.Op + ": " + e.Err.Error()
}

func (e *MEXCError) Unwrap() error { return e.Err }

// MEXC implements the Exchange contract against the MEXC spot v3 API. The
// kline shape matches Binance's (quote volume at index 7), but the
// timeframe table remaps 1h to "60m" and is validated eagerly.
type MEXC struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	timeframes *timeframeTable
}

// NewMEXC creates a new MEXC adapter.
func NewMEXC() *MEXC {
	return NewMEXCWithLogger(slog.Default())
}

// NewMEXCWithLogger creates a new MEXC adapter with a custom logger.
func NewMEXCWithLogger(logger *slog.Logger) *MEXC {
	return &MEXC{
		httpClient: newHTTPClient(),
		baseURL:    mexcBaseURL,
		logger:     logger,
		timeframes: newTimeframeTable(
			[2]string{"1m", "1m"},
			[2]string{"5m", "5m"},
			[2]string{"15m", "15m"},
			[2]string{"30m", "30m"},
			[2]string{"1h", "60m"},
			[2]string{"4h", "4h"},
			[2]string{"1d", "1d"},
			[2]string{"1w", "1W"},
			[2]string{"1M", "1M"},
		),
	}
}

// Name implements the Exchange interface.
func (m *MEXC) Name() string { return mexcName }

// GetCandles fetches klines from MEXC.
func (m *MEXC) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Candle, error) {
	interval, ok := m.timeframes.Native(timeframe)
	if !ok {
		return nil, &MEXCError{Op: "get candles", Err: fmt.Errorf("%w: %s", ErrUnsupportedTimeframe, timeframe)}
	}

	params := url.Values{}
	params.Set("symbol", binanceSymbol(symbol))
	params.Set("interval", interval)
	params.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))

	m.logger.Debug("fetching candles",
		"exchange", mexcName,
		"symbol", symbol,
		"timeframe", timeframe,
		"start", start,
		"end", end)

	var rows [][]any
	if err := getJSON(ctx, m.httpClient, m.baseURL+"/klines", params, &rows); err != nil {
		return nil, &MEXCError{Op: "get candles", Err: err}
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		c, err := parsePositionalRow(row, 5, 7, symbol, mexcName, timeframe)
		if err != nil {
			return nil, &MEXCError{Op: "get candles", Err: err}
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// GetSupportedPairs returns all enabled BRL-quoted pairs from the MEXC
// exchange info catalog. MEXC encodes the enabled state as the string "1".
func (m *MEXC) GetSupportedPairs(ctx context.Context) ([]string, error) {
	var info struct {
		Symbols []struct {
			Status     string `json:"status"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
		} `json:"symbols"`
	}
	if err := getJSON(ctx, m.httpClient, m.baseURL+"/exchangeInfo", nil, &info); err != nil {
		return nil, &MEXCError{Op: "get supported pairs", Err: err}
	}

	var pairs []string
	for _, s := range info.Symbols {
		if s.Status == "1" && s.QuoteAsset == "BRL" {
			pairs = append(pairs, s.BaseAsset+"-"+s.QuoteAsset)
		}
	}
	sort.Strings(pairs)
	return pairs, nil
}

// GetSupportedTimeframes implements the Exchange interface.
func (m *MEXC) GetSupportedTimeframes() []string {
	return m.timeframes.Keys()
}

// ValidateSymbol implements the Exchange interface.
func (m *MEXC) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return symbolSupported(ctx, m, symbol)
}

// ValidateTimeframe implements the Exchange interface.
func (m *MEXC) ValidateTimeframe(timeframe string) bool {
	return m.timeframes.Contains(timeframe)
}

var _ Exchange = (*MEXC)(nil)
