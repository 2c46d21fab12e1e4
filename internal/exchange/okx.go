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
	okxName    = "okx"
	okxBaseURL = "https://www.okx.com"
)

// OKXError wraps any failure talking to the OKX API.
type OKXError struct {
	Op  string
	Err error
}

func (e *OKXError) Error() string {
	return okxName + ": " + e.Op + ": " + e.Err.Error()
}

func (e *OKXError) Unwrap() error { return e.Err }

// OKX implements the Exchange contract against the OKX v5 API. The
// canonical symbol form matches OKX's native instrument IDs, so symbols
// pass through unchanged. The history endpoint takes the time range as
// after=end and before=start, reversed relative to the other exchanges,
// following OKX's backwards-pagination convention.
type OKX struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	timeframes *timeframeTable
}

// NewOKX creates a new OKX adapter.
func NewOKX() *OKX {
	return NewOKXWithLogger(slog.Default())
}

// NewOKXWithLogger creates a new OKX adapter with a custom logger.
func NewOKXWithLogger(logger *slog.Logger) *OKX {
	return &OKX{
		httpClient: newHTTPClient(),
		baseURL:    okxBaseURL,
		logger:     logger,
		timeframes: newTimeframeTable(
			[2]string{"1m", "1m"},
			[2]string{"5m", "5m"},
			[2]string{"15m", "15m"},
			[2]string{"30m", "30m"},
			[2]string{"1h", "1H"},
			[2]string{"4h", "4H"},
			[2]string{"1d", "1D"},
			[2]string{"1w", "1W"},
		),
	}
}

// Name implements the Exchange interface.
func (o *OKX) Name() string { return okxName }

// GetCandles fetches history candles from OKX. Rows are positional string
// arrays with the quote volume at index 6.
func (o *OKX) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Candle, error) {
	bar, ok := o.timeframes.Native(timeframe)
	if !ok {
		return nil, &OKXError{Op: "get candles", Err: fmt.Errorf("%w: %s", ErrUnsupportedTimeframe, timeframe)}
	}

	params := url.Values{}
	params.Set("instId", symbol)
	params.Set("bar", bar)
	params.Set("after", strconv.FormatInt(end.UnixMilli(), 10))
	params.Set("before", strconv.FormatInt(start.UnixMilli(), 10))

	o.logger.Debug("fetching candles",
		"exchange", okxName,
		"symbol", symbol,
		"timeframe", timeframe,
		"start", start,
		"end", end)

	var resp struct {
		Data [][]any `json:"data"`
	}
	if err := getJSON(ctx, o.httpClient, o.baseURL+"/api/v5/market/history-candles", params, &resp); err != nil {
		return nil, &OKXError{Op: "get candles", Err: err}
	}

	candles := make([]models.Candle, 0, len(resp.Data))
	for _, row := range resp.Data {
		c, err := parsePositionalRow(row, 5, 6, symbol, okxName, timeframe)
		if err != nil {
			return nil, &OKXError{Op: "get candles", Err: err}
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// GetSupportedPairs returns all BRL-quoted spot instruments.
func (o *OKX) GetSupportedPairs(ctx context.Context) ([]string, error) {
	params := url.Values{}
	params.Set("instType", "SPOT")

	var resp struct {
		Data []struct {
			BaseCcy  string `json:"baseCcy"`
			QuoteCcy string `json:"quoteCcy"`
		} `json:"data"`
	}
	if err := getJSON(ctx, o.httpClient, o.baseURL+"/api/v5/public/instruments", params, &resp); err != nil {
		return nil, &OKXError{Op: "get supported pairs", Err: err}
	}

	var pairs []string
	for _, inst := range resp.Data {
		if inst.QuoteCcy == "BRL" {
			pairs = append(pairs, inst.BaseCcy+"-"+inst.QuoteCcy)
		}
	}
	sort.Strings(pairs)
	return pairs, nil
}

// GetSupportedTimeframes implements the Exchange interface.
func (o *OKX) GetSupportedTimeframes() []string {
	return o.timeframes.Keys()
}

// ValidateSymbol implements the Exchange interface.
func (o *OKX) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return symbolSupported(ctx, o, symbol)
}

// ValidateTimeframe implements the Exchange interface.
func (o *OKX) ValidateTimeframe(timeframe string) bool {
	return o.timeframes.Contains(timeframe)
}

var _ Exchange = (*OKX)(nil)
