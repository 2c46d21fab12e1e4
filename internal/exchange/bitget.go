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
	bitgetName    = "bitget"
	bitgetBaseURL = "https://api.bitget.com/api/v2"
)

// BitgetError wraps any failure talking to the Bitget API.
type BitgetError struct {
	Op  string
	Err error
}

func (e *BitgetError) Error() string {
	return bitgetName + ": " + e.Op + ": " + e.Err.Error()
}

func (e *BitgetError) Unwrap() error { return e.Err }

// Bitget implements the Exchange contract against the Bitget spot v2 API.
// Timeframes are validated eagerly against the table before any request.
type Bitget struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	timeframes *timeframeTable
}

// NewBitget creates a new Bitget adapter.
func NewBitget() *Bitget {
	return NewBitgetWithLogger(slog.Default())
}

// NewBitgetWithLogger creates a new Bitget adapter with a custom logger.
func NewBitgetWithLogger(logger *slog.Logger) *Bitget {
	return &Bitget{
		httpClient: newHTTPClient(),
		baseURL:    bitgetBaseURL,
		logger:     logger,
		timeframes: newTimeframeTable(
			[2]string{"1m", "1m"},
			[2]string{"5m", "5m"},
			[2]string{"15m", "15m"},
			[2]string{"30m", "30m"},
			[2]string{"1h", "1h"},
			[2]string{"4h", "4h"},
			[2]string{"1d", "1day"},
			[2]string{"1w", "1week"},
		),
	}
}

// Name implements the Exchange interface.
func (b *Bitget) Name() string { return bitgetName }

// GetCandles fetches candles from Bitget. Rows are positional string arrays
// wrapped in a data envelope; quote volume sits at index 6.
func (b *Bitget) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Candle, error) {
	granularity, ok := b.timeframes.Native(timeframe)
	if !ok {
		return nil, &BitgetError{Op: "get candles", Err: fmt.Errorf("%w: %s", ErrUnsupportedTimeframe, timeframe)}
	}

	params := url.Values{}
	params.Set("symbol", binanceSymbol(symbol))
	params.Set("granularity", granularity)
	params.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))

	b.logger.Debug("fetching candles",
		"exchange", bitgetName,
		"symbol", symbol,
		"timeframe", timeframe,
		"start", start,
		"end", end)

	var resp struct {
		Data [][]any `json:"data"`
	}
	if err := getJSON(ctx, b.httpClient, b.baseURL+"/spot/market/candles", params, &resp); err != nil {
		return nil, &BitgetError{Op: "get candles", Err: err}
	}

	candles := make([]models.Candle, 0, len(resp.Data))
	for _, row := range resp.Data {
		c, err := parsePositionalRow(row, 5, 6, symbol, bitgetName, timeframe)
		if err != nil {
			return nil, &BitgetError{Op: "get candles", Err: err}
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// GetSupportedPairs returns all BRL-quoted spot pairs from the Bitget
// symbol catalog in canonical form.
func (b *Bitget) GetSupportedPairs(ctx context.Context) ([]string, error) {
	var resp struct {
		Data []struct {
			BaseCoin  string `json:"baseCoin"`
			QuoteCoin string `json:"quoteCoin"`
		} `json:"data"`
	}
	if err := getJSON(ctx, b.httpClient, b.baseURL+"/spot/public/symbols", nil, &resp); err != nil {
		return nil, &BitgetError{Op: "get supported pairs", Err: err}
	}

	var pairs []string
	for _, s := range resp.Data {
		if s.QuoteCoin == "BRL" {
			pairs = append(pairs, s.BaseCoin+"-"+s.QuoteCoin)
		}
	}
	sort.Strings(pairs)
	return pairs, nil
}

// GetSupportedTimeframes implements the Exchange interface.
func (b *Bitget) GetSupportedTimeframes() []string {
	return b.timeframes.Keys()
}

// ValidateSymbol implements the Exchange interface.
func (b *Bitget) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return symbolSupported(ctx, b, symbol)
}

// ValidateTimeframe implements the Exchange interface.
func (b *Bitget) ValidateTimeframe(timeframe string) bool {
	return b.timeframes.Contains(timeframe)
}

var _ Exchange = (*Bitget)(nil)
