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
	novadaxName    = "novadax"
	novadaxBaseURL = "https://api.novadax.com/v1"
)

// NovadaxError wraps any failure talking to the Novadax API.
type NovadaxError struct {
	Op  string
	Err error
}

func (e *NovadaxError) Error() string {
	return novadaxName + ": " + e.Op + ": " + e.Err.Error()
}

func (e *NovadaxError) Unwrap() error { return e.Err }

// Novadax implements the Exchange contract against the Novadax v1 API.
// Timeframe tokens remap heavily (1h -> ONE_HOU) and are validated eagerly.
// Epochs are seconds on both sides. Kline objects use named fields: score
// is the opening epoch, amount the base volume and vol the quote volume.
type Novadax struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	timeframes *timeframeTable
}

// NewNovadax creates a new Novadax adapter.
func NewNovadax() *Novadax {
	return NewNovadaxWithLogger(slog.Default())
}

// NewNovadaxWithLogger creates a new Novadax adapter with a custom logger.
func NewNovadaxWithLogger(logger *slog.Logger) *Novadax {
	return &Novadax{
		httpClient: newHTTPClient(),
		baseURL:    novadaxBaseURL,
		logger:     logger,
		timeframes: newTimeframeTable(
			[2]string{"1m", "ONE_MIN"},
			[2]string{"5m", "FIVE_MIN"},
			[2]string{"15m", "FIFTEEN_MIN"},
			[2]string{"30m", "HALF_HOU"},
			[2]string{"1h", "ONE_HOU"},
			[2]string{"1d", "ONE_DAY"},
			[2]string{"1w", "ONE_WEE"},
		),
	}
}

// Name implements the Exchange interface.
func (n *Novadax) Name() string { return novadaxName }

// GetCandles fetches kline history from Novadax.
func (n *Novadax) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Candle, error) {
	unit, ok := n.timeframes.Native(timeframe)
	if !ok {
		return nil, &NovadaxError{Op: "get candles", Err: fmt.Errorf("%w: %s", ErrUnsupportedTimeframe, timeframe)}
	}

	params := url.Values{}
	params.Set("symbol", novadaxSymbol(symbol))
	params.Set("from", strconv.FormatInt(start.Unix(), 10))
	params.Set("to", strconv.FormatInt(end.Unix(), 10))
	params.Set("unit", unit)

	n.logger.Debug("fetching candles",
		"exchange", novadaxName,
		"symbol", symbol,
		"timeframe", timeframe,
		"start", start,
		"end", end)

	var resp struct {
		Data []struct {
			Score      int64 `json:"score"`
			OpenPrice  any   `json:"openPrice"`
			HighPrice  any   `json:"highPrice"`
			LowPrice   any   `json:"lowPrice"`
			ClosePrice any   `json:"closePrice"`
			Amount     any   `json:"amount"`
			Vol        any   `json:"vol"`
		} `json:"data"`
	}
	if err := getJSON(ctx, n.httpClient, n.baseURL+"/market/kline/history", params, &resp); err != nil {
		return nil, &NovadaxError{Op: "get candles", Err: err}
	}

	candles := make([]models.Candle, 0, len(resp.Data))
	for _, row := range resp.Data {
		fields := []struct {
			name string
			v    any
		}{
			{"openPrice", row.OpenPrice},
			{"highPrice", row.HighPrice},
			{"lowPrice", row.LowPrice},
			{"closePrice", row.ClosePrice},
			{"amount", row.Amount},
			{"vol", row.Vol},
		}
		var vals [6]float64
		var err error
		for i, f := range fields {
			if vals[i], err = asFloat(f.v); err != nil {
				return nil, &NovadaxError{Op: "get candles", Err: fmt.Errorf("field %q: %w", f.name, err)}
			}
		}
		candles = append(candles, models.Candle{
			Timestamp:   time.Unix(row.Score, 0).UTC(),
			Open:        vals[0],
			High:        vals[1],
			Low:         vals[2],
			Close:       vals[3],
			Volume:      vals[4],
			QuoteVolume: models.Float64Ptr(vals[5]),
			Symbol:      symbol,
			Exchange:    novadaxName,
			Timeframe:   timeframe,
		})
	}
	return candles, nil
}

// GetSupportedPairs returns every symbol in the Novadax catalog in
// canonical form. No quote-currency filter is applied upstream.
func (n *Novadax) GetSupportedPairs(ctx context.Context) ([]string, error) {
	var resp struct {
		Data []struct {
			Symbol string `json:"symbol"`
		} `json:"data"`
	}
	if err := getJSON(ctx, n.httpClient, n.baseURL+"/common/symbols", nil, &resp); err != nil {
		return nil, &NovadaxError{Op: "get supported pairs", Err: err}
	}

	pairs := make([]string, 0, len(resp.Data))
	for _, s := range resp.Data {
		pairs = append(pairs, strings.ReplaceAll(s.Symbol, "_", "-"))
	}
	sort.Strings(pairs)
	return pairs, nil
}

// GetSupportedTimeframes implements the Exchange interface.
func (n *Novadax) GetSupportedTimeframes() []string {
	return n.timeframes.Keys()
}

// ValidateSymbol implements the Exchange interface.
func (n *Novadax) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return symbolSupported(ctx, n, symbol)
}

// ValidateTimeframe implements the Exchange interface.
func (n *Novadax) ValidateTimeframe(timeframe string) bool {
	return n.timeframes.Contains(timeframe)
}

// novadaxSymbol converts the canonical BTC-BRL form to BTC_BRL.
func novadaxSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "-", "_")
}

var _ Exchange = (*Novadax)(nil)
