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
	mercadoBitcoinName    = "mercado_bitcoin"
	mercadoBitcoinBaseURL = "https://api.mercadobitcoin.net/api/v4"
)

// MercadoBitcoinError wraps any failure talking to the Mercado Bitcoin API.
type MercadoBitcoinError struct {
	Op  string
	Err error
}

func (e *MercadoBitcoinError) Error() string {
	return mercadoBitcoinName + ": " + e.Op + ": " + e.Err.Error()
}

func (e *MercadoBitcoinError) Unwrap() error { return e.Err }

// MercadoBitcoin implements the Exchange contract against the Mercado
// Bitcoin v4 API. Unlike the other exchanges its candle response is
// column-oriented: separate parallel arrays t/o/h/l/c/v indexed together.
// Epochs are seconds, symbols and timeframes pass through verbatim, and the
// exchange reports no separate quote volume (the base volume is reused).
type MercadoBitcoin struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	timeframes *timeframeTable
}

// NewMercadoBitcoin creates a new Mercado Bitcoin adapter.
func NewMercadoBitcoin() *MercadoBitcoin {
	return NewMercadoBitcoinWithLogger(slog.Default())
}

// NewMercadoBitcoinWithLogger creates a new Mercado Bitcoin adapter with a
// custom logger.
func NewMercadoBitcoinWithLogger(logger *slog.Logger) *MercadoBitcoin {
	return &MercadoBitcoin{
		httpClient: newHTTPClient(),
		baseURL:    mercadoBitcoinBaseURL,
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
func (m *MercadoBitcoin) Name() string { return mercadoBitcoinName }

// GetCandles fetches candles from Mercado Bitcoin and zips the parallel
// column arrays into canonical records.
func (m *MercadoBitcoin) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("from", strconv.FormatInt(start.Unix(), 10))
	params.Set("to", strconv.FormatInt(end.Unix(), 10))
	params.Set("resolution", timeframe)
	params.Set("symbol", symbol)

	m.logger.Debug("fetching candles",
		"exchange", mercadoBitcoinName,
		"symbol", symbol,
		"timeframe", timeframe,
		"start", start,
		"end", end)

	var resp struct {
		T []int64 `json:"t"`
		O []any   `json:"o"`
		H []any   `json:"h"`
		L []any   `json:"l"`
		C []any   `json:"c"`
		V []any   `json:"v"`
	}
	if err := getJSON(ctx, m.httpClient, m.baseURL+"/candles", params, &resp); err != nil {
		return nil, &MercadoBitcoinError{Op: "get candles", Err: err}
	}

	candles := make([]models.Candle, 0, len(resp.T))
	for i := range resp.T {
		c, err := m.parseColumn(resp.O, resp.H, resp.L, resp.C, resp.V, i)
		if err != nil {
			return nil, &MercadoBitcoinError{Op: "get candles", Err: err}
		}
		c.Timestamp = time.Unix(resp.T[i], 0).UTC()
		c.Symbol = symbol
		c.Exchange = mercadoBitcoinName
		c.Timeframe = timeframe
		candles = append(candles, c)
	}
	return candles, nil
}

func (m *MercadoBitcoin) parseColumn(o, h, l, c, v []any, i int) (models.Candle, error) {
	cols := [...][]any{o, h, l, c, v}
	names := [...]string{"o", "h", "l", "c", "v"}
	var vals [5]float64
	for j, col := range cols {
		if i >= len(col) {
			return models.Candle{}, fmt.Errorf("column %q shorter than timestamp column", names[j])
		}
		f, err := asFloat(col[i])
		if err != nil {
			return models.Candle{}, fmt.Errorf("column %q index %d: %w", names[j], i, err)
		}
		vals[j] = f
	}
	return models.Candle{
		Open:        vals[0],
		High:        vals[1],
		Low:         vals[2],
		Close:       vals[3],
		Volume:      vals[4],
		QuoteVolume: models.Float64Ptr(vals[4]),
	}, nil
}

// GetSupportedPairs returns symbols whose instrument type is CRYPTO. The
// catalog is column-oriented like the candle endpoint. Note the filter is
// the instrument-type field, not the quote currency; this mirrors the
// upstream behavior even though it can admit non-BRL pairs.
func (m *MercadoBitcoin) GetSupportedPairs(ctx context.Context) ([]string, error) {
	var resp struct {
		Symbol []string `json:"symbol"`
		Type   []string `json:"type"`
	}
	if err := getJSON(ctx, m.httpClient, m.baseURL+"/symbols", nil, &resp); err != nil {
		return nil, &MercadoBitcoinError{Op: "get supported pairs", Err: err}
	}

	var pairs []string
	for i, sym := range resp.Symbol {
		if i < len(resp.Type) && resp.Type[i] == "CRYPTO" {
			pairs = append(pairs, sym)
		}
	}
	sort.Strings(pairs)
	return pairs, nil
}

// GetSupportedTimeframes implements the Exchange interface.
func (m *MercadoBitcoin) GetSupportedTimeframes() []string {
	return m.timeframes.Keys()
}

// ValidateSymbol implements the Exchange interface.
func (m *MercadoBitcoin) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return symbolSupported(ctx, m, symbol)
}

// ValidateTimeframe implements the Exchange interface.
func (m *MercadoBitcoin) ValidateTimeframe(timeframe string) bool {
	return m.timeframes.Contains(timeframe)
}

var _ Exchange = (*MercadoBitcoin)(nil)
