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
	binanceName    = "binance"
	binanceBaseURL = "https://api.binance.com"
)

// BinanceError wraps any failure talking to the Binance API: transport
// errors, non-2xx responses and payload shape errors all surface as this
// one kind. The original cause is available via Unwrap.
type BinanceError struct {
	Op  string
	Err error
}

func (e *BinanceError) Error() string {
	return binanceName + ": " + e.Op + ": " + e.Err.Error()
}

func (e *BinanceError) Unwrap() error { return e.Err }

// Binance implements the Exchange contract against the Binance spot REST
// API (/api/v3). Timeframes are passed through verbatim: an unknown
// canonical key is not rejected locally, the remote API's own error is
// surfaced instead.
type Binance struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	timeframes *timeframeTable
}

// NewBinance creates a new Binance adapter.
func NewBinance() *Binance {
	return NewBinanceWithLogger(slog.Default())
}

// NewBinanceWithLogger creates a new Binance adapter with a custom logger.
func NewBinanceWithLogger(logger *slog.Logger) *Binance {
	return &Binance{
		httpClient: newHTTPClient(),
		baseURL:    binanceBaseURL,
		logger:     logger,
		timeframes: newTimeframeTable(
			[2]string{"1m", "1m"},
			[2]string{"3m", "3m"},
			[2]string{"5m", "5m"},
			[2]string{"15m", "15m"},
			[2]string{"30m", "30m"},
			[2]string{"1h", "1h"},
			[2]string{"2h", "2h"},
			[2]string{"4h", "4h"},
			[2]string{"6h", "6h"},
			[2]string{"8h", "8h"},
			[2]string{"12h", "12h"},
			[2]string{"1d", "1d"},
			[2]string{"3d", "3d"},
			[2]string{"1w", "1w"},
			[2]string{"1M", "1M"},
		),
	}
}

// Name implements the Exchange interface.
func (b *Binance) Name() string { return binanceName }

// GetCandles fetches klines from Binance and converts them to canonical
// candles. Kline rows are positional arrays; prices arrive as strings and
// epochs as millisecond numbers.
func (b *Binance) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("symbol", binanceSymbol(symbol))
	params.Set("interval", timeframe)
	params.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))

	b.logger.Debug("fetching candles",
		"exchange", binanceName,
		"symbol", symbol,
		"timeframe", timeframe,
		"start", start,
		"end", end)

	var rows [][]any
	if err := getJSON(ctx, b.httpClient, b.baseURL+"/api/v3/klines", params, &rows); err != nil {
		return nil, &BinanceError{Op: "get candles", Err: err}
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		c, err := b.parseKline(row, symbol, timeframe)
		if err != nil {
			return nil, &BinanceError{Op: "get candles", Err: err}
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func (b *Binance) parseKline(row []any, symbol, timeframe string) (models.Candle, error) {
	ts, err := rowEpochMillis(row, 0)
	if err != nil {
		return models.Candle{}, err
	}
	var vals [5]float64
	for i := range vals {
		v, err := rowFloat(row, i+1)
		if err != nil {
			return models.Candle{}, err
		}
		vals[i] = v
	}
	quote, err := rowFloat(row, 7)
	if err != nil {
		return models.Candle{}, err
	}
	return models.Candle{
		Timestamp:   ts,
		Open:        vals[0],
		High:        vals[1],
		Low:         vals[2],
		Close:       vals[3],
		Volume:      vals[4],
		QuoteVolume: models.Float64Ptr(quote),
		Symbol:      symbol,
		Exchange:    binanceName,
		Timeframe:   timeframe,
	}, nil
}

// GetSupportedPairs returns all actively trading BRL-quoted pairs. Binance
// filters by symbol suffix rather than a quote-currency field.
func (b *Binance) GetSupportedPairs(ctx context.Context) ([]string, error) {
	var info struct {
		Symbols []struct {
			Symbol string `json:"symbol"`
			Status string `json:"status"`
		} `json:"symbols"`
	}
	if err := getJSON(ctx, b.httpClient, b.baseURL+"/api/v3/exchangeInfo", nil, &info); err != nil {
		return nil, &BinanceError{Op: "get supported pairs", Err: err}
	}

	var pairs []string
	for _, s := range info.Symbols {
		if strings.HasSuffix(s.Symbol, "BRL") && s.Status == "TRADING" {
			pairs = append(pairs, strings.ReplaceAll(s.Symbol, "BRL", "-BRL"))
		}
	}
	sort.Strings(pairs)
	return pairs, nil
}

// GetSupportedTimeframes implements the Exchange interface.
func (b *Binance) GetSupportedTimeframes() []string {
	return b.timeframes.Keys()
}

// ValidateSymbol implements the Exchange interface.
func (b *Binance) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return symbolSupported(ctx, b, symbol)
}

// ValidateTimeframe implements the Exchange interface.
func (b *Binance) ValidateTimeframe(timeframe string) bool {
	return b.timeframes.Contains(timeframe)
}

// binanceSymbol converts the canonical BTC-BRL form to BTCBRL.
func binanceSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
}

var _ Exchange = (*Binance)(nil)
