// Package exchange defines the adapter contract for fetching OHLCV candle
// data from cryptocurrency exchanges, together with the nine concrete
// adapters that satisfy it.
//
// Every adapter translates the canonical symbol (BASE-QUOTE) and timeframe
// vocabulary into its exchange's native tokens, issues a single blocking GET
// per operation, and reduces the exchange's response shape to the canonical
// models.Candle record. Adapters hold no state beyond their fixed timeframe
// table and are safe to construct freely and discard.
package exchange

import (
	"context"
	"time"

	"github.com/quantbr/crypto-candles/internal/models"
)

// Exchange is the contract every exchange adapter satisfies.
//
// Timeframe validation semantics intentionally differ between adapters:
// Bitget, Bybit, Crypto.com, MEXC, Novadax and OKX reject an unmapped
// canonical timeframe before any network call, while Binance, Foxbit and
// Mercado Bitcoin pass the string through and let the remote API reject it.
// This mirrors the per-exchange behavior of the upstream APIs and is a known
// inconsistency; callers wanting uniform behavior should check
// ValidateTimeframe themselves first.
type Exchange interface {
	// Name returns the fixed lowercase identifier stamped on every candle
	// this adapter produces (e.g. "binance", "mercado_bitcoin").
	Name() string

	// GetCandles fetches all candles for the symbol, timeframe and date
	// range, translated into canonical records. Candles are returned in
	// whatever order the exchange returns them; no re-sorting is applied,
	// so callers relying on chronological order must sort explicitly.
	// A single response page is fetched: when the range exceeds the
	// exchange's page size the result is silently partial.
	GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Candle, error)

	// GetSupportedPairs queries the exchange's instrument catalog and
	// returns the trading pairs relevant to this deployment in canonical
	// BASE-QUOTE form, lexicographically sorted.
	GetSupportedPairs(ctx context.Context) ([]string, error)

	// GetSupportedTimeframes returns the canonical timeframe keys this
	// adapter supports, in the fixed declaration order of its table.
	GetSupportedTimeframes() []string

	// ValidateSymbol reports whether symbol appears in GetSupportedPairs.
	// This re-issues the catalog request on every invocation, so it is
	// expensive; avoid it in hot paths.
	ValidateSymbol(ctx context.Context, symbol string) (bool, error)

	// ValidateTimeframe reports whether timeframe appears in
	// GetSupportedTimeframes. Pure local lookup, cheap.
	ValidateTimeframe(timeframe string) bool
}

// symbolSupported implements the default ValidateSymbol semantics shared by
// all adapters: membership in the live pair catalog.
func symbolSupported(ctx context.Context, ex Exchange, symbol string) (bool, error) {
	pairs, err := ex.GetSupportedPairs(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range pairs {
		if p == symbol {
			return true, nil
		}
	}
	return false, nil
}

// timeframeTable is the fixed canonical -> native timeframe mapping owned by
// each adapter. Declaration order is preserved for GetSupportedTimeframes.
type timeframeTable struct {
	keys   []string
	native map[string]string
}

func newTimeframeTable(pairs ...[2]string) *timeframeTable {
	t := &timeframeTable{native: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		t.keys = append(t.keys, p[0])
		t.native[p[0]] = p[1]
	}
	return t
}

// Keys returns the canonical timeframe keys in declaration order.
func (t *timeframeTable) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Native returns the exchange-native token for a canonical key.
func (t *timeframeTable) Native(key string) (string, bool) {
	v, ok := t.native[key]
	return v, ok
}

// Contains reports whether the canonical key is mapped.
func (t *timeframeTable) Contains(key string) bool {
	_, ok := t.native[key]
	return ok
}
