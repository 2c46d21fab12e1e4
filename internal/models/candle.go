// Package models provides the canonical data structures shared by all
// exchange adapters. The central type is Candle, the uniform OHLCV record
// every adapter produces regardless of the exchange's native wire format.
package models

import (
	"fmt"
	"time"
)

// Candle represents one OHLCV observation for one symbol, one exchange and
// one timeframe. Timestamp is the candle's opening instant.
//
// Candles are immutable value records: adapters create one per API response
// row and never mutate them afterwards. Symbol and Timeframe always
// round-trip unchanged from the request; Exchange is the fixed lowercase
// identifier of the adapter that produced the record.
type Candle struct {
	Timestamp   time.Time `json:"timestamp"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`
	QuoteVolume *float64  `json:"quote_volume"`
	Symbol      string    `json:"symbol"`
	Exchange    string    `json:"exchange"`
	Timeframe   string    `json:"timeframe"`
}

// ToMap converts the candle to a field name -> JSON-safe value mapping.
// The timestamp is rendered as an RFC 3339 string, numeric fields stay
// float64, and quote_volume is present-or-nil. This mapping is the surface
// consumed by the storage and export collaborators.
func (c *Candle) ToMap() map[string]any {
	m := map[string]any{
		"timestamp":    c.Timestamp.Format(time.RFC3339),
		"open":         c.Open,
		"high":         c.High,
		"low":          c.Low,
		"close":        c.Close,
		"volume":       c.Volume,
		"symbol":       c.Symbol,
		"exchange":     c.Exchange,
		"timeframe":    c.Timeframe,
		"quote_volume": nil,
	}
	if c.QuoteVolume != nil {
		m["quote_volume"] = *c.QuoteVolume
	}
	return m
}

// QuoteVolumeOrZero returns the quote volume, or 0 when the exchange did not
// report one.
func (c *Candle) QuoteVolumeOrZero() float64 {
	if c.QuoteVolume == nil {
		return 0
	}
	return *c.QuoteVolume
}

// String returns a human-readable representation of the candle.
func (c *Candle) String() string {
	return fmt.Sprintf("Candle{Exchange: %s, Symbol: %s, Timeframe: %s, Timestamp: %s, O: %g, H: %g, L: %g, C: %g, V: %g}",
		c.Exchange, c.Symbol, c.Timeframe, c.Timestamp.Format(time.RFC3339), c.Open, c.High, c.Low, c.Close, c.Volume)
}

// Float64Ptr returns a pointer to v. Adapters use it when populating the
// optional QuoteVolume field.
func Float64Ptr(v float64) *float64 {
	return &v
}
