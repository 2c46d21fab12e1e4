// Package timeframe provides duration math for the canonical timeframe
// vocabulary shared by all exchange adapters.
package timeframe

import (
	"fmt"
	"time"
)

// durations maps every canonical timeframe key to its wall-clock length.
// 1M is approximated as 30 days.
var durations = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"8h":  8 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"3d":  72 * time.Hour,
	"1w":  7 * 24 * time.Hour,
	"1M":  30 * 24 * time.Hour,
}

// Duration converts a canonical timeframe key to a time.Duration.
func Duration(tf string) (time.Duration, error) {
	d, ok := durations[tf]
	if !ok {
		return 0, fmt.Errorf("unsupported timeframe: %s", tf)
	}
	return d, nil
}

// Valid reports whether tf is part of the canonical timeframe vocabulary.
func Valid(tf string) bool {
	_, ok := durations[tf]
	return ok
}

// StartFor calculates the start time covering the last n candles of the
// given timeframe ending at end.
func StartFor(end time.Time, tf string, n int) (time.Time, error) {
	d, err := Duration(tf)
	if err != nil {
		return time.Time{}, err
	}
	return end.Add(-time.Duration(n) * d), nil
}
