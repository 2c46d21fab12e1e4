package exchange

import (
	"fmt"
	"log/slog"
)

// All returns one instance of every adapter, in a fixed order, sharing the
// given logger. Adapters are stateless, so callers may equally construct
// their own instances.
func All(logger *slog.Logger) []Exchange {
	return []Exchange{
		NewBinanceWithLogger(logger),
		NewBitgetWithLogger(logger),
		NewBybitWithLogger(logger),
		NewCryptoComWithLogger(logger),
		NewFoxbitWithLogger(logger),
		NewMercadoBitcoinWithLogger(logger),
		NewMEXCWithLogger(logger),
		NewNovadaxWithLogger(logger),
		NewOKXWithLogger(logger),
	}
}

// ByName returns the adapter with the given lowercase identifier.
func ByName(name string, logger *slog.Logger) (Exchange, error) {
	for _, ex := range All(logger) {
		if ex.Name() == name {
			return ex, nil
		}
	}
	return nil, fmt.Errorf("unknown exchange: %s", name)
}

// Names returns the identifiers of all adapters in registry order.
func Names() []string {
	exchanges := All(slog.Default())
	names := make([]string, len(exchanges))
	for i, ex := range exchanges {
		names[i] = ex.Name()
	}
	return names
}
