// Command candles fetches OHLCV candles from the supported exchanges,
// normalizes them into one canonical record shape and optionally persists
// them as parquet partitions or a local CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/quantbr/crypto-candles/internal/config"
	"github.com/quantbr/crypto-candles/internal/exchange"
	"github.com/quantbr/crypto-candles/internal/logger"
	"github.com/quantbr/crypto-candles/internal/models"
	"github.com/quantbr/crypto-candles/internal/storage"
	"github.com/quantbr/crypto-candles/internal/timeframe"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("missing command")
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "version" {
		fmt.Printf("candles %s\n", version)
		return nil
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}

	logManager, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logManager.Close()

	log := logManager.Component("cli").With(slog.String("run_id", uuid.New().String()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "fetch":
		return runFetch(ctx, args, cfg, log)
	case "pairs":
		return runPairs(ctx, args, log)
	case "timeframes":
		return runTimeframes(args, log)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: candles <command> [flags]

commands:
  fetch       fetch candles from one or more exchanges
  pairs       list supported trading pairs per exchange
  timeframes  list supported timeframes per exchange
  version     print the version`)
}

func runFetch(ctx context.Context, args []string, cfg *config.Config, log *slog.Logger) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	symbol := fs.String("symbol", cfg.Fetch.Symbol, "trading pair in BASE-QUOTE form")
	tf := fs.String("timeframe", cfg.Fetch.Timeframe, "candle timeframe (1m, 5m, 1h, 1d, ...)")
	hours := fs.Int("hours", int(cfg.Fetch.Lookback.Hours()), "how many hours back to fetch")
	exchangesFlag := fs.String("exchanges", strings.Join(cfg.Fetch.Exchanges, ","), "comma-separated exchange names (empty means all)")
	csvPath := fs.String("csv", "", "write the combined result to this CSV file")
	storeDir := fs.String("store", "", "persist parquet partitions under this directory (empty disables)")
	partitionDay := fs.Bool("partition-day", cfg.Storage.PartitionByDay, "include a day segment in the partition key")
	overwrite := fs.Bool("overwrite", cfg.Storage.Overwrite, "overwrite existing parquet partitions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	targets, err := selectExchanges(*exchangesFlag, log)
	if err != nil {
		return err
	}

	if !timeframe.Valid(*tf) {
		log.Warn("timeframe outside the canonical vocabulary; exchanges without local validation may still accept it",
			"timeframe", *tf)
	}

	end := time.Now().UTC()
	start := end.Add(-time.Duration(*hours) * time.Hour)

	log.Info("starting fetch",
		"symbol", *symbol,
		"timeframe", *tf,
		"start", start,
		"end", end,
		"exchanges", len(targets))

	batches := make(map[string][]models.Candle, len(targets))
	var combined []models.Candle
	for _, ex := range targets {
		candles, err := ex.GetCandles(ctx, *symbol, *tf, start, end)
		if err != nil {
			log.Error("fetch failed", "exchange", ex.Name(), "error", err)
			continue
		}
		log.Info("fetched candles", "exchange", ex.Name(), "count", len(candles))
		batches[ex.Name()] = candles
		combined = append(combined, candles...)
	}

	if len(combined) == 0 {
		return fmt.Errorf("no candles fetched for %s %s", *symbol, *tf)
	}

	sort.Slice(combined, func(i, j int) bool {
		if !combined[i].Timestamp.Equal(combined[j].Timestamp) {
			return combined[i].Timestamp.Before(combined[j].Timestamp)
		}
		return combined[i].Exchange < combined[j].Exchange
	})

	for _, c := range combined {
		fmt.Println(c.String())
	}

	if *csvPath == "" && *storeDir == "" {
		return nil
	}

	baseDir := cfg.Storage.BaseDir
	if *storeDir != "" {
		baseDir = *storeDir
	}
	ps, err := storage.NewParquetStore(baseDir, *partitionDay, log)
	if err != nil {
		return err
	}
	defer ps.Close()

	if *csvPath != "" {
		if err := ps.ExportCSV(ctx, combined, *csvPath); err != nil {
			return err
		}
		log.Info("wrote csv", "path", *csvPath, "count", len(combined))
	}

	if *storeDir != "" {
		results := ps.StoreMany(ctx, batches, *symbol, *overwrite)
		for name, ok := range results {
			log.Info("store result", "exchange", name, "stored", ok)
		}
	}
	return nil
}

func runPairs(ctx context.Context, args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("pairs", flag.ExitOnError)
	exchangesFlag := fs.String("exchanges", "", "comma-separated exchange names (empty means all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	targets, err := selectExchanges(*exchangesFlag, log)
	if err != nil {
		return err
	}

	for _, ex := range targets {
		pairs, err := ex.GetSupportedPairs(ctx)
		if err != nil {
			log.Error("pair discovery failed", "exchange", ex.Name(), "error", err)
			continue
		}
		fmt.Printf("%s (%d pairs): %s\n", ex.Name(), len(pairs), strings.Join(pairs, ", "))
	}
	return nil
}

func runTimeframes(args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("timeframes", flag.ExitOnError)
	exchangesFlag := fs.String("exchanges", "", "comma-separated exchange names (empty means all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	targets, err := selectExchanges(*exchangesFlag, log)
	if err != nil {
		return err
	}

	for _, ex := range targets {
		fmt.Printf("%s: %s\n", ex.Name(), strings.Join(ex.GetSupportedTimeframes(), ", "))
	}
	return nil
}

// selectExchanges resolves a comma-separated name list to adapter
// instances; an empty list means every registered adapter.
func selectExchanges(names string, log *slog.Logger) ([]exchange.Exchange, error) {
	names = strings.TrimSpace(names)
	if names == "" {
		return exchange.All(log), nil
	}

	var targets []exchange.Exchange
	for _, name := range strings.Split(names, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		ex, err := exchange.ByName(name, log)
		if err != nil {
			return nil, err
		}
		targets = append(targets, ex)
	}
	return targets, nil
}
