// Package storage persists canonical candle batches as columnar files. It
// is a collaborator of the exchange adapters, not part of the adapter
// contract: it consumes the canonical record surface and knows nothing
// about any exchange's wire format.
//
// Files are laid out hive-style, keyed by year, month, optionally day, the
// exchange name and the pair symbol, and an existing file is never
// overwritten unless explicitly requested.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/quantbr/crypto-candles/internal/models"
)

// StorageError wraps a failure in the storage layer with the operation and
// target path that failed.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return "storage: " + e.Op + ": " + e.Err.Error()
	}
	return "storage: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// ErrEmptyBatch is returned when a write is attempted with no candles; the
// partition key is derived from the batch's earliest timestamp, so an empty
// batch has no destination.
var ErrEmptyBatch = errors.New("empty candle batch")

// ParquetStore writes candle batches as parquet files under a base
// directory, using DuckDB as the columnar writer. A single in-memory DuckDB
// connection stages each batch and COPYs it out.
type ParquetStore struct {
	db             *sql.DB
	baseDir        string
	partitionByDay bool
	logger         *slog.Logger
}

// NewParquetStore creates a parquet store rooted at baseDir. When
// partitionByDay is set the partition key gains a day= segment.
func NewParquetStore(baseDir string, partitionByDay bool, logger *slog.Logger) (*ParquetStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("failed to open DuckDB: %w", err)}
	}

	// Single writer, as recommended for DuckDB.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &ParquetStore{
		db:             db,
		baseDir:        baseDir,
		partitionByDay: partitionByDay,
		logger:         logger,
	}, nil
}

// Close releases the underlying DuckDB connection.
func (s *ParquetStore) Close() error {
	return s.db.Close()
}

// PartitionKey builds the relative object key for a batch. The year, month
// and day segments come from the earliest timestamp in the batch.
func (s *ParquetStore) PartitionKey(candles []models.Candle, exchangeName, symbol string) (string, error) {
	if len(candles) == 0 {
		return "", ErrEmptyBatch
	}

	first := candles[0].Timestamp
	for _, c := range candles[1:] {
		if c.Timestamp.Before(first) {
			first = c.Timestamp
		}
	}

	if s.partitionByDay {
		return fmt.Sprintf("candles/year=%s/month=%s/day=%s/exchange=%s/symbol=%s/data.parquet",
			first.Format("2006"), first.Format("01"), first.Format("02"), exchangeName, symbol), nil
	}
	return fmt.Sprintf("candles/year=%s/month=%s/exchange=%s/symbol=%s/data.parquet",
		first.Format("2006"), first.Format("01"), exchangeName, symbol), nil
}

// StoreCandles writes one batch for one exchange and symbol. It reports
// false without error when the destination already exists and overwrite is
// not set.
func (s *ParquetStore) StoreCandles(ctx context.Context, candles []models.Candle, exchangeName, symbol string, overwrite bool) (bool, error) {
	key, err := s.PartitionKey(candles, exchangeName, symbol)
	if err != nil {
		return false, &StorageError{Op: "store", Err: err}
	}
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			s.logger.Info("file already exists, skipping", "path", path)
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, &StorageError{Op: "store", Path: path, Err: err}
	}

	if err := s.writeParquet(ctx, candles, path); err != nil {
		return false, &StorageError{Op: "store", Path: path, Err: err}
	}

	s.logger.Info("stored candle batch",
		"path", path,
		"exchange", exchangeName,
		"symbol", symbol,
		"count", len(candles))
	return true, nil
}

// StoreMany persists batches from several exchanges for one symbol,
// isolating per-exchange failures. The returned map records which exchanges
// were written; failures are logged and reported as false.
func (s *ParquetStore) StoreMany(ctx context.Context, batches map[string][]models.Candle, symbol string, overwrite bool) map[string]bool {
	results := make(map[string]bool, len(batches))
	for exchangeName, candles := range batches {
		ok, err := s.StoreCandles(ctx, candles, exchangeName, symbol, overwrite)
		if err != nil {
			s.logger.Error("failed to store batch",
				"exchange", exchangeName,
				"symbol", symbol,
				"error", err)
			results[exchangeName] = false
			continue
		}
		results[exchangeName] = ok
	}
	return results
}

// writeParquet stages the batch in a fresh table and COPYs it out as one
// parquet file.
func (s *ParquetStore) writeParquet(ctx context.Context, candles []models.Candle, path string) error {
	if err := s.stageBatch(ctx, candles); err != nil {
		return err
	}
	copyStmt := fmt.Sprintf("COPY staging TO '%s' (FORMAT PARQUET)", escapePath(path))
	if _, err := s.db.ExecContext(ctx, copyStmt); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

// ExportCSV writes a combined batch to a local CSV file with a header row.
// Unlike StoreCandles this always overwrites: it is the CLI's local backup.
func (s *ParquetStore) ExportCSV(ctx context.Context, candles []models.Candle, path string) error {
	if len(candles) == 0 {
		return &StorageError{Op: "export csv", Path: path, Err: ErrEmptyBatch}
	}
	if err := s.stageBatch(ctx, candles); err != nil {
		return &StorageError{Op: "export csv", Path: path, Err: err}
	}
	copyStmt := fmt.Sprintf("COPY staging TO '%s' (HEADER, DELIMITER ',')", escapePath(path))
	if _, err := s.db.ExecContext(ctx, copyStmt); err != nil {
		return &StorageError{Op: "export csv", Path: path, Err: err}
	}
	return nil
}

// stageBatch (re)creates the staging table and inserts the batch inside one
// transaction.
func (s *ParquetStore) stageBatch(ctx context.Context, candles []models.Candle) error {
	const schema = `
	CREATE OR REPLACE TABLE staging (
		timestamp TIMESTAMPTZ NOT NULL,
		open DOUBLE NOT NULL,
		high DOUBLE NOT NULL,
		low DOUBLE NOT NULL,
		close DOUBLE NOT NULL,
		volume DOUBLE NOT NULL,
		quote_volume DOUBLE,
		symbol VARCHAR NOT NULL,
		exchange VARCHAR NOT NULL,
		timeframe VARCHAR NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO staging VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		var quote any
		if c.QuoteVolume != nil {
			quote = *c.QuoteVolume
		}
		if _, err := stmt.ExecContext(ctx,
			c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume,
			quote, c.Symbol, c.Exchange, c.Timeframe); err != nil {
			return fmt.Errorf("failed to insert candle at %s: %w", c.Timestamp.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// escapePath quotes single quotes for embedding a filesystem path in a COPY
// statement.
func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
