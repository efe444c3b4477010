// Package duckdb implements StormHaven's storage layer on an embedded DuckDB
// database: schema management, filtered searches, the analytics view catalog,
// and the bulk/streaming load paths.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jonboulle/clockwork"

	"github.com/stormhaven/stormhaven/internal/observability"
)

// Store wraps the DuckDB connection pool. The injected clock drives the
// time-relative analytics queries so tests can freeze "now".
type Store struct {
	db      *sql.DB
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Open opens the database at path ("" means in-memory) and creates the
// schema and analytics views if they do not exist yet.
func Open(ctx context.Context, path string, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb at %q: %w", path, err)
	}
	db.SetMaxOpenConns(runtime.NumCPU())
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{db: db, clock: clock, logger: logger, metrics: metrics}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("duckdb store opened", "path", path)
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable. Used by /readyz.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// observe records query duration and outcome for one named operation.
func (s *Store) observe(op string, start time.Time, err error) {
	s.metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.QueryErrors.WithLabelValues(op).Inc()
		s.logger.Error("query failed", "operation", op, "error", err)
	}
}

// TableCounts returns row counts per base table, for import reporting.
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 5)
	for _, table := range []string{"property", "features", "disaster", "disaster_types", "located"} {
		var n int64
		// Table names come from the fixed list above, never from input.
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
