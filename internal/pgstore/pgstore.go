// Package pgstore runs finders against a PostgreSQL host database through
// a pgx connection pool.
//
// The host schema is the one the SQLite store creates: a pages table and
// one field_<name> table per field. Finders composed with the postgres
// dialect execute here unchanged.
package pgstore

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roach88/sqlfinder/internal/dialect"
	"github.com/roach88/sqlfinder/internal/ir"
	"github.com/roach88/sqlfinder/internal/querysql"
	"github.com/roach88/sqlfinder/internal/selector"
)

// Config holds pool configuration.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns conservative pool settings for dsn.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:             dsn,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
	}
}

// Store executes composed statements on PostgreSQL.
type Store struct {
	Pool     *pgxpool.Pool
	compiler *querysql.SQLCompiler
	logger   *slog.Logger
}

// poolConfig parses the DSN and applies the pool limits.
func poolConfig(cfg Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.HealthCheckPeriod = time.Minute
	return pc, nil
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		Pool:     pool,
		compiler: &querysql.SQLCompiler{Dialect: dialect.Postgres{}},
		logger:   logger,
	}, nil
}

// Close closes the pool.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// Query implements finder.Executor.
func (s *Store) Query(ctx context.Context, query string) ([]*ir.Row, error) {
	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()
	return collectRows(rows)
}

// ResolveIDs implements finder.Resolver.
func (s *Store) ResolveIDs(ctx context.Context, sel string) ([]int64, error) {
	query, err := selector.Parse(sel)
	if err != nil {
		return nil, err
	}
	sqlStr, params, err := s.compiler.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", sel, err)
	}
	if sqlStr, err = rebind(sqlStr); err != nil {
		return nil, err
	}
	s.logger.Debug("resolving selector", "selector", sel, "params", len(params))

	rows, err := s.Pool.Query(ctx, sqlStr, params...)
	if err != nil {
		return nil, fmt.Errorf("resolve selector %q: %w", sel, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("resolve selector %q: %w", sel, err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// rebind turns "?" placeholders into PostgreSQL's "$n".
func rebind(query string) (string, error) {
	out, err := squirrel.Dollar.ReplacePlaceholders(query)
	if err != nil {
		return "", fmt.Errorf("rebind placeholders: %w", err)
	}
	return out, nil
}

func collectRows(rows pgx.Rows) ([]*ir.Row, error) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	out := []*ir.Row{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		out = append(out, ir.NewRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// normalize maps pgx-specific values onto the row value types. NUMERIC
// values become int64 when integral, float64 otherwise.
func normalize(v any) any {
	n, ok := v.(pgtype.Numeric)
	if !ok {
		return v
	}
	if !n.Valid {
		return nil
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return nil
	}
	if f.Float64 == math.Trunc(f.Float64) && math.Abs(f.Float64) < 1<<53 {
		return int64(f.Float64)
	}
	return f.Float64
}
