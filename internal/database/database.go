package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"viralclip/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

const (
	DriverPgx = "pgx"
	DriverPQ  = "postgres"
)

func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func appendParam(dsn, kv string) string {
	if isURL(dsn) {
		if strings.Contains(dsn, "?") {
			return dsn + "&" + kv
		}
		return dsn + "?" + kv
	}
	return dsn + " " + kv
}

// NormalizeDSN disables SSL for local development when the DSN does not say
// otherwise. Outside development, pgx connections use the simple protocol so
// they work behind a transaction pooler such as pgbouncer; lib/pq uses
// unnamed statements and needs no change.
func NormalizeDSN(environment, dsn, driver string) string {
	if environment == "development" && !strings.Contains(dsn, "sslmode") {
		dsn = appendParam(dsn, "sslmode=disable")
	}
	if driver == DriverPgx && environment != "development" && !strings.Contains(dsn, "default_query_exec_mode") {
		dsn = appendParam(dsn, "default_query_exec_mode=simple_protocol")
	}
	return dsn
}

// OpenPool opens and pings a pgx pool for the repositories.
func OpenPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(NormalizeDSN(cfg.Environment, cfg.DBConnectionString, DriverPgx))
	if err != nil {
		return nil, fmt.Errorf("parse DB connection string: %w", err)
	}
	poolCfg.MaxConns = 25
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open DB pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// OpenSQL opens and pings a database/sql handle for pgmq and the dead-letter
// store. driver is DriverPgx or DriverPQ.
func OpenSQL(ctx context.Context, cfg *config.Config, driver string) (*sql.DB, error) {
	db, err := sql.Open(driver, NormalizeDSN(cfg.Environment, cfg.DBConnectionString, driver))
	if err != nil {
		return nil, fmt.Errorf("open DB connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}
