package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"techcrew/internal/config"
	"techcrew/internal/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// Open connects to the configured database. Postgres connections are
// retried while the server comes up.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return openPostgres(ctx, cfg, log)
	case DriverSQLite, "":
		log.Info("DATABASE", fmt.Sprintf("Opening SQLite database %s", cfg.SQLitePath))
		return OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		err   error
	)
	for i := 0; i < connectAttempts; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, connectAttempts))
		sqldb, err = sql.Open("postgres", cfg.PostgresDSN)
		if err == nil {
			if err = sqldb.PingContext(ctx); err == nil {
				break
			}
			sqldb.Close()
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < connectAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect postgres after %d attempts: %w", connectAttempts, err)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// OpenSQLite opens a SQLite database through the bun shim. A single
// connection keeps in-memory databases alive and serialises writers.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// IsPostgres reports whether db speaks the Postgres dialect.
func IsPostgres(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.PG
}
