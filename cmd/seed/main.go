// Command seed rebuilds a development database: it drops every table,
// recreates the schema and loads the sample crew data.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"techcrew/internal/config"
	"techcrew/internal/database"
	"techcrew/internal/logger"
)

func main() {
	log, err := logger.New(logger.Options{Name: "seed"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	cfg := config.Load()
	ctx := context.Background()

	db, err := open(ctx, cfg.Database)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()

	log.Info("SEED", "Dropping tables...")
	if err := database.DropSchema(ctx, db); err != nil {
		log.Fatal("SEED", err.Error())
	}

	log.Info("SEED", "Creating tables...")
	if err := database.CreateSchema(ctx, db); err != nil {
		log.Fatal("SEED", err.Error())
	}

	log.Info("SEED", "Seeding sample data...")
	if err := database.SeedSample(ctx, db); err != nil {
		log.Fatal("SEED", err.Error())
	}
	log.Info("SEED", "Done.")
}

// open uses the pure-Go pgdriver for Postgres so the tool has no libpq
// dependency at runtime.
func open(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	if cfg.Driver != database.DriverPostgres {
		return database.OpenSQLite(cfg.SQLitePath)
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN)))
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}
