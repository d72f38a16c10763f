package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"techcrew/internal/logger"
)

//go:embed sql/*.sql
var files embed.FS

// SchemaVersion is the last migration that only touches structure; later
// versions load reference data.
const SchemaVersion uint = 1

type Options struct {
	// SchemaOnly stops at SchemaVersion and skips reference data.
	SchemaOnly bool
}

// Runner applies the embedded Postgres migrations over its own
// connection, which Close releases.
type Runner struct {
	dsn      string
	options  Options
	log      *logger.Logger
	migrator *migrate.Migrate
}

func NewRunner(dsn string, opts Options, log *logger.Logger) *Runner {
	return &Runner{dsn: dsn, options: opts, log: log}
}

func (r *Runner) init() error {
	if r.migrator != nil {
		return nil
	}
	src, err := iofs.New(files, "sql")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	db, err := sql.Open("postgres", r.dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("create postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	r.migrator = m
	return nil
}

// Run brings the schema up to date, repairing a dirty version first.
func (r *Runner) Run() error {
	if err := r.init(); err != nil {
		return err
	}

	version, dirty, err := r.migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		r.log.Warn("MIGRATE", fmt.Sprintf("Dirty migration at version %d, forcing", version))
		if err := r.migrator.Force(int(version)); err != nil {
			return fmt.Errorf("fix dirty migration: %w", err)
		}
	}

	if r.options.SchemaOnly {
		if errors.Is(err, migrate.ErrNilVersion) || version < SchemaVersion {
			if err := r.migrator.Migrate(SchemaVersion); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migrate schema: %w", err)
			}
		}
	} else if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	if v, _, err := r.migrator.Version(); err == nil {
		r.log.Info("MIGRATE", fmt.Sprintf("Current schema version: %d", v))
	}
	return nil
}

func (r *Runner) Down() error {
	if err := r.init(); err != nil {
		return err
	}
	if err := r.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func (r *Runner) To(version uint) error {
	if err := r.init(); err != nil {
		return err
	}
	if err := r.migrator.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate to version %d: %w", version, err)
	}
	return nil
}

// Version returns the applied version, or 0 when nothing ran yet.
func (r *Runner) Version() (uint, bool, error) {
	if err := r.init(); err != nil {
		return 0, false, err
	}
	v, dirty, err := r.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (r *Runner) Close() error {
	if r.migrator == nil {
		return nil
	}
	srcErr, dbErr := r.migrator.Close()
	if srcErr != nil {
		return fmt.Errorf("close migration source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database: %w", dbErr)
	}
	return nil
}
