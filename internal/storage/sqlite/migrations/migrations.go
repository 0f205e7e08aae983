package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/slok/activator/internal/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations of the activator database.
type Migrator struct {
	db     *sql.DB
	logger log.Logger
}

// NewMigrator creates a new migrator.
func NewMigrator(db *sql.DB, logger log.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if logger == nil {
		logger = log.Noop
	}

	return &Migrator{
		db:     db,
		logger: logger.WithValues(log.Kv{"svc": "storage.Migrator"}),
	}, nil
}

// Up applies all the pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "apply", func(inst *migrate.Migrate) error { return inst.Up() })
}

// Down reverts all the migrations.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "revert", func(inst *migrate.Migrate) error { return inst.Down() })
}

// Version returns the current schema version, 0 if no migration was applied.
func (m *Migrator) Version(ctx context.Context) (uint, error) {
	var version uint
	err := m.run(ctx, "read", func(inst *migrate.Migrate) error {
		v, dirty, err := inst.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				return nil
			}
			return err
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", v)
		}
		version = v
		return nil
	})

	return version, err
}

func (m *Migrator) run(ctx context.Context, op string, f func(inst *migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create driver: %w", err)
	}

	src, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return fmt.Errorf("could not create migrations source: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			m.logger.Errorf("could not close migrations source: %s", err)
		}
	}()

	inst, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	err = f(inst)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not %s migrations: %w", op, err)
	}

	m.logger.Debugf("Migrations %s done", op)
	return nil
}
