package store

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies pending schema migrations. It returns the schema version
// after migrating. Running it on an up-to-date database is a no-op.
func (db *DB) Migrate() (uint, error) {
	src, err := iofs.New(migrations, "migrations/"+db.driver)
	if err != nil {
		return 0, fmt.Errorf("loading migrations: %w", err)
	}

	var drv database.Driver
	switch db.driver {
	case DriverSQLite:
		drv, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	case DriverPostgres:
		drv, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", db.driver)
	}
	if err != nil {
		return 0, fmt.Errorf("creating migration driver: %w", err)
	}

	// m.Close would close db.DB, which the caller still owns.
	m, err := migrate.NewWithInstance("iofs", src, db.driver, drv)
	if err != nil {
		return 0, fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("applying migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}
