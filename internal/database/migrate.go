package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrateUp applies every pending migration.
func MigrateUp(driver, dsn string) error {
	m, err := newMigrate(driver, dsn)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("database: migrate up: %w", err)
	}
	return nil
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(driver, dsn string, steps int) error {
	if steps < 1 {
		return fmt.Errorf("database: migrate down: invalid steps %d", steps)
	}
	m, err := newMigrate(driver, dsn)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("database: migrate down: %w", err)
	}
	return nil
}

// MigrationVersion reports the current schema version.
func MigrationVersion(driver, dsn string) (version uint, dirty bool, err error) {
	m, err := newMigrate(driver, dsn)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrate(m)

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func newMigrate(driver, dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("database: migrations for %q: %w", driver, err)
	}
	url, err := migrationURL(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == SQLite {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("database: migrate init: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		zap.L().Warn("migrate: close", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
	}
}

func migrationURL(driver, dsn string) (string, error) {
	switch driver {
	case SQLite:
		return "sqlite3://" + dsn, nil
	case Postgres:
		for _, prefix := range []string{"postgres://", "postgresql://"} {
			if rest, ok := strings.CutPrefix(dsn, prefix); ok {
				return "pgx5://" + rest, nil
			}
		}
		return "", fmt.Errorf("database: DATABASE_URL must be a postgres:// URL")
	default:
		return "", fmt.Errorf("database: unsupported driver %q", driver)
	}
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	zap.S().Infof("migrate: "+strings.TrimSuffix(format, "\n"), v...)
}

func (migrateLogger) Verbose() bool { return false }
