package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrationSources maps DB_DRIVER values to their migration directories.
var migrationSources = map[string]string{
	"postgres": "file://migrations/postgresql",
	"mysql":    "file://migrations/mysql",
}

// RunMigrations brings the audit_events schema up to date. An already current schema
// is not an error.
func RunMigrations(logger *slog.Logger, driver, dsn string) error {
	source, ok := migrationSources[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver for migrations: %q", driver)
	}
	logger.Info("applying audit schema migrations", slog.String("driver", driver), slog.String("source", source))

	m, err := migrate.New(source, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("audit schema already current")
		return nil
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if version, dirty, err := m.Version(); err == nil {
		logger.Info("audit schema migrated", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}
	return nil
}
