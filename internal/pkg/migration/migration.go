// Package migration applies the embedded SQL schema with golang-migrate.
package migration

import (
	"embed"
	"errors"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers pgx5://
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

var ErrDatabaseURLRequired = errors.New("migration: database url is required")

// Up applies every pending migration. An up-to-date schema is not an error.
func Up(databaseURL string) error {
	m, err := open(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	slog.Info("database schema is up to date", "version", version, "dirty", dirty)

	return nil
}

// Down rolls back every migration.
func Down(databaseURL string) error {
	m, err := open(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func open(databaseURL string) (*migrate.Migrate, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrDatabaseURLRequired
	}

	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithSourceInstance("iofs", src, driverURL(databaseURL))
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		slog.Warn("failed to close migrate", "error", err)
	}
}

// driverURL points a postgres:// URL at the pgx v5 migrate driver.
func driverURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(databaseURL, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return databaseURL
}
