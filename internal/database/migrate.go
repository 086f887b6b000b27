package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies all pending schema migrations from ./migrations
// against the database identified by dbURL.
func RunMigrations(dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("database URL not set")
	}

	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Printf("could not read migration version: %v", err)
	}

	// A dirty version means a previous run died mid-migration; force the
	// recorded version so Up can proceed.
	if dirty {
		log.Printf("database dirty at version %d, forcing clean", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if v, _, err := m.Version(); err == nil {
		log.Printf("migrations applied, schema version %d", v)
	}
	return nil
}
