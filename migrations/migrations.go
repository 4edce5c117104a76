// Package migrations embeds the SQL schema for the postgres and mysql backends.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

// Direction selects which way migrations run
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Supported reports whether driver has embedded migrations
func Supported(driver string) bool {
	return driver == "postgres" || driver == "mysql"
}

// Run applies the embedded migrations for driver against databaseURL
func Run(driver, databaseURL string, direction Direction) error {
	if !Supported(driver) {
		return fmt.Errorf("no migrations for driver %q", driver)
	}

	source, err := iofs.New(files, driver)
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(driver, databaseURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown direction %q", direction)
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Str("driver", driver).Msg("Database migration: no changes")
			return nil
		}
		return fmt.Errorf("failed to run migrate %s: %w", direction, err)
	}

	log.Info().Str("driver", driver).Str("direction", string(direction)).Msg("Database migration: success")
	return nil
}

// migrateURL converts a driver DSN into the URL form golang-migrate expects
func migrateURL(driver, databaseURL string) string {
	if driver == "mysql" && !strings.HasPrefix(databaseURL, "mysql://") {
		return "mysql://" + databaseURL
	}
	return databaseURL
}
