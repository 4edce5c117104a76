package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/repository"
	"github.com/Rrens/property-mcp/internal/repository/sqlstore"
)

// Driver is the registry name of this backend
const Driver = "sqlite"

var dialect = sqlstore.Dialect{
	Name:         Driver,
	InsertPrefix: "INSERT INTO",
	InsertSuffix: " ON CONFLICT(id) DO NOTHING",
	TimeArg:      sqlstore.TextTime,
}

const schema = `
CREATE TABLE IF NOT EXISTS properties (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	description    TEXT,
	descriptions   TEXT,
	city           TEXT NOT NULL,
	city_key       TEXT NOT NULL DEFAULT '',
	address        TEXT,
	price_cents    INTEGER NOT NULL CHECK (price_cents >= 0),
	status         TEXT NOT NULL CHECK (status IN ('available', 'sold')),
	property_type  TEXT NOT NULL,
	bedrooms       INTEGER NOT NULL DEFAULT 0,
	bathrooms      INTEGER NOT NULL DEFAULT 0,
	area_sqm       REAL NOT NULL DEFAULT 0,
	features       TEXT,
	internal_notes TEXT,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL,
	UNIQUE (title, address)
);
CREATE INDEX IF NOT EXISTS idx_properties_price ON properties (price_cents);
CREATE INDEX IF NOT EXISTS idx_properties_status ON properties (status);
CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties (created_at DESC, id);
`

// Store is the sqlite property store
type Store struct {
	*sqlstore.Store
}

// Open opens the database file named by opts.URL and ensures the schema exists
func Open(ctx context.Context, opts repository.Options) (repository.Backend, error) {
	return OpenPath(ctx, opts.URL)
}

// OpenPath opens a database file. Use ":memory:" for a private in-memory database.
func OpenPath(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimPrefix(path, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if path == "" {
		return nil, fmt.Errorf("database file path is required")
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{Store: sqlstore.New(db, dialect)}, nil
}

// EnsureSchema creates the properties table and its indexes when missing.
// Files created before city_key existed get the column and a backfill.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	if err := ensureCityKey(ctx, db); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_properties_city_key ON properties (city_key)`); err != nil {
		return fmt.Errorf("failed to ensure city index: %w", err)
	}
	return nil
}

// ensureCityKey fills city_key in Go, since sqlite's LOWER only folds ASCII
func ensureCityKey(ctx context.Context, db *sql.DB) error {
	var columns int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info('properties') WHERE name = 'city_key'`).Scan(&columns)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if columns == 0 {
		if _, err := db.ExecContext(ctx, `ALTER TABLE properties ADD COLUMN city_key TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("failed to add city_key: %w", err)
		}
	}

	rows, err := db.QueryContext(ctx, `SELECT id, city FROM properties WHERE city_key = ''`)
	if err != nil {
		return fmt.Errorf("failed to read cities: %w", err)
	}
	cities := make(map[string]string)
	for rows.Next() {
		var id, city string
		if err := rows.Scan(&id, &city); err != nil {
			rows.Close()
			return fmt.Errorf("failed to read cities: %w", err)
		}
		cities[id] = city
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read cities: %w", err)
	}

	for id, city := range cities {
		if _, err := db.ExecContext(ctx, `UPDATE properties SET city_key = ? WHERE id = ?`, domain.CityKey(city), id); err != nil {
			return fmt.Errorf("failed to backfill city_key: %w", err)
		}
	}
	return nil
}
