// Package sqlstore implements the property store over database/sql.
// The sqlite and mysql backends share it through a Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/repository"
)

// Dialect captures the differences between SQL engines
type Dialect struct {
	Name string
	// InsertPrefix and InsertSuffix make an insert skip rows whose key exists
	InsertPrefix string
	InsertSuffix string
	// TimeArg converts a timestamp into a bind argument
	TimeArg func(time.Time) any
}

// Store is a database/sql backed property store
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New creates a store over an open database handle
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB returns the underlying handle
func (s *Store) DB() *sql.DB {
	return s.db
}

const selectColumns = `
	id, title, description, descriptions, city, address, price_cents, status,
	property_type, bedrooms, bathrooms, area_sqm, features, internal_notes,
	created_at, updated_at`

// FindByID retrieves a property by ID
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := `SELECT ` + selectColumns + ` FROM properties WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id.String())
	property, err := scanProperty(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, repository.Classify("find_by_id", err)
	}
	return property, nil
}

// Query returns matching properties and the total match count
func (s *Store) Query(ctx context.Context, filter domain.PropertyFilter, page domain.Page) ([]domain.Property, *int64, error) {
	where, args := buildWhere(filter)

	query := `SELECT ` + selectColumns + `, COUNT(*) OVER() AS total
		FROM properties` + where + `
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, repository.Classify("query", err)
	}
	defer rows.Close()

	var (
		properties []domain.Property
		total      int64
	)
	for rows.Next() {
		property, err := scanProperty(func(dest ...any) error {
			return repository.Decoded(rows.Scan(append(dest, &total)...))
		})
		if err != nil {
			return nil, nil, repository.Classify("query", err)
		}
		properties = append(properties, *property)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, repository.Classify("query", err)
	}

	return properties, repository.PageTotal(len(properties), total, page), nil
}

// QueryByTimeRange returns properties created within [start, end]
func (s *Store) QueryByTimeRange(ctx context.Context, start, end time.Time) ([]domain.Property, error) {
	query := `SELECT ` + selectColumns + `
		FROM properties
		WHERE created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, s.dialect.TimeArg(start), s.dialect.TimeArg(end))
	if err != nil {
		return nil, repository.Classify("query_by_time_range", err)
	}
	defer rows.Close()

	properties := []domain.Property{}
	for rows.Next() {
		property, err := scanProperty(func(dest ...any) error {
			return repository.Decoded(rows.Scan(dest...))
		})
		if err != nil {
			return nil, repository.Classify("query_by_time_range", err)
		}
		properties = append(properties, *property)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.Classify("query_by_time_range", err)
	}
	return properties, nil
}

// UpsertProperties inserts properties whose id is not stored yet
func (s *Store) UpsertProperties(ctx context.Context, properties []domain.Property) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := s.dialect.InsertPrefix + ` properties (
		id, title, description, descriptions, city, city_key, address, price_cents,
		status, property_type, bedrooms, bathrooms, area_sqm, features, internal_notes,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)` + s.dialect.InsertSuffix

	inserted := 0
	for i := range properties {
		p := &properties[i]

		descriptions, features, err := marshalMaps(p)
		if err != nil {
			return 0, err
		}

		res, err := tx.ExecContext(ctx, query,
			p.ID.String(),
			p.Title,
			p.Description,
			descriptions,
			p.City,
			domain.CityKey(p.City),
			p.Address,
			int64(p.Price),
			string(p.Status),
			string(p.Type),
			p.Bedrooms,
			p.Bathrooms,
			p.AreaSqm,
			features,
			p.InternalNotes,
			s.dialect.TimeArg(p.CreatedAt),
			s.dialect.TimeArg(p.UpdatedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert property %s: %w", p.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return inserted, nil
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return repository.Classify("ping", s.db.PingContext(ctx))
}

// Close closes the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

func buildWhere(filter domain.PropertyFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if filter.City != nil {
		conditions = append(conditions, "city_key = ?")
		args = append(args, domain.CityKey(*filter.City))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "price_cents >= ?")
		args = append(args, int64(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "price_cents <= ?")
		args = append(args, int64(*filter.MaxPrice))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Type != nil {
		conditions = append(conditions, "property_type = ?")
		args = append(args, string(*filter.Type))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanProperty(scan func(dest ...any) error) (*domain.Property, error) {
	var (
		p            domain.Property
		id           string
		description  sql.NullString
		descriptions sql.NullString
		address      sql.NullString
		price        int64
		status       string
		propertyType string
		features     sql.NullString
		notes        sql.NullString
		createdAt    timeValue
		updatedAt    timeValue
	)

	err := scan(
		&id,
		&p.Title,
		&description,
		&descriptions,
		&p.City,
		&address,
		&price,
		&status,
		&propertyType,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.AreaSqm,
		&features,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, repository.Decoded(fmt.Errorf("invalid property id %q: %w", id, err))
	}
	p.Description = description.String
	p.Address = address.String
	p.Price = domain.Money(price)
	p.Status = domain.PropertyStatus(status)
	p.Type = domain.PropertyType(propertyType)
	p.InternalNotes = notes.String
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	if descriptions.Valid && descriptions.String != "" {
		if err := json.Unmarshal([]byte(descriptions.String), &p.Descriptions); err != nil {
			return nil, repository.Decoded(fmt.Errorf("failed to unmarshal descriptions: %w", err))
		}
	}
	if features.Valid && features.String != "" {
		if err := json.Unmarshal([]byte(features.String), &p.Features); err != nil {
			return nil, repository.Decoded(fmt.Errorf("failed to unmarshal features: %w", err))
		}
	}

	return &p, nil
}

func marshalMaps(p *domain.Property) (descriptions, features string, err error) {
	d, err := json.Marshal(p.Descriptions)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal descriptions: %w", err)
	}
	f, err := json.Marshal(p.Features)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal features: %w", err)
	}
	return string(d), string(f), nil
}
