package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/repository"
)

// PropertyRepository handles property data access
type PropertyRepository struct {
	db *DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `
	id, title, description, descriptions, city, address, price_cents, status,
	property_type, bedrooms, bathrooms, area_sqm, features, internal_notes,
	created_at, updated_at`

// FindByID retrieves a property by ID
func (r *PropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	property, err := scanProperty(r.db.Pool.QueryRow(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, repository.Classify("find_by_id", err)
	}
	return property, nil
}

// Query returns matching properties with the total count from the same scan
func (r *PropertyRepository) Query(ctx context.Context, filter domain.PropertyFilter, page domain.Page) ([]domain.Property, *int64, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + propertyColumns + `, COUNT(*) OVER() AS total FROM properties` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
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
func (r *PropertyRepository) QueryByTimeRange(ctx context.Context, start, end time.Time) ([]domain.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC, id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, start, end)
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
func (r *PropertyRepository) UpsertProperties(ctx context.Context, properties []domain.Property) (int, error) {
	query := `
		INSERT INTO properties (` + propertyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for i := range properties {
		p := &properties[i]

		descriptions, err := json.Marshal(p.Descriptions)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal descriptions: %w", err)
		}
		features, err := json.Marshal(p.Features)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal features: %w", err)
		}

		batch.Queue(query,
			p.ID,
			p.Title,
			p.Description,
			descriptions,
			p.City,
			p.Address,
			int64(p.Price),
			string(p.Status),
			string(p.Type),
			p.Bedrooms,
			p.Bathrooms,
			p.AreaSqm,
			features,
			p.InternalNotes,
			p.CreatedAt,
			p.UpdatedAt,
		)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := range properties {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert property %s: %w", properties[i].ID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// Ping verifies database connectivity
func (r *PropertyRepository) Ping(ctx context.Context) error {
	return repository.Classify("ping", r.db.Ping(ctx))
}

// Close closes the connection pool
func (r *PropertyRepository) Close() error {
	r.db.Close()
	return nil
}

func scanProperty(scan func(dest ...any) error) (*domain.Property, error) {
	var (
		p                domain.Property
		description      *string
		descriptionsJSON []byte
		address          *string
		price            int64
		status           string
		propertyType     string
		featuresJSON     []byte
		notes            *string
	)

	err := scan(
		&p.ID,
		&p.Title,
		&description,
		&descriptionsJSON,
		&p.City,
		&address,
		&price,
		&status,
		&propertyType,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.AreaSqm,
		&featuresJSON,
		&notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		p.Description = *description
	}
	if address != nil {
		p.Address = *address
	}
	if notes != nil {
		p.InternalNotes = *notes
	}
	p.Price = domain.Money(price)
	p.Status = domain.PropertyStatus(status)
	p.Type = domain.PropertyType(propertyType)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	if len(descriptionsJSON) > 0 {
		if err := json.Unmarshal(descriptionsJSON, &p.Descriptions); err != nil {
			return nil, repository.Decoded(fmt.Errorf("failed to unmarshal descriptions: %w", err))
		}
	}
	if len(featuresJSON) > 0 {
		if err := json.Unmarshal(featuresJSON, &p.Features); err != nil {
			return nil, repository.Decoded(fmt.Errorf("failed to unmarshal features: %w", err))
		}
	}

	return &p, nil
}

// buildWhere renders the filter with numbered placeholders
func buildWhere(filter domain.PropertyFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.City != nil {
		conditions = append(conditions, "lower(city) = lower("+arg(*filter.City)+")")
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "price_cents >= "+arg(int64(*filter.MinPrice)))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "price_cents <= "+arg(int64(*filter.MaxPrice)))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = "+arg(string(*filter.Status)))
	}
	if filter.Type != nil {
		conditions = append(conditions, "property_type = "+arg(string(*filter.Type)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
