// Package seed loads the sample property catalog.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Rrens/property-mcp/internal/domain"
)

//go:embed properties.yaml
var sample []byte

type record struct {
	ID            uuid.UUID         `yaml:"id"`
	Title         string            `yaml:"title"`
	Description   string            `yaml:"description"`
	Descriptions  map[string]string `yaml:"descriptions"`
	City          string            `yaml:"city"`
	Address       string            `yaml:"address"`
	Price         string            `yaml:"price"`
	Status        string            `yaml:"status"`
	PropertyType  string            `yaml:"property_type"`
	Bedrooms      int               `yaml:"bedrooms"`
	Bathrooms     int               `yaml:"bathrooms"`
	AreaSqm       float64           `yaml:"area_sqm"`
	Features      map[string]any    `yaml:"features"`
	InternalNotes string            `yaml:"internal_notes"`
	CreatedAgo    string            `yaml:"created_ago"`
}

type file struct {
	Properties []record `yaml:"properties"`
}

// Sample returns the built-in catalog with timestamps relative to now
func Sample(now time.Time) ([]domain.Property, error) {
	return Parse(sample, now)
}

// Parse decodes a catalog document
func Parse(data []byte, now time.Time) ([]domain.Property, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}

	seen := make(map[uuid.UUID]bool, len(f.Properties))
	properties := make([]domain.Property, 0, len(f.Properties))
	for i, r := range f.Properties {
		p, err := r.toDomain(now)
		if err != nil {
			return nil, fmt.Errorf("property %d: %w", i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("property %d: duplicate id %s", i, p.ID)
		}
		seen[p.ID] = true
		properties = append(properties, p)
	}
	return properties, nil
}

func (r record) toDomain(now time.Time) (domain.Property, error) {
	if r.ID == uuid.Nil {
		return domain.Property{}, fmt.Errorf("id is required")
	}

	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return domain.Property{}, fmt.Errorf("invalid price %q: %w", r.Price, err)
	}
	if price.IsNegative() {
		return domain.Property{}, fmt.Errorf("negative price %s", r.Price)
	}

	status := domain.PropertyStatus(r.Status)
	if !status.Valid() {
		return domain.Property{}, fmt.Errorf("unknown status %q", r.Status)
	}
	propertyType := domain.PropertyType(r.PropertyType)
	if !propertyType.Valid() {
		return domain.Property{}, fmt.Errorf("unknown property type %q", r.PropertyType)
	}

	var age time.Duration
	if r.CreatedAgo != "" {
		age, err = time.ParseDuration(r.CreatedAgo)
		if err != nil {
			return domain.Property{}, fmt.Errorf("invalid created_ago %q: %w", r.CreatedAgo, err)
		}
	}
	created := now.Add(-age).UTC().Truncate(time.Microsecond)

	return domain.Property{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Descriptions:  r.Descriptions,
		City:          r.City,
		Address:       r.Address,
		Price:         domain.MoneyFromDecimal(price),
		Status:        status,
		Type:          propertyType,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		AreaSqm:       r.AreaSqm,
		Features:      r.Features,
		InternalNotes: r.InternalNotes,
		CreatedAt:     created,
		UpdatedAt:     created,
	}, nil
}
