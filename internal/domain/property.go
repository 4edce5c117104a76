package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyStatus represents the sale status of a listing
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusSold      PropertyStatus = "sold"
)

// Valid reports whether the status is part of the known set
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusSold:
		return true
	}
	return false
}

// PropertyType represents the kind of building
type PropertyType string

const (
	TypeApartment PropertyType = "apartment"
	TypeVilla     PropertyType = "villa"
	TypePenthouse PropertyType = "penthouse"
	TypeTownhouse PropertyType = "townhouse"
	TypeStudio    PropertyType = "studio"
	TypeHouse     PropertyType = "house"
)

// Valid reports whether the type is part of the known set
func (t PropertyType) Valid() bool {
	switch t {
	case TypeApartment, TypeVilla, TypePenthouse, TypeTownhouse, TypeStudio, TypeHouse:
		return true
	}
	return false
}

// Money is an amount in minor currency units (cents)
type Money int64

// MoneyFromDecimal converts a major-unit amount to minor units, rounding half away from zero
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(2).Round(0).IntPart())
}

// Decimal returns the amount in major units
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Major returns the whole major units, dropping cents
func (m Money) Major() int64 {
	return int64(m) / 100
}

// MarshalJSON renders the amount as a plain number in major units
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a number or numeric string in major units
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*m = MoneyFromDecimal(d)
	return nil
}

// Property is a real-estate listing
type Property struct {
	ID            uuid.UUID         `json:"id" yaml:"id"`
	Title         string            `json:"title" yaml:"title"`
	Description   string            `json:"description,omitempty" yaml:"description"`
	Descriptions  map[string]string `json:"descriptions,omitempty" yaml:"descriptions"`
	City          string            `json:"city" yaml:"city"`
	Address       string            `json:"address,omitempty" yaml:"address"`
	Price         Money             `json:"price" yaml:"price"`
	Status        PropertyStatus    `json:"status" yaml:"status"`
	Type          PropertyType      `json:"property_type" yaml:"property_type"`
	Bedrooms      int               `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms     int               `json:"bathrooms" yaml:"bathrooms"`
	AreaSqm       float64           `json:"area_sqm" yaml:"area_sqm"`
	Features      map[string]any    `json:"features,omitempty" yaml:"features"`
	InternalNotes string            `json:"internal_notes,omitempty" yaml:"internal_notes"`
	CreatedAt     time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" yaml:"updated_at"`
}

// PropertySummary is the search view of a property
type PropertySummary struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	City      string         `json:"city"`
	Price     Money          `json:"price"`
	Status    PropertyStatus `json:"status"`
	Type      PropertyType   `json:"property_type"`
	Bedrooms  int            `json:"bedrooms"`
	Bathrooms int            `json:"bathrooms"`
	AreaSqm   float64        `json:"area_sqm"`
	CreatedAt time.Time      `json:"created_at"`
}

// Summary projects the property onto its search view
func (p *Property) Summary() PropertySummary {
	return PropertySummary{
		ID:        p.ID,
		Title:     p.Title,
		City:      p.City,
		Price:     p.Price,
		Status:    p.Status,
		Type:      p.Type,
		Bedrooms:  p.Bedrooms,
		Bathrooms: p.Bathrooms,
		AreaSqm:   p.AreaSqm,
		CreatedAt: p.CreatedAt,
	}
}

// LocalizedDescription returns the description for lang, falling back to the default copy
func (p *Property) LocalizedDescription(lang string) string {
	if d, ok := p.Descriptions[lang]; ok && d != "" {
		return d
	}
	return p.Description
}

// PropertyFilter holds the typed constraints passed to a store query.
// A nil field means no constraint.
type PropertyFilter struct {
	City     *string
	MinPrice *Money
	MaxPrice *Money
	Status   *PropertyStatus
	Type     *PropertyType
}

// Page bounds a result set
type Page struct {
	Limit  int
	Offset int
}

// PropertyStore defines read access to property storage
type PropertyStore interface {
	// FindByID returns nil without error when the property does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)

	// Query returns properties matching filter ordered by created_at desc, id asc.
	// total is nil when the backend cannot count in the same pass.
	Query(ctx context.Context, filter PropertyFilter, page Page) (properties []Property, total *int64, err error)

	// QueryByTimeRange returns properties created within [start, end], newest first
	QueryByTimeRange(ctx context.Context, start, end time.Time) ([]Property, error)

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error

	// Close releases the underlying connections
	Close() error
}

// PropertySeeder writes sample data. Used by the admin CLI only.
type PropertySeeder interface {
	// UpsertProperties inserts properties whose id does not exist yet and returns how many were inserted
	UpsertProperties(ctx context.Context, properties []Property) (int, error)
}
