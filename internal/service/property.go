package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/property-mcp/internal/domain"
)

// PropertyService resolves single properties by id
type PropertyService struct {
	store domain.PropertyStore
	call  storeCall
}

// NewPropertyService creates a new property service
func NewPropertyService(store domain.PropertyStore, queryTimeout time.Duration) *PropertyService {
	return &PropertyService{
		store: store,
		call:  storeCall{timeout: queryTimeout},
	}
}

// ParsePropertyID parses a caller supplied id. A malformed id cannot name a
// stored property, so it is reported as not found.
func ParsePropertyID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, &domain.NotFoundError{Resource: "property", ID: raw}
	}
	return id, nil
}

// Get returns the full property including internal notes
func (s *PropertyService) Get(ctx context.Context, rawID string) (*domain.Property, error) {
	id, err := ParsePropertyID(rawID)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the property or a *domain.NotFoundError
func (s *PropertyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	ctx, cancel := s.call.context(ctx)
	defer cancel()

	property, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.call.wrap(ctx, "find_by_id", err)
	}
	if property == nil {
		return nil, &domain.NotFoundError{Resource: "property", ID: id.String()}
	}
	return property, nil
}

var propertyArgs = map[string]bool{"property_id": true}

// ParsePropertyArgs reads the property_id argument of a lookup
func ParsePropertyArgs(raw map[string]any) (uuid.UUID, error) {
	if err := rejectUnknown(raw, propertyArgs); err != nil {
		return uuid.Nil, err
	}
	rawID, err := optionalString(raw, "property_id")
	if err != nil {
		return uuid.Nil, err
	}
	if rawID == nil {
		return uuid.Nil, domain.NewValidationError("property_id", "is required")
	}
	return ParsePropertyID(*rawID)
}
