package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Rrens/property-mcp/internal/domain"
)

// MockPropertyStore mocks the PropertyStore interface
type MockPropertyStore struct {
	mock.Mock
}

func (m *MockPropertyStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

func (m *MockPropertyStore) Query(ctx context.Context, filter domain.PropertyFilter, page domain.Page) ([]domain.Property, *int64, error) {
	args := m.Called(ctx, filter, page)
	var properties []domain.Property
	if v := args.Get(0); v != nil {
		properties = v.([]domain.Property)
	}
	var total *int64
	if v := args.Get(1); v != nil {
		total = v.(*int64)
	}
	return properties, total, args.Error(2)
}

func (m *MockPropertyStore) QueryByTimeRange(ctx context.Context, start, end time.Time) ([]domain.Property, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Property), args.Error(1)
}

func (m *MockPropertyStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPropertyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockContentCache mocks the ContentCache interface
type MockContentCache struct {
	mock.Mock
}

func (m *MockContentCache) Get(ctx context.Context, key string) (*domain.RenderedContent, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenderedContent), args.Error(1)
}

func (m *MockContentCache) Set(ctx context.Context, key string, content *domain.RenderedContent) error {
	args := m.Called(ctx, key, content)
	return args.Error(0)
}

// blockingStore waits for the context to end on every call
type blockingStore struct {
	MockPropertyStore
}

func (s *blockingStore) FindByID(ctx context.Context, _ uuid.UUID) (*domain.Property, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *blockingStore) Query(ctx context.Context, _ domain.PropertyFilter, _ domain.Page) ([]domain.Property, *int64, error) {
	<-ctx.Done()
	return nil, nil, ctx.Err()
}

func (s *blockingStore) QueryByTimeRange(ctx context.Context, _, _ time.Time) ([]domain.Property, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func int64Ptr(v int64) *int64 { return &v }

func sampleProperty(id string, city string, price int64) domain.Property {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return domain.Property{
		ID:            uuid.MustParse(id),
		Title:         "Apartment in " + city,
		City:          city,
		Price:         domain.Money(price * 100),
		Status:        domain.StatusAvailable,
		Type:          domain.TypeApartment,
		Bedrooms:      2,
		Bathrooms:     1,
		AreaSqm:       80,
		Features:      map[string]any{"balcony": true},
		InternalNotes: "Owner motivated",
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

var anyContext = mock.MatchedBy(func(context.Context) bool { return true })
