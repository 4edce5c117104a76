package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/property-mcp/internal/domain"
)

func TestNewSearchService_Limits(t *testing.T) {
	svc := NewSearchService(new(MockPropertyStore), SearchLimits{}, 0)
	assert.Equal(t, SearchLimits{DefaultLimit: 20, MaxLimit: 100}, svc.Limits())

	svc = NewSearchService(new(MockPropertyStore), SearchLimits{DefaultLimit: 50, MaxLimit: 10}, 0)
	assert.Equal(t, SearchLimits{DefaultLimit: 10, MaxLimit: 10}, svc.Limits())
}

func TestSearchService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store := new(MockPropertyStore)
		svc := NewSearchService(store, testLimits, time.Second)

		rows := []domain.Property{
			sampleProperty("11111111-1111-1111-1111-111111111111", "Lisbon", 500000),
		}
		store.On("Query", mock.Anything, mock.MatchedBy(func(f domain.PropertyFilter) bool {
			return f.City != nil && *f.City == "Lisbon" && f.Status != nil && *f.Status == domain.StatusAvailable
		}), domain.Page{Limit: 10, Offset: 0}).Return(rows, int64Ptr(1), nil)

		result, err := svc.Search(ctx, map[string]any{"city": "Lisbon", "status": "available", "limit": 10})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Count)
		assert.Equal(t, int64(1), *result.Total)
		assert.Equal(t, 10, result.Limit)
		require.Len(t, result.Properties, 1)
		assert.Equal(t, "Lisbon", result.Properties[0].City)

		store.AssertExpectations(t)
	})

	t.Run("limit clamped before the store", func(t *testing.T) {
		store := new(MockPropertyStore)
		svc := NewSearchService(store, testLimits, time.Second)

		store.On("Query", mock.Anything, domain.PropertyFilter{}, domain.Page{Limit: 100, Offset: 0}).
			Return([]domain.Property{}, int64Ptr(0), nil)

		result, err := svc.Search(ctx, map[string]any{"limit": 10000})
		require.NoError(t, err)
		assert.Equal(t, 100, result.Limit)
		assert.Equal(t, 0, result.Count)
		assert.NotNil(t, result.Properties)

		store.AssertExpectations(t)
	})

	t.Run("invalid criteria never reach the store", func(t *testing.T) {
		store := new(MockPropertyStore)
		svc := NewSearchService(store, testLimits, time.Second)

		_, err := svc.Search(ctx, map[string]any{"min_price": 900000, "max_price": 500000})
		var validationErr *domain.ValidationError
		require.True(t, errors.As(err, &validationErr))

		store.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(MockPropertyStore)
		svc := NewSearchService(store, testLimits, time.Second)

		store.On("Query", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, nil, errors.New("connection refused"))

		_, err := svc.Search(ctx, map[string]any{})
		var storeErr *domain.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.False(t, storeErr.Timeout)
		assert.True(t, errors.Is(err, domain.ErrStore))
	})

	t.Run("timeout", func(t *testing.T) {
		svc := NewSearchService(new(blockingStore), testLimits, 20*time.Millisecond)

		_, err := svc.Search(ctx, map[string]any{"city": "Porto"})
		var storeErr *domain.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.True(t, storeErr.Timeout)
	})

	t.Run("total omitted when unknown", func(t *testing.T) {
		store := new(MockPropertyStore)
		svc := NewSearchService(store, testLimits, time.Second)

		store.On("Query", mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.Property{}, nil, nil)

		result, err := svc.Search(ctx, map[string]any{"offset": 40})
		require.NoError(t, err)
		assert.Nil(t, result.Total)
		assert.Equal(t, 40, result.Offset)
	})
}
