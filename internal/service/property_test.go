package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/property-mcp/internal/domain"
)

func TestPropertyService_Get(t *testing.T) {
	ctx := context.Background()
	id := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	t.Run("success includes internal notes", func(t *testing.T) {
		store := new(MockPropertyStore)
		svc := NewPropertyService(store, time.Second)

		p := sampleProperty(id.String(), "Porto", 900000)
		store.On("FindByID", mock.Anything, id).Return(&p, nil)

		got, err := svc.Get(ctx, " "+id.String()+" ")
		require.NoError(t, err)
		assert.Equal(t, "Owner motivated", got.InternalNotes)
		store.AssertExpectations(t)
	})

	t.Run("absent", func(t *testing.T) {
		store := new(MockPropertyStore)
		svc := NewPropertyService(store, time.Second)

		store.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := svc.Get(ctx, id.String())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		var notFound *domain.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "property", notFound.Resource)
		assert.Equal(t, id.String(), notFound.ID)
	})

	t.Run("malformed id never reaches the store", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "00000000-0000-0000-0000-000000000000", "1234"} {
			store := new(MockPropertyStore)
			svc := NewPropertyService(store, time.Second)

			_, err := svc.Get(ctx, raw)
			assert.True(t, errors.Is(err, domain.ErrNotFound), raw)
			store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		}
	})

	t.Run("store error", func(t *testing.T) {
		store := new(MockPropertyStore)
		svc := NewPropertyService(store, time.Second)

		store.On("FindByID", mock.Anything, id).Return(nil, errors.New("boom"))

		_, err := svc.Get(ctx, id.String())
		assert.True(t, errors.Is(err, domain.ErrStore))
	})

	t.Run("timeout", func(t *testing.T) {
		svc := NewPropertyService(new(blockingStore), 20*time.Millisecond)

		_, err := svc.Get(ctx, id.String())
		var storeErr *domain.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.True(t, storeErr.Timeout)
	})
}

func TestParsePropertyArgs(t *testing.T) {
	id, err := ParsePropertyArgs(map[string]any{"property_id": "22222222-2222-2222-2222-222222222222"})
	require.NoError(t, err)
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", id.String())

	_, err = ParsePropertyArgs(map[string]any{})
	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "property_id", validationErr.Field)

	_, err = ParsePropertyArgs(map[string]any{"property_id": 12})
	require.True(t, errors.As(err, &validationErr))

	_, err = ParsePropertyArgs(map[string]any{"property_id": "nope"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
