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

	"github.com/Rrens/property-mcp/internal/content"
	"github.com/Rrens/property-mcp/internal/domain"
)

func newContentService(t *testing.T, store domain.PropertyStore, cache ContentCache) *ContentService {
	t.Helper()
	generator, err := content.NewGenerator(content.Options{DefaultLanguage: "en", DefaultTone: "professional"})
	require.NoError(t, err)
	return NewContentService(NewPropertyService(store, time.Second), generator, cache)
}

func TestContentService_Generate(t *testing.T) {
	ctx := context.Background()
	id := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	property := sampleProperty(id.String(), "Lisbon", 650000)

	t.Run("renders resolved language and tone", func(t *testing.T) {
		store := new(MockPropertyStore)
		store.On("FindByID", mock.Anything, id).Return(&property, nil)
		svc := newContentService(t, store, nil)

		out, err := svc.Generate(ctx, domain.GenerationRequest{PropertyID: id, Language: "pt-BR", Tone: "poetic"})
		require.NoError(t, err)
		assert.Equal(t, "pt", out.Language)
		assert.Equal(t, "professional", out.Tone)
		assert.Equal(t, id, out.PropertyID)
		assert.NotEmpty(t, out.HTML)
		assert.NotEmpty(t, out.Markdown)
	})

	t.Run("same input gives identical output", func(t *testing.T) {
		store := new(MockPropertyStore)
		store.On("FindByID", mock.Anything, id).Return(&property, nil)
		svc := newContentService(t, store, nil)

		req := domain.GenerationRequest{PropertyID: id, Tone: "luxury", Format: domain.FormatMarkdown}
		first, err := svc.Generate(ctx, req)
		require.NoError(t, err)
		second, err := svc.Generate(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("property not found", func(t *testing.T) {
		store := new(MockPropertyStore)
		store.On("FindByID", mock.Anything, id).Return(nil, nil)
		svc := newContentService(t, store, nil)

		_, err := svc.Generate(ctx, domain.GenerationRequest{PropertyID: id})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("invalid format", func(t *testing.T) {
		store := new(MockPropertyStore)
		svc := newContentService(t, store, nil)

		_, err := svc.Generate(ctx, domain.GenerationRequest{PropertyID: id, Format: "pdf"})
		var validationErr *domain.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "format", validationErr.Field)
		store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("missing id", func(t *testing.T) {
		svc := newContentService(t, new(MockPropertyStore), nil)

		_, err := svc.Generate(ctx, domain.GenerationRequest{})
		var validationErr *domain.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "property_id", validationErr.Field)
	})

	t.Run("cache hit skips rendering", func(t *testing.T) {
		store := new(MockPropertyStore)
		store.On("FindByID", mock.Anything, id).Return(&property, nil)
		cache := new(MockContentCache)
		cached := &domain.RenderedContent{PropertyID: id, Language: "en", Tone: "casual", HTML: "<p>cached</p>"}
		cache.On("Get", mock.Anything, cacheKey(id, property.UpdatedAt, "en", "casual")).Return(cached, nil)
		svc := newContentService(t, store, cache)

		out, err := svc.Generate(ctx, domain.GenerationRequest{PropertyID: id, Tone: "casual"})
		require.NoError(t, err)
		assert.Same(t, cached, out)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache failures are ignored", func(t *testing.T) {
		store := new(MockPropertyStore)
		store.On("FindByID", mock.Anything, id).Return(&property, nil)
		cache := new(MockContentCache)
		cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
		svc := newContentService(t, store, cache)

		out, err := svc.Generate(ctx, domain.GenerationRequest{PropertyID: id})
		require.NoError(t, err)
		assert.Equal(t, "en", out.Language)
		cache.AssertExpectations(t)
	})
}

func TestCacheKey_ChangesWithUpdate(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, cacheKey(id, at, "en", "casual"), cacheKey(id, at, "en", "casual"))
	assert.NotEqual(t, cacheKey(id, at, "en", "casual"), cacheKey(id, at.Add(time.Second), "en", "casual"))
	assert.NotEqual(t, cacheKey(id, at, "en", "casual"), cacheKey(id, at, "pt", "casual"))
}
