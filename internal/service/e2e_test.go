package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/property-mcp/internal/content"
	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/repository/sqlite"
	"github.com/Rrens/property-mcp/internal/service"
)

var (
	lisbonID = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001")
	portoID  = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000002")
)

func seedStore(t *testing.T, now time.Time) *sqlite.Store {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.OpenPath(ctx, filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	properties := []domain.Property{
		{
			ID:            lisbonID,
			Title:         "Lisbon flat",
			City:          "Lisbon",
			Address:       "Rua Augusta 1",
			Price:         domain.Money(50000000),
			Status:        domain.StatusAvailable,
			Type:          domain.TypeApartment,
			Bedrooms:      2,
			Bathrooms:     1,
			AreaSqm:       90,
			Features:      map[string]any{"balcony": true},
			InternalNotes: "Keys at the agency",
			CreatedAt:     now.Add(-2 * time.Hour),
			UpdatedAt:     now.Add(-2 * time.Hour),
		},
		{
			ID:        portoID,
			Title:     "Porto villa",
			City:      "Porto",
			Address:   "Avenida da Boavista 100",
			Price:     domain.Money(90000000),
			Status:    domain.StatusSold,
			Type:      domain.TypeVilla,
			Bedrooms:  4,
			Bathrooms: 3,
			AreaSqm:   240,
			CreatedAt: now.Add(-72 * time.Hour),
			UpdatedAt: now.Add(-72 * time.Hour),
		},
	}
	n, err := store.UpsertProperties(ctx, properties)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	return store
}

func TestEndToEnd_SearchScenarios(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := seedStore(t, now)
	svc := service.NewSearchService(store, service.SearchLimits{DefaultLimit: 20, MaxLimit: 100}, 5*time.Second)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    map[string]any
		wantIDs []uuid.UUID
	}{
		{name: "lisbon under budget", args: map[string]any{"city": "lisbon", "max_price": 600000}, wantIDs: []uuid.UUID{lisbonID}},
		{name: "sold", args: map[string]any{"status": "sold"}, wantIDs: []uuid.UUID{portoID}},
		{name: "nothing above a million", args: map[string]any{"min_price": "1000000"}, wantIDs: nil},
		{name: "newest first", args: map[string]any{}, wantIDs: []uuid.UUID{lisbonID, portoID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Search(ctx, tt.args)
			require.NoError(t, err)
			require.Equal(t, len(tt.wantIDs), result.Count)

			for i, id := range tt.wantIDs {
				assert.Equal(t, id, result.Properties[i].ID)
			}
			require.NotNil(t, result.Total)
			assert.Equal(t, int64(len(tt.wantIDs)), *result.Total)
		})
	}

	t.Run("rejected before the store", func(t *testing.T) {
		_, err := svc.Search(ctx, map[string]any{"min_price": 900000, "max_price": 500000})
		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})
}

func TestEndToEnd_DetailsContentAndDigest(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := seedStore(t, now)
	ctx := context.Background()

	properties := service.NewPropertyService(store, 5*time.Second)
	p, err := properties.Get(ctx, lisbonID.String())
	require.NoError(t, err)
	assert.Equal(t, "Keys at the agency", p.InternalNotes)

	_, err = properties.Get(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	generator, err := content.NewGenerator(content.Options{DefaultLanguage: "en", DefaultTone: "professional"})
	require.NoError(t, err)
	contents := service.NewContentService(properties, generator, nil)

	out, err := contents.Generate(ctx, domain.GenerationRequest{PropertyID: lisbonID, Language: "pt", Tone: "family"})
	require.NoError(t, err)
	assert.Equal(t, "pt", out.Language)
	assert.Equal(t, "family", out.Tone)
	assert.Contains(t, out.HTML, "Lisbon flat")
	assert.NotContains(t, out.HTML, "Keys at the agency")

	digest := service.NewDigestService(store, 24*time.Hour, 5*time.Second)
	listings, err := digest.TodayDigest(ctx, now)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, lisbonID, listings[0].ID)

	empty, err := digest.TodayDigest(ctx, now.Add(30*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
