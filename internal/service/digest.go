package service

import (
	"context"
	"time"

	"github.com/Rrens/property-mcp/internal/domain"
)

// DefaultDigestWindow is how far back the daily digest looks
const DefaultDigestWindow = 24 * time.Hour

// DigestService builds the fixed view of recently created listings
type DigestService struct {
	store  domain.PropertyStore
	window time.Duration
	call   storeCall
}

// NewDigestService creates a new digest service
func NewDigestService(store domain.PropertyStore, window, queryTimeout time.Duration) *DigestService {
	if window <= 0 {
		window = DefaultDigestWindow
	}
	return &DigestService{
		store:  store,
		window: window,
		call:   storeCall{timeout: queryTimeout},
	}
}

// TodayDigest returns properties created within [now - window, now], newest
// first. An empty window yields an empty slice.
func (s *DigestService) TodayDigest(ctx context.Context, now time.Time) ([]domain.Property, error) {
	ctx, cancel := s.call.context(ctx)
	defer cancel()

	properties, err := s.store.QueryByTimeRange(ctx, now.Add(-s.window), now)
	if err != nil {
		return nil, s.call.wrap(ctx, "query_by_time_range", err)
	}
	if properties == nil {
		properties = []domain.Property{}
	}
	return properties, nil
}

// Digest wraps TodayDigest in the resource payload
func (s *DigestService) Digest(ctx context.Context, now time.Time) (*domain.DigestResult, error) {
	listings, err := s.TodayDigest(ctx, now)
	if err != nil {
		return nil, err
	}
	return &domain.DigestResult{
		Date:     now.UTC().Format(time.RFC3339),
		Count:    len(listings),
		Listings: listings,
	}, nil
}
