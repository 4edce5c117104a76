package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/property-mcp/internal/domain"
)

// SearchService executes validated property searches
type SearchService struct {
	store  domain.PropertyStore
	limits SearchLimits
	call   storeCall
}

// NewSearchService creates a new search service
func NewSearchService(store domain.PropertyStore, limits SearchLimits, queryTimeout time.Duration) *SearchService {
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = 100
	}
	if limits.DefaultLimit <= 0 || limits.DefaultLimit > limits.MaxLimit {
		limits.DefaultLimit = min(20, limits.MaxLimit)
	}
	return &SearchService{
		store:  store,
		limits: limits,
		call:   storeCall{timeout: queryTimeout},
	}
}

// Limits returns the effective pagination limits
func (s *SearchService) Limits() SearchLimits {
	return s.limits
}

// Search parses raw arguments and runs the query. Invalid input fails with
// *domain.ValidationError before the store is touched.
func (s *SearchService) Search(ctx context.Context, rawArgs map[string]any) (*domain.SearchResult, error) {
	criteria, err := ParseSearchArgs(rawArgs, s.limits)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, criteria)
}

// Execute runs already validated criteria
func (s *SearchService) Execute(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResult, error) {
	ctx, cancel := s.call.context(ctx)
	defer cancel()

	properties, total, err := s.store.Query(ctx, criteria.Filter(), criteria.Page)
	if err != nil {
		return nil, s.call.wrap(ctx, "query", err)
	}

	summaries := make([]domain.PropertySummary, 0, len(properties))
	for i := range properties {
		summaries = append(summaries, properties[i].Summary())
	}

	log.Debug().
		Int("count", len(summaries)).
		Int("limit", criteria.Page.Limit).
		Int("offset", criteria.Page.Offset).
		Msg("Property search executed")

	return &domain.SearchResult{
		Count:      len(summaries),
		Total:      total,
		Limit:      criteria.Page.Limit,
		Offset:     criteria.Page.Offset,
		Properties: summaries,
	}, nil
}
