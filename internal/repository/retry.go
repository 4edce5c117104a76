package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"github.com/Rrens/property-mcp/internal/domain"
)

// RetryPolicy bounds retries of idempotent reads
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// WithRetry retries reads that failed with a non-timeout store error.
// Timeouts are returned immediately since the caller's budget is spent.
// A policy with fewer than two attempts returns the backend unchanged.
func WithRetry(backend Backend, policy RetryPolicy) Backend {
	if policy.MaxAttempts < 2 {
		return backend
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 50 * time.Millisecond
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = time.Second
	}
	return &retryingBackend{Backend: backend, policy: policy}
}

type retryingBackend struct {
	Backend
	policy RetryPolicy
}

func (r *retryingBackend) backoff() retry.Backoff {
	b := retry.NewExponential(r.policy.BaseDelay)
	b = retry.WithCappedDuration(r.policy.MaxDelay, b)
	return retry.WithMaxRetries(uint64(r.policy.MaxAttempts-1), b)
}

func (r *retryingBackend) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil || !retryable(err) {
			return err
		}
		log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("Retrying store read")
		return retry.RetryableError(err)
	})
}

func retryable(err error) bool {
	var storeErr *domain.StoreError
	return errors.As(err, &storeErr) && !storeErr.Timeout
}

func (r *retryingBackend) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	var property *domain.Property
	err := r.do(ctx, "find_by_id", func(ctx context.Context) error {
		var err error
		property, err = r.Backend.FindByID(ctx, id)
		return err
	})
	return property, err
}

func (r *retryingBackend) Query(ctx context.Context, filter domain.PropertyFilter, page domain.Page) ([]domain.Property, *int64, error) {
	var (
		properties []domain.Property
		total      *int64
	)
	err := r.do(ctx, "query", func(ctx context.Context) error {
		var err error
		properties, total, err = r.Backend.Query(ctx, filter, page)
		return err
	})
	return properties, total, err
}

func (r *retryingBackend) QueryByTimeRange(ctx context.Context, start, end time.Time) ([]domain.Property, error) {
	var properties []domain.Property
	err := r.do(ctx, "query_by_time_range", func(ctx context.Context) error {
		var err error
		properties, err = r.Backend.QueryByTimeRange(ctx, start, end)
		return err
	})
	return properties, err
}
