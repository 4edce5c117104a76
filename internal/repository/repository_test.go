package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/repository"
)

// flakyBackend fails the first failures calls with err
type flakyBackend struct {
	failures int
	err      error
	calls    int
}

func (f *flakyBackend) fail() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyBackend) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return &domain.Property{ID: id}, nil
}

func (f *flakyBackend) Query(ctx context.Context, filter domain.PropertyFilter, page domain.Page) ([]domain.Property, *int64, error) {
	if err := f.fail(); err != nil {
		return nil, nil, err
	}
	total := int64(1)
	return []domain.Property{{Title: "ok"}}, &total, nil
}

func (f *flakyBackend) QueryByTimeRange(ctx context.Context, start, end time.Time) ([]domain.Property, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return []domain.Property{}, nil
}

func (f *flakyBackend) UpsertProperties(ctx context.Context, properties []domain.Property) (int, error) {
	return len(properties), nil
}

func (f *flakyBackend) Ping(ctx context.Context) error { return nil }
func (f *flakyBackend) Close() error                   { return nil }

var policy = repository.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestWithRetry_RecoversTransientFailure(t *testing.T) {
	backend := &flakyBackend{failures: 2, err: &domain.StoreError{Op: "query", Err: errors.New("connection reset")}}
	store := repository.WithRetry(backend, policy)

	properties, total, err := store.Query(context.Background(), domain.PropertyFilter{}, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, properties, 1)
	assert.EqualValues(t, 1, *total)
	assert.Equal(t, 3, backend.calls)
}

func TestWithRetry_GivesUp(t *testing.T) {
	backend := &flakyBackend{failures: 10, err: &domain.StoreError{Op: "find_by_id", Err: errors.New("connection refused")}}
	store := repository.WithRetry(backend, policy)

	_, err := store.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Equal(t, 3, backend.calls)
}

func TestWithRetry_DoesNotRetryTimeouts(t *testing.T) {
	backend := &flakyBackend{failures: 10, err: &domain.StoreError{Op: "query", Timeout: true, Err: context.DeadlineExceeded}}
	store := repository.WithRetry(backend, policy)

	_, err := store.QueryByTimeRange(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.Equal(t, 1, backend.calls)
}

func TestWithRetry_DoesNotRetryOtherErrors(t *testing.T) {
	backend := &flakyBackend{failures: 10, err: errors.New("decode failure")}
	store := repository.WithRetry(backend, policy)

	_, err := store.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, 1, backend.calls)
}

func TestWithRetry_Disabled(t *testing.T) {
	backend := &flakyBackend{}
	store := repository.WithRetry(backend, repository.RetryPolicy{MaxAttempts: 1})
	assert.Same(t, backend, store)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, repository.Classify("query", nil))

	err := repository.Classify("query", fmt.Errorf("read: %w", context.DeadlineExceeded))
	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.True(t, storeErr.Timeout)
	assert.Equal(t, "query", storeErr.Op)

	err = repository.Classify("ping", errors.New("refused"))
	require.ErrorAs(t, err, &storeErr)
	assert.False(t, storeErr.Timeout)
	assert.ErrorIs(t, err, domain.ErrStore)

	original := &domain.StoreError{Op: "inner"}
	assert.Same(t, original, repository.Classify("outer", original))

	decoded := repository.Decoded(errors.New("invalid character 'x'"))
	assert.Same(t, decoded, repository.Classify("query", decoded))
	assert.NotErrorIs(t, decoded, domain.ErrStore)
	assert.Nil(t, repository.Decoded(nil))
}

func TestWithRetry_DoesNotRetryDecodeErrors(t *testing.T) {
	backend := &flakyBackend{failures: 10, err: repository.Decoded(errors.New("bad uuid"))}
	store := repository.WithRetry(backend, policy)

	_, _, err := store.Query(context.Background(), domain.PropertyFilter{}, domain.Page{Limit: 10})
	var decodeErr *repository.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 1, backend.calls)
}

func TestPageTotal(t *testing.T) {
	total := repository.PageTotal(2, 7, domain.Page{Limit: 2})
	require.NotNil(t, total)
	assert.EqualValues(t, 7, *total)

	zero := repository.PageTotal(0, 0, domain.Page{Limit: 2})
	require.NotNil(t, zero)
	assert.EqualValues(t, 0, *zero)

	assert.Nil(t, repository.PageTotal(0, 0, domain.Page{Limit: 2, Offset: 4}))
}

func TestRegistry(t *testing.T) {
	registry := repository.NewRegistry()
	backend := &flakyBackend{}
	registry.Register("memory", func(ctx context.Context, opts repository.Options) (repository.Backend, error) {
		return backend, nil
	})
	registry.Register("broken", func(ctx context.Context, opts repository.Options) (repository.Backend, error) {
		return nil, errors.New("boom")
	})

	assert.Equal(t, []string{"broken", "memory"}, registry.Drivers())

	got, err := registry.Open(context.Background(), repository.Options{Driver: "memory"})
	require.NoError(t, err)
	assert.Same(t, backend, got)

	_, err = registry.Open(context.Background(), repository.Options{Driver: "broken"})
	assert.ErrorContains(t, err, "boom")

	_, err = registry.Open(context.Background(), repository.Options{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
