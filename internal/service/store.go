package service

import (
	"context"
	"errors"
	"time"

	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/repository"
)

// storeCall bounds every store round-trip by a timeout
type storeCall struct {
	timeout time.Duration
}

func (c storeCall) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// wrap turns a store failure into a *domain.StoreError. A call whose
// deadline expired is always reported as a timeout.
func (c storeCall) wrap(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.StoreError{Op: op, Timeout: true, Err: err}
	}
	return repository.Classify(op, err)
}
