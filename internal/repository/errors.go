package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/Rrens/property-mcp/internal/domain"
)

// Classify wraps err as a *domain.StoreError for op. Deadline and network
// timeouts are flagged so callers can tell them apart from other failures.
// A nil err stays nil; existing StoreError and DecodeError values are
// returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		storeErr  *domain.StoreError
		decodeErr *DecodeError
	)
	if errors.As(err, &storeErr) || errors.As(err, &decodeErr) {
		return err
	}

	return &domain.StoreError{Op: op, Timeout: IsTimeout(err), Err: err}
}

// IsTimeout reports whether err was caused by a deadline
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// DecodeError reports a fetched row that could not be read as a property.
// Retrying cannot fix it, so it is never turned into a StoreError.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode property: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoded marks err from a row decode step, leaving nil as is
func Decoded(err error) error {
	if err == nil {
		return nil
	}
	return &DecodeError{Err: err}
}
