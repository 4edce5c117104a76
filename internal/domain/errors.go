package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned for any missing, malformed or mismatched credential
	ErrUnauthorized = errors.New("invalid credential")
	// ErrNotFound matches every *NotFoundError
	ErrNotFound = errors.New("not found")
	// ErrStore matches every *StoreError
	ErrStore = errors.New("store unavailable")
	// ErrTemplate matches every *TemplateError
	ErrTemplate = errors.New("template missing")
)

// ValidationError reports bad caller input for a single field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity that does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StoreError wraps a failure of the property store
type StoreError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *StoreError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("store %s: timeout", e.Op)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// TemplateError reports a missing template for a language and tone
type TemplateError struct {
	Language string
	Tone     string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("no template for language %q tone %q", e.Language, e.Tone)
}

func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplate
}
