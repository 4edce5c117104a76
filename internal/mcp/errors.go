package mcp

import (
	"errors"

	"github.com/Rrens/property-mcp/internal/domain"
)

// Error kinds reported to callers
const (
	KindValidation       = "validation_error"
	KindNotFound         = "not_found"
	KindUnauthorized     = "unauthorized"
	KindStoreUnavailable = "store_unavailable"
	KindStoreTimeout     = "store_timeout"
	KindInternal         = "internal_error"
)

// classify maps a domain error to its kind and a message that is safe to
// return. Only store failures are retryable.
func classify(err error) (ErrorInfo, string) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		storeErr      *domain.StoreError
	)

	switch {
	case errors.As(err, &validationErr):
		return ErrorInfo{Kind: KindValidation}, validationErr.Error()
	case errors.As(err, &notFoundErr):
		return ErrorInfo{Kind: KindNotFound}, notFoundErr.Error()
	case errors.Is(err, domain.ErrNotFound):
		return ErrorInfo{Kind: KindNotFound}, "not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return ErrorInfo{Kind: KindUnauthorized}, domain.ErrUnauthorized.Error()
	case errors.As(err, &storeErr) && storeErr.Timeout:
		return ErrorInfo{Kind: KindStoreTimeout, Retryable: true}, "property store timed out, try again later"
	case errors.As(err, &storeErr):
		return ErrorInfo{Kind: KindStoreUnavailable, Retryable: true}, "property store unavailable, try again later"
	}
	return ErrorInfo{Kind: KindInternal}, "internal error"
}

// rpcErrorFor builds the JSON-RPC error for a failed resource or prompt call
func rpcErrorFor(err error) *RPCError {
	info, message := classify(err)

	code := codeInternalError
	switch info.Kind {
	case KindValidation, KindNotFound:
		code = codeInvalidParams
	case KindUnauthorized:
		code = codeUnauthorized
	}
	return &RPCError{Code: code, Message: message, Data: &info}
}

// toolErrorResult reports a failed tool call inside a successful response
func toolErrorResult(err error) toolsCallResult {
	info, message := classify(err)
	return toolsCallResult{
		Content:   []contentBlock{{Type: "text", Text: message}},
		IsError:   true,
		ErrorInfo: &info,
	}
}

func unauthorizedError() *RPCError {
	return &RPCError{
		Code:    codeUnauthorized,
		Message: domain.ErrUnauthorized.Error(),
		Data:    &ErrorInfo{Kind: KindUnauthorized},
	}
}

func protocolError(code int, message string) *RPCError {
	return &RPCError{Code: code, Message: message}
}
