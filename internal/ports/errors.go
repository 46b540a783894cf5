package ports

import (
	"errors"
	"fmt"

	"github.com/code-scoring/engine/internal/domain"
)

// Common infrastructure errors returned by adapters and the transport.
var (
	// ErrEmptyCompletion indicates the backend returned a recognizable shape
	// whose completion text was empty.
	ErrEmptyCompletion = errors.New("empty completion text")

	// ErrProviderNotConfigured indicates no configuration exists for the
	// requested provider.
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// UnexpectedProviderShapeError reports that a backend replied with a 2xx
// status but a body shape the adapter does not recognize. It is distinct
// from transport failure and usually means the backend's response format
// drifted across versions.
type UnexpectedProviderShapeError struct {
	// Provider is the backend whose response could not be interpreted.
	Provider domain.ProviderKind

	// Detail describes which shapes were attempted.
	Detail string
}

// Error implements the error interface for UnexpectedProviderShapeError.
func (e *UnexpectedProviderShapeError) Error() string {
	return fmt.Sprintf("unexpected %s response shape: %s", e.Provider, e.Detail)
}

// NewUnexpectedProviderShapeError creates an UnexpectedProviderShapeError.
func NewUnexpectedProviderShapeError(provider domain.ProviderKind, detail string) *UnexpectedProviderShapeError {
	return &UnexpectedProviderShapeError{Provider: provider, Detail: detail}
}

// ProviderTransportError reports a non-2xx status or network fault from the
// outbound LLM call. It carries the status code and response body for
// diagnostics.
type ProviderTransportError struct {
	// Provider is the backend the call was addressed to.
	Provider domain.ProviderKind

	// StatusCode is the HTTP status of the response, or 0 for network faults.
	StatusCode int

	// Body is the response body, when one was received.
	Body string

	// Err is the underlying network error, if any.
	Err error
}

// Error implements the error interface for ProviderTransportError.
func (e *ProviderTransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s transport error (HTTP %d): %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s transport error: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying network error, if any.
func (e *ProviderTransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether the failed call may be retried by the
// transport. Rate limits, server-side errors, and network faults are
// transient; client errors are not.
func (e *ProviderTransportError) IsRetryable() bool {
	if e.StatusCode == 0 {
		return e.Err != nil
	}
	return e.StatusCode == 429 || e.StatusCode >= 500
}
