package domain

import (
	"fmt"
)

// ValidationError reports that a caller-supplied request is structurally
// incomplete. It is surfaced as a client-side fault and never retried.
// It can accumulate multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

// MalformedResponseError reports that no JSON object could be located in the
// model's reply. The grading attempt fails; the score is never defaulted.
type MalformedResponseError struct {
	// Detail describes why extraction failed.
	Detail string

	// ResponseLength is the length of the raw reply, for diagnostics without
	// logging the reply itself.
	ResponseLength int
}

// Error implements the error interface for MalformedResponseError.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response (%d chars): %s", e.ResponseLength, e.Detail)
}

// NewMalformedResponseError creates a MalformedResponseError with the given
// detail and the length of the offending response.
func NewMalformedResponseError(detail string, responseLength int) *MalformedResponseError {
	return &MalformedResponseError{Detail: detail, ResponseLength: responseLength}
}

// SchemaValidationError reports that extracted JSON parsed or failed to parse
// but did not satisfy the scoring-payload schema. It carries the underlying
// structural complaint.
type SchemaValidationError struct {
	// Err is the underlying parse or validation failure.
	Err error
}

// Error implements the error interface for SchemaValidationError.
func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("scoring payload failed schema validation: %v", e.Err)
}

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (e *SchemaValidationError) Unwrap() error { return e.Err }

// NewSchemaValidationError wraps an underlying structural complaint.
func NewSchemaValidationError(err error) *SchemaValidationError {
	return &SchemaValidationError{Err: err}
}
