package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a DomainError for transport mapping.
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeConflict   ErrorCode = "CONFLICT"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
)

// FieldError describes a problem with a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) Error() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// DomainError is the error type returned across service boundaries.
type DomainError struct {
	Code    ErrorCode
	Message string
	Details []FieldError
	Err     error
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		parts := make([]string, len(e.Details))
		for i, d := range e.Details {
			parts[i] = d.Error()
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Err.Error())
		b.WriteString(")")
	}
	return b.String()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error without field details.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewFieldValidationError creates a validation error for one or more fields.
func NewFieldValidationError(message string, details ...FieldError) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message, Details: details}
}

// NewConflictError creates a conflict error, optionally naming the offending fields.
func NewConflictError(message string, fields ...string) *DomainError {
	e := &DomainError{Code: CodeConflict, Message: message}
	for _, f := range fields {
		e.Details = append(e.Details, FieldError{Field: f, Message: message})
	}
	return e
}

// NewNotFoundError creates a not-found error for the given entity and key.
func NewNotFoundError(entity, key string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, key),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, err error) *DomainError {
	return &DomainError{Code: CodeInternal, Message: message, Err: err}
}

// AsDomainError extracts a *DomainError from the chain, if any.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	de, ok := AsDomainError(err)
	return ok && de.Code == code
}

func IsValidation(err error) bool { return HasCode(err, CodeValidation) }

func IsConflict(err error) bool { return HasCode(err, CodeConflict) }

func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }
