package collection

import (
	"errors"
	"fmt"
)

// Sentinel errors for the collection error taxonomy. Use errors.Is against
// these; the typed errors below carry the details.
var (
	ErrValidation = errors.New("validation error")
	ErrParse      = errors.New("parse error")
	ErrFormat     = errors.New("unsupported format")
	ErrNotFound   = errors.New("not found")
	ErrNoPath     = errors.New("collection has no file path")
)

// ValidationError reports a negative or otherwise invalid quantity.
type ValidationError struct {
	Code    string
	Field   string
	Value   int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("invalid %s for card %s: %s (got %d)", e.Field, e.Code, e.Message, e.Value)
	}
	return fmt.Sprintf("invalid %s: %s (got %d)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ParseError reports a collection document that is not valid TOML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse collection file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// FormatError reports an unsupported file extension or document shape.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported file format %s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// NotFoundError reports an unknown card or pack code in a user-specified
// operation.
type NotFoundError struct {
	Kind string
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Code)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func negativeQuantity(code, field string, value int) error {
	return &ValidationError{Code: code, Field: field, Value: value, Message: "cannot be negative"}
}
