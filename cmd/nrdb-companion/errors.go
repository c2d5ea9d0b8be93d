package main

import (
	"errors"

	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
	"github.com/ramonehamilton/NRDB-Companion/internal/nrdb"
)

// Exit codes.
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitValidationError = 2
	ExitParseError      = 3
	ExitFetchError      = 4
	ExitNotFound        = 5
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int

	// Printed is set when the command already reported the error.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// exitCodeFromError determines the appropriate exit code for an error.
func exitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, collection.ErrValidation), errors.Is(err, nrdb.ErrInvalidInput):
		return ExitValidationError
	case errors.Is(err, collection.ErrParse), errors.Is(err, collection.ErrFormat):
		return ExitParseError
	case errors.Is(err, collection.ErrNotFound), errors.Is(err, nrdb.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, nrdb.ErrFetch):
		return ExitFetchError
	default:
		return ExitGeneralError
	}
}
