package spec

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped) by Store and Source implementations.
var (
	// ErrNotFound means the specification does not exist at the configured location.
	ErrNotFound = errors.New("not found")

	// ErrParse means the specification content could not be parsed.
	ErrParse = errors.New("parse error")
)

// ParseError carries the parser diagnostic for a document that failed to parse.
// It matches ErrParse with errors.Is.
type ParseError struct {
	Location string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse OpenAPI file %s: %v", e.Location, e.Err)
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func notFound(location string) error {
	return fmt.Errorf("OpenAPI file not found: %s: %w", location, ErrNotFound)
}
