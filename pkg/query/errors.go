package query

import (
	"errors"

	"github.com/getmockd/specdocs/pkg/spec"
)

// Failure categories reported by Service. Classify with errors.Is.
var (
	// ErrNotFound is returned when the specification or an endpoint is missing.
	ErrNotFound = spec.ErrNotFound

	// ErrParse is returned when the specification cannot be parsed.
	ErrParse = spec.ErrParse

	// ErrInvalidArgument is returned when a required argument is missing or malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotRepresentable is returned when no mock body can be produced for
	// an endpoint that exists.
	ErrNotRepresentable = errors.New("cannot generate mock response for this endpoint")
)
