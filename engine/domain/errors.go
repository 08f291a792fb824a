package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for document parsing failures.
var (
	ErrMalformedDocument  = errors.New("malformed document")
	ErrUnsupportedVersion = errors.New("unsupported schema version")
)

// ParseError is the only failure the engine reports. It carries the
// detected schema version and the underlying decoder message.
type ParseError struct {
	Version int
	Message string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Version > 0 {
		return fmt.Sprintf("parse: v%d: %s", e.Version, e.Message)
	}
	return fmt.Sprintf("parse: %s", e.Message)
}

func (e *ParseError) Unwrap() error { return e.Wrapped }

// NewParseError creates a ParseError from a decoder failure. The message is
// taken from cause so callers can show it verbatim.
func NewParseError(version int, sentinel, cause error) *ParseError {
	msg := sentinel.Error()
	if cause != nil {
		msg = cause.Error()
	}
	return &ParseError{
		Version: version,
		Message: msg,
		Wrapped: errors.Join(sentinel, cause),
	}
}
