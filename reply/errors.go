package reply

import (
	"errors"
	"fmt"
)

// ParseErrorKind identifies why a reply did not match the requested shape.
type ParseErrorKind string

const (
	ParseErrorMissingJSON              ParseErrorKind = "missing_json"
	ParseErrorInvalidJSON              ParseErrorKind = "invalid_json"
	ParseErrorMissingReasoningSequence ParseErrorKind = "missing_reasoning_sequence"
	ParseErrorBrokenReasoningSequence  ParseErrorKind = "broken_reasoning_sequence"
)

// ParseError is returned when a reply cannot be parsed.
type ParseError struct {
	Kind ParseErrorKind
	Err  error // JSON decoding error for ParseErrorInvalidJSON
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseErrorMissingJSON:
		return "reply contains no JSON"
	case ParseErrorInvalidJSON:
		return fmt.Sprintf("reply contains invalid JSON: %v", e.Err)
	case ParseErrorMissingReasoningSequence:
		return "reply does not start with " + ThinkOpen
	case ParseErrorBrokenReasoningSequence:
		return "reply has no closing " + ThinkClose
	default:
		return fmt.Sprintf("reply parse error: %s", e.Kind)
	}
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError checks if err is a *ParseError, optionally of one of kinds.
func IsParseError(err error, kinds ...ParseErrorKind) bool {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return false
	}
	if len(kinds) == 0 {
		return true
	}
	for _, kind := range kinds {
		if parseErr.Kind == kind {
			return true
		}
	}
	return false
}
