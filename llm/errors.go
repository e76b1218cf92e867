package llm

import (
	"errors"
	"fmt"
)

// APIErrorKind distinguishes the ways a completion round trip can fail.
type APIErrorKind string

const (
	// APIErrorRequestFailed means the provider could not be reached or the
	// body could not be read.
	APIErrorRequestFailed APIErrorKind = "request_failed"
	// APIErrorParseFailed means the provider answered with a body that is
	// neither an error envelope nor a well-formed success envelope.
	APIErrorParseFailed APIErrorKind = "parse_failed"
	// APIErrorResponse means the provider itself reported an error.
	APIErrorResponse APIErrorKind = "error_response"
)

// APIError is a provider-neutral wire error.
type APIError struct {
	Kind       APIErrorKind
	Message    string
	StatusCode int   // HTTP status, zero when no response was received
	Err        error // Underlying transport or decoding error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch e.Kind {
	case APIErrorRequestFailed:
		return "request failed: " + e.detail()
	case APIErrorParseFailed:
		return "response parsing failed: " + e.detail()
	case APIErrorResponse:
		return "error response from API: " + e.Message
	default:
		return "api error: " + e.detail()
	}
}

func (e *APIError) detail() string {
	if e.Err != nil {
		if e.Message != "" {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ContextLengthError reports that the provider rejected a request because the
// assembled prompt exceeds the model's context window. Message carries the
// provider's original text.
type ContextLengthError struct {
	Message string
	Err     *APIError
}

// Error implements the error interface.
func (e *ContextLengthError) Error() string {
	return fmt.Sprintf("context length error: %s", e.Message)
}

// Unwrap returns the provider error that was classified.
func (e *ContextLengthError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// NewRequestFailedError creates a transport failure error.
func NewRequestFailedError(message string, err error) *APIError {
	return &APIError{
		Kind:    APIErrorRequestFailed,
		Message: message,
		Err:     err,
	}
}

// NewParseFailedError creates a malformed-response error.
func NewParseFailedError(message string, statusCode int, err error) *APIError {
	return &APIError{
		Kind:       APIErrorParseFailed,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewErrorResponse creates a provider-reported error.
func NewErrorResponse(message string, statusCode int) *APIError {
	return &APIError{
		Kind:       APIErrorResponse,
		Message:    message,
		StatusCode: statusCode,
	}
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsErrorResponse checks if an error is a provider-reported error.
func IsErrorResponse(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == APIErrorResponse
}

// IsRequestFailed checks if an error is a transport failure.
func IsRequestFailed(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == APIErrorRequestFailed
}

// IsParseFailed checks if an error is a malformed provider response.
func IsParseFailed(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == APIErrorParseFailed
}

// IsContextLengthError checks if an error is a classified context-length error.
func IsContextLengthError(err error) bool {
	var ctxErr *ContextLengthError
	return errors.As(err, &ctxErr)
}
