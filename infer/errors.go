package infer

import (
	"github.com/aschepis/backscratcher/companion/llm"
	"github.com/aschepis/backscratcher/companion/reply"
)

// ErrorKind is the caller-facing category of an inference error.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindAPI covers transport failures, malformed provider responses and
	// provider errors that are not about context length.
	KindAPI
	// KindParse means the reply did not have the requested shape.
	KindParse
	// KindContextLength means the prompt did not fit the model's context
	// window.
	KindContextLength
	KindUnknown
)

// String returns a readable name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAPI:
		return "api"
	case KindParse:
		return "parse"
	case KindContextLength:
		return "context_length"
	default:
		return "unknown"
	}
}

// Classify reports which kind of error err is.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	// ContextLengthError wraps the APIError it was classified from, so it
	// must be checked first.
	if llm.IsContextLengthError(err) {
		return KindContextLength
	}
	if reply.IsParseError(err) {
		return KindParse
	}
	if _, ok := llm.AsAPIError(err); ok {
		return KindAPI
	}
	return KindUnknown
}
