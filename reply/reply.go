// Package reply turns raw completion text into typed values.
//
// A parser is a Func. Text returns the reply untouched, Object and Array
// pull a JSON value out of surrounding prose, and Reasoned strips a leading
// <think>...</think> block before handing the remainder to another parser.
// Every parser either succeeds or returns a *ParseError; none of them panic.
package reply

import (
	"encoding/json"
	"strings"
)

const (
	ThinkOpen  = "<think>"
	ThinkClose = "</think>"
)

// Func parses a raw reply into T.
type Func[T any] func(raw string) (T, error)

// YesNo is the reply shape for boolean questions.
type YesNo struct {
	Answer bool `json:"answer"`
}

// WithReasoning carries a parsed value together with the reasoning span the
// model produced before it. Reasoning is empty when none was extracted.
type WithReasoning[T any] struct {
	Value     T
	Reasoning string
}

// Text returns the reply untouched.
func Text(raw string) (string, error) {
	return raw, nil
}

// Object decodes the text between the first '{' and the last '}' as T.
func Object[T any](raw string) (T, error) {
	return findJSON[T](raw, '{', '}')
}

// Array decodes the text between the first '[' and the last ']' as a list
// of T.
func Array[T any](raw string) ([]T, error) {
	return findJSON[[]T](raw, '[', ']')
}

func findJSON[T any](raw string, opening, closing byte) (T, error) {
	var value T
	start := strings.IndexByte(raw, opening)
	end := strings.LastIndexByte(raw, closing)
	if start < 0 || end < start {
		return value, &ParseError{Kind: ParseErrorMissingJSON}
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &value); err != nil {
		return value, &ParseError{Kind: ParseErrorInvalidJSON, Err: err}
	}
	return value, nil
}

// SplitReasoning splits a reply that starts with a think block into the
// trimmed reasoning span and the trimmed remainder.
func SplitReasoning(raw string) (reasoning, rest string, err error) {
	if !strings.HasPrefix(raw, ThinkOpen) {
		return "", "", &ParseError{Kind: ParseErrorMissingReasoningSequence}
	}
	reasoning, rest, found := strings.Cut(raw[len(ThinkOpen):], ThinkClose)
	if !found {
		return "", "", &ParseError{Kind: ParseErrorBrokenReasoningSequence}
	}
	return strings.TrimSpace(reasoning), strings.TrimSpace(rest), nil
}

// Reasoned wraps inner so that the reply must start with a think block. The
// block becomes the reasoning span and the rest is parsed by inner.
func Reasoned[T any](inner Func[T]) Func[WithReasoning[T]] {
	return func(raw string) (WithReasoning[T], error) {
		reasoning, rest, err := SplitReasoning(raw)
		if err != nil {
			return WithReasoning[T]{}, err
		}
		value, err := inner(rest)
		if err != nil {
			return WithReasoning[T]{}, err
		}
		return WithReasoning[T]{Value: value, Reasoning: reasoning}, nil
	}
}

// Plain wraps inner so that its result carries an empty reasoning span.
func Plain[T any](inner Func[T]) Func[WithReasoning[T]] {
	return func(raw string) (WithReasoning[T], error) {
		value, err := inner(raw)
		if err != nil {
			return WithReasoning[T]{}, err
		}
		return WithReasoning[T]{Value: value}, nil
	}
}

// Think wraps reasoning in a think block.
func Think(reasoning string) string {
	return ThinkOpen + reasoning + ThinkClose
}
