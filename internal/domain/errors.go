package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrInvalidConfig        = errors.New("invalid config")
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	ErrGenerationFailed     = errors.New("generation failed")
	ErrDimensionMismatch    = errors.New("dimension mismatch")
	ErrContextTooLarge      = errors.New("context too large")
	ErrDuplicateChunk       = errors.New("duplicate chunk")
)

// Error carries the failure kind, the operation that failed and the
// offending value so callers can decide whether to retry.
type Error struct {
	Kind  error
	Op    string
	Value any
	Err   error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.Value != nil {
		msg += fmt.Sprintf(" (%v)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds an *Error of the given kind.
func NewError(kind error, op string, value any, err error) *Error {
	return &Error{Kind: kind, Op: op, Value: value, Err: err}
}

// InvalidConfig reports a bad parameter value.
func InvalidConfig(op string, value any, reason string) error {
	return &Error{Kind: ErrInvalidConfig, Op: op, Value: value, Err: errors.New(reason)}
}

// DimensionMismatch reports a vector whose length differs from the index dimension.
func DimensionMismatch(op string, want, got int) error {
	return &Error{Kind: ErrDimensionMismatch, Op: op, Value: fmt.Sprintf("want %d, got %d", want, got)}
}

// EmbeddingFailure wraps err as ErrEmbeddingUnavailable unless it already
// carries a kind from this package.
func EmbeddingFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: ErrEmbeddingUnavailable, Op: op, Err: err}
}

// GenerationFailure wraps err as ErrGenerationFailed.
func GenerationFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrGenerationFailed) {
		return err
	}
	return &Error{Kind: ErrGenerationFailed, Op: op, Err: err}
}
