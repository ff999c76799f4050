package errors

import (
	"errors"
	"fmt"
)

// Kind categorizes the failure so callers and the transport layer can react
// without string matching.
type Kind string

const (
	// KindNotFound marks operations on ids that do not exist.
	KindNotFound Kind = "NOT_FOUND"

	// KindInvalidInput marks requests rejected before any write.
	KindInvalidInput Kind = "INVALID_INPUT"

	// KindUpstreamFailure marks a failed call to an external collaborator,
	// such as the price feed.
	KindUpstreamFailure Kind = "UPSTREAM_FAILURE"

	// KindConstraintViolation marks a store rejection of a write that breaks
	// a uniqueness invariant. Given the upsert design this surfacing at all
	// indicates a logic bug.
	KindConstraintViolation Kind = "CONSTRAINT_VIOLATION"

	// KindInternal marks unexpected store or runtime failures.
	KindInternal Kind = "INTERNAL"
)

// Error is the service's typed error. It carries a kind, a caller-facing
// message, and optionally the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

func InvalidInputf(format string, args ...interface{}) *Error {
	return New(KindInvalidInput, fmt.Sprintf(format, args...))
}

func UpstreamFailure(err error, message string) *Error {
	return Wrap(err, KindUpstreamFailure, message)
}

func ConstraintViolation(err error, message string) *Error {
	return Wrap(err, KindConstraintViolation, message)
}

func Internal(err error, message string) *Error {
	return Wrap(err, KindInternal, message)
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal
// for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether any error in the chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func IsNotFound(err error) bool     { return IsKind(err, KindNotFound) }
func IsInvalidInput(err error) bool { return IsKind(err, KindInvalidInput) }
