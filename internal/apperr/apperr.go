// Package apperr carries the error taxonomy shared by the domain services.
// Services classify storage and state errors into one of the kinds below;
// handlers map kinds to HTTP status codes and never leak raw storage errors.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Validation Kind = iota
	Precondition
	NotFound
	PermissionDenied
	Conflict
	Internal
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Precondition:
		return "precondition"
	case NotFound:
		return "not_found"
	case PermissionDenied:
		return "permission_denied"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// KindOf returns the kind of err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// ReasonOf returns the human-readable reason, falling back to err.Error().
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return err.Error()
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
