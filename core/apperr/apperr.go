package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error for the client-facing boundary.
type Kind int

const (
	// KindInternal is anything unexpected. Its message is never shown to clients.
	KindInternal Kind = iota
	// KindNotFound means a listing, catalog item, buy order or user does not exist.
	KindNotFound
	// KindInvalidState means the target is in a state that forbids the operation.
	KindInvalidState
	// KindValidation means the request carried out-of-range or missing values.
	KindValidation
	// KindPermissionDenied means a capability check failed or the actor is self-dealing.
	KindPermissionDenied
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindValidation:
		return "validation"
	case KindPermissionDenied:
		return "permission_denied"
	default:
		return "internal"
	}
}

// Error is a classified error with a short client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// InvalidState builds a KindInvalidState error.
func InvalidState(format string, args ...any) *Error {
	return newf(KindInvalidState, format, args...)
}

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// PermissionDenied builds a KindPermissionDenied error.
func PermissionDenied(format string, args ...any) *Error {
	return newf(KindPermissionDenied, format, args...)
}

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps an error to the HTTP status returned at the boundary.
func Status(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidState, KindValidation:
		return fiber.StatusBadRequest
	case KindPermissionDenied:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to send to clients.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
