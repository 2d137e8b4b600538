package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The HTTP boundary maps each kind to exactly
// one status code; everything below the boundary reasons in kinds only.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindPendingApproval
	KindInvalidInput
	KindConflict
	KindInvalidTransition
	KindUnavailable
	KindUpstreamFailure
)

var kindNames = map[Kind]string{
	KindInternal:          "Internal",
	KindNotFound:          "NotFound",
	KindForbidden:         "Forbidden",
	KindUnauthenticated:   "Unauthenticated",
	KindPendingApproval:   "PendingApproval",
	KindInvalidInput:      "InvalidInput",
	KindConflict:          "Conflict",
	KindInvalidTransition: "InvalidTransition",
	KindUnavailable:       "Unavailable",
	KindUpstreamFailure:   "UpstreamFailure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single error type returned by the core. Message is safe to
// show to callers; Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an Error of the given kind.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a cause to a new Error of the given kind. The
// cause's text is kept out of Message.
func WrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Upstream wraps a store or broker failure.
func Upstream(err error, format string, args ...any) *Error {
	return WrapError(KindUpstreamFailure, err, format, args...)
}

// KindOf reports the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message for err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}

// Named failures referenced by callers with errors.Is.
var (
	ErrInvalidToken       = NewError(KindUnauthenticated, "not authorized, token failed or expired")
	ErrUnknownSubject     = NewError(KindUnauthenticated, "not authorized, identity associated with token not found")
	ErrMissingToken       = NewError(KindUnauthenticated, "not authorized, no token provided")
	ErrInvalidCredentials = NewError(KindUnauthenticated, "invalid email or password")
	ErrDuplicateEmail     = NewError(KindConflict, "an identity with this email already exists")
	ErrUnknownStatus      = NewError(KindInvalidInput, "invalid booking status; allowed: approved, rejected, completed")
	ErrInvalidTransition  = NewError(KindInvalidTransition, "booking status transition not allowed")
	ErrPendingApproval    = NewError(KindPendingApproval, "owner account not yet approved by an admin")
)
