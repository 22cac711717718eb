package models

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable code returned to API callers
type ErrorKind string

const (
	KindInvalidUserID       ErrorKind = "INVALID_USER_ID"
	KindInvalidPostID       ErrorKind = "INVALID_POST_ID"
	KindInvalidTopicName    ErrorKind = "INVALID_TOPIC_NAME"
	KindInvalidOperation    ErrorKind = "INVALID_OPERATION"
	KindQueryFailed         ErrorKind = "QUERY_FAILED"
	KindPostMutationFailed  ErrorKind = "POST_MUTATION_FAILED"
	KindTopicMutationFailed ErrorKind = "TOPIC_MUTATION_FAILED"
	KindUserMutationFailed  ErrorKind = "USER_MUTATION_FAILED"
	KindUnauthenticated     ErrorKind = "UNAUTHENTICATED"
	KindUnknown             ErrorKind = "UNKNOWN"
)

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidUserID       = &Error{Kind: KindInvalidUserID}
	ErrInvalidPostID       = &Error{Kind: KindInvalidPostID}
	ErrInvalidTopicName    = &Error{Kind: KindInvalidTopicName}
	ErrInvalidOperation    = &Error{Kind: KindInvalidOperation}
	ErrQueryFailed         = &Error{Kind: KindQueryFailed}
	ErrPostMutationFailed  = &Error{Kind: KindPostMutationFailed}
	ErrTopicMutationFailed = &Error{Kind: KindTopicMutationFailed}
	ErrUserMutationFailed  = &Error{Kind: KindUserMutationFailed}
	ErrUnauthenticated     = &Error{Kind: KindUnauthenticated}
)

// Error is the typed error produced by the access layer.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError creates an Error of the given kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error of the given kind that keeps err as its cause.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UnknownError is returned when a store or identity call fails outright.
func UnknownError(kind ErrorKind, err error) *Error {
	return WrapError(kind, err, "An unknown error occurred")
}
