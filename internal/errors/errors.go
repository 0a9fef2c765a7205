package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an ingestion error.
type Kind string

const (
	// KindNotFound means a requested index or identity had zero matches.
	// Expected during normal sparse-data queries; callers may recover.
	KindNotFound Kind = "not_found"

	// KindInvalidArgument means a lookup or constructor argument was
	// malformed. The call is not retried.
	KindInvalidArgument Kind = "invalid_argument"

	// KindParse means a source row or file was malformed. The whole parse
	// operation is aborted with no partial-results recovery.
	KindParse Kind = "parse"

	// KindReuse means a single-read record was asked to parse a second
	// time after already being populated.
	KindReuse Kind = "reuse"
)

// Error is the error type returned by the container and parser packages.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "unknown error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument creates an invalid-argument error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Parse creates a parse error. cause may be nil.
func Parse(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Reuse creates a reuse error.
func Reuse(format string, args ...any) *Error {
	return &Error{Kind: KindReuse, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" for nil and foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalidArgument reports whether err is an invalid-argument error.
func IsInvalidArgument(err error) bool { return KindOf(err) == KindInvalidArgument }

// IsParse reports whether err is a parse error.
func IsParse(err error) bool { return KindOf(err) == KindParse }

// IsReuse reports whether err is a reuse error.
func IsReuse(err error) bool { return KindOf(err) == KindReuse }
