package analyzer

import "errors"

// Kind classifies errors surfaced to callers.
type Kind string

const (
	KindAccessDenied      Kind = "AccessDenied"
	KindSourceUnavailable Kind = "SourceUnavailable"
	KindInvalidPackage    Kind = "InvalidPackage"
)

// Error is a top-level failure of an audit operation.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so the sentinels
// below match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	// ErrAccessDenied means the usage-history authorization heuristic failed.
	// The user has to grant usage access outside the tool.
	ErrAccessDenied = &Error{Kind: KindAccessDenied, Message: "usage access not granted"}

	// ErrSourceUnavailable means a data source could not be queried at all.
	ErrSourceUnavailable = &Error{Kind: KindSourceUnavailable, Message: "data source unavailable"}

	// ErrInvalidPackage means a navigation request named no valid package.
	ErrInvalidPackage = &Error{Kind: KindInvalidPackage, Message: "invalid package name"}
)

func sourceUnavailable(msg string, err error) error {
	return &Error{Kind: KindSourceUnavailable, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
