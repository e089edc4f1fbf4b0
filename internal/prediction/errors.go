package prediction

import "errors"

// Kind is the closed set of failure classes the HTTP layer maps to status codes.
type Kind int

const (
	KindClient Kind = iota + 1
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error carries a user-facing message and, for internal failures, the cause.
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

func ClientError(msg string) *Error {
	return &Error{Kind: KindClient, Message: msg}
}

func InternalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf classifies err. Anything that is not an *Error is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
