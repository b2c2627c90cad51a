// Package serrors classifies chat platform failures into a small set of kinds
// so that moderation code can decide what to log and what is worth retrying
// without knowing which platform or transport produced the error.
package serrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind is a failure category. Kinds are comparable sentinels usable with errors.Is.
type Kind interface {
	error
	// Transient reports whether the same call may succeed later.
	Transient() bool
}

type kind struct {
	name      string
	transient bool
}

func (k kind) Error() string   { return k.name }
func (k kind) Transient() bool { return k.transient }

var (
	// ErrNotFound: the channel, user or guild does not exist.
	ErrNotFound Kind = kind{name: "NOT_FOUND"}
	// ErrForbidden: the bot lacks the permission for the action.
	ErrForbidden Kind = kind{name: "FORBIDDEN"}
	// ErrBadRequest: malformed input, e.g. a URL that cannot be parsed.
	ErrBadRequest Kind = kind{name: "BAD_REQUEST"}
	ErrTimeout    Kind = kind{name: "TIMEOUT", transient: true}
	// ErrUnavailable: transport failure or a platform outage.
	ErrUnavailable Kind = kind{name: "UNAVAILABLE", transient: true}
	ErrRateLimited Kind = kind{name: "RATE_LIMITED", transient: true}
)

// FromStatus maps a platform HTTP status onto a kind. Statuses without a
// dedicated kind are reported as unavailable.
func FromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return ErrTimeout
	case status >= 400 && status < 500:
		return ErrBadRequest
	default:
		return ErrUnavailable
	}
}

// Error is a failure tagged with a kind. errors.Is matches both the kind and
// the wrapped cause.
type Error struct {
	Kind  Kind
	cause error
	msg   string
}

// With constructs an error of kind k without a cause.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{Kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap tags err with kind k.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{Kind: k, cause: err, msg: fmt.Sprintf(msgFmt, args...)}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}

	return e.msg + ": " + e.cause.Error()
}

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.cause}
}

// KindOf returns the first kind in err's chain. Context deadlines are
// reported as timeouts even when untagged; nil is returned otherwise.
func KindOf(err error) Kind {
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	return nil
}

// Transient reports whether err is of a kind that may succeed on retry.
func Transient(err error) bool {
	k := KindOf(err)

	return k != nil && k.Transient()
}
