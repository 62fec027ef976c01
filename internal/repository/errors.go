package repository

import (
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrSessionNotFound       = errors.New("session not found")
	ErrCompanyNotFound       = errors.New("company not found")
	ErrResetTokenInvalid     = errors.New("reset token invalid or expired")
	ErrRefreshTokenStale     = errors.New("refresh token no longer current")
	ErrEmailAlreadyValidated = errors.New("email already validated")
	ErrNotSupported          = errors.New("operation not supported")
)

// ErrSessionDeletionNotAllowed is returned by every SessionStore.Delete.
var ErrSessionDeletionNotAllowed error = &NotSupportedError{
	Message: "Session deletion is not allowed. Use MarkAsLoggedOutAsync instead.",
}

type NotSupportedError struct {
	Message string
}

func (e *NotSupportedError) Error() string {
	return e.Message
}

func (e *NotSupportedError) Is(target error) bool {
	return target == ErrNotSupported
}

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindUnavailable means no connection to the store could be established.
	KindUnavailable
)

func (k ErrorKind) String() string {
	if k == KindUnavailable {
		return "unavailable"
	}
	return "unknown"
}

// StoreError tags an infrastructure failure with its kind so callers can
// branch without inspecting message text.
type StoreError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Classify wraps err in a StoreError. Only failures to establish a
// connection count as unavailable; query errors, constraint violations and
// timeouts on an open connection stay unknown.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	kind := KindUnknown
	var connectErr *pgconn.ConnectError
	var opErr *net.OpError
	switch {
	case errors.As(err, &connectErr):
		kind = KindUnavailable
	case errors.As(err, &opErr) && opErr.Op == "dial":
		kind = KindUnavailable
	}

	return &StoreError{Kind: kind, Op: op, Err: err}
}

func KindOf(err error) ErrorKind {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}
	return KindUnknown
}
