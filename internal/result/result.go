// Package result carries the outcome of a service operation: a value on
// success, or a message and a status category on failure.
package result

import "net/http"

type Status int

const (
	// StatusInternal is the zero value so an uninitialised Result reads as a failure.
	StatusInternal Status = iota
	StatusOK
	StatusBadRequest
	StatusUnauthorized
	StatusForbidden
	StatusNotFound
	StatusConflict
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBadRequest:
		return "bad_request"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusForbidden:
		return "forbidden"
	case StatusNotFound:
		return "not_found"
	case StatusConflict:
		return "conflict"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// HTTPStatus maps the category onto the status code used by the API.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusOK:
		return http.StatusOK
	case StatusBadRequest:
		return http.StatusBadRequest
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusForbidden:
		return http.StatusForbidden
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict:
		return http.StatusConflict
	case StatusUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Unit is the value of a Result that only signals success.
type Unit struct{}

type Result[T any] struct {
	value   T
	message string
	status  Status
}

func Success[T any](value T) Result[T] {
	return Result[T]{value: value, status: StatusOK}
}

func Failure[T any](status Status, message string) Result[T] {
	if status == StatusOK {
		status = StatusInternal
	}
	return Result[T]{message: message, status: status}
}

// Fail re-types a failed result. Passing a successful result is a programming
// error and yields an internal failure.
func Fail[T, U any](other Result[U]) Result[T] {
	if other.IsSuccess() {
		return Failure[T](StatusInternal, "unexpected success propagated as failure")
	}
	return Result[T]{message: other.message, status: other.status}
}

func Ok() Result[Unit] {
	return Success(Unit{})
}

func (r Result[T]) IsSuccess() bool {
	return r.status == StatusOK
}

func (r Result[T]) IsFailure() bool {
	return !r.IsSuccess()
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Message() string {
	return r.message
}

func (r Result[T]) Status() Status {
	return r.status
}

func (r Result[T]) HTTPStatus() int {
	return r.status.HTTPStatus()
}
