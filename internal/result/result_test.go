package result_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace/api/internal/result"
)

func TestSuccess(t *testing.T) {
	r := result.Success(42)

	assert.True(t, r.IsSuccess())
	assert.False(t, r.IsFailure())
	assert.Equal(t, 42, r.Value())
	assert.Empty(t, r.Message())
	assert.Equal(t, http.StatusOK, r.HTTPStatus())
}

func TestFailure(t *testing.T) {
	r := result.Failure[string](result.StatusForbidden, "blocked")

	assert.True(t, r.IsFailure())
	assert.False(t, r.IsSuccess())
	assert.Empty(t, r.Value())
	assert.Equal(t, "blocked", r.Message())
	assert.Equal(t, result.StatusForbidden, r.Status())
	assert.Equal(t, http.StatusForbidden, r.HTTPStatus())
}

func TestFailureWithOKStatusIsInternal(t *testing.T) {
	r := result.Failure[int](result.StatusOK, "oops")

	assert.True(t, r.IsFailure())
	assert.Equal(t, result.StatusInternal, r.Status())
}

func TestZeroValueIsFailure(t *testing.T) {
	var r result.Result[int]

	assert.True(t, r.IsFailure())
	assert.Equal(t, http.StatusInternalServerError, r.HTTPStatus())
}

func TestFail(t *testing.T) {
	src := result.Failure[int](result.StatusNotFound, "User not found.")
	r := result.Fail[bool](src)

	assert.True(t, r.IsFailure())
	assert.Equal(t, result.StatusNotFound, r.Status())
	assert.Equal(t, "User not found.", r.Message())

	fromSuccess := result.Fail[bool](result.Success(1))
	assert.True(t, fromSuccess.IsFailure())
	assert.Equal(t, result.StatusInternal, fromSuccess.Status())
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		status result.Status
		want   int
	}{
		{result.StatusBadRequest, http.StatusBadRequest},
		{result.StatusUnauthorized, http.StatusUnauthorized},
		{result.StatusForbidden, http.StatusForbidden},
		{result.StatusNotFound, http.StatusNotFound},
		{result.StatusConflict, http.StatusConflict},
		{result.StatusUnavailable, http.StatusServiceUnavailable},
		{result.StatusInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.HTTPStatus())
		})
	}
}
