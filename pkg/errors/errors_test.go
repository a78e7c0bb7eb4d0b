package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrInvalidInput, ErrServiceUnavail, ErrNotSupported}

	for i := range sentinels {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotErrorIs(t, sentinels[i], sentinels[j])
		}
	}
}

func TestAppError_Error(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Equal(t, "INTERNAL_ERROR: something broke: db connection lost", appErr.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "listing not found"}
	assert.Equal(t, "NOT_FOUND: listing not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("listing", "s1:p1"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("bad sort"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"not supported", NotSupported("read-only backend"), "NOT_SUPPORTED", http.StatusNotImplemented, ErrNotSupported},
		{"service unavailable", ServiceUnavailable("catalog", errors.New("circuit open")), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}

	assert.Contains(t, NotFound("listing", "s1:p1").Message, "s1:p1")
}

func TestServiceUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("circuit open")
	err := ServiceUnavailable("catalog", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrServiceUnavail)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"app error", InvalidInput("x"), http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"not supported", ErrNotSupported, http.StatusNotImplemented},
		{"unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"wrapped sentinel", fmt.Errorf("outer: %w", ErrNotFound), http.StatusNotFound},
		{"deadline", fmt.Errorf("retrieve: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unknown", errors.New("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
