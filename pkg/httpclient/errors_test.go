package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rizzani/grovi-sub000/pkg/errors"
)

func makeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_Structured(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
		httpCode int
	}{
		{"not found", http.StatusNotFound, apperrors.ErrNotFound, http.StatusNotFound},
		{"bad request", http.StatusBadRequest, apperrors.ErrInvalidInput, http.StatusBadRequest},
		{"not implemented", http.StatusNotImplemented, apperrors.ErrNotSupported, http.StatusNotImplemented},
		{"unavailable", http.StatusServiceUnavailable, apperrors.ErrServiceUnavail, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(makeResponse(tt.status, `{"error":{"code":"X","message":"nope"}}`), "catalog")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.httpCode, apperrors.HTTPStatus(err))
		})
	}
}

func TestParseResponseError_ServerError(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadGateway, `{"error":{"code":"UPSTREAM","message":"bad"}}`), "catalog")
	require.Error(t, err)
	assert.Equal(t, "catalog server error (502/UPSTREAM): bad", err.Error())
}

func TestParseResponseError_OtherStatusKeepsCode(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusConflict, `{"error":{"code":"CONFLICT","message":"dup"}}`), "catalog")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "catalog: dup", appErr.Message)
}

func TestParseResponseError_Unstructured(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"plain text", "gateway timeout"},
		{"empty", ""},
		{"null error", `{"error":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(makeResponse(http.StatusGatewayTimeout, tt.body), "catalog")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "catalog returned status 504")
		})
	}
}
