package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=rice", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimit_WithinBurst(t *testing.T) {
	handler := RateLimit(10, 10, slog.New(slog.DiscardHandler))(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
}

func TestRateLimit_ExceedingBurst(t *testing.T) {
	handler := RateLimit(0.5, 3, slog.New(slog.DiscardHandler))(okHandler())

	codes := make([]int, 0, 4)
	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, requestFrom("10.0.0.1:12345"))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{200, 200, 200, 429}, codes)
	assert.Equal(t, "2", last.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":{"code":"RATE_LIMITED","message":"too many requests"}}`, last.Body.String())
}

func TestRateLimit_IndependentClients(t *testing.T) {
	handler := RateLimit(0.5, 1, slog.New(slog.DiscardHandler))(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.1:2"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.2:1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	next := okHandler()
	handler := RateLimit(0, 0, slog.New(slog.DiscardHandler))(next)

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("10.0.0.1:1"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientStore_SweepsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newClientStore(1, 1, time.Minute)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	store.get("10.0.0.1")
	store.get("10.0.0.2")
	require.Equal(t, 2, store.len())

	now = now.Add(2 * time.Minute)
	store.get("10.0.0.3")
	assert.Equal(t, 1, store.len())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		remote string
		want   string
	}{
		{"remote addr", "", "", "10.1.1.1:5000", "10.1.1.1"},
		{"forwarded chain", "X-Forwarded-For", "203.0.113.7, 10.0.0.1", "10.1.1.1:5000", "203.0.113.7"},
		{"invalid forwarded", "X-Forwarded-For", "not-an-ip", "10.1.1.1:5000", "10.1.1.1"},
		{"real ip", "X-Real-IP", "198.51.100.2", "10.1.1.1:5000", "198.51.100.2"},
		{"no port", "", "", "10.1.1.1", "10.1.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
