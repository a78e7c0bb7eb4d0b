package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizzani/grovi-sub000/internal/config"
	"github.com/rizzani/grovi-sub000/internal/event"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(env)
	require.NoError(t, err)
	return cfg
}

func newTestApp(t *testing.T, env map[string]string) *App {
	t.Helper()
	a, err := NewApp(loadConfig(t, env), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })
	return a
}

func readiness(t *testing.T, a *App) map[string]any {
	t.Helper()
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNewApp_MemoryBackendServesIngestAndSearch(t *testing.T) {
	a := newTestApp(t, nil)
	assert.Empty(t, a.consumers)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings",
		strings.NewReader(`{"store_id":"s1","product_id":"p1","title":"Grace Corned Beef","brand":"Grace","price":850,"in_stock":true}`))
	req.Header.Set("Content-Type", "application/json")
	a.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=corn+beef", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Grace Corned Beef")
}

func TestNewApp_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newTestApp(t, map[string]string{
		"REDIS_HOST": mr.Host(),
		"REDIS_PORT": mr.Port(),
	})
	require.Len(t, a.closers, 1)

	body := readiness(t, a)
	checks, ok := body["checks"].(map[string]any)
	require.True(t, ok, "readiness response lists checks: %v", body)
	assert.Contains(t, checks, "redis")
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	_, err := NewApp(loadConfig(t, map[string]string{
		"REDIS_HOST": "127.0.0.1",
		"REDIS_PORT": strconv.Itoa(closedPort(t)),
	}), discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestNewApp_KafkaConsumersPerTopic(t *testing.T) {
	a := newTestApp(t, map[string]string{"KAFKA_ENABLED": "true"})

	require.Len(t, a.consumers, len(event.Topics()))
	topics := make([]string, len(a.consumers))
	for i, c := range a.consumers {
		topics[i] = c.Topic()
	}
	assert.Equal(t, event.Topics(), topics)
	assert.NotNil(t, a.producer)
}

func TestNewApp_ReadOnlyBackendSkipsConsumers(t *testing.T) {
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(catalog.Close)

	a := newTestApp(t, map[string]string{
		"KAFKA_ENABLED":       "true",
		"RETRIEVAL_BACKEND":   "remote",
		"CATALOG_SERVICE_URL": catalog.URL,
	})
	assert.Empty(t, a.consumers)
	assert.Nil(t, a.producer)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/listings/s1:p1", nil)
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	port := closedPort(t)
	a, err := NewApp(loadConfig(t, map[string]string{"SEARCH_HTTP_PORT": strconv.Itoa(port)}), discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/health/live"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// closedPort returns a local port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}
