package remote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/retrieval"
	apperrors "github.com/rizzani/grovi-sub000/pkg/errors"
	"github.com/rizzani/grovi-sub000/pkg/httpclient"
)

func newTestRetriever(t *testing.T, url, breaker string) *Retriever {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := httpclient.New(httpclient.Config{Timeout: 2 * time.Second, MaxConnsPerHost: 4})
	cb := httpclient.NewCircuitBreakerClient(client, httpclient.CircuitBreakerConfig{
		Name:         breaker,
		MaxRequests:  1,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}, logger)
	return New(url+"/", cb, logger)
}

func TestRetriever_Retrieve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/candidates", r.URL.Path)

		var q retrieval.Query
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "saltfish", q.Normalized)
		assert.Equal(t, []string{"saltfish", "codfish", "salted cod"}, q.Variants)
		assert.True(t, q.Filters.InStockOnly)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"product_id":"p1","sku":"SF-1","title":"Saltfish Boneless","store_id":"s1","in_stock":true,"price":1200},
			{"product_id":"p2","sku":"SF-2","title":"Salted Cod Fillet","store_id":"s1","in_stock":true,"price":1500}
		]}`))
	}))
	defer server.Close()

	r := newTestRetriever(t, server.URL, "remote-retrieve")
	got, err := r.Retrieve(context.Background(), retrieval.NewQuery("Salt Fish", domain.Filters{InStockOnly: true}, 10))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Saltfish Boneless", got[0].Title)
	assert.Equal(t, int64(1500), got[1].Price)
}

func TestRetriever_Retrieve_TruncatesToLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"product_id":"p1"},{"product_id":"p2"},{"product_id":"p3"}]}`))
	}))
	defer server.Close()

	got, err := newTestRetriever(t, server.URL, "remote-limit").
		Retrieve(context.Background(), retrieval.NewQuery("rice", domain.Filters{}, 2))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRetriever_Retrieve_EmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	got, err := newTestRetriever(t, server.URL, "remote-empty").
		Retrieve(context.Background(), retrieval.NewQuery("rice", domain.Filters{}, 0))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRetriever_Retrieve_DownstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_INPUT","message":"limit too large"}}`))
	}))
	defer server.Close()

	_, err := newTestRetriever(t, server.URL, "remote-4xx").
		Retrieve(context.Background(), retrieval.NewQuery("rice", domain.Filters{}, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRetriever_Retrieve_CircuitOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := newTestRetriever(t, server.URL, "remote-open")
	q := retrieval.NewQuery("rice", domain.Filters{}, 0)
	for range 2 {
		_, err := r.Retrieve(context.Background(), q)
		require.Error(t, err)
	}

	_, err := r.Retrieve(context.Background(), q)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.ErrorIs(t, err, httpclient.ErrCircuitOpen)
}

func TestRetriever_Ping(t *testing.T) {
	var unhealthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health/live", r.URL.Path)
		if unhealthy.Load() {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := newTestRetriever(t, server.URL, "remote-ping")
	require.NoError(t, r.Ping(context.Background()))

	unhealthy.Store(true)
	assert.Error(t, r.Ping(context.Background()))
}
