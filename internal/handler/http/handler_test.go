package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rizzani/grovi-sub000/internal/config"
	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/ranking"
	"github.com/rizzani/grovi-sub000/internal/retrieval"
	"github.com/rizzani/grovi-sub000/internal/retrieval/memory"
	"github.com/rizzani/grovi-sub000/internal/service"
	"github.com/rizzani/grovi-sub000/pkg/health"
	"github.com/rizzani/grovi-sub000/pkg/httputil"
)

type response struct {
	Data  json.RawMessage         `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededCatalog(t *testing.T) *memory.Retriever {
	t.Helper()
	r := memory.New()
	require.NoError(t, r.BulkIndex(context.Background(), []domain.CandidateListing{
		{StoreID: "s1", ProductID: "p1", SKU: "SKU-1", Title: "Grace Corned Beef", Brand: "Grace", CategoryID: "c1", CategoryName: "Canned Meat", Price: 850, InStock: true},
		{StoreID: "s1", ProductID: "p2", SKU: "SKU-2", Title: "Corned Beef Hash", Brand: "Generic", CategoryID: "c1", CategoryName: "Canned Meat", Price: 900, InStock: true},
		{StoreID: "s1", ProductID: "p3", SKU: "SKU-3", Title: "Whole Milk 1L", Brand: "Dairy Farms", CategoryID: "c2", CategoryName: "Dairy", Price: 350, InStock: true},
		{StoreID: "s2", ProductID: "p4", SKU: "SKU-1", Title: "Grace Corned Beef", Brand: "Grace", CategoryID: "c1", CategoryName: "Canned Meat", Price: 799, InStock: false},
	}))
	return r
}

func newTestRouter(t *testing.T, backend retrieval.Retriever) http.Handler {
	t.Helper()
	return newTestRouterWithEnv(t, backend, nil)
}

func newTestRouterWithEnv(t *testing.T, backend retrieval.Retriever, extra map[string]string) http.Handler {
	t.Helper()
	env := map[string]string{"DEFAULT_PAGE_SIZE": "2", "MAX_PAGE_SIZE": "3"}
	for k, v := range extra {
		env[k] = v
	}
	cfg, err := config.LoadFrom(env)
	require.NoError(t, err)

	logger := discardLogger()
	searchSvc := service.NewSearchService(backend, ranking.NewRanker(cfg.MaxCandidates), cfg.RetrievalTimeout, logger)
	catalogSvc := service.NewCatalogService(backend, logger)
	return NewRouter(cfg, searchSvc, catalogSvc, health.NewHandler(), logger)
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func decodeData[T any](t *testing.T, resp response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

func titles(results []domain.RankedResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Listing.Title
	}
	return out
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRequest(t *testing.T, method, target string, body io.Reader, contentType string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", contentType)
	return req
}
