// Package remote fetches candidate listings from an external catalog service
// over HTTP. The catalog receives the already-normalized query and its
// variants, so it matches with the same normalization the ranker scores with.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/retrieval"
	apperrors "github.com/rizzani/grovi-sub000/pkg/errors"
	"github.com/rizzani/grovi-sub000/pkg/httpclient"
)

const (
	serviceName    = "catalog"
	candidatesPath = "/api/v1/candidates"
	healthPath     = "/health/live"
)

// candidatesResponse is the {"data": [...]} envelope returned by the catalog.
type candidatesResponse struct {
	Data []domain.CandidateListing `json:"data"`
}

// Retriever implements retrieval.Retriever against the catalog service.
type Retriever struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// New creates a catalog retriever. baseURL is the service root, e.g.
// http://catalog:8080.
func New(baseURL string, client *httpclient.CircuitBreakerClient, logger *slog.Logger) *Retriever {
	return &Retriever{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Retrieve posts q to the catalog and returns its candidates.
func (r *Retriever) Retrieve(ctx context.Context, q retrieval.Query) ([]domain.CandidateListing, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode candidate request: %w", err)
	}

	resp, err := r.client.Post(ctx, r.baseURL+candidatesPath, "application/json", bytes.NewReader(body))
	if err != nil {
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			return nil, apperrors.ServiceUnavailable(serviceName, err)
		}
		return nil, fmt.Errorf("call %s: %w", serviceName, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var out candidatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", serviceName, err)
	}
	if out.Data == nil {
		out.Data = []domain.CandidateListing{}
	}
	if q.Limit > 0 && len(out.Data) > q.Limit {
		r.logger.WarnContext(ctx, "catalog returned more candidates than requested",
			slog.Int("limit", q.Limit),
			slog.Int("returned", len(out.Data)),
		)
		out.Data = out.Data[:q.Limit]
	}

	r.logger.DebugContext(ctx, "catalog candidates retrieved",
		slog.String("query", q.Normalized),
		slog.Int("count", len(out.Data)),
	)
	return out.Data, nil
}

// Ping checks the catalog liveness endpoint.
func (r *Retriever) Ping(ctx context.Context) error {
	resp, err := r.client.Get(ctx, r.baseURL+healthPath)
	if err != nil {
		return fmt.Errorf("ping %s: %w", serviceName, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping %s: status %d", serviceName, resp.StatusCode)
	}
	return nil
}
