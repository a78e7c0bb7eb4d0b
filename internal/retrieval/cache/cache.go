// Package cache memoizes candidate retrieval in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/retrieval"
	apperrors "github.com/rizzani/grovi-sub000/pkg/errors"
)

const (
	keyPrefix     = "grovi:candidates:"
	generationKey = keyPrefix + "generation"
)

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "search_candidate_cache_requests_total",
		Help: "Candidate cache lookups by result (hit, miss, error).",
	},
	[]string{"result"},
)

// Retriever wraps another retriever with a Redis cache. Entries are keyed by
// the query variants, filters and limit under a generation counter; any write
// through the cache bumps the generation, which orphans every cached entry
// until its TTL expires. Redis failures are logged and bypass the cache.
type Retriever struct {
	next   retrieval.Retriever
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New wraps next with a cache whose entries live for ttl.
func New(next retrieval.Retriever, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Retriever {
	return &Retriever{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// lookupKey identifies a cached candidate set. Raw is left out so that
// queries normalizing to the same variants share an entry.
type lookupKey struct {
	Variants []string       `json:"v"`
	Filters  domain.Filters `json:"f"`
	Limit    int            `json:"l"`
}

func (r *Retriever) key(ctx context.Context, q retrieval.Query) (string, error) {
	gen, err := r.client.Get(ctx, generationKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("redis get generation: %w", err)
		}
		gen = "0"
	}

	data, err := json.Marshal(lookupKey{Variants: q.Variants, Filters: q.Filters, Limit: q.Limit})
	if err != nil {
		return "", fmt.Errorf("marshal cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return keyPrefix + gen + ":" + hex.EncodeToString(sum[:]), nil
}

// Retrieve returns cached candidates for q, or fetches and caches them.
func (r *Retriever) Retrieve(ctx context.Context, q retrieval.Query) ([]domain.CandidateListing, error) {
	key, err := r.key(ctx, q)
	if err != nil {
		cacheRequests.WithLabelValues("error").Inc()
		r.logger.WarnContext(ctx, "candidate cache unavailable", slog.String("error", err.Error()))
		return r.next.Retrieve(ctx, q)
	}

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var listings []domain.CandidateListing
		if uerr := json.Unmarshal(data, &listings); uerr == nil {
			if listings == nil {
				listings = []domain.CandidateListing{}
			}
			cacheRequests.WithLabelValues("hit").Inc()
			return listings, nil
		}
		r.logger.WarnContext(ctx, "discarding corrupt candidate cache entry", slog.String("key", key))
		cacheRequests.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		cacheRequests.WithLabelValues("miss").Inc()
	default:
		cacheRequests.WithLabelValues("error").Inc()
		r.logger.WarnContext(ctx, "candidate cache read failed", slog.String("error", err.Error()))
	}

	listings, err := r.next.Retrieve(ctx, q)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(listings); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.WarnContext(ctx, "candidate cache write failed", slog.String("error", err.Error()))
		}
	}
	return listings, nil
}

// Invalidate orphans every cached candidate set.
func (r *Retriever) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis incr generation: %w", err)
	}
	return nil
}

func (r *Retriever) indexer() (retrieval.Indexer, error) {
	idx, ok := r.next.(retrieval.Indexer)
	if !ok {
		return nil, apperrors.NotSupported("the configured retrieval backend is read-only")
	}
	return idx, nil
}

// afterWrite invalidates the cache once a write has reached the backend. A
// failed invalidation is logged; entries still expire with their TTL.
func (r *Retriever) afterWrite(ctx context.Context) {
	if err := r.Invalidate(ctx); err != nil {
		r.logger.WarnContext(ctx, "candidate cache invalidation failed", slog.String("error", err.Error()))
	}
}

// Index forwards to the wrapped backend and invalidates the cache.
func (r *Retriever) Index(ctx context.Context, listing *domain.CandidateListing) error {
	idx, err := r.indexer()
	if err != nil {
		return err
	}
	if err := idx.Index(ctx, listing); err != nil {
		return err
	}
	r.afterWrite(ctx)
	return nil
}

// Delete forwards to the wrapped backend and invalidates the cache.
func (r *Retriever) Delete(ctx context.Context, key string) error {
	idx, err := r.indexer()
	if err != nil {
		return err
	}
	if err := idx.Delete(ctx, key); err != nil {
		return err
	}
	r.afterWrite(ctx)
	return nil
}

// BulkIndex forwards to the wrapped backend and invalidates the cache.
func (r *Retriever) BulkIndex(ctx context.Context, listings []domain.CandidateListing) error {
	idx, err := r.indexer()
	if err != nil {
		return err
	}
	if err := idx.BulkIndex(ctx, listings); err != nil {
		return err
	}
	r.afterWrite(ctx)
	return nil
}

// Ping reports the health of the wrapped backend. Redis is not checked: the
// cache is bypassed while it is down.
func (r *Retriever) Ping(ctx context.Context) error {
	if p, ok := r.next.(retrieval.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
