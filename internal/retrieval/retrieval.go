// Package retrieval defines how candidate listings are fetched for a query
// and the backends that serve them.
package retrieval

import (
	"context"
	"slices"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/pkg/textnorm"
)

// Query is a candidate lookup. Variants hold the normalized query followed by
// its normalized synonym expansions; backends match any of them.
type Query struct {
	Raw        string         `json:"raw"`
	Normalized string         `json:"normalized"`
	Variants   []string       `json:"variants"`
	Filters    domain.Filters `json:"filters"`
	Limit      int            `json:"limit"`
}

// NewQuery normalizes raw and expands it into retrieval variants.
func NewQuery(raw string, filters domain.Filters, limit int) Query {
	normalized := textnorm.Normalize(raw)
	q := Query{
		Raw:        raw,
		Normalized: normalized,
		Variants:   []string{},
		Filters:    filters,
		Limit:      limit,
	}
	if normalized == "" {
		return q
	}

	for _, v := range textnorm.ExpandVariants(normalized) {
		v = textnorm.Normalize(v)
		if v != "" && !slices.Contains(q.Variants, v) {
			q.Variants = append(q.Variants, v)
		}
	}
	return q
}

// IsEmpty reports whether the query has nothing to match on.
func (q Query) IsEmpty() bool {
	return q.Normalized == ""
}

// Terms returns the unique tokens across all variants, in first-seen order.
func (q Query) Terms() []string {
	terms := make([]string, 0)
	for _, v := range q.Variants {
		for _, tok := range textnorm.Tokenize(v) {
			if !slices.Contains(terms, tok) {
				terms = append(terms, tok)
			}
		}
	}
	return terms
}

// Retriever fetches candidate listings for a query. Results must already
// satisfy q.Filters and hold at most q.Limit listings when Limit is positive.
type Retriever interface {
	Retrieve(ctx context.Context, q Query) ([]domain.CandidateListing, error)
}

// Indexer maintains the listings a Retriever serves. Listings are keyed by
// domain.CandidateListing.Key.
type Indexer interface {
	Index(ctx context.Context, listing *domain.CandidateListing) error
	Delete(ctx context.Context, key string) error
	BulkIndex(ctx context.Context, listings []domain.CandidateListing) error
}

// Pinger is implemented by backends that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}
