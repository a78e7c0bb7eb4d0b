// Package memory provides an in-process catalog used for development, tests
// and small deployments.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/fuzzy"
	"github.com/rizzani/grovi-sub000/internal/retrieval"
	"github.com/rizzani/grovi-sub000/pkg/textnorm"
)

type entry struct {
	listing  domain.CandidateListing
	haystack string
	words    []string
}

// Retriever is an in-memory catalog implementing retrieval.Retriever and
// retrieval.Indexer. A listing matches when any query term appears in its
// normalized title, brand or category name, or fuzzily matches one of their
// words. Thread-safe via sync.RWMutex.
type Retriever struct {
	mu       sync.RWMutex
	listings map[string]entry
}

// New creates an empty in-memory catalog.
func New() *Retriever {
	return &Retriever{
		listings: make(map[string]entry),
	}
}

// Index adds or replaces a listing.
func (r *Retriever) Index(_ context.Context, listing *domain.CandidateListing) error {
	e := newEntry(*listing)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings[listing.Key()] = e
	return nil
}

// Delete removes a listing by key. Unknown keys are ignored.
func (r *Retriever) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.listings, key)
	return nil
}

// BulkIndex adds or replaces multiple listings.
func (r *Retriever) BulkIndex(_ context.Context, listings []domain.CandidateListing) error {
	entries := make([]entry, len(listings))
	for i := range listings {
		entries[i] = newEntry(listings[i])
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		r.listings[e.listing.Key()] = e
	}
	return nil
}

// Len returns the number of listings held.
func (r *Retriever) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listings)
}

// Retrieve returns listings matching q in key order. An empty query matches
// every listing that passes the filters.
func (r *Retriever) Retrieve(ctx context.Context, q retrieval.Query) ([]domain.CandidateListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	terms := q.Terms()
	matched := make([]domain.CandidateListing, 0)

	for _, key := range slices.Sorted(maps.Keys(r.listings)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := r.listings[key]
		if !q.Filters.Allows(e.listing) {
			continue
		}
		if !q.IsEmpty() && !e.matches(q.Variants, terms) {
			continue
		}
		matched = append(matched, e.listing)
		if q.Limit > 0 && len(matched) == q.Limit {
			break
		}
	}
	return matched, nil
}

func newEntry(l domain.CandidateListing) entry {
	haystack := textnorm.Normalize(strings.Join([]string{l.Title, l.Brand, l.CategoryName}, " "))
	return entry{
		listing:  l,
		haystack: haystack,
		words:    strings.Fields(haystack),
	}
}

func (e entry) matches(variants, terms []string) bool {
	for _, v := range variants {
		if strings.Contains(e.haystack, v) {
			return true
		}
	}
	for _, t := range terms {
		if strings.Contains(e.haystack, t) {
			return true
		}
	}
	for _, t := range terms {
		for _, w := range e.words {
			if fuzzy.IsMatch(t, w) {
				return true
			}
		}
	}
	return false
}
