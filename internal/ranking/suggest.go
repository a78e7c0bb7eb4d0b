package ranking

import (
	"cmp"
	"slices"
	"strings"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/pkg/textnorm"
)

// DefaultSuggestLimit is used when Suggest is called with a non-positive limit.
const DefaultSuggestLimit = 10

type suggestEntry struct {
	suggestion domain.Suggestion
	normalized string
}

// Suggest builds autocomplete entries for prefix from the brands, categories
// and product titles in candidates. Entries whose words start with the
// prefix come first (brands, then categories, then products); remaining
// slots are filled with subsequence matches ranked by edit distance.
func Suggest(prefix string, candidates []domain.CandidateListing, limit int) []domain.Suggestion {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	p := textnorm.Normalize(prefix)
	if p == "" {
		return []domain.Suggestion{}
	}

	entries := collectSuggestEntries(candidates)
	out := make([]domain.Suggestion, 0, limit)
	used := make([]bool, len(entries))

	for i, e := range entries {
		if len(out) == limit {
			return out
		}
		if wordPrefix(e.normalized, p) {
			out = append(out, e.suggestion)
			used[i] = true
		}
	}

	targets := make([]string, len(entries))
	for i, e := range entries {
		targets[i] = e.normalized
	}
	ranks := fuzzysearch.RankFindNormalizedFold(p, targets)
	slices.SortStableFunc(ranks, func(a, b fuzzysearch.Rank) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.OriginalIndex, b.OriginalIndex)
	})
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		if used[r.OriginalIndex] {
			continue
		}
		used[r.OriginalIndex] = true
		out = append(out, entries[r.OriginalIndex].suggestion)
	}
	return out
}

// collectSuggestEntries returns unique brand, category and product entries
// in that order, each group in first-seen order.
func collectSuggestEntries(candidates []domain.CandidateListing) []suggestEntry {
	var brands, categories, products []suggestEntry
	seen := make(map[string]struct{})

	add := func(group *[]suggestEntry, key string, s domain.Suggestion) {
		norm := textnorm.Normalize(s.Text)
		if norm == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		*group = append(*group, suggestEntry{suggestion: s, normalized: norm})
	}

	for _, l := range candidates {
		if l.Brand != "" {
			add(&brands, "brand:"+textnorm.Normalize(l.Brand), domain.Suggestion{
				Kind: domain.SuggestionBrand,
				Text: strings.TrimSpace(l.Brand),
			})
		}
		if l.CategoryName != "" {
			key := l.CategoryID
			if key == "" {
				key = textnorm.Normalize(l.CategoryName)
			}
			add(&categories, "category:"+key, domain.Suggestion{
				Kind:       domain.SuggestionCategory,
				Text:       strings.TrimSpace(l.CategoryName),
				CategoryID: l.CategoryID,
			})
		}
		add(&products, "product:"+l.ProductID, domain.Suggestion{
			Kind:      domain.SuggestionProduct,
			Text:      strings.TrimSpace(l.Title),
			ProductID: l.ProductID,
		})
	}

	entries := make([]suggestEntry, 0, len(brands)+len(categories)+len(products))
	entries = append(entries, brands...)
	entries = append(entries, categories...)
	return append(entries, products...)
}

// wordPrefix reports whether any word sequence in text starts with prefix.
func wordPrefix(text, prefix string) bool {
	return strings.HasPrefix(text, prefix) || strings.Contains(text, " "+prefix)
}
