package ranking

import "github.com/rizzani/grovi-sub000/internal/domain"

// Dedupe collapses results sharing a SKU (or product id when the SKU is
// empty) into one. The in-stock listing wins, then the cheaper one, else the
// first seen. The survivor takes the position of the first occurrence.
func Dedupe(results []domain.RankedResult) []domain.RankedResult {
	out := make([]domain.RankedResult, 0, len(results))
	index := make(map[string]int, len(results))

	for _, r := range results {
		key := r.Listing.DedupeKey()
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, r)
			continue
		}
		if preferListing(r, out[i]) {
			out[i] = r
		}
	}
	return out
}

// preferListing reports whether candidate should replace current.
func preferListing(candidate, current domain.RankedResult) bool {
	if candidate.InStock != current.InStock {
		return candidate.InStock
	}
	return candidate.Listing.Price < current.Listing.Price
}
