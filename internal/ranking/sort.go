package ranking

import (
	"cmp"
	"slices"

	"github.com/rizzani/grovi-sub000/internal/domain"
)

// Sort returns a copy of results ordered by mode. Unknown modes sort by
// relevance. Equal elements keep their input order, so the output is fully
// determined by the input.
func Sort(results []domain.RankedResult, mode domain.SortMode) []domain.RankedResult {
	sorted := slices.Clone(results)
	if sorted == nil {
		sorted = []domain.RankedResult{}
	}

	switch mode {
	case domain.SortPriceAsc:
		slices.SortStableFunc(sorted, func(a, b domain.RankedResult) int {
			return cmp.Compare(a.Listing.Price, b.Listing.Price)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(sorted, func(a, b domain.RankedResult) int {
			return cmp.Compare(b.Listing.Price, a.Listing.Price)
		})
	default:
		slices.SortStableFunc(sorted, compareRelevance)
	}
	return sorted
}

// compareRelevance orders by score descending, then in-stock first, then
// titles leading with the query, then shorter normalized titles.
func compareRelevance(a, b domain.RankedResult) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := compareTrueFirst(a.InStock, b.InStock); c != 0 {
		return c
	}
	if c := compareTrueFirst(a.TitleLeads, b.TitleLeads); c != 0 {
		return c
	}
	return cmp.Compare(a.TitleLength, b.TitleLength)
}

func compareTrueFirst(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}
