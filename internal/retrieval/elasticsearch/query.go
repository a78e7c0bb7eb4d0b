package elasticsearch

import (
	"strings"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/retrieval"
	"github.com/rizzani/grovi-sub000/pkg/textnorm"
)

// defaultSize is used when the query carries no limit.
const defaultSize = 1000

// document is the indexed form of a listing: the listing itself plus the
// derived fields queries run against.
type document struct {
	domain.CandidateListing
	ListingKey string `json:"listing_key"`
	BrandKey   string `json:"brand_key,omitempty"`
	SearchText string `json:"search_text"`
}

func newDocument(l domain.CandidateListing) document {
	return document{
		CandidateListing: l,
		ListingKey:       l.Key(),
		BrandKey:         brandKey(l.Brand),
		SearchText:       textnorm.Normalize(strings.Join([]string{l.Title, l.Brand, l.CategoryName}, " ")),
	}
}

func brandKey(brand string) string {
	return strings.ToLower(strings.TrimSpace(brand))
}

// buildSearchQuery constructs the query DSL: one fuzzy multi_match per
// variant, any of which may match, with facet filters applied as filters.
func buildSearchQuery(q retrieval.Query) map[string]interface{} {
	boolQuery := map[string]interface{}{}

	if q.IsEmpty() {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	} else {
		should := make([]interface{}, 0, len(q.Variants))
		for _, v := range q.Variants {
			should = append(should, map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":         v,
					"fields":        []string{"search_text^2", "title^3", "title.autocomplete", "brand", "category_name"},
					"type":          "best_fields",
					"fuzziness":     "AUTO",
					"prefix_length": 1,
				},
			})
		}
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	}

	if filters := buildFilters(q.Filters); len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	size := q.Limit
	if size <= 0 {
		size = defaultSize
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"size": size,
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"listing_key": "asc"},
		},
	}
}

// buildFilters constructs the filter clauses for the facet filters.
func buildFilters(f domain.Filters) []interface{} {
	var filters []interface{}

	if f.CategoryID != "" {
		filters = append(filters, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"category_id": f.CategoryID}},
					map[string]interface{}{"term": map[string]interface{}{"leaf_category_id": f.CategoryID}},
					map[string]interface{}{"term": map[string]interface{}{"category_path_ids": f.CategoryID}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	if f.Brand != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{
				"brand_key": brandKey(f.Brand),
			},
		})
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		rangeFilter := map[string]interface{}{}
		if f.MinPrice != nil {
			rangeFilter["gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			rangeFilter["lte"] = *f.MaxPrice
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{
				"price": rangeFilter,
			},
		})
	}

	if f.InStockOnly {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{
				"in_stock": true,
			},
		})
	}

	return filters
}
