package domain

import (
	"fmt"
	"strings"
)

// SortMode selects how ranked results are ordered.
type SortMode string

// Sort options for search results.
const (
	SortRelevance SortMode = "relevance"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
)

// ValidSortModes returns the list of valid sort modes.
func ValidSortModes() []SortMode {
	return []SortMode{SortRelevance, SortPriceAsc, SortPriceDesc}
}

// ParseSortMode maps a request value to a SortMode. An empty value selects
// relevance.
func ParseSortMode(s string) (SortMode, bool) {
	if s == "" {
		return SortRelevance, true
	}
	for _, m := range ValidSortModes() {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// UserPreferences carries optional per-shopper boosts.
type UserPreferences struct {
	PreferredCategories []string `json:"preferred_categories,omitempty"`
	// DietaryPreferences is accepted but has no effect: listings carry no
	// dietary tags.
	DietaryPreferences []string `json:"dietary_preferences,omitempty"`
}

// Filters narrow candidate retrieval. They are applied by the retrieval
// backend, never by the ranking core.
type Filters struct {
	CategoryID  string `json:"category_id,omitempty"`
	Brand       string `json:"brand,omitempty"`
	MinPrice    *int64 `json:"min_price,omitempty"`
	MaxPrice    *int64 `json:"max_price,omitempty"`
	InStockOnly bool   `json:"in_stock_only,omitempty"`
}

// Allows reports whether l passes every filter.
func (f Filters) Allows(l CandidateListing) bool {
	if f.CategoryID != "" && !l.InCategory(f.CategoryID) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(strings.TrimSpace(l.Brand), strings.TrimSpace(f.Brand)) {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.InStockOnly && !l.InStock {
		return false
	}
	return true
}

// SuggestionKind is the closed set of autocomplete suggestion kinds.
type SuggestionKind int

const (
	SuggestionProduct SuggestionKind = iota + 1
	SuggestionBrand
	SuggestionCategory
)

func (k SuggestionKind) String() string {
	switch k {
	case SuggestionProduct:
		return "product"
	case SuggestionBrand:
		return "brand"
	case SuggestionCategory:
		return "category"
	default:
		return fmt.Sprintf("SuggestionKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k SuggestionKind) MarshalText() ([]byte, error) {
	switch k {
	case SuggestionProduct, SuggestionBrand, SuggestionCategory:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown suggestion kind %d", int(k))
	}
}

// UnmarshalText decodes a kind name.
func (k *SuggestionKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "product":
		*k = SuggestionProduct
	case "brand":
		*k = SuggestionBrand
	case "category":
		*k = SuggestionCategory
	default:
		return fmt.Errorf("unknown suggestion kind %q", string(b))
	}
	return nil
}

// Suggestion is one autocomplete entry. ProductID is set only for product
// suggestions and CategoryID only for category suggestions.
type Suggestion struct {
	Kind       SuggestionKind `json:"kind"`
	Text       string         `json:"text"`
	ProductID  string         `json:"product_id,omitempty"`
	CategoryID string         `json:"category_id,omitempty"`
}
