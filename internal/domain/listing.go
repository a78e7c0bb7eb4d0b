package domain

import "strings"

// CandidateListing is one store's priced, stocked offer of one product, as
// returned by candidate retrieval. Optional text fields are empty strings
// when absent.
type CandidateListing struct {
	ProductID       string   `json:"product_id"`
	SKU             string   `json:"sku"`
	Title           string   `json:"title"`
	Brand           string   `json:"brand,omitempty"`
	CategoryID      string   `json:"category_id,omitempty"`
	CategoryName    string   `json:"category_name,omitempty"`
	LeafCategoryID  string   `json:"leaf_category_id,omitempty"`
	CategoryPathIDs []string `json:"category_path_ids,omitempty"`
	InStock         bool     `json:"in_stock"`
	Price           int64    `json:"price"`
	StoreID         string   `json:"store_id"`
}

// Key identifies the listing within a catalog: one product at one store.
func (l CandidateListing) Key() string {
	return ListingKey(l.StoreID, l.ProductID)
}

// ListingKey builds the catalog key for a store/product pair.
func ListingKey(storeID, productID string) string {
	return storeID + ":" + productID
}

// ParseListingKey splits a key built by ListingKey. Store ids must not
// contain a colon.
func ParseListingKey(key string) (storeID, productID string, ok bool) {
	storeID, productID, ok = strings.Cut(key, ":")
	if !ok || storeID == "" || productID == "" {
		return "", "", false
	}
	return storeID, productID, true
}

// DedupeKey is the identity used to collapse offers of the same product from
// different stores. Listings without a SKU fall back to their product id.
func (l CandidateListing) DedupeKey() string {
	if l.SKU != "" {
		return l.SKU
	}
	return "product:" + l.ProductID
}

// InCategory reports whether id names the listing's category, its leaf
// category or any category on its path.
func (l CandidateListing) InCategory(id string) bool {
	if id == "" {
		return false
	}
	if l.CategoryID == id || l.LeafCategoryID == id {
		return true
	}
	for _, p := range l.CategoryPathIDs {
		if p == id {
			return true
		}
	}
	return false
}

// RankedResult is a listing with its relevance score and the facts the
// sorter uses to break ties.
type RankedResult struct {
	Listing CandidateListing `json:"listing"`
	Score   float64          `json:"score"`
	InStock bool             `json:"in_stock"`

	// TitleLeads is set when the normalized title equals or starts with the
	// normalized query.
	TitleLeads bool `json:"-"`
	// TitleLength is the rune length of the normalized title.
	TitleLength int `json:"-"`
}
