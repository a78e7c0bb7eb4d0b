// Package ranking scores, deduplicates, orders and pages candidate listings
// for a free-text query. Everything here is pure and safe for concurrent use.
package ranking

import (
	"strings"
	"unicode/utf8"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/fuzzy"
	"github.com/rizzani/grovi-sub000/pkg/textnorm"
)

// Tier is the strongest way a query matched one listing field. Tiers are
// mutually exclusive per field; a lower value is a stronger match.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierPrefix
	TierContains
	TierFuzzy
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPrefix:
		return "prefix"
	case TierContains:
		return "contains"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// FieldMatch is the classification of one field. Similarity is set only for
// TierFuzzy.
type FieldMatch struct {
	Tier       Tier    `json:"tier"`
	Similarity float64 `json:"similarity,omitempty"`
}

// Fired reports whether any tier matched.
func (f FieldMatch) Fired() bool {
	return f.Tier != TierNone
}

// MatchInfo describes how a query matched a listing.
type MatchInfo struct {
	Title    FieldMatch `json:"title"`
	Brand    FieldMatch `json:"brand"`
	Category FieldMatch `json:"category"`

	// TokensMatched counts query tokens found inside the normalized title.
	TokensMatched int `json:"tokens_matched"`
	TokensTotal   int `json:"tokens_total"`

	// TitleLength is the rune length of the normalized title.
	TitleLength int `json:"title_length"`
}

// Any reports whether at least one tier fired for the listing.
func (m MatchInfo) Any() bool {
	return m.Title.Fired() || m.Brand.Fired() || m.Category.Fired() || m.TokensMatched > 0
}

// Coverage returns the fraction of query tokens present in the title.
func (m MatchInfo) Coverage() float64 {
	if m.TokensTotal == 0 {
		return 0
	}
	return float64(m.TokensMatched) / float64(m.TokensTotal)
}

// TitleLeads reports whether the title equals or starts with the query.
func (m MatchInfo) TitleLeads() bool {
	return m.Title.Tier == TierExact || m.Title.Tier == TierPrefix
}

// Classify determines which tiers fire for listing against q.
func Classify(listing domain.CandidateListing, q textnorm.Query) MatchInfo {
	title := textnorm.Normalize(listing.Title)
	info := MatchInfo{
		TitleLength: utf8.RuneCountInString(title),
		TokensTotal: len(q.Tokens),
	}
	if q.IsEmpty() {
		return info
	}

	info.Title = classifyTitle(title, q)
	info.Brand = classifyAttribute(textnorm.Normalize(listing.Brand), q.Normalized)
	info.Category = classifyAttribute(textnorm.Normalize(listing.CategoryName), q.Normalized)

	for _, tok := range q.Tokens {
		if strings.Contains(title, tok) {
			info.TokensMatched++
		}
	}
	return info
}

func classifyTitle(title string, q textnorm.Query) FieldMatch {
	if title == "" {
		return FieldMatch{}
	}
	if tier := literalTier(title, q.Normalized); tier != TierNone {
		return FieldMatch{Tier: tier}
	}

	if sim, ok := fuzzy.Match(title, q.Normalized); ok {
		return FieldMatch{Tier: TierFuzzy, Similarity: sim}
	}

	// Fall back to per-token matching: each eligible query token takes its
	// best match among the title words, and the field similarity is the
	// average over eligible tokens.
	words := strings.Fields(title)
	var sum float64
	eligible := 0
	for _, tok := range q.Tokens {
		if utf8.RuneCountInString(tok) < fuzzy.MinTermLength {
			continue
		}
		eligible++
		best := 0.0
		for _, w := range words {
			if sim, ok := fuzzy.Match(tok, w); ok && sim > best {
				best = sim
			}
		}
		sum += best
	}
	if eligible == 0 || sum == 0 {
		return FieldMatch{}
	}
	return FieldMatch{Tier: TierFuzzy, Similarity: sum / float64(eligible)}
}

// classifyAttribute handles brand and category names. Besides the field
// containing the query, "contains" also fires when the query mentions the
// whole field value, so "grace corned beef" contains brand "grace".
func classifyAttribute(value, query string) FieldMatch {
	if value == "" {
		return FieldMatch{}
	}
	if tier := literalTier(value, query); tier != TierNone {
		return FieldMatch{Tier: tier}
	}
	if containsWords(query, value) {
		return FieldMatch{Tier: TierContains}
	}
	if sim, ok := fuzzy.Match(value, query); ok {
		return FieldMatch{Tier: TierFuzzy, Similarity: sim}
	}
	return FieldMatch{}
}

func literalTier(field, query string) Tier {
	switch {
	case field == query:
		return TierExact
	case strings.HasPrefix(field, query):
		return TierPrefix
	case strings.Contains(field, query):
		return TierContains
	default:
		return TierNone
	}
}

// containsWords reports whether phrase occurs in text as a whole-word
// sequence. Both arguments are normalized, single-space separated.
func containsWords(text, phrase string) bool {
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}
