package ranking

import (
	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/pkg/textnorm"
)

// Relevance weights. Field contributions stack.
const (
	WeightTitleExact    = 1000.0
	WeightTitlePrefix   = 700.0
	WeightTitleContains = 450.0
	WeightTitleFuzzy    = 200.0 // scaled by similarity
	WeightTokenCoverage = 300.0 // scaled by matched/total tokens

	WeightBrandExact    = 350.0
	WeightBrandPrefix   = 250.0
	WeightBrandContains = 150.0

	WeightCategoryExact    = 200.0
	WeightCategoryContains = 100.0

	WeightPreferredCategory = 60.0
	WeightDietary           = 40.0

	// WeightFrequentlySearched is reserved for search-popularity signals.
	// Nothing feeds it yet.
	WeightFrequentlySearched = 0.0
)

// Short-title bonus: min(cap, max(0, shortTitleLength-len) * factor).
const (
	shortTitleLength  = 50
	exactBonusFactor  = 0.1
	exactBonusCap     = 15.0
	prefixBonusFactor = 0.05
	prefixBonusCap    = 10.0
)

// Score converts a classification into a relevance score. The result is a
// pure function of its inputs and never negative.
func Score(listing domain.CandidateListing, info MatchInfo, prefs domain.UserPreferences) float64 {
	var score float64

	switch info.Title.Tier {
	case TierExact:
		score += WeightTitleExact + shortTitleBonus(info.TitleLength, exactBonusFactor, exactBonusCap)
	case TierPrefix:
		score += WeightTitlePrefix + shortTitleBonus(info.TitleLength, prefixBonusFactor, prefixBonusCap)
	case TierContains:
		score += WeightTitleContains
	case TierFuzzy:
		score += WeightTitleFuzzy * info.Title.Similarity
	}

	score += WeightTokenCoverage * info.Coverage()

	switch info.Brand.Tier {
	case TierExact:
		score += WeightBrandExact
	case TierPrefix:
		score += WeightBrandPrefix
	case TierContains:
		score += WeightBrandContains
	}

	// Category names have no separate prefix weight.
	switch info.Category.Tier {
	case TierExact:
		score += WeightCategoryExact
	case TierPrefix, TierContains:
		score += WeightCategoryContains
	}

	if matchesPreferredCategory(listing, prefs.PreferredCategories) {
		score += WeightPreferredCategory
	}
	if matchesDietary(listing, prefs.DietaryPreferences) {
		score += WeightDietary
	}
	return score
}

func shortTitleBonus(length int, factor, limit float64) float64 {
	return min(limit, float64(max(0, shortTitleLength-length))*factor)
}

// matchesPreferredCategory matches preferences against category ids, the
// category path and the normalized category name.
func matchesPreferredCategory(listing domain.CandidateListing, preferred []string) bool {
	if len(preferred) == 0 {
		return false
	}
	name := textnorm.Normalize(listing.CategoryName)
	for _, p := range preferred {
		if listing.InCategory(p) {
			return true
		}
		if name != "" && textnorm.Normalize(p) == name {
			return true
		}
	}
	return false
}

// matchesDietary always reports false: listings carry no dietary tags.
func matchesDietary(domain.CandidateListing, []string) bool {
	return false
}
