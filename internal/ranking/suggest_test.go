package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizzani/grovi-sub000/internal/domain"
)

func suggestCandidates() []domain.CandidateListing {
	return []domain.CandidateListing{
		{ProductID: "p1", Title: "Grace Corned Beef", Brand: "Grace", CategoryID: "c1", CategoryName: "Canned Meat"},
		{ProductID: "p2", Title: "Grape Soda", Brand: "Ting", CategoryID: "c2", CategoryName: "Beverages"},
		{ProductID: "p1", Title: "Grace Corned Beef", Brand: "Grace", CategoryID: "c1", CategoryName: "Canned Meat", StoreID: "other"},
	}
}

func TestSuggest_PrefixMatchesByKind(t *testing.T) {
	got := Suggest("Gra", suggestCandidates(), 10)

	require.Len(t, got, 3)
	assert.Equal(t, domain.Suggestion{Kind: domain.SuggestionBrand, Text: "Grace"}, got[0])
	assert.Equal(t, domain.Suggestion{Kind: domain.SuggestionProduct, Text: "Grace Corned Beef", ProductID: "p1"}, got[1])
	assert.Equal(t, domain.Suggestion{Kind: domain.SuggestionProduct, Text: "Grape Soda", ProductID: "p2"}, got[2])
}

func TestSuggest_WordPrefix(t *testing.T) {
	got := Suggest("mea", suggestCandidates(), 10)

	require.NotEmpty(t, got)
	assert.Equal(t, domain.Suggestion{Kind: domain.SuggestionCategory, Text: "Canned Meat", CategoryID: "c1"}, got[0])
}

func TestSuggest_Limit(t *testing.T) {
	got := Suggest("gra", suggestCandidates(), 2)

	require.Len(t, got, 2)
	assert.Equal(t, domain.SuggestionBrand, got[0].Kind)
	assert.Equal(t, domain.SuggestionProduct, got[1].Kind)
}

func TestSuggest_SubsequenceFallback(t *testing.T) {
	got := Suggest("cnd", suggestCandidates(), 10)

	require.Len(t, got, 2)
	assert.Equal(t, "Canned Meat", got[0].Text)
	assert.Equal(t, "Grace Corned Beef", got[1].Text)
}

func TestSuggest_EmptyPrefix(t *testing.T) {
	got := Suggest("  ", suggestCandidates(), 10)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSuggest_DefaultLimit(t *testing.T) {
	candidates := make([]domain.CandidateListing, 0, 20)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		candidates = append(candidates, domain.CandidateListing{ProductID: id, Title: "Rice " + id})
	}
	assert.Len(t, Suggest("rice", candidates, 0), DefaultSuggestLimit)
}
