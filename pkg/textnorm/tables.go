// Package textnorm canonicalizes shopping queries and listing text.
//
// Normalize, Tokenize and ExpandVariants are shared by the ranking core and by
// every retrieval backend, so that candidates are fetched with the same
// normalization they are later scored with.
package textnorm

import (
	"maps"
	"slices"
)

// corrections maps known local-dialect spellings to their canonical form.
// Values must already be in normalized form.
var corrections = map[string]string{
	"corn beef":     "corned beef",
	"cornbeef":      "corned beef",
	"calaloo":       "callaloo",
	"kallaloo":      "callaloo",
	"akee":          "ackee",
	"escallion":     "scallion",
	"skallion":      "scallion",
	"hardo bread":   "hard dough bread",
	"hard do bread": "hard dough bread",
	"salt fish":     "saltfish",
	"sal fish":      "saltfish",
	"saal fish":     "saltfish",
	"cho cho":       "chocho",
	"scotch bonet":  "scotch bonnet",
	"cow foot":      "cowfoot",
	"tin mackerel":  "canned mackerel",
	"tin milk":      "condensed milk",
	"bun an cheese": "bun and cheese",
}

// synonyms maps a canonical term to its known alternate spellings.
var synonyms = map[string][]string{
	"scallion":         {"green onion", "spring onion"},
	"callaloo":         {"amaranth greens"},
	"saltfish":         {"codfish", "salted cod"},
	"corned beef":      {"bully beef"},
	"chocho":           {"chayote"},
	"hard dough bread": {"sliced bread"},
	"soda":             {"soft drink"},
	"condensed milk":   {"sweetened milk"},
	"ackee":            {"ackees"},
}

// unitSuffixes are measurement units stripped when glued to a number ("340g").
var unitSuffixes = map[string]struct{}{
	"g": {}, "kg": {}, "ml": {}, "l": {}, "oz": {}, "lb": {},
	"litre": {}, "liter": {}, "gal": {}, "gallon": {},
}

// packWords are standalone pack/count tokens.
var packWords = map[string]struct{}{
	"pack": {}, "pcs": {}, "piece": {}, "pieces": {}, "pk": {}, "ct": {}, "count": {},
}

var stopWords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "of": {}, "with": {},
}

// Corrections returns a copy of the term-correction table.
func Corrections() map[string]string {
	return maps.Clone(corrections)
}

// Synonyms returns a copy of the synonym table keyed by canonical term.
func Synonyms() map[string][]string {
	out := make(map[string][]string, len(synonyms))
	for k, v := range synonyms {
		out[k] = slices.Clone(v)
	}
	return out
}

// UnitSuffixes returns the unit set in sorted order.
func UnitSuffixes() []string { return sortedKeys(unitSuffixes) }

// PackWords returns the pack/count token set in sorted order.
func PackWords() []string { return sortedKeys(packWords) }

// StopWords returns the stop-word set in sorted order.
func StopWords() []string { return sortedKeys(stopWords) }

func sortedKeys(m map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(m))
}
