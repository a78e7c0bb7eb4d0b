package fuzzy

import "unicode/utf8"

const (
	// MinSimilarity is the lowest similarity ratio accepted as a fuzzy match.
	MinSimilarity = 0.75

	// MinTermLength is the shortest term (in runes) eligible for fuzzy matching.
	MinTermLength = 3
)

// Similarity returns 1 - Distance(a, b) / max(len(a), len(b)), a ratio in
// [0, 1]. Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(Distance(a, b))/float64(longest)
}

// MaxEdits returns the edit budget for a term of the given rune length:
// none below MinTermLength, one for 3-4 runes and two from 5 runes up.
func MaxEdits(length int) int {
	switch {
	case length < MinTermLength:
		return 0
	case length <= 4:
		return 1
	default:
		return 2
	}
}

// Match compares a and b and returns their similarity and whether it is an
// accepted fuzzy match. Both terms must be at least MinTermLength runes; the
// edit budget is taken from the shorter of the two.
func Match(a, b string) (float64, bool) {
	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)
	shortest := min(lenA, lenB)
	if shortest < MinTermLength {
		return 0, false
	}

	// Length gap alone already exceeds the budget.
	if max(lenA, lenB)-shortest > MaxEdits(shortest) {
		return 0, false
	}

	d := Distance(a, b)
	if d > MaxEdits(shortest) {
		return 0, false
	}
	sim := 1 - float64(d)/float64(max(lenA, lenB))
	if sim < MinSimilarity {
		return 0, false
	}
	return sim, true
}

// IsMatch reports whether a and b are a fuzzy match.
func IsMatch(a, b string) bool {
	_, ok := Match(a, b)
	return ok
}
