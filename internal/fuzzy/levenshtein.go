// Package fuzzy provides typo-tolerant term comparison for the ranking core.
package fuzzy

// Distance computes the Levenshtein distance between a and b: the minimum
// number of single-rune insertions, deletions or substitutions needed to turn
// one into the other. It works on runes so multi-byte characters count once.
func Distance(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)

	if len(runesA) == 0 {
		return len(runesB)
	}
	if len(runesB) == 0 {
		return len(runesA)
	}

	// Two rolling rows of the edit matrix are enough.
	prevRow := make([]int, len(runesB)+1)
	currRow := make([]int, len(runesB)+1)
	for j := range prevRow {
		prevRow[j] = j
	}

	for i := 1; i <= len(runesA); i++ {
		currRow[0] = i
		for j := 1; j <= len(runesB); j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}
			currRow[j] = min(
				prevRow[j]+1,      // deletion
				currRow[j-1]+1,    // insertion
				prevRow[j-1]+cost, // substitution
			)
		}
		prevRow, currRow = currRow, prevRow
	}

	return prevRow[len(runesB)]
}
