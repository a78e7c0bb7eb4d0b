package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxCorrectionPasses bounds the correct/normalize loop. The correction table
// has no chains, so a fixpoint is reached after at most two passes.
const maxCorrectionPasses = 4

// Normalize canonicalizes text for matching. It is pure and idempotent:
// Normalize(Normalize(s)) == Normalize(s).
//
// Known misspellings are corrected first, then the text is lowercased,
// diacritics are folded, punctuation is removed and unit, pack and multiplier
// tokens are dropped. Correction is repeated on the normalized form so that
// misspellings separated by punctuation ("corn-beef") are caught as well.
func Normalize(text string) string {
	s := clean(Correct(text))
	for range maxCorrectionPasses {
		next := clean(Correct(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

func clean(text string) string {
	s := strings.TrimSpace(fold(text))
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if isUnitToken(f) || isPackToken(f) || isMultiplierToken(f) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// fold lowercases and strips combining marks ("Café" -> "cafe"). The
// transformer is stateful, so one is built per call.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		return strings.ToLower(text)
	}
	return out
}

// isUnitToken reports whether tok is a number (optionally decimal) glued to a
// known unit, e.g. "340g", "2.5kg", "1l".
func isUnitToken(tok string) bool {
	i := scanDigits(tok, 0)
	if i == 0 {
		return false
	}
	if i < len(tok) && tok[i] == '.' {
		j := scanDigits(tok, i+1)
		if j == i+1 {
			return false
		}
		i = j
	}
	_, ok := unitSuffixes[tok[i:]]
	return ok
}

func isPackToken(tok string) bool {
	_, ok := packWords[tok]
	return ok
}

// isMultiplierToken matches "x2" and "3x".
func isMultiplierToken(tok string) bool {
	if len(tok) < 2 {
		return false
	}
	if tok[0] == 'x' {
		return scanDigits(tok, 1) == len(tok)
	}
	if tok[len(tok)-1] == 'x' {
		return scanDigits(tok[:len(tok)-1], 0) == len(tok)-1
	}
	return false
}

// scanDigits returns the index of the first non-ASCII-digit byte at or after from.
func scanDigits(s string, from int) int {
	i := from
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
