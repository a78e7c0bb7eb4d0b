package textnorm

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// wordRule is a compiled whole-word, case-insensitive replacement.
type wordRule struct {
	from string
	to   string
	re   *regexp.Regexp
}

// correctionRules is ordered longest misspelling first so that a shorter key
// can never corrupt part of a longer one.
var correctionRules = buildCorrectionRules()

func buildCorrectionRules() []wordRule {
	rules := make([]wordRule, 0, len(corrections))
	for from, to := range corrections {
		rules = append(rules, wordRule{from: from, to: to, re: wordPattern(from)})
	}
	slices.SortFunc(rules, func(a, b wordRule) int {
		if c := cmp.Compare(utf8.RuneCountInString(b.from), utf8.RuneCountInString(a.from)); c != 0 {
			return c
		}
		return strings.Compare(a.from, b.from)
	})
	return rules
}

// wordPattern matches phrase as whole words, case-insensitively, allowing any
// run of whitespace between its words.
func wordPattern(phrase string) *regexp.Regexp {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
}

// Correct replaces every whole-word occurrence of a known misspelling with its
// canonical form.
func Correct(text string) string {
	for _, r := range correctionRules {
		text = r.re.ReplaceAllLiteralString(text, r.to)
	}
	return text
}
