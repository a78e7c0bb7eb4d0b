package textnorm

import (
	"strings"
	"unicode/utf8"
)

// minTokenLength is the shortest token (in runes) kept by Tokenize.
const minTokenLength = 2

// Tokenize normalizes text and splits it into an ordered list of unique
// tokens, dropping stop words and tokens shorter than two characters.
// It never returns nil.
func Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	tokens := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))

	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenLength {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// Query is a raw search string together with its normalized form and tokens.
type Query struct {
	Raw        string   `json:"raw"`
	Normalized string   `json:"normalized"`
	Tokens     []string `json:"tokens"`
}

// ParseQuery derives the normalized query used for scoring.
func ParseQuery(raw string) Query {
	return Query{
		Raw:        raw,
		Normalized: Normalize(raw),
		Tokens:     Tokenize(raw),
	}
}

// IsEmpty reports whether nothing searchable survived normalization.
func (q Query) IsEmpty() bool {
	return q.Normalized == ""
}
