package textnorm

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// synonymGroup holds a canonical term followed by its synonyms, each with a
// compiled whole-word pattern.
type synonymGroup struct {
	terms    []string
	patterns []*regexp.Regexp
}

var synonymGroups = buildSynonymGroups()

func buildSynonymGroups() []synonymGroup {
	canonicals := slices.Sorted(maps.Keys(synonyms))
	groups := make([]synonymGroup, 0, len(canonicals))
	for _, c := range canonicals {
		terms := append([]string{c}, synonyms[c]...)
		patterns := make([]*regexp.Regexp, len(terms))
		for i, t := range terms {
			patterns[i] = wordPattern(t)
		}
		groups = append(groups, synonymGroup{terms: terms, patterns: patterns})
	}
	return groups
}

// ExpandVariants returns alternate phrasings of query for retrieval. The
// original query is always the first element; the remaining variants are
// unique and sorted. Whenever a canonical term or one of its synonyms occurs
// as whole words, one variant is produced per other member of its group.
func ExpandVariants(query string) []string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []string{query}
	}

	found := make(map[string]struct{})
	for _, g := range synonymGroups {
		for i, re := range g.patterns {
			if !re.MatchString(trimmed) {
				continue
			}
			for j, alt := range g.terms {
				if j == i {
					continue
				}
				v := re.ReplaceAllLiteralString(trimmed, alt)
				if v != trimmed {
					found[v] = struct{}{}
				}
			}
		}
	}

	return append([]string{query}, slices.Sorted(maps.Keys(found))...)
}
