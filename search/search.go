// Package search ranks names against a free-form search string
package search

import (
	"sort"
	"strings"
	"unicode"
)

const (
	noMatch = iota - 1
	initialismMatch
	substringMatch
)

// score assumes 'name' and 'search' are the same case
func score(name, search string) int {
	if strings.Contains(name, search) {
		return substringMatch
	}
	if matchesInitialism(name, search) {
		return initialismMatch
	}
	return noMatch
}

// matchesInitialism assumes inputs are the same case. Words starting with punctuation, like '&', are skipped.
func matchesInitialism(name, search string) bool {
	for _, word := range strings.FieldsFunc(name, isSeparator) {
		if len(search) == 0 {
			return true
		}
		if word[0] == search[0] {
			search = search[1:]
		}
	}
	return len(search) == 0
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Query returns the names matching search, best matches first. Matching is case-insensitive.
// Names containing search rank above names whose word initials spell search. Otherwise input order is kept.
func Query(names []string, search string) []string {
	search = strings.ToLower(search)
	type scoreItem struct {
		name  string
		score int
	}
	scores := make([]scoreItem, 0, len(names))
	for _, name := range names {
		if s := score(strings.ToLower(name), search); s != noMatch {
			scores = append(scores, scoreItem{name: name, score: s})
		}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	results := make([]string, len(scores))
	for i, item := range scores {
		results[i] = item.name
	}
	return results
}
