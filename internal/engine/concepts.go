package engine

import (
	"sort"
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "is": {}, "are": {}, "am": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "by": {},
	"that": {}, "this": {}, "these": {}, "those": {}, "it": {}, "its": {},
	"as": {}, "from": {}, "has": {}, "have": {}, "had": {}, "not": {},
	"or": {}, "but": {}, "if": {}, "then": {}, "else": {}, "when": {},
	"where": {}, "how": {},
}

// ExtractConcepts returns up to max keywords from text, most frequent first.
// The text is case-folded and stripped of punctuation before counting; stop
// words and tokens of up to 3 runes are discarded. Frequency ties are broken
// by first occurrence in the text, which keeps the ordering deterministic.
func ExtractConcepts(text string, max int) []string {
	if max <= 0 {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, text)

	counts := make(map[string]int)
	var order []string
	for _, w := range strings.Fields(cleaned) {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > max {
		order = order[:max]
	}
	return order
}
