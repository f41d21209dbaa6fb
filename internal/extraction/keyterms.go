package extraction

import (
	"sort"
	"strings"
)

type termCount struct {
	word  string
	count int
}

// topTerms counts lower-cased words of four or more letters and returns
// the limit most frequent, dropping those seen fewer than minFreq times.
// Ties keep first-occurrence order.
func topTerms(text string, limit, minFreq int) []termCount {
	var terms []termCount
	index := make(map[string]int)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if i, ok := index[w]; ok {
			terms[i].count++
			continue
		}
		index[w] = len(terms)
		terms = append(terms, termCount{word: w, count: 1})
	}

	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].count > terms[j].count
	})
	if len(terms) > limit {
		terms = terms[:limit]
	}

	out := terms[:0]
	for _, t := range terms {
		if t.count >= minFreq {
			out = append(out, t)
		}
	}
	return out
}
