// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package answer

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

const (
	keywordWeight = 2
	termWeight    = 1
	minTermLen    = 4
	maxMatches    = 3
)

// Match is a knowledge entry with its relevance score.
type Match struct {
	Entry types.KnowledgeEntry `json:"entry"`
	Score int                  `json:"score"`
}

// Score rates entry against the question. Each extracted keyword found in
// the entry's search text adds 2; each whitespace-separated word of the
// lowercased cleaned question with at least 4 characters adds 1. Repeated
// keywords and words count each time.
func Score(entry types.KnowledgeEntry, pq types.ProcessedQuestion) int {
	text := entry.SearchText()
	score := 0

	for _, kw := range pq.Keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			score += keywordWeight
		}
	}
	for _, term := range strings.Fields(strings.ToLower(pq.Cleaned)) {
		if utf8.RuneCountInString(term) >= minTermLen && strings.Contains(text, term) {
			score += termWeight
		}
	}

	return score
}

// Search scores every course entry and then every discourse entry, drops
// zero scores, and returns at most 3 matches by descending score. Ties keep
// load order.
func Search(kb types.KnowledgeBase, pq types.ProcessedQuestion) []Match {
	var matches []Match
	for _, entry := range kb.All() {
		if s := Score(entry, pq); s > 0 {
			matches = append(matches, Match{Entry: entry, Score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}
