// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package answer produces an AnswerResult for a ProcessedQuestion. It
// tries the predefined answers first, then a keyword search over the
// loaded knowledge entries, and finally a fixed fallback.
package answer

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

const (
	maxAnswerLen = 500
	maxLinks     = 3
	maxQuoted    = 2

	contextPrefix = "Based on the TDS course materials and discussions: "
	noBodyAnswer  = "I found relevant discussions about your question. Please check the linked resources for detailed information."
)

var fallback = types.AnswerResult{
	Answer: "I don't have specific information about this question in my current knowledge base. Please check the official TDS course materials at https://tds.s-anand.net/ or ask on the Discourse forum for community assistance.",
	Links: []types.Link{
		{URL: courseSiteURL, Text: "Official TDS Course Materials"},
		{URL: forumURL, Text: "TDS Discourse Forum"},
	},
}

// Generator answers processed questions from a fixed rule table and a
// read-only knowledge base. It is safe for concurrent use.
type Generator struct {
	rules []Rule
	kb    types.KnowledgeBase
}

// NewGenerator returns a Generator over rules (in priority order) and kb.
// Neither is modified.
func NewGenerator(rules []Rule, kb types.KnowledgeBase) *Generator {
	return &Generator{rules: rules, kb: kb}
}

// Generate returns the first matching predefined answer, else an answer
// synthesized from the best knowledge matches, else the fallback.
func (g *Generator) Generate(pq types.ProcessedQuestion) types.AnswerResult {
	if pa, ok := g.Lookup(pq.Original); ok {
		return pa.Result()
	}

	if matches := Search(g.kb, pq); len(matches) > 0 {
		return synthesize(matches)
	}

	return Fallback()
}

// Lookup returns the predefined answer of the first rule that matches the
// lowercased question.
func (g *Generator) Lookup(question string) (types.PredefinedAnswer, bool) {
	lower := strings.ToLower(question)
	for _, r := range g.rules {
		if r.Match(lower) {
			return r.Answer, true
		}
	}
	return types.PredefinedAnswer{}, false
}

// Stats holds counts reported by the service's stats endpoint.
type Stats struct {
	DiscourseTopics      int `json:"discourse_topics"`
	CourseSections       int `json:"course_content_sections"`
	PredefinedCategories int `json:"predefined_answer_categories"`
}

// Stats counts loaded entries and distinct predefined answer categories.
// Rules without a category are not counted.
func (g *Generator) Stats() Stats {
	categories := make(map[string]struct{})
	for _, r := range g.rules {
		if r.Answer.Category != "" {
			categories[r.Answer.Category] = struct{}{}
		}
	}
	return Stats{
		DiscourseTopics:      len(g.kb.Discourse),
		CourseSections:       len(g.kb.Course),
		PredefinedCategories: len(categories),
	}
}

// Fallback returns a copy of the generic answer used when nothing matches.
func Fallback() types.AnswerResult {
	links := make([]types.Link, len(fallback.Links))
	copy(links, fallback.Links)
	return types.AnswerResult{Answer: fallback.Answer, Links: links}
}

// synthesize quotes the first two matches and links every match. Course
// entries always contribute their content; discourse entries only when
// they have a summary.
func synthesize(matches []Match) types.AnswerResult {
	var parts []string
	links := make([]types.Link, 0, len(matches))

	for _, m := range matches {
		e := m.Entry
		if e.Kind != types.KindDiscoursePost || e.AnswerSummary != "" {
			parts = append(parts, e.Body())
		}
		title := e.Title
		if title == "" {
			title = e.DefaultTitle()
		}
		links = append(links, types.Link{URL: e.URL, Text: title})
	}

	answer := noBodyAnswer
	if len(parts) > 0 {
		if len(parts) > maxQuoted {
			parts = parts[:maxQuoted]
		}
		answer = contextPrefix + strings.Join(parts, " ")
	}

	if len(links) > maxLinks {
		links = links[:maxLinks]
	}

	return types.AnswerResult{Answer: truncate(answer, maxAnswerLen), Links: links}
}

// truncate cuts s to n characters and appends "..." when it was longer.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
