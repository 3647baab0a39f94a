// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package question

import (
	"strings"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

// ClassRule assigns Category when any of Phrases occurs in the lowercased
// question.
type ClassRule struct {
	Category types.Category
	Phrases  []string
}

// Matches reports whether any phrase is a substring of lower.
func (r ClassRule) Matches(lower string) bool {
	for _, p := range r.Phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ClassRules is evaluated top to bottom and the first match wins.
//
// grading_system appears twice. The second rule (dashboard/score words)
// only fires when none of the rules above it matched, so a question that
// mentions both a deadline and the dashboard is classified by the first.
var ClassRules = []ClassRule{
	{types.CategoryCourseInfo, []string{"what is tds", "tds full form", "stands for", "about tds", "tools in data science"}},
	{types.CategoryGradingSystem, []string{"grade", "grading", "deadline", "due date", "project 01", "project 1", "s grade"}},
	{types.CategoryModelUsage, []string{"gpt", "model", "ai-proxy", "openai"}},
	{types.CategoryEnvironmentSetup, []string{"docker", "podman", "container"}},
	{types.CategoryAssignmentHelp, []string{"ga4", "ga5", "graded assignment", "assignment"}},
	{types.CategoryGradingSystem, []string{"dashboard", "score", "marks", "bonus"}},
	{types.CategoryScheduleInquiry, []string{"exam", "end-term", "when is"}},
}

// Classify returns the category of the first rule in ClassRules that
// matches text, or CategoryGeneral.
func Classify(text string) types.Category {
	lower := strings.ToLower(text)
	for _, r := range ClassRules {
		if r.Matches(lower) {
			return r.Category
		}
	}
	return types.CategoryGeneral
}
