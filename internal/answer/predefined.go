// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package answer

import (
	"strings"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

const (
	courseSiteURL  = "https://tds.s-anand.net"
	courseTermURL  = "https://tds.s-anand.net/#/2025-01"
	forumURL       = "https://discourse.onlinedegree.iitm.ac.in"
	forumTopicsURL = forumURL + "/t/"
)

// Matcher reports whether a lowercased question triggers a rule.
type Matcher func(lower string) bool

// Rule pairs a trigger with the answer it returns.
type Rule struct {
	Match  Matcher
	Answer types.PredefinedAnswer
}

// anyOf matches when any phrase occurs in the question.
func anyOf(phrases ...string) Matcher {
	return func(lower string) bool {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}
}

// allOf matches when every matcher matches.
func allOf(matchers ...Matcher) Matcher {
	return func(lower string) bool {
		for _, m := range matchers {
			if !m(lower) {
				return false
			}
		}
		return true
	}
}

// DefaultRules returns the built-in predefined answers in priority order.
// Earlier rules win; the broad docker/podman, dashboard, and exam rules
// sit after the specific ones on purpose and must stay there.
func DefaultRules() []Rule {
	return []Rule{
		{
			Match: anyOf("what is tds", "about tds", "tds course"),
			Answer: types.PredefinedAnswer{
				Category: "course_info",
				Key:      "what_is_tds",
				Answer:   "TDS (Tools in Data Science) is a practical diploma level course at IIT Madras covering 7 modules: Development Tools, Deployment Tools, Large Language Models, Data Sourcing, Data Preparation, Data Analysis, and Data Visualization. The course is designed to be challenging and covers real-world tools that make you more productive than your peers.",
				Links: []types.Link{
					{URL: courseSiteURL, Text: "TDS Course Materials"},
					{URL: forumURL, Text: "TDS Discussion Forum"},
				},
			},
		},
		{
			Match: anyOf("tds full form", "stands for", "tds means"),
			Answer: types.PredefinedAnswer{
				Category: "course_info",
				Key:      "tds_full_form",
				Answer:   "TDS stands for 'Tools in Data Science'. It's a practical diploma level data science course at IIT Madras that teaches popular tools for sourcing data, transforming it, analyzing it, communicating these as visual stories, and deploying them in production.",
				Links: []types.Link{
					{URL: courseTermURL, Text: "TDS Course Overview"},
				},
			},
		},
		{
			Match: anyOf("books", "pdf", "certified", "reference"),
			Answer: types.PredefinedAnswer{
				Category: "course_info",
				Key:      "course_books",
				Answer:   "There are no IITM certified books nor PDFs for Tools in Data Science. The site https://tds.s-anand.net/ is the official reference. Content is updated regularly, so you might want to track the changes for recent updates.",
				Links: []types.Link{
					{URL: courseSiteURL, Text: "Official TDS Reference"},
				},
			},
		},
		{
			Match: anyOf("s grade", "how to get s", "grade s"),
			Answer: types.PredefinedAnswer{
				Category: "grading_info",
				Key:      "s_grade",
				Answer:   "To get an S grade in TDS, you need excellent performance across all evaluations: Best 4 out of 7 GAs (15%), Project 1 (20%), Project 2 (20%), ROE (20%), and Final end-term (25%). Focus on completing all assignments, projects with high quality, and preparing well for the challenging ROE and final exam.",
				Links: []types.Link{
					{URL: courseTermURL, Text: "TDS Evaluation Structure"},
				},
			},
		},
		{
			Match: anyOf("deadline", "due date", "project 01", "project 1"),
			Answer: types.PredefinedAnswer{
				Category: "grading_info",
				Key:      "project_deadline",
				Answer:   "Based on the Jan 2025 schedule: Project 1 deadline is 16 Feb 2025, Project 2 deadline is 31 Mar 2025. For May 2025 semester, please check the course announcements on the TDS website or Discourse forum for updated deadlines.",
				Links: []types.Link{
					{URL: courseTermURL, Text: "TDS Evaluation Schedule"},
					{URL: forumURL, Text: "TDS Course Announcements"},
				},
			},
		},
		{
			Match: anyOf("score reset", "score 0", "resetting"),
			Answer: types.PredefinedAnswer{
				Category: "technical_issues",
				Key:      "score_reset",
				Answer:   "Score resetting to 0 was a known issue that has been fixed with a 'Recent saves' feature. This shows the time and score for the last 3 saves. Always reenter all answers before hitting Save and click 'Check' to calculate your score. The last submission is always saved.",
				Links: []types.Link{
					{URL: forumTopicsURL + "score-keeps-resetting-to-0", Text: "Score Reset Issue Discussion"},
				},
			},
		},
		{
			Match: anyOf("github email", "iitm email", "email github"),
			Answer: types.PredefinedAnswer{
				Category: "projects",
				Key:      "github_email",
				Answer:   "No explicit policy requires IITM email for GitHub profile or repo owner. However, you MUST use your IITM email when submitting the project submission form. The GitHub profile email can be different.",
				Links: []types.Link{
					{URL: forumTopicsURL + "regarding-github-mail-for-project", Text: "GitHub Email Requirements Discussion"},
				},
			},
		},
		{
			Match: anyOf("roe", "remote online exam", "roe exam"),
			Answer: types.PredefinedAnswer{
				Category: "roe_exam",
				Key:      "roe_info",
				Answer:   "ROE (Remote Online Exam) is a 45-minute open-internet exam worth 20% of your grade, scheduled for 02 Mar 2025. It tests practical skills including LLM embeddings (using text-embedding-3-small), file operations with mv/find commands, and other hands-on tasks. It's designed to be challenging.",
				Links: []types.Link{
					{URL: forumTopicsURL + "solving-roe-realtime", Text: "ROE Exam Discussion"},
				},
			},
		},
		{
			Match: anyOf("gpt-3.5-turbo-0125", "gpt3.5", "openai api"),
			Answer: types.PredefinedAnswer{
				Category: "model_usage",
				Key:      "gpt-3.5-turbo-0125",
				Answer:   "You must use `gpt-3.5-turbo-0125`, even if the AI Proxy only supports `gpt-4o-mini`. Use the OpenAI API directly for this question.",
				Links: []types.Link{
					{URL: forumTopicsURL + "ga5-question-8-clarification/155939/4", Text: "Use the model that's mentioned in the question."},
				},
			},
		},
		{
			Match: allOf(anyOf("docker", "podman"), anyOf("use")),
			Answer: types.PredefinedAnswer{
				Category: "environment_setup",
				Key:      "docker_vs_podman",
				Answer:   "While Docker knowledge is valuable, we recommend using Podman for this course as it's the officially supported container tool. However, Docker is also acceptable for completing assignments.",
				Links: []types.Link{
					{URL: courseSiteURL + "/#/docker", Text: "TDS Docker/Podman Documentation"},
				},
			},
		},
		{
			Match: allOf(anyOf("10/10", "bonus", "dashboard"), anyOf("appear", "show", "display")),
			Answer: types.PredefinedAnswer{
				Category: "grading_system",
				Key:      "bonus_scoring",
				Answer:   "If a student scores 10/10 on GA4 as well as a bonus, it would appear as '110' on the dashboard, indicating 10 out of 10 plus the bonus point.",
				Links: []types.Link{
					{URL: forumTopicsURL + "ga4-data-sourcing-discussion-thread-tds-jan-2025/165959/388", Text: "GA4 Dashboard Scoring Discussion"},
				},
			},
		},
		{
			Match: allOf(anyOf("sep 2025", "end-term", "future"), anyOf("exam")),
			Answer: types.PredefinedAnswer{
				Key:    "future_schedule",
				Answer: "I don't know the specific schedule for the TDS Sep 2025 end-term exam as this information is not available at this time. Please check the course announcements for updated information.",
				Links: []types.Link{
					{URL: courseSiteURL, Text: "TDS Course Schedule"},
					{URL: forumURL, Text: "TDS Announcements"},
				},
			},
		},
	}
}
