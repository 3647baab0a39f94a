// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Link is a reference returned alongside an answer.
type Link struct {
	URL  string `json:"url" yaml:"url"`
	Text string `json:"text" yaml:"text"`
}

// AnswerResult is the reply to a single question.
type AnswerResult struct {
	// Answer is at most 500 characters plus an ellipsis.
	Answer string `json:"answer" yaml:"answer"`

	// Links holds at most 3 references, most relevant first.
	Links []Link `json:"links" yaml:"links"`
}

// PredefinedAnswer is a hand-written answer returned verbatim when a
// question matches one of its trigger phrases.
type PredefinedAnswer struct {
	// Category groups related answers (e.g. "course_info").
	Category string `json:"category" yaml:"category"`

	// Key names the answer within its category (e.g. "what_is_tds").
	Key string `json:"key" yaml:"key"`

	Answer string `json:"answer" yaml:"answer"`
	Links  []Link `json:"links" yaml:"links"`
}

// Result returns a copy of the answer as an AnswerResult.
func (p PredefinedAnswer) Result() AnswerResult {
	links := make([]Link, len(p.Links))
	copy(links, p.Links)
	return AnswerResult{Answer: p.Answer, Links: links}
}
