// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// EntryKind distinguishes the two sources of knowledge entries.
type EntryKind string

const (
	KindCourseContent EntryKind = "course_content"
	KindDiscoursePost EntryKind = "discourse"
)

// KnowledgeEntry is one searchable snippet of course material or forum
// discussion. Course entries carry their text in Content; discourse
// entries carry it in AnswerSummary.
type KnowledgeEntry struct {
	// ID is derived from kind, url, title, and body by the loader. Source
	// files may carry their own "id" field of any type; it is not read.
	ID string `json:"-" yaml:"id,omitempty"`

	// Kind is set by the loader; it is not part of the source files.
	Kind EntryKind `json:"-" yaml:"kind"`

	// Title is the lecture or topic title. May be empty.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// URL points at the source page.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Content is the body text of a course content entry.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// AnswerSummary is the summarized answer of a discourse topic.
	AnswerSummary string `json:"answer_summary,omitempty" yaml:"answer_summary,omitempty"`

	// Keywords are terms attached to the entry by whoever produced it.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Body returns the text used when the entry is quoted in an answer.
func (e KnowledgeEntry) Body() string {
	if e.Kind == KindDiscoursePost {
		return e.AnswerSummary
	}
	return e.Content
}

// DefaultTitle is the link text used when the entry has no title.
func (e KnowledgeEntry) DefaultTitle() string {
	if e.Kind == KindDiscoursePost {
		return "Discourse Discussion"
	}
	return "TDS Course Content"
}

// SearchText returns the lowercased text that relevance scoring matches
// against. Course entries combine content and keywords; discourse entries
// combine title, summary, and keywords.
func (e KnowledgeEntry) SearchText() string {
	keywords := strings.Join(e.Keywords, " ")
	if e.Kind == KindDiscoursePost {
		return strings.ToLower(e.Title + " " + e.AnswerSummary + " " + keywords)
	}
	return strings.ToLower(e.Content + " " + keywords)
}

// KnowledgeBase is the read-only set of entries loaded at startup. Order
// within each slice is load order.
type KnowledgeBase struct {
	Course    []KnowledgeEntry `json:"course_content" yaml:"course_content"`
	Discourse []KnowledgeEntry `json:"discourse_posts" yaml:"discourse_posts"`
}

// Len returns the total number of entries.
func (kb KnowledgeBase) Len() int {
	return len(kb.Course) + len(kb.Discourse)
}

// All returns course entries followed by discourse entries.
func (kb KnowledgeBase) All() []KnowledgeEntry {
	all := make([]KnowledgeEntry, 0, kb.Len())
	all = append(all, kb.Course...)
	return append(all, kb.Discourse...)
}
