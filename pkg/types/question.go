// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the virtual-ta service:
// processed questions, knowledge entries, predefined answers, answer
// results, and configuration.
package types

// Category is the single intent label assigned to a question.
type Category string

const (
	CategoryCourseInfo       Category = "course_info"
	CategoryGradingSystem    Category = "grading_system"
	CategoryModelUsage       Category = "model_usage"
	CategoryEnvironmentSetup Category = "environment_setup"
	CategoryAssignmentHelp   Category = "assignment_help"
	CategoryScheduleInquiry  Category = "schedule_inquiry"
	CategoryGeneral          Category = "general"
)

// Categories lists every label a question can be classified as.
var Categories = []Category{
	CategoryCourseInfo,
	CategoryGradingSystem,
	CategoryModelUsage,
	CategoryEnvironmentSetup,
	CategoryAssignmentHelp,
	CategoryScheduleInquiry,
	CategoryGeneral,
}

// ImageInfo describes an attached image. Only the decoded size is known.
type ImageInfo struct {
	// SizeBytes is the length of the decoded payload.
	SizeBytes int `json:"size_bytes" yaml:"size_bytes"`

	// Format describes how the payload was read (e.g. "base64_decoded").
	Format string `json:"format" yaml:"format"`

	// Note is a human-readable remark about the processing performed.
	Note string `json:"note" yaml:"note"`
}

// ProcessedQuestion is the structured form of a raw question. It is built
// once per request and not modified afterwards.
type ProcessedQuestion struct {
	// Original is the question text exactly as received.
	Original string `json:"original_question" yaml:"original_question"`

	// Cleaned has whitespace collapsed and model names normalized.
	Cleaned string `json:"cleaned_question" yaml:"cleaned_question"`

	// Keywords is the deduplicated set of extracted terms, sorted.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Category is the classification label.
	Category Category `json:"question_type" yaml:"question_type"`

	// HasImage reports whether an image payload accompanied the question.
	HasImage bool `json:"has_image" yaml:"has_image"`

	// Image is nil when no image was sent or the payload could not be decoded.
	Image *ImageInfo `json:"image_info,omitempty" yaml:"image_info,omitempty"`
}
