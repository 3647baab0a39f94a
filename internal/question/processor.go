// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package question turns raw question text into a ProcessedQuestion:
// cleaned text, an extracted keyword set, a single category label, and
// optional image metadata. Everything except image decoding is a pure
// function of the input text.
package question

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

// ErrEmptyQuestion is returned by Process when the question has no text.
var ErrEmptyQuestion = errors.New("question cannot be empty")

var whitespace = regexp.MustCompile(`\s+`)

// modelNames maps spelling variants of model names to their canonical form.
// Cleaning applies them in order.
var modelNames = []struct {
	pattern   *regexp.Regexp
	canonical string
}{
	{regexp.MustCompile(`(?i)gpt-?3\.?5-?turbo-?0125`), "gpt-3.5-turbo-0125"},
	{regexp.MustCompile(`(?i)gpt-?4o-?mini`), "gpt-4o-mini"},
}

// domainTerms are matched as case-insensitive substrings.
var domainTerms = []string{
	"gpt", "openai", "ai-proxy", "docker", "podman", "ga4", "ga5",
	"graded assignment", "dashboard", "bonus", "end-term", "exam",
	"discourse", "tds", "tools in data science", "anand", "professor",
}

// keywordPatterns capture model names and assignment references verbatim.
var keywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)gpt-?3\.?5-?turbo-?0125`),
	regexp.MustCompile(`(?i)gpt-?4o-?mini`),
	regexp.MustCompile(`(?i)gpt-?4`),
	regexp.MustCompile(`(?i)gpt-?3\.?5`),
	regexp.MustCompile(`(?i)ga\d+`),
}

// Processor builds ProcessedQuestions. It holds no per-request state and
// is safe for concurrent use.
type Processor struct {
	images ImageAnalyzer
	logger *zap.Logger
}

// NewProcessor returns a Processor. A nil analyzer selects LengthAnalyzer;
// a nil logger discards output.
func NewProcessor(images ImageAnalyzer, logger *zap.Logger) *Processor {
	if images == nil {
		images = LengthAnalyzer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{images: images, logger: logger}
}

// Process cleans the question, then extracts keywords and classifies the
// cleaned text. An empty image payload means no image was sent. A payload
// that cannot be decoded is logged and leaves Image nil.
func (p *Processor) Process(question, image string) (types.ProcessedQuestion, error) {
	if strings.TrimSpace(question) == "" {
		return types.ProcessedQuestion{}, ErrEmptyQuestion
	}

	cleaned := Clean(question)
	pq := types.ProcessedQuestion{
		Original: question,
		Cleaned:  cleaned,
		Keywords: ExtractKeywords(cleaned),
		Category: Classify(cleaned),
		HasImage: image != "",
	}

	if image != "" {
		info, err := p.images.Analyze(image)
		if err != nil {
			p.logger.Warn("image payload ignored", zap.Error(err))
		} else {
			pq.Image = info
		}
	}

	return pq, nil
}

// Clean collapses whitespace runs to single spaces, trims the ends, and
// rewrites model-name variants (e.g. "GPT3.5turbo0125") to canonical form.
func Clean(question string) string {
	cleaned := whitespace.ReplaceAllString(strings.TrimSpace(question), " ")
	for _, m := range modelNames {
		cleaned = m.pattern.ReplaceAllString(cleaned, m.canonical)
	}
	return cleaned
}

// ExtractKeywords returns the sorted, deduplicated union of the domain
// terms contained in text and the model-name and assignment references
// matched within it. Matches keep the casing they have in text.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})

	for _, term := range domainTerms {
		if strings.Contains(lower, term) {
			seen[term] = struct{}{}
		}
	}
	for _, re := range keywordPatterns {
		for _, m := range re.FindAllString(text, -1) {
			seen[m] = struct{}{}
		}
	}

	keywords := make([]string, 0, len(seen))
	for k := range seen {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}
