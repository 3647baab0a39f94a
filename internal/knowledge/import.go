// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/virtual-ta/internal/question"
	"github.com/pdiddy/virtual-ta/pkg/types"
)

// Column layouts written by the course and forum scrapers.
var (
	lectureHeader   = []string{"Lecture Title", "Content"}
	discourseHeader = []string{"Topic ID", "Topic Title", "Post ID", "Author", "Created At", "Content"}
)

// ImportLectures converts the lecture CSV (title, content) into course
// content entries linked to courseURL.
func ImportLectures(r io.Reader, courseURL string) ([]types.KnowledgeEntry, error) {
	rows, err := readCSV(r, lectureHeader)
	if err != nil {
		return nil, err
	}

	entries := make([]types.KnowledgeEntry, 0, len(rows))
	for _, row := range rows {
		title := strings.TrimSpace(row[0])
		content := strings.TrimSpace(row[1])
		if title == "" && content == "" {
			continue
		}
		e := types.KnowledgeEntry{
			Kind:     types.KindCourseContent,
			Title:    title,
			URL:      courseURL,
			Content:  content,
			Keywords: question.ExtractKeywords(title + " " + content),
		}
		e.ID = EntryID(e)
		entries = append(entries, e)
	}
	return entries, nil
}

// ImportDiscourse converts the forum CSV (one row per post) into one
// discourse entry per topic, in first-seen topic order. The first post of
// a topic becomes its answer summary.
func ImportDiscourse(r io.Reader, forumURL string) ([]types.KnowledgeEntry, error) {
	rows, err := readCSV(r, discourseHeader)
	if err != nil {
		return nil, err
	}

	type topic struct {
		title string
		posts []string
	}
	var order []string
	topics := make(map[string]*topic)

	for _, row := range rows {
		id := strings.TrimSpace(row[0])
		if id == "" {
			continue
		}
		t, ok := topics[id]
		if !ok {
			t = &topic{title: strings.TrimSpace(row[1])}
			topics[id] = t
			order = append(order, id)
		}
		if post := strings.TrimSpace(row[5]); post != "" {
			t.posts = append(t.posts, post)
		}
	}

	entries := make([]types.KnowledgeEntry, 0, len(order))
	for _, id := range order {
		t := topics[id]
		e := types.KnowledgeEntry{
			Kind:     types.KindDiscoursePost,
			Title:    t.title,
			URL:      strings.TrimRight(forumURL, "/") + "/t/" + id,
			Keywords: question.ExtractKeywords(t.title + " " + strings.Join(t.posts, " ")),
		}
		if len(t.posts) > 0 {
			e.AnswerSummary = t.posts[0]
		}
		e.ID = EntryID(e)
		entries = append(entries, e)
	}
	return entries, nil
}

// readCSV reads every record after the header and checks the header and
// column count against want.
func readCSV(r io.Reader, want []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(want)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, col := range want {
		if strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")) != col {
			return nil, fmt.Errorf("unexpected CSV header %q, want %q", header, want)
		}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return rows, nil
}

// WriteEntries writes entries as an indented JSON array, the format
// LoadFiles reads.
func WriteEntries(path string, entries []types.KnowledgeEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if entries == nil {
		entries = []types.KnowledgeEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling entries: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
