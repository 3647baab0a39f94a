// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

// --- test helpers ---

func testConfig(t *testing.T) (types.KnowledgeBaseConfig, string) {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := types.KnowledgeBaseConfig{
		Source: types.SourceFiles,
		CoursePaths: []string{
			filepath.Join(tmpDir, "scraped_data", "enhanced_course_content.json"),
			filepath.Join(tmpDir, "data", "course_content.json"),
		},
		DiscoursePaths: []string{
			filepath.Join(tmpDir, "scraped_data", "enhanced_discourse_posts.json"),
			filepath.Join(tmpDir, "data", "discourse_posts.json"),
		},
		IndexDir: filepath.Join(tmpDir, "knowledge", "index"),
	}
	return cfg, tmpDir
}

func testStore(t *testing.T, cfg types.KnowledgeBaseConfig) *Store {
	t.Helper()
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func sampleCourse() []map[string]any {
	return []map[string]any{
		{
			"title":    "Docker basics",
			"url":      "https://tds.s-anand.net/#/docker",
			"content":  "Containers package applications with their dependencies.",
			"keywords": []string{"docker", "containers"},
		},
		{
			"title":   "Seaborn",
			"url":     "https://tds.s-anand.net/#/seaborn",
			"content": "Statistical visualization in python",
		},
	}
}

func sampleDiscourse() []map[string]any {
	return []map[string]any{
		{
			"title":          "GA5 question 8 clarification",
			"url":            "https://discourse.onlinedegree.iitm.ac.in/t/155939",
			"answer_summary": "Use gpt-3.5-turbo-0125 as stated in the question.",
			"keywords":       []string{"ga5", "gpt"},
		},
	}
}

// --- loader tests ---

func TestLoadFiles(t *testing.T) {
	cfg, _ := testConfig(t)
	writeJSON(t, cfg.CoursePaths[0], sampleCourse())
	writeJSON(t, cfg.DiscoursePaths[0], sampleDiscourse())

	kb := LoadFiles(cfg, zap.NewNop())

	if len(kb.Course) != 2 {
		t.Fatalf("Course = %d entries, want 2", len(kb.Course))
	}
	if len(kb.Discourse) != 1 {
		t.Fatalf("Discourse = %d entries, want 1", len(kb.Discourse))
	}
	if kb.Course[0].Title != "Docker basics" || kb.Course[1].Title != "Seaborn" {
		t.Errorf("course order = %q, %q", kb.Course[0].Title, kb.Course[1].Title)
	}
	for _, e := range kb.Course {
		if e.Kind != types.KindCourseContent {
			t.Errorf("course entry kind = %q", e.Kind)
		}
		if e.ID == "" {
			t.Error("course entry has no ID")
		}
	}
	d := kb.Discourse[0]
	if d.Kind != types.KindDiscoursePost {
		t.Errorf("discourse entry kind = %q", d.Kind)
	}
	if d.Body() != "Use gpt-3.5-turbo-0125 as stated in the question." {
		t.Errorf("discourse body = %q", d.Body())
	}
}

func TestLoadFilesFallbackPath(t *testing.T) {
	cfg, _ := testConfig(t)
	writeJSON(t, cfg.CoursePaths[1], sampleCourse()[:1])

	kb := LoadFiles(cfg, nil)

	if len(kb.Course) != 1 {
		t.Errorf("Course = %d entries, want 1 from fallback path", len(kb.Course))
	}
	if len(kb.Discourse) != 0 {
		t.Errorf("Discourse = %d entries, want 0", len(kb.Discourse))
	}
}

func TestLoadFilesPrefersFirstPath(t *testing.T) {
	cfg, _ := testConfig(t)
	writeJSON(t, cfg.CoursePaths[0], sampleCourse())
	writeJSON(t, cfg.CoursePaths[1], sampleCourse()[:1])

	kb := LoadFiles(cfg, nil)

	if len(kb.Course) != 2 {
		t.Errorf("Course = %d entries, want 2 from primary path", len(kb.Course))
	}
}

func TestLoadFilesDegradesGracefully(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, cfg types.KnowledgeBaseConfig)
	}{
		{"no files", func(t *testing.T, cfg types.KnowledgeBaseConfig) {}},
		{"malformed JSON", func(t *testing.T, cfg types.KnowledgeBaseConfig) {
			if err := os.MkdirAll(filepath.Dir(cfg.CoursePaths[0]), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(cfg.CoursePaths[0], []byte("{not json"), 0o644); err != nil {
				t.Fatal(err)
			}
		}},
		{"wrong shape", func(t *testing.T, cfg types.KnowledgeBaseConfig) {
			writeJSON(t, cfg.DiscoursePaths[0], map[string]string{"title": "x"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _ := testConfig(t)
			tt.setup(t, cfg)

			kb := LoadFiles(cfg, zap.NewNop())
			if kb.Len() != 0 {
				t.Errorf("Len = %d, want 0", kb.Len())
			}
		})
	}
}

func TestLoadFilesIgnoresSourceIDs(t *testing.T) {
	cfg, _ := testConfig(t)
	if err := os.MkdirAll(filepath.Dir(cfg.DiscoursePaths[0]), 0o755); err != nil {
		t.Fatal(err)
	}
	data := `[
		{"id": 155939, "title": "GA5 clarification", "url": "https://discourse.onlinedegree.iitm.ac.in/t/155939", "answer_summary": "Use the stated model.", "posts": 4},
		{"id": "abc", "title": "Docker", "answer_summary": "Podman works too."}
	]`
	if err := os.WriteFile(cfg.DiscoursePaths[0], []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	kb := LoadFiles(cfg, zap.NewNop())

	if len(kb.Discourse) != 2 {
		t.Fatalf("Discourse = %d entries, want 2", len(kb.Discourse))
	}
	for _, e := range kb.Discourse {
		if e.ID != EntryID(e) {
			t.Errorf("ID = %q, want derived %q", e.ID, EntryID(e))
		}
	}
}

func TestEntryIDIsStable(t *testing.T) {
	e := types.KnowledgeEntry{Kind: types.KindCourseContent, Title: "A", URL: "u", Content: "body"}
	if EntryID(e) != EntryID(e) {
		t.Error("EntryID is not deterministic")
	}
	other := e
	other.Kind = types.KindDiscoursePost
	if EntryID(e) == EntryID(other) {
		t.Error("EntryID ignores kind")
	}
	changed := e
	changed.Content = "new body"
	if EntryID(e) == EntryID(changed) {
		t.Error("EntryID ignores body")
	}
}

// --- store tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	cfg, _ := testConfig(t)
	store := testStore(t, cfg)

	for _, table := range []string{"entries", "indexing_status"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}

	if _, err := os.Stat(filepath.Join(cfg.IndexDir, dbFile)); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestIngestAndSnapshot(t *testing.T) {
	cfg, _ := testConfig(t)
	writeJSON(t, cfg.CoursePaths[0], sampleCourse())
	writeJSON(t, cfg.DiscoursePaths[1], sampleDiscourse())
	store := testStore(t, cfg)

	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Indexed != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 2 indexed; output: %s", summary, buf.String())
	}
	if summary.Entries != 3 {
		t.Errorf("Entries = %d, want 3", summary.Entries)
	}

	kb, err := store.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	fromFiles := LoadFiles(cfg, nil)
	if len(kb.Course) != len(fromFiles.Course) || len(kb.Discourse) != len(fromFiles.Discourse) {
		t.Fatalf("snapshot sizes %d/%d, files %d/%d",
			len(kb.Course), len(kb.Discourse), len(fromFiles.Course), len(fromFiles.Discourse))
	}
	for i := range kb.Course {
		got, want := kb.Course[i], fromFiles.Course[i]
		if got.ID != want.ID || got.Title != want.Title || got.Content != want.Content || got.URL != want.URL {
			t.Errorf("course[%d] = %+v, want %+v", i, got, want)
		}
		if strings.Join(got.Keywords, ",") != strings.Join(want.Keywords, ",") {
			t.Errorf("course[%d] keywords = %v, want %v", i, got.Keywords, want.Keywords)
		}
	}
	if kb.Discourse[0].AnswerSummary != fromFiles.Discourse[0].AnswerSummary {
		t.Errorf("discourse summary = %q", kb.Discourse[0].AnswerSummary)
	}
}

func TestIngestSkipsUnchanged(t *testing.T) {
	cfg, _ := testConfig(t)
	writeJSON(t, cfg.CoursePaths[0], sampleCourse())
	writeJSON(t, cfg.DiscoursePaths[0], sampleDiscourse())
	store := testStore(t, cfg)

	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 2 || summary.Indexed != 0 {
		t.Errorf("summary = %+v, want 2 skipped", summary)
	}
	if !strings.Contains(buf.String(), "skipped") {
		t.Errorf("output should contain 'skipped': %s", buf.String())
	}
}

func TestIngestUpdatesChanged(t *testing.T) {
	cfg, _ := testConfig(t)
	writeJSON(t, cfg.CoursePaths[0], sampleCourse())
	writeJSON(t, cfg.DiscoursePaths[0], sampleDiscourse())
	store := testStore(t, cfg)

	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	writeJSON(t, cfg.CoursePaths[0], []map[string]any{{"title": "Only", "content": "Replaced content"}})
	future := time.Now().Add(time.Second)
	os.Chtimes(cfg.CoursePaths[0], future, future)

	buf.Reset()
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 || summary.Skipped != 1 {
		t.Errorf("summary = %+v, want 1 updated and 1 skipped", summary)
	}

	kb, err := store.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(kb.Course) != 1 || kb.Course[0].Content != "Replaced content" {
		t.Errorf("course = %+v, want only the replaced entry", kb.Course)
	}
	if len(kb.Discourse) != 1 {
		t.Errorf("discourse = %d entries, want 1", len(kb.Discourse))
	}
}

func TestIngestMissingAndMalformedFiles(t *testing.T) {
	cfg, _ := testConfig(t)
	if err := os.MkdirAll(filepath.Dir(cfg.DiscoursePaths[0]), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.DiscoursePaths[0], []byte("[{"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := testStore(t, cfg)

	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 2 {
		t.Errorf("Failed = %d, want 2; output: %s", summary.Failed, buf.String())
	}
	if !strings.Contains(buf.String(), "failed: 2") {
		t.Errorf("output should contain 'failed: 2': %s", buf.String())
	}
	if summary.Total() != 2 {
		t.Errorf("Total = %d, want 2", summary.Total())
	}
}

func TestRetrieveFilters(t *testing.T) {
	cfg, _ := testConfig(t)
	writeJSON(t, cfg.CoursePaths[0], sampleCourse())
	writeJSON(t, cfg.DiscoursePaths[0], sampleDiscourse())
	store := testStore(t, cfg)

	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts QueryOptions
		want int
	}{
		{"all", QueryOptions{}, 3},
		{"by kind", QueryOptions{Kind: types.KindCourseContent}, 2},
		{"by text in content", QueryOptions{Query: "visualization"}, 1},
		{"by text in keywords", QueryOptions{Query: "ga5"}, 1},
		{"case-insensitive", QueryOptions{Query: "DOCKER"}, 1},
		{"limit", QueryOptions{MaxResults: 1}, 1},
		{"no match", QueryOptions{Query: "xyzzy"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Retrieve(context.Background(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != tt.want {
				t.Errorf("got %d results, want %d", len(results), tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	cfg, _ := testConfig(t)
	store := testStore(t, cfg)

	err := store.Put(context.Background(), types.KindDiscoursePost, []types.KnowledgeEntry{
		{Title: "a", AnswerSummary: "one"},
		{Title: "b", AnswerSummary: "two"},
	})
	if err != nil {
		t.Fatal(err)
	}

	st, err := store.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.DiscoursePosts != 2 || st.CourseContent != 0 {
		t.Errorf("stats = %+v, want 2 discourse posts", st)
	}
}

func TestLoadFromIndex(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Source = types.SourceIndex
	store := testStore(t, cfg)
	err := store.Put(context.Background(), types.KindCourseContent, []types.KnowledgeEntry{
		{Title: "Indexed", Content: "from the index"},
	})
	if err != nil {
		t.Fatal(err)
	}

	kb := Load(context.Background(), cfg, zap.NewNop())

	if len(kb.Course) != 1 || kb.Course[0].Title != "Indexed" {
		t.Errorf("course = %+v, want the indexed entry", kb.Course)
	}
}

func TestLoadFromFilesIgnoresIndex(t *testing.T) {
	cfg, _ := testConfig(t)
	writeJSON(t, cfg.DiscoursePaths[0], sampleDiscourse())

	kb := Load(context.Background(), cfg, nil)

	if len(kb.Discourse) != 1 || len(kb.Course) != 0 {
		t.Errorf("kb = %d course, %d discourse; want 0, 1", len(kb.Course), len(kb.Discourse))
	}
	if _, err := os.Stat(filepath.Join(cfg.IndexDir, dbFile)); !os.IsNotExist(err) {
		t.Error("files source should not create the index")
	}
}

// --- export tests ---

func TestExport(t *testing.T) {
	cfg, _ := testConfig(t)
	writeJSON(t, cfg.CoursePaths[0], sampleCourse())
	writeJSON(t, cfg.DiscoursePaths[0], sampleDiscourse())
	store := testStore(t, cfg)

	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	yamlPath, err := store.ExportYAML(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML []ExportEntry
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != 3 {
		t.Errorf("YAML export has %d entries, want 3", len(fromYAML))
	}

	jsonPath, err := store.ExportJSON(context.Background(), QueryOptions{Kind: types.KindDiscoursePost})
	if err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON []ExportEntry
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if len(fromJSON) != 1 || fromJSON[0].Kind != string(types.KindDiscoursePost) {
		t.Errorf("JSON export = %+v, want the single discourse entry", fromJSON)
	}
}

// --- import tests ---

func TestImportLectures(t *testing.T) {
	csvData := "\ufeffLecture Title,Content\n" +
		"Docker basics,\"Containers, images, and volumes\"\n" +
		",\n" +
		"GA4 walkthrough,Use GPT-4o-mini for the graded assignment\n"

	entries, err := ImportLectures(strings.NewReader(csvData), "https://tds.s-anand.net/#/2025-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (blank row dropped)", len(entries))
	}
	if entries[0].Content != "Containers, images, and volumes" {
		t.Errorf("content = %q", entries[0].Content)
	}
	if entries[0].URL != "https://tds.s-anand.net/#/2025-01" || entries[0].Kind != types.KindCourseContent {
		t.Errorf("entry = %+v", entries[0])
	}
	if !containsString(entries[0].Keywords, "docker") {
		t.Errorf("keywords = %v, want docker", entries[0].Keywords)
	}
	if !containsString(entries[1].Keywords, "ga4") {
		t.Errorf("keywords = %v, want ga4", entries[1].Keywords)
	}
}

func TestImportDiscourse(t *testing.T) {
	csvData := "Topic ID,Topic Title,Post ID,Author,Created At,Content\n" +
		"101,Docker or Podman?,1,alice,2025-04-01,Which one should I use?\n" +
		"202,GA5 bonus,5,bob,2025-04-02,Does the bonus show on the dashboard?\n" +
		"101,Docker or Podman?,2,carol,2025-04-01,Podman is recommended.\n"

	entries, err := ImportDiscourse(strings.NewReader(csvData), "https://discourse.onlinedegree.iitm.ac.in/")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d topics, want 2", len(entries))
	}

	first := entries[0]
	if first.Title != "Docker or Podman?" {
		t.Errorf("first topic = %q, want first-seen topic", first.Title)
	}
	if first.URL != "https://discourse.onlinedegree.iitm.ac.in/t/101" {
		t.Errorf("url = %q", first.URL)
	}
	if first.AnswerSummary != "Which one should I use?" {
		t.Errorf("summary = %q, want first post", first.AnswerSummary)
	}
	if !containsString(first.Keywords, "podman") {
		t.Errorf("keywords = %v, want podman from later post", first.Keywords)
	}
	if entries[1].Kind != types.KindDiscoursePost {
		t.Errorf("kind = %q", entries[1].Kind)
	}
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"wrong header", "Title,Body\nx,y\n"},
		{"short row", "Lecture Title,Content\nonly-one-field\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ImportLectures(strings.NewReader(tt.data), ""); err == nil {
				t.Error("expected error")
			}
		})
	}

	entries, err := ImportDiscourse(strings.NewReader(""), "")
	if err != nil || len(entries) != 0 {
		t.Errorf("empty input: entries=%v err=%v", entries, err)
	}
}

func TestWriteEntriesRoundTrip(t *testing.T) {
	cfg, _ := testConfig(t)
	entries, err := ImportLectures(strings.NewReader("Lecture Title,Content\nSeaborn,Plots\n"), "u")
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteEntries(cfg.CoursePaths[0], entries); err != nil {
		t.Fatal(err)
	}

	kb := LoadFiles(cfg, nil)
	if len(kb.Course) != 1 {
		t.Fatalf("Course = %d entries, want 1", len(kb.Course))
	}
	if kb.Course[0].ID != entries[0].ID || kb.Course[0].Content != "Plots" {
		t.Errorf("loaded %+v, want %+v", kb.Course[0], entries[0])
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestIndexMatchesFiles(t *testing.T) {
	cfg, _ := testConfig(t)
	dup := map[string]any{"title": "Same", "url": "u", "content": "identical body"}
	writeJSON(t, cfg.CoursePaths[0], []map[string]any{
		{"id": "1", "title": "First", "content": "one"},
		dup,
		dup,
	})
	writeJSON(t, cfg.DiscoursePaths[0], []map[string]any{
		{"id": "1", "title": "First", "answer_summary": "one"},
	})
	store := testStore(t, cfg)

	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Entries != 4 {
		t.Errorf("Entries = %d, want 4; output: %s", summary.Entries, buf.String())
	}
	if !strings.Contains(buf.String(), "(3 entries)") || !strings.Contains(buf.String(), "(1 entries)") {
		t.Errorf("output should report inserted counts: %s", buf.String())
	}

	fromFiles := LoadFiles(cfg, nil)
	cfg.Source = types.SourceIndex
	fromIndex := Load(context.Background(), cfg, nil)

	if len(fromIndex.Course) != len(fromFiles.Course) || len(fromIndex.Discourse) != len(fromFiles.Discourse) {
		t.Fatalf("index %d/%d, files %d/%d",
			len(fromIndex.Course), len(fromIndex.Discourse), len(fromFiles.Course), len(fromFiles.Discourse))
	}
	for i := range fromFiles.Course {
		if fromIndex.Course[i].ID != fromFiles.Course[i].ID || fromIndex.Course[i].Content != fromFiles.Course[i].Content {
			t.Errorf("course[%d] = %+v, want %+v", i, fromIndex.Course[i], fromFiles.Course[i])
		}
	}
}

func TestRetrieveCorruptKeywords(t *testing.T) {
	cfg, _ := testConfig(t)
	store := testStore(t, cfg)

	_, err := store.db.Exec(
		`INSERT INTO entries (id, kind, title, content, keywords) VALUES ('x', 'course_content', 't', 'c', '{bad')`)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Retrieve(context.Background(), QueryOptions{}); err == nil {
		t.Error("expected error for corrupt keywords")
	}
}
