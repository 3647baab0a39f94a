// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge loads the course content and discourse entries the
// answer generator searches. Entries come either straight from JSON files
// or from a SQLite knowledge index built from those files.
package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

const dbFile = "knowledge.db"

// Store manages the knowledge index database.
type Store struct {
	db  *sql.DB
	cfg types.KnowledgeBaseConfig
}

// NewStore opens or creates the index at cfg.IndexDir/knowledge.db and
// creates the schema if it does not exist.
func NewStore(cfg types.KnowledgeBaseConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory %s: %w", cfg.IndexDir, err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", dbPath, err)
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT,
			url TEXT,
			content TEXT,
			answer_summary TEXT,
			keywords TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_id ON entries(id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			kind TEXT PRIMARY KEY,
			source_path TEXT,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds per-source-file counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
	Entries int
}

// Total returns the number of source files considered.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest loads the configured course and discourse files into the index.
// A kind whose source file is unchanged since the last run is skipped; a
// changed file replaces every entry of that kind. Progress lines go to w.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	sources := []struct {
		kind  types.EntryKind
		paths []string
	}{
		{types.KindCourseContent, s.cfg.CoursePaths},
		{types.KindDiscoursePost, s.cfg.DiscoursePaths},
	}

	for _, src := range sources {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		path, ok := firstExisting(src.paths)
		if !ok {
			fmt.Fprintf(w, "missing %s: none of %v exist\n", src.kind, src.paths)
			summary.Failed++
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedPath, storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT source_path, file_mod_time FROM indexing_status WHERE kind = ?`, string(src.kind),
		).Scan(&storedPath, &storedModTime)

		if err == nil && storedPath == path && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", path)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		entries, err := ReadEntries(path, src.kind)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			continue
		}

		n, err := s.replaceKind(ctx, src.kind, entries, path, modTime)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			continue
		}

		summary.Entries += n
		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d entries)\n", path, n)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d entries)\n", path, n)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

// Put replaces every entry of kind with entries, bypassing the source file
// bookkeeping used by Ingest.
func (s *Store) Put(ctx context.Context, kind types.EntryKind, entries []types.KnowledgeEntry) error {
	_, err := s.replaceKind(ctx, kind, entries, "", "")
	return err
}

// replaceKind swaps every entry of kind for entries in one transaction and
// returns the number of rows inserted. Duplicate entries are kept, so the
// index holds exactly what the source file holds.
func (s *Store) replaceKind(ctx context.Context, kind types.EntryKind, entries []types.KnowledgeEntry, path, modTime string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE kind = ?`, string(kind)); err != nil {
		return 0, fmt.Errorf("deleting old entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (id, kind, title, url, content, answer_summary, keywords)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range entries {
		e.Kind = kind
		if e.ID == "" {
			e.ID = EntryID(e)
		}
		keywordsJSON, err := json.Marshal(e.Keywords)
		if err != nil {
			return 0, fmt.Errorf("marshaling keywords of %s: %w", e.ID, err)
		}
		res, err := stmt.ExecContext(ctx,
			e.ID, string(kind), e.Title, e.URL, e.Content, e.AnswerSummary, string(keywordsJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
		inserted += int(n)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO indexing_status (kind, source_path, file_mod_time) VALUES (?, ?, ?)
		 ON CONFLICT(kind) DO UPDATE SET source_path=excluded.source_path, file_mod_time=excluded.file_mod_time`,
		string(kind), path, modTime,
	); err != nil {
		return 0, fmt.Errorf("updating indexing status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return inserted, nil
}

// Snapshot returns every indexed entry, split by kind, in ingestion order.
func (s *Store) Snapshot(ctx context.Context) (types.KnowledgeBase, error) {
	entries, err := s.Retrieve(ctx, QueryOptions{MaxResults: -1})
	if err != nil {
		return types.KnowledgeBase{}, err
	}

	var kb types.KnowledgeBase
	for _, e := range entries {
		if e.Kind == types.KindDiscoursePost {
			kb.Discourse = append(kb.Discourse, e)
		} else {
			kb.Course = append(kb.Course, e)
		}
	}
	return kb, nil
}

// IndexStats holds entry counts per kind.
type IndexStats struct {
	CourseContent  int `json:"course_content" yaml:"course_content"`
	DiscoursePosts int `json:"discourse_posts" yaml:"discourse_posts"`
}

// Stats counts indexed entries per kind.
func (s *Store) Stats(ctx context.Context) (IndexStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, count(*) FROM entries GROUP BY kind`)
	if err != nil {
		return IndexStats{}, fmt.Errorf("counting entries: %w", err)
	}
	defer rows.Close()

	var st IndexStats
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return IndexStats{}, fmt.Errorf("scanning count: %w", err)
		}
		switch types.EntryKind(kind) {
		case types.KindCourseContent:
			st.CourseContent = n
		case types.KindDiscoursePost:
			st.DiscoursePosts = n
		}
	}
	return st, rows.Err()
}
