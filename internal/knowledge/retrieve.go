// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

const defaultMaxResults = 20

// QueryOptions holds parameters for listing indexed entries.
type QueryOptions struct {
	// Query is matched as a substring of title, body, or keywords.
	Query string

	// Kind filters by entry kind.
	Kind types.EntryKind

	// MaxResults limits result count. Zero uses the default (20); a
	// negative value returns everything.
	MaxResults int
}

// Retrieve lists indexed entries matching opts in ingestion order.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.KnowledgeEntry, error) {
	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT id, kind, title, url, content, answer_summary, keywords
		FROM entries
		WHERE 1=1`)

	if opts.Kind != "" {
		qb.WriteString(` AND kind = ?`)
		args = append(args, string(opts.Kind))
	}

	if opts.Query != "" {
		qb.WriteString(` AND (title LIKE ? OR content LIKE ? OR answer_summary LIKE ? OR keywords LIKE ?)`)
		pattern := "%" + opts.Query + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	qb.WriteString(` ORDER BY rowid`)

	limit := opts.MaxResults
	if limit == 0 {
		limit = defaultMaxResults
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge index: %w", err)
	}
	defer rows.Close()

	var entries []types.KnowledgeEntry
	for rows.Next() {
		var (
			e                            types.KnowledgeEntry
			kind                         string
			title, url, content, summary sql.NullString
			keywordsJSON                 sql.NullString
		)

		if err := rows.Scan(&e.ID, &kind, &title, &url, &content, &summary, &keywordsJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		e.Kind = types.EntryKind(kind)
		e.Title = title.String
		e.URL = url.String
		e.Content = content.String
		e.AnswerSummary = summary.String
		if keywordsJSON.Valid {
			if err := json.Unmarshal([]byte(keywordsJSON.String), &e.Keywords); err != nil {
				return nil, fmt.Errorf("decoding keywords of entry %s: %w", e.ID, err)
			}
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
