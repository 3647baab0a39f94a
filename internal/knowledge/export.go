// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is the on-disk form of an indexed entry. Unlike the source
// files it records the kind, since both kinds share one export.
type ExportEntry struct {
	ID            string   `json:"id" yaml:"id"`
	Kind          string   `json:"kind" yaml:"kind"`
	Title         string   `json:"title,omitempty" yaml:"title,omitempty"`
	URL           string   `json:"url,omitempty" yaml:"url,omitempty"`
	Content       string   `json:"content,omitempty" yaml:"content,omitempty"`
	AnswerSummary string   `json:"answer_summary,omitempty" yaml:"answer_summary,omitempty"`
	Keywords      []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// ExportYAML writes matching entries to <index_dir>/export.yaml and
// returns the path written.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.cfg.IndexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes matching entries to <index_dir>/export.json and
// returns the path written.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.cfg.IndexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	if opts.MaxResults == 0 {
		opts.MaxResults = -1
	}
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:            r.ID,
			Kind:          string(r.Kind),
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			AnswerSummary: r.AnswerSummary,
			Keywords:      r.Keywords,
		}
	}
	return entries, nil
}
