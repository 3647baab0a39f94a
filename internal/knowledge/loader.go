// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

// Load returns the knowledge base the answer generator serves from. It
// never fails: any error is logged and the affected entries are left out.
func Load(ctx context.Context, cfg types.KnowledgeBaseConfig, logger *zap.Logger) types.KnowledgeBase {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Source != types.SourceIndex {
		return LoadFiles(cfg, logger)
	}

	store, err := NewStore(cfg)
	if err != nil {
		logger.Warn("knowledge index unavailable, using empty knowledge base", zap.Error(err))
		return types.KnowledgeBase{}
	}
	defer store.Close()

	kb, err := store.Snapshot(ctx)
	if err != nil {
		logger.Warn("reading knowledge index failed, using empty knowledge base", zap.Error(err))
		return types.KnowledgeBase{}
	}

	logger.Info("knowledge base loaded from index",
		zap.Int("course_content", len(kb.Course)),
		zap.Int("discourse_posts", len(kb.Discourse)),
	)
	return kb
}

// LoadFiles reads course content and discourse posts from the first
// existing file in each configured path list. Missing or malformed files
// leave that kind empty.
func LoadFiles(cfg types.KnowledgeBaseConfig, logger *zap.Logger) types.KnowledgeBase {
	if logger == nil {
		logger = zap.NewNop()
	}

	kb := types.KnowledgeBase{
		Course:    loadKind(cfg.CoursePaths, types.KindCourseContent, logger),
		Discourse: loadKind(cfg.DiscoursePaths, types.KindDiscoursePost, logger),
	}

	logger.Info("knowledge base loaded from files",
		zap.Int("course_content", len(kb.Course)),
		zap.Int("discourse_posts", len(kb.Discourse)),
	)
	return kb
}

func loadKind(paths []string, kind types.EntryKind, logger *zap.Logger) []types.KnowledgeEntry {
	path, ok := firstExisting(paths)
	if !ok {
		logger.Warn("no knowledge file found", zap.String("kind", string(kind)), zap.Strings("paths", paths))
		return nil
	}

	entries, err := ReadEntries(path, kind)
	if err != nil {
		logger.Warn("loading knowledge file failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	return entries
}

// firstExisting returns the first path that names an existing file.
func firstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// ReadEntries parses a JSON array of entries from path and stamps each
// with kind and a stable ID. Fields other than the entry's own are ignored.
func ReadEntries(path string, kind types.EntryKind) ([]types.KnowledgeEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var entries []types.KnowledgeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i := range entries {
		entries[i].Kind = kind
		entries[i].ID = EntryID(entries[i])
	}
	return entries, nil
}

// EntryID derives a deterministic ID from an entry's kind, url, title,
// and body. Re-importing unchanged content yields the same ID.
func EntryID(e types.KnowledgeEntry) string {
	name := string(e.Kind) + "|" + e.URL + "|" + e.Title + "|" + e.Body()
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
