// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/virtual-ta/internal/knowledge"
	"github.com/pdiddy/virtual-ta/pkg/types"
)

const (
	defaultCourseURL = "https://tds.s-anand.net/#/2025-01"
	defaultForumURL  = "https://discourse.onlinedegree.iitm.ac.in"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage knowledge files and the knowledge index",
	Long: `Knowledge converts scraper output into the JSON files answers are
drawn from, indexes those files into a local SQLite database, and lists,
exports, or counts the indexed entries.`,
}

// --- import subcommand ---

var knowledgeImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Convert scraper CSV output into knowledge JSON files",
	Long: `Import reads the lecture CSV (--lectures) and/or the forum CSV
(--discourse) and writes the course content and discourse JSON files to
the first configured path for each kind. Forum posts are grouped into one
entry per topic.`,
	RunE: runKnowledgeImport,
}

func runKnowledgeImport(cmd *cobra.Command, args []string) error {
	lectures, _ := cmd.Flags().GetString("lectures")
	discourse, _ := cmd.Flags().GetString("discourse")
	courseURL, _ := cmd.Flags().GetString("course-url")
	forumURL, _ := cmd.Flags().GetString("forum-url")

	if lectures == "" && discourse == "" {
		return fmt.Errorf("nothing to import: provide --lectures, --discourse, or both")
	}

	out := cmd.OutOrStdout()
	if lectures != "" {
		n, err := importCSV(lectures, cfg.Knowledge.CoursePaths, func(r io.Reader) ([]types.KnowledgeEntry, error) {
			return knowledge.ImportLectures(r, courseURL)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %d course entries from %s\n", n, lectures)
	}
	if discourse != "" {
		n, err := importCSV(discourse, cfg.Knowledge.DiscoursePaths, func(r io.Reader) ([]types.KnowledgeEntry, error) {
			return knowledge.ImportDiscourse(r, forumURL)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %d discourse topics from %s\n", n, discourse)
	}
	return nil
}

func importCSV(src string, dests []string, parse func(io.Reader) ([]types.KnowledgeEntry, error)) (int, error) {
	if len(dests) == 0 {
		return 0, fmt.Errorf("no destination path configured for %s", src)
	}

	f, err := os.Open(src)
	if err != nil {
		return 0, eris.Wrapf(err, "knowledge: open %s", src)
	}
	defer f.Close()

	entries, err := parse(f)
	if err != nil {
		return 0, eris.Wrapf(err, "knowledge: import %s", src)
	}
	if err := knowledge.WriteEntries(dests[0], entries); err != nil {
		return 0, eris.Wrapf(err, "knowledge: write %s", dests[0])
	}
	return len(entries), nil
}

// --- ingest subcommand ---

var knowledgeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the knowledge JSON files into the knowledge database",
	Long: `Ingest loads the configured course content and discourse files into
knowledge/index/knowledge.db. A file unchanged since the last run is
skipped. Set knowledge.source to "index" to answer from the database.`,
	RunE: runKnowledgeIngest,
}

func runKnowledgeIngest(cmd *cobra.Command, args []string) error {
	store, err := knowledge.NewStore(cfg.Knowledge)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d knowledge file(s) failed indexing", summary.Failed, summary.Total())
	}
	return nil
}

// --- list subcommand ---

var knowledgeListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List indexed entries",
	Long: `List prints indexed entries in ingestion order, optionally filtered
by a substring query and by kind (course_content or discourse).`,
	RunE: runKnowledgeList,
}

func runKnowledgeList(cmd *cobra.Command, args []string) error {
	store, err := knowledge.NewStore(cfg.Knowledge)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatListOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func formatListOutput(w io.Writer, results []types.KnowledgeEntry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if results == nil {
			results = []types.KnowledgeEntry{}
		}
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-14s  %-40s  %s\n", "#", "Kind", "Title", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, e := range results {
		title := e.Title
		if title == "" {
			title = e.DefaultTitle()
		}
		fmt.Fprintf(w, "%-4d  %-14s  %-40s  %s\n", i+1, e.Kind, shorten(title, 40), e.URL)
	}

	fmt.Fprintf(w, "\n%d entries\n", len(results))
	return nil
}

// shorten cuts s to n characters, ending in "..." when cut.
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indexed entries to YAML or JSON",
	Long: `Export writes the indexed entries (or a filtered subset) to
knowledge/index/export.yaml or export.json.`,
	RunE: runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := knowledge.NewStore(cfg.Knowledge)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- stats subcommand ---

var knowledgeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count indexed entries per kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := knowledge.NewStore(cfg.Knowledge)
		if err != nil {
			return err
		}
		defer store.Close()

		st, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(st)
	},
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) (knowledge.QueryOptions, error) {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	switch types.EntryKind(kind) {
	case "", types.KindCourseContent, types.KindDiscoursePost:
	default:
		return knowledge.QueryOptions{}, fmt.Errorf("unknown kind %q: use %s or %s",
			kind, types.KindCourseContent, types.KindDiscoursePost)
	}

	return knowledge.QueryOptions{
		Query:      queryText,
		Kind:       types.EntryKind(kind),
		MaxResults: limit,
	}, nil
}

func init() {
	// Import flags.
	knowledgeImportCmd.Flags().String("lectures", "", "lecture CSV (Lecture Title, Content)")
	knowledgeImportCmd.Flags().String("discourse", "", "forum CSV (Topic ID, Topic Title, Post ID, Author, Created At, Content)")
	knowledgeImportCmd.Flags().String("course-url", defaultCourseURL, "URL linked from imported course entries")
	knowledgeImportCmd.Flags().String("forum-url", defaultForumURL, "forum base URL for topic links")

	// List flags.
	knowledgeListCmd.Flags().String("query", "", "substring filter on title, body, and keywords")
	knowledgeListCmd.Flags().String("kind", "", "filter by kind: course_content or discourse")
	knowledgeListCmd.Flags().Int("limit", 0, "maximum results (0 = default of 20, -1 = all)")
	knowledgeListCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	knowledgeExportCmd.Flags().String("query", "", "substring filter for partial export")
	knowledgeExportCmd.Flags().String("kind", "", "filter by kind for partial export")
	knowledgeExportCmd.Flags().Int("limit", 0, "maximum entries to export (0 = all)")

	// Wire subcommands.
	knowledgeCmd.AddCommand(knowledgeImportCmd)
	knowledgeCmd.AddCommand(knowledgeIngestCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)
	knowledgeCmd.AddCommand(knowledgeStatsCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
