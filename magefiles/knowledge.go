//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Knowledge groups targets that maintain the knowledge files and index.
type Knowledge mg.Namespace

// Import converts the scraper CSVs in scraped_data/ into knowledge JSON files.
func (Knowledge) Import() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "knowledge", "import",
		"--lectures", "scraped_data/tds_lectures_content.csv",
		"--discourse", "scraped_data/tds_discourse_posts.csv",
	)
}

// Index ingests the knowledge JSON files into knowledge/index/knowledge.db.
func (Knowledge) Index() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "knowledge", "ingest")
}
