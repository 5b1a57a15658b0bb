// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package rebuild

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/b3computer/zettel-mcp/internal/database"
	"github.com/b3computer/zettel-mcp/internal/store"
	"github.com/b3computer/zettel-mcp/internal/zettel"
	"gorm.io/gorm"
)

// Options configures rebuild behavior
type Options struct {
	Force bool // Clear existing index data before rebuild
}

// Result contains statistics from the rebuild operation
type Result struct {
	CardsProcessed int
	CardsIndexed   int
	CardsSkipped   int
	LinksIndexed   int
	Errors         []string
}

// RebuildIndex scans the card store and rebuilds the database index from
// the markdown files on disk. The files are the source of truth; the
// database is derived state that can always be regenerated.
func RebuildIndex(db *gorm.DB, storePath string, opts Options) (*Result, error) {
	result := &Result{}

	if err := handleExistingData(db, opts); err != nil {
		return nil, err
	}

	files, err := scanStore(storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan card store: %w", err)
	}

	log.Printf("Found %d card files to process", len(files))

	for _, filePath := range files {
		result.CardsProcessed++

		note, err := processCardFile(db, storePath, filePath)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filePath, err))
			result.CardsSkipped++
			continue
		}

		result.CardsIndexed++
		result.LinksIndexed += len(note.Links)
	}

	return result, nil
}

// handleExistingData checks for existing index data and clears it when
// force is enabled
func handleExistingData(db *gorm.DB, opts Options) error {
	records, _, err := database.Counts(db)
	if err != nil {
		return fmt.Errorf("failed to count existing records: %w", err)
	}

	if records > 0 && !opts.Force {
		return fmt.Errorf("database contains %d existing card records. Use --force to clear and rebuild", records)
	}

	if opts.Force && records > 0 {
		log.Printf("Force rebuild: clearing %d existing records...", records)
		if err := database.Reset(db); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	}

	return nil
}

// scanStore walks the store and returns card file paths. Skips the .git
// and _metadata directories along with generated folder indexes.
func scanStore(storePath string) ([]string, error) {
	var files []string

	err := filepath.Walk(storePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if info.Name() == ".git" || info.Name() == store.MetadataDir {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(strings.ToLower(info.Name()), ".md") {
			return nil
		}

		// Folder indexes are generated from cards, not cards themselves
		if info.Name() == store.MetaNoteFile {
			return nil
		}

		if strings.ToLower(info.Name()) == "readme.md" {
			return nil
		}

		files = append(files, path)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// processCardFile parses a card file and indexes it
func processCardFile(db *gorm.DB, storePath, filePath string) (*zettel.Note, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	note, err := zettel.ParseCard(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse card: %w", err)
	}

	relPath, err := filepath.Rel(storePath, filePath)
	if err != nil {
		relPath = filePath
	}

	if err := database.IndexCard(db, note, relPath, preview(string(content))); err != nil {
		return nil, fmt.Errorf("failed to index card: %w", err)
	}

	return note, nil
}

const previewLimit = 500

// preview truncates content for the index's content_preview column
func preview(content string) string {
	if len(content) <= previewLimit {
		return content
	}
	return content[:previewLimit]
}
