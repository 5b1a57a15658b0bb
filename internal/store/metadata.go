// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MetadataDir is the directory under the store root holding the index files.
const MetadataDir = "_metadata"

// Metadata file names, one JSON document each.
const (
	cardIndexFile       = "card_index.json"
	crossReferencesFile = "cross_references.json"
	numberingSchemeFile = "numbering_scheme.json"
)

// CardInfo is the card index entry kept per card. FilePath is relative to
// the store root so the index survives the store being moved.
type CardInfo struct {
	FilePath string    `json:"file_path"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Tags     []string  `json:"tags,omitempty"`
	Created  time.Time `json:"created"`
}

// NumberingScheme tracks the letter suffixes issued per category.
type NumberingScheme struct {
	Categories map[string][]string `json:"categories"`
}

// loadMetadata reads a metadata JSON file, returning ok=false when absent.
func loadMetadata(dir, name string, v interface{}) (bool, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return true, nil
}

// saveMetadata writes a metadata JSON file atomically enough for a single
// writer: temp file then rename.
func saveMetadata(dir, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
