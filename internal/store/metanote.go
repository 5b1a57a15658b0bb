// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// MetaNoteFile is the per-folder index card name. It sorts ahead of every
// card file in the folder.
const MetaNoteFile = "00_index.md"

// metaHeader is the YAML frontmatter of a meta note.
type metaHeader struct {
	Category  string    `yaml:"category"`
	Generated time.Time `yaml:"generated"`
	Cards     int       `yaml:"cards"`
}

// WriteMetaNote regenerates the index card for a category folder, listing
// every card in the folder by id and title. Returns the meta note path.
func (s *Store) WriteMetaNote(category string) (string, error) {
	type entry struct {
		id    string
		title string
	}
	var entries []entry
	for id, info := range s.index {
		if info.Category == category {
			entries = append(entries, entry{id: id, title: info.Title})
		}
	}
	if len(entries) == 0 {
		return "", &NotFoundError{ID: category}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	header := metaHeader{
		Category:  category,
		Generated: time.Now().UTC().Truncate(time.Second),
		Cards:     len(entries),
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	frontmatter, err := yaml.Marshal(&header)
	if err != nil {
		return "", fmt.Errorf("failed to marshal meta note frontmatter: %w", err)
	}
	buf.Write(frontmatter)
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "# Index: %s\n\n", category)
	for _, e := range entries {
		fmt.Fprintf(&buf, "- **%s**: %s\n", e.id, e.title)
	}

	path := filepath.Join(s.basePath, category, MetaNoteFile)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write meta note: %w", err)
	}
	return path, nil
}

// ParseMetaNote reads back a meta note frontmatter, mostly for tooling that
// wants the generation timestamp without rescanning the folder.
func ParseMetaNote(path string) (category string, generated time.Time, cards int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", time.Time{}, 0, fmt.Errorf("failed to read meta note: %w", err)
	}

	parts := bytes.SplitN(data, []byte("---\n"), 3)
	if len(parts) < 3 {
		return "", time.Time{}, 0, fmt.Errorf("meta note has no frontmatter")
	}

	var header metaHeader
	if err := yaml.Unmarshal(parts[1], &header); err != nil {
		return "", time.Time{}, 0, fmt.Errorf("failed to parse meta note frontmatter: %w", err)
	}
	return header.Category, header.Generated, header.Cards, nil
}
