// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SearchResult pairs a card id with its index entry.
type SearchResult struct {
	ID   string
	Info CardInfo
}

// Search scans the card index for a case-insensitive substring match on
// title, category or tags. Results are ordered by id.
func (s *Store) Search(query string) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	var results []SearchResult
	for id, info := range s.index {
		if query == "" || matchesQuery(info, query) {
			results = append(results, SearchResult{ID: id, Info: info})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

func matchesQuery(info CardInfo, query string) bool {
	if strings.Contains(strings.ToLower(info.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(info.Category), query) {
		return true
	}
	for _, tag := range info.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Related finds cards whose title shares at least two significant words
// with the given title. Short words are skipped; they are too common to
// signal a shared theme.
func (s *Store) Related(id, title string) []string {
	words := titleWords(title)
	var related []string
	for other, info := range s.index {
		if other == id {
			continue
		}
		overlap := 0
		for w := range titleWords(info.Title) {
			if words[w] {
				overlap++
			}
		}
		if overlap >= 2 {
			related = append(related, other)
		}
	}
	sort.Strings(related)
	return related
}

func titleWords(title string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(title)) {
		w = strings.Trim(w, ".,:;()[]#*")
		if len(w) > 3 {
			words[w] = true
		}
	}
	return words
}

// Stats summarizes the store contents.
type Stats struct {
	TotalCards      int            `json:"total_cards"`
	Categories      map[string]int `json:"categories"`
	CrossReferences int            `json:"cross_references"`
	Directories     []string       `json:"directories"`
}

// Statistics counts cards per category and lists the store directories.
func (s *Store) Statistics() (*Stats, error) {
	stats := &Stats{
		TotalCards: len(s.index),
		Categories: make(map[string]int),
	}
	for _, info := range s.index {
		stats.Categories[info.Category]++
	}
	for _, refs := range s.crossRefs {
		stats.CrossReferences += len(refs)
	}
	// Each bidirectional reference is recorded twice
	stats.CrossReferences /= 2

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() && e.Name() != MetadataDir {
			stats.Directories = append(stats.Directories, filepath.Join(s.basePath, e.Name()))
		}
	}
	sort.Strings(stats.Directories)

	return stats, nil
}
