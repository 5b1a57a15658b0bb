// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/b3computer/zettel-mcp/internal/zettel"
)

// Store is an explicit handle on a card corpus rooted at a base directory.
// Cards live at <base>/<category>/<id>.md; the index files live under
// <base>/_metadata/. The store assumes a single writer and is append-only:
// cards are created once and never mutated in place.
type Store struct {
	basePath     string
	metadataPath string

	index     map[string]CardInfo
	crossRefs map[string][]string
	scheme    NumberingScheme
}

// Open creates or opens a store at basePath, creating the directory layout
// and loading the metadata files.
func Open(basePath string) (*Store, error) {
	metadataPath := filepath.Join(basePath, MetadataDir)
	if err := os.MkdirAll(metadataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directories: %w", err)
	}

	s := &Store{
		basePath:     basePath,
		metadataPath: metadataPath,
		index:        make(map[string]CardInfo),
		crossRefs:    make(map[string][]string),
		scheme:       NumberingScheme{Categories: make(map[string][]string)},
	}

	if _, err := loadMetadata(metadataPath, cardIndexFile, &s.index); err != nil {
		return nil, err
	}
	if _, err := loadMetadata(metadataPath, crossReferencesFile, &s.crossRefs); err != nil {
		return nil, err
	}
	if _, err := loadMetadata(metadataPath, numberingSchemeFile, &s.scheme); err != nil {
		return nil, err
	}
	if s.scheme.Categories == nil {
		s.scheme.Categories = make(map[string][]string)
	}

	return s, nil
}

// Close flushes the metadata files.
func (s *Store) Close() error {
	return s.flush()
}

// BasePath returns the store root directory.
func (s *Store) BasePath() string {
	return s.basePath
}

// CardPath returns the absolute path of a card file.
func (s *Store) CardPath(id string) (string, bool) {
	info, ok := s.index[id]
	if !ok {
		return "", false
	}
	return filepath.Join(s.basePath, info.FilePath), true
}

// NextID issues the next free id for a category and records the suffix in
// the numbering scheme.
func (s *Store) NextID(category string) (string, error) {
	if err := zettel.ValidateCategory(category); err != nil {
		return "", err
	}

	suffix := zettel.NextSuffix(s.scheme.Categories[category])
	s.scheme.Categories[category] = append(s.scheme.Categories[category], suffix)
	if err := saveMetadata(s.metadataPath, numberingSchemeFile, &s.scheme); err != nil {
		return "", err
	}
	return zettel.MakeID(category, suffix), nil
}

// Write renders a note to its card file and registers it in the index and
// cross-reference map. A colliding id is rejected with *DuplicateIDError.
func (s *Store) Write(note *zettel.Note) error {
	if err := zettel.ValidateID(note.ID); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	if err := zettel.ValidateCategory(note.Category); err != nil {
		return fmt.Errorf("invalid category: %w", err)
	}
	// IDs are <category><suffix>; recordSuffix slices the id at the
	// category boundary, so a mismatched prefix must be rejected here.
	if !strings.HasPrefix(note.ID, note.Category) {
		return fmt.Errorf("id '%s' does not belong to category '%s'", note.ID, note.Category)
	}
	if note.Summary == nil {
		return fmt.Errorf("note '%s' has no summary", note.ID)
	}
	if err := note.Summary.Validate(); err != nil {
		return fmt.Errorf("invalid summary for '%s': %w", note.ID, err)
	}
	if !note.Modified.IsZero() && note.Modified.Before(note.Created) {
		return fmt.Errorf("note '%s' modified before created", note.ID)
	}
	if note.Modified.IsZero() {
		note.Modified = note.Created
	}

	if existing, ok := s.index[note.ID]; ok {
		return &DuplicateIDError{ID: note.ID, Path: existing.FilePath}
	}

	card, err := zettel.RenderCard(note)
	if err != nil {
		return err
	}

	relPath := filepath.Join(note.Category, note.ID+".md")
	fullPath := filepath.Join(s.basePath, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create category directory: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(card), 0644); err != nil {
		return fmt.Errorf("failed to write card '%s': %w", note.ID, err)
	}

	s.index[note.ID] = CardInfo{
		FilePath: relPath,
		Title:    note.Title,
		Category: note.Category,
		Tags:     note.Hashtags(),
		Created:  note.Created,
	}
	s.recordSuffix(note.Category, note.ID)

	for _, target := range note.LinkTargets() {
		s.addCrossReference(note.ID, target)
	}

	return s.flush()
}

// Read retrieves and deserializes a card. Absent ids yield *NotFoundError;
// a malformed card yields *zettel.ParseError.
func (s *Store) Read(id string) (*zettel.Note, error) {
	path, ok := s.CardPath(id)
	if !ok {
		// The index is authoritative, but tolerate cards written before the
		// index existed by deriving the path from the id.
		category, _, err := zettel.SplitID(id, s.knownCategories())
		if err != nil {
			return nil, &NotFoundError{ID: id}
		}
		path = filepath.Join(s.basePath, category, id+".md")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to read card '%s': %w", id, err)
	}

	return zettel.ParseCard(string(data))
}

// ListLinks returns the ordered outbound cross-references recorded on the
// card itself. The list is informational; targets are not checked against
// store membership.
func (s *Store) ListLinks(id string) ([]string, error) {
	note, err := s.Read(id)
	if err != nil {
		return nil, err
	}
	return note.LinkTargets(), nil
}

// Connect records a bidirectional cross-reference between two cards in the
// metadata map. The source must exist; the target is deliberately not
// validated, matching the unvalidated link lists in the corpus.
func (s *Store) Connect(source, target string) error {
	if _, ok := s.index[source]; !ok {
		return &NotFoundError{ID: source}
	}
	s.addCrossReference(source, target)
	return s.flush()
}

// CrossReferences returns the recorded bidirectional references for an id.
func (s *Store) CrossReferences(id string) []string {
	refs := s.crossRefs[id]
	out := make([]string, len(refs))
	copy(out, refs)
	return out
}

// Cards returns the card index snapshot, sorted by id.
func (s *Store) Cards() []string {
	ids := make([]string, 0, len(s.index))
	for id := range s.index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Info returns the index entry for a card.
func (s *Store) Info(id string) (CardInfo, bool) {
	info, ok := s.index[id]
	return info, ok
}

// addCrossReference links source and target in both directions, skipping
// duplicates.
func (s *Store) addCrossReference(source, target string) {
	if target == "" || target == source {
		return
	}
	if !contains(s.crossRefs[source], target) {
		s.crossRefs[source] = append(s.crossRefs[source], target)
	}
	if !contains(s.crossRefs[target], source) {
		s.crossRefs[target] = append(s.crossRefs[target], source)
	}
}

// recordSuffix keeps the numbering scheme consistent with externally chosen
// ids.
func (s *Store) recordSuffix(category, id string) {
	suffix := id[len(category):]
	if suffix == "" {
		return
	}
	if !contains(s.scheme.Categories[category], suffix) {
		s.scheme.Categories[category] = append(s.scheme.Categories[category], suffix)
	}
}

// knownCategories lists every category seen in the scheme or the index.
func (s *Store) knownCategories() []string {
	seen := make(map[string]bool)
	for c := range s.scheme.Categories {
		seen[c] = true
	}
	for _, info := range s.index {
		seen[info.Category] = true
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// flush persists all three metadata files.
func (s *Store) flush() error {
	if err := saveMetadata(s.metadataPath, cardIndexFile, &s.index); err != nil {
		return err
	}
	if err := saveMetadata(s.metadataPath, crossReferencesFile, &s.crossRefs); err != nil {
		return err
	}
	return saveMetadata(s.metadataPath, numberingSchemeFile, &s.scheme)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
