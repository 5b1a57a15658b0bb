// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/b3computer/zettel-mcp/internal/analysis"
	"github.com/b3computer/zettel-mcp/internal/zettel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testNote(id, category string) *zettel.Note {
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return &zettel.Note{
		ID:       id,
		Category: category,
		Title:    "Analysis of orchestrator.py",
		Created:  created,
		Modified: created,
		Summary: &analysis.Summary{
			Issues:       []string{"long method"},
			Improvements: []string{"split into phases"},
			RiskLevel:    "medium",
			Priority:     "low",
			GeneratedAt:  created,
		},
		Commentary: zettel.Commentary{
			User: zettel.Remark{Tags: []string{"review"}, Text: "Check next cycle."},
			AI:   zettel.Remark{Tags: []string{"self_improvement"}, Text: "Consider a worker pool."},
		},
		Links: []zettel.Link{},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	original := testNote("self_improvementa", "self_improvement")
	require.NoError(t, s.Write(original))

	got, err := s.Read("self_improvementa")
	require.NoError(t, err)
	assert.Equal(t, original, got)
	assert.Empty(t, got.Links)

	// Card lands in the category folder
	_, statErr := os.Stat(filepath.Join(s.BasePath(), "self_improvement", "self_improvementa.md"))
	assert.NoError(t, statErr)
}

func TestWrite_DuplicateIDRejected(t *testing.T) {
	s := newTestStore(t)

	first := testNote("self_improvementa", "self_improvement")
	require.NoError(t, s.Write(first))

	second := testNote("self_improvementa", "self_improvement")
	second.Title = "A different analysis"
	err := s.Write(second)

	var dupErr *DuplicateIDError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "self_improvementa", dupErr.ID)

	// Original content untouched
	got, err := s.Read("self_improvementa")
	require.NoError(t, err)
	assert.Equal(t, "Analysis of orchestrator.py", got.Title)
}

func TestWrite_Validation(t *testing.T) {
	s := newTestStore(t)

	n := testNote("self_improvementa", "self_improvement")
	n.Summary = nil
	assert.Error(t, s.Write(n))

	n = testNote("self_improvementa", "self_improvement")
	n.Modified = n.Created.Add(-time.Hour)
	assert.Error(t, s.Write(n))

	n = testNote("Bad ID", "self_improvement")
	assert.Error(t, s.Write(n))
}

func TestWrite_RejectsIDCategoryMismatch(t *testing.T) {
	s := newTestStore(t)

	// An explicit id shorter than its category must error, not panic
	short := testNote("resa", "self_improvement")
	require.NotPanics(t, func() {
		assert.Error(t, s.Write(short))
	})

	// An id long enough but with the wrong prefix is rejected too
	wrong := testNote("self_improvementa", "research")
	assert.Error(t, s.Write(wrong))

	// Nothing was filed and the numbering scheme stayed clean
	assert.Empty(t, s.Cards())
	id, err := s.NextID("self_improvement")
	require.NoError(t, err)
	assert.Equal(t, "self_improvementa", id)
}

func TestRead_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Read("self_improvementz")
	var nfErr *NotFoundError
	require.True(t, errors.As(err, &nfErr))
	assert.Equal(t, "self_improvementz", nfErr.ID)
}

func TestRead_MalformedSummarySurfaced(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(testNote("self_improvementa", "self_improvement")))

	// Corrupt the card on disk the way the upstream generator did once
	path, ok := s.CardPath("self_improvementa")
	require.True(t, ok)
	corrupted := "# self_improvement: Analysis of orchestrator.py\n\n" +
		"**Zettel Number:** self_improvementa\n" +
		"**Category:** self_improvement\n" +
		"**Created:** 2024-06-01T10:00:00Z\n" +
		"**Modified:** 2024-06-01T10:00:00Z\n\n---\n\n" +
		"## Summary\n\n{\"issues\": [\"long met\n\n---\n"
	require.NoError(t, os.WriteFile(path, []byte(corrupted), 0644))

	_, err := s.Read("self_improvementa")
	var parseErr *zettel.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestListLinks_OrderPreserved(t *testing.T) {
	s := newTestStore(t)

	for _, suffix := range []string{"a", "b", "c"} {
		require.NoError(t, s.Write(testNote("self_improvement"+suffix, "self_improvement")))
	}

	h := testNote("self_improvementh", "self_improvement")
	h.Links = []zettel.Link{
		{Target: "self_improvementa"},
		{Target: "self_improvementb"},
		{Target: "self_improvementc"},
	}
	require.NoError(t, s.Write(h))

	links, err := s.ListLinks("self_improvementh")
	require.NoError(t, err)
	assert.Equal(t, []string{"self_improvementa", "self_improvementb", "self_improvementc"}, links)
}

func TestWrite_RecordsCrossReferencesBothWays(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Write(testNote("self_improvementa", "self_improvement")))
	b := testNote("self_improvementb", "self_improvement")
	b.Links = []zettel.Link{{Target: "self_improvementa"}}
	require.NoError(t, s.Write(b))

	assert.Equal(t, []string{"self_improvementa"}, s.CrossReferences("self_improvementb"))
	assert.Equal(t, []string{"self_improvementb"}, s.CrossReferences("self_improvementa"))
}

func TestConnect(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(testNote("self_improvementa", "self_improvement")))

	// Dangling target is tolerated: link lists are not referentially
	// validated against the store.
	require.NoError(t, s.Connect("self_improvementa", "self_improvementq"))
	assert.Equal(t, []string{"self_improvementq"}, s.CrossReferences("self_improvementa"))

	err := s.Connect("nonexistenta", "self_improvementa")
	var nfErr *NotFoundError
	assert.True(t, errors.As(err, &nfErr))
}

func TestNextID_Sequence(t *testing.T) {
	s := newTestStore(t)

	id, err := s.NextID("self_improvement")
	require.NoError(t, err)
	assert.Equal(t, "self_improvementa", id)

	id, err = s.NextID("self_improvement")
	require.NoError(t, err)
	assert.Equal(t, "self_improvementb", id)

	// Independent counters per category
	id, err = s.NextID("quotes")
	require.NoError(t, err)
	assert.Equal(t, "quotesa", id)
}

func TestNextID_SkipsCustomIDs(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(testNote("self_improvementa", "self_improvement")))

	id, err := s.NextID("self_improvement")
	require.NoError(t, err)
	assert.Equal(t, "self_improvementb", id)
}

func TestMetadata_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Write(testNote("self_improvementa", "self_improvement")))
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Read("self_improvementa")
	require.NoError(t, err)
	assert.Equal(t, "Analysis of orchestrator.py", got.Title)

	id, err := reopened.NextID("self_improvement")
	require.NoError(t, err)
	assert.Equal(t, "self_improvementb", id)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(testNote("self_improvementa", "self_improvement")))

	other := testNote("researcha", "research")
	other.Title = "Notes on Bakunin sources"
	require.NoError(t, s.Write(other))

	results := s.Search("orchestrator")
	require.Len(t, results, 1)
	assert.Equal(t, "self_improvementa", results[0].ID)

	results = s.Search("BAKUNIN")
	require.Len(t, results, 1)
	assert.Equal(t, "researcha", results[0].ID)

	// Tag match
	results = s.Search("review")
	assert.NotEmpty(t, results)

	assert.Empty(t, s.Search("nomatchxyz"))
}

func TestRelated_TitleOverlap(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(testNote("self_improvementa", "self_improvement")))

	b := testNote("self_improvementb", "self_improvement")
	b.Title = "Deeper analysis of orchestrator.py internals"
	require.NoError(t, s.Write(b))

	assert.Equal(t, []string{"self_improvementa"}, s.Related("self_improvementb", b.Title))
}

func TestRelated_IgnoresShortWords(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(testNote("self_improvementa", "self_improvement")))

	// "of" is shared but too short to count; only "analysis" overlaps
	assert.Empty(t, s.Related("self_improvementb", "Analysis of the scheduler"))
}

func TestStatistics(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(testNote("self_improvementa", "self_improvement")))
	require.NoError(t, s.Write(testNote("self_improvementb", "self_improvement")))

	r := testNote("researcha", "research")
	r.Links = []zettel.Link{{Target: "self_improvementa"}}
	require.NoError(t, s.Write(r))

	stats, err := s.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCards)
	assert.Equal(t, 2, stats.Categories["self_improvement"])
	assert.Equal(t, 1, stats.Categories["research"])
	assert.Equal(t, 1, stats.CrossReferences)
	assert.Len(t, stats.Directories, 2)
}

func TestWriteMetaNote(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(testNote("self_improvementa", "self_improvement")))
	require.NoError(t, s.Write(testNote("self_improvementb", "self_improvement")))

	path, err := s.WriteMetaNote("self_improvement")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.BasePath(), "self_improvement", MetaNoteFile), path)

	category, generated, cards, err := ParseMetaNote(path)
	require.NoError(t, err)
	assert.Equal(t, "self_improvement", category)
	assert.False(t, generated.IsZero())
	assert.Equal(t, 2, cards)

	_, err = s.WriteMetaNote("empty_category")
	assert.Error(t, err)
}
