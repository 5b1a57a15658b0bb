// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/b3computer/zettel-mcp/internal/analysis"
	"github.com/b3computer/zettel-mcp/internal/database"
	"github.com/b3computer/zettel-mcp/internal/git"
	"github.com/b3computer/zettel-mcp/internal/store"
	"github.com/b3computer/zettel-mcp/internal/zettel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupEnv(t *testing.T) (*gorm.DB, *store.Store, *git.Repository, string) {
	t.Helper()

	tempDir := t.TempDir()
	repoPath := filepath.Join(tempDir, "store")

	db, err := database.Connect(&database.Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(tempDir, "index.db"),
		LogLevel:   logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	repo, err := git.EnsureRepository(repoPath)
	require.NoError(t, err)

	s, err := store.Open(repoPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return db, s, repo, repoPath
}

func newSummary(created time.Time) *analysis.Summary {
	return &analysis.Summary{
		Issues:       []string{"orchestrate_cycle is 120 lines long"},
		Improvements: []string{"extract the retry loop"},
		RiskLevel:    analysis.LevelMedium,
		Priority:     analysis.LevelHigh,
		GeneratedAt:  created,
	}
}

// TestCardLifecycle files a card, commits it, indexes it and reads it back
func TestCardLifecycle(t *testing.T) {
	db, s, repo, repoPath := setupEnv(t)
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	// File the first card in the category
	id, err := s.NextID("self_improvement")
	require.NoError(t, err)
	assert.Equal(t, "self_improvementa", id)

	note := &zettel.Note{
		ID:       id,
		Category: "self_improvement",
		Title:    "Analysis of ai_manager.py",
		Created:  created,
		Modified: created,
		Summary:  newSummary(created),
		Commentary: zettel.Commentary{
			User: zettel.Remark{Tags: []string{"refactoring"}, Text: "Revisit after the split"},
		},
	}
	require.NoError(t, s.Write(note))

	// Card file exists under its category directory
	cardPath, ok := s.CardPath(id)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(repoPath, "self_improvement", "self_improvementa.md"), cardPath)
	content, err := os.ReadFile(cardPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# self_improvement: Analysis of ai_manager.py\n"))

	// Commit and verify history
	require.NoError(t, repo.CommitFile(cardPath, git.CommitMessageFormats{}.CreateCard(id)))
	history, err := repo.GetFileHistory(cardPath, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// Index and search
	require.NoError(t, database.IndexCard(db, note, "self_improvement/self_improvementa.md", string(content)))
	records, err := database.SearchRecords(db, "ai_manager", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ZettelID)

	// Read back from a fresh store handle to prove everything is on disk
	require.NoError(t, s.Close())
	reopened, err := store.Open(repoPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Read(id)
	require.NoError(t, err)
	assert.Equal(t, note.Title, got.Title)
	assert.Equal(t, note.Summary.Issues, got.Summary.Issues)
	assert.Equal(t, []string{"refactoring"}, got.Hashtags())
}

// TestLinkOrderAcrossRestart files a hub card referencing three earlier cards
// and checks the reference order survives a reopen
func TestLinkOrderAcrossRestart(t *testing.T) {
	_, s, _, repoPath := setupEnv(t)
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		id, err := s.NextID("self_improvement")
		require.NoError(t, err)
		require.NoError(t, s.Write(&zettel.Note{
			ID: id, Category: "self_improvement", Title: "Earlier card",
			Created: created, Modified: created, Summary: newSummary(created),
		}))
	}

	hub := &zettel.Note{
		ID: "self_improvementh", Category: "self_improvement", Title: "Cycle summary",
		Created: created, Modified: created, Summary: newSummary(created),
		Links: []zettel.Link{
			{Target: "self_improvementa"},
			{Target: "self_improvementb"},
			{Target: "self_improvementc"},
		},
	}
	require.NoError(t, s.Write(hub))
	require.NoError(t, s.Close())

	reopened, err := store.Open(repoPath)
	require.NoError(t, err)
	defer reopened.Close()

	targets, err := reopened.ListLinks("self_improvementh")
	require.NoError(t, err)
	assert.Equal(t, []string{"self_improvementa", "self_improvementb", "self_improvementc"}, targets)

	// Cross-references were recorded in both directions
	assert.Contains(t, reopened.CrossReferences("self_improvementa"), "self_improvementh")
}

// TestMalformedCardSurfacesParseError corrupts a stored card's summary and
// checks the error reaches the caller instead of being silently repaired
func TestMalformedCardSurfacesParseError(t *testing.T) {
	_, s, _, _ := setupEnv(t)
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	note := &zettel.Note{
		ID: "self_improvementj", Category: "self_improvement", Title: "Victim",
		Created: created, Modified: created, Summary: newSummary(created),
	}
	require.NoError(t, s.Write(note))

	corrupted := "# self_improvement: Victim\n\n" +
		"**Zettel Number:** self_improvementj\n" +
		"**Category:** self_improvement\n" +
		"**Created:** 2024-06-01T10:00:00Z\n" +
		"**Modified:** 2024-06-01T10:00:00Z\n\n" +
		"---\n\n" +
		"## Summary\n\n" +
		"    {\"issues\": [\"truncated\n\n" +
		"---\n\n" +
		"## Further Thoughts\n\n" +
		"### User\n\n### AI\n\n" +
		"---\n\n" +
		"## Connections\n\n- (none found)\n"
	victimPath, ok := s.CardPath("self_improvementj")
	require.True(t, ok)
	require.NoError(t, os.WriteFile(victimPath, []byte(corrupted), 0644))

	_, err := s.Read("self_improvementj")
	require.Error(t, err)

	var parseErr *zettel.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "self_improvementj", parseErr.ID)
	assert.Equal(t, "summary", parseErr.Section)
}

// TestDuplicateIDRejected files the same ID twice
func TestDuplicateIDRejected(t *testing.T) {
	_, s, _, _ := setupEnv(t)
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	first := &zettel.Note{
		ID: "researcha", Category: "research", Title: "Original",
		Created: created, Modified: created, Summary: newSummary(created),
	}
	require.NoError(t, s.Write(first))

	second := &zettel.Note{
		ID: "researcha", Category: "research", Title: "Impostor",
		Created: created, Modified: created, Summary: newSummary(created),
	}
	err := s.Write(second)
	require.Error(t, err)

	var dup *store.DuplicateIDError
	require.ErrorAs(t, err, &dup)

	got, err := s.Read("researcha")
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)
}
