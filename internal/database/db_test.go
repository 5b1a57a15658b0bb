// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/b3computer/zettel-mcp/internal/analysis"
	"github.com/b3computer/zettel-mcp/internal/zettel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		LogLevel:   logger.Silent,
	}
	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func indexNote(id, category, title string) *zettel.Note {
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return &zettel.Note{
		ID:       id,
		Category: category,
		Title:    title,
		Created:  created,
		Modified: created,
		Summary: &analysis.Summary{
			Issues:      []string{},
			RiskLevel:   "medium",
			Priority:    "low",
			GeneratedAt: created,
		},
		Commentary: zettel.Commentary{
			User: zettel.Remark{Tags: []string{"review"}},
		},
	}
}

func TestConnect_UnsupportedType(t *testing.T) {
	_, err := Connect(&Config{Type: "mysql"})
	assert.Error(t, err)
}

func TestIndexCard_CreateAndUpdate(t *testing.T) {
	db := newTestDB(t)

	n := indexNote("self_improvementa", "self_improvement", "Analysis of ai_manager.py")
	require.NoError(t, IndexCard(db, n, "self_improvement/self_improvementa.md", "preview text"))

	record, err := FindRecord(db, "self_improvementa")
	require.NoError(t, err)
	assert.Equal(t, "Analysis of ai_manager.py", record.Title)
	assert.Equal(t, "medium", record.RiskLevel)
	assert.Equal(t, []string{"review"}, record.DecodeTags())

	// Re-indexing updates in place rather than duplicating
	n.Title = "Analysis of ai_manager.py (revised)"
	require.NoError(t, IndexCard(db, n, "self_improvement/self_improvementa.md", "preview text"))

	records, _, err := Counts(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), records)

	record, err = FindRecord(db, "self_improvementa")
	require.NoError(t, err)
	assert.Equal(t, "Analysis of ai_manager.py (revised)", record.Title)
}

func TestIndexCard_LinkOrder(t *testing.T) {
	db := newTestDB(t)

	n := indexNote("self_improvementh", "self_improvement", "Cycle summary")
	n.Links = []zettel.Link{
		{Target: "self_improvementa", Label: "first"},
		{Target: "self_improvementb"},
		{Target: "self_improvementc"},
	}
	require.NoError(t, IndexCard(db, n, "self_improvement/self_improvementh.md", ""))

	links, err := LinksFor(db, "self_improvementh")
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, "self_improvementa", links[0].TargetID)
	assert.Equal(t, "first", links[0].Label)
	assert.Equal(t, "self_improvementb", links[1].TargetID)
	assert.Equal(t, "self_improvementc", links[2].TargetID)

	back, err := BacklinksFor(db, "self_improvementa")
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, "self_improvementh", back[0].SourceID)
}

func TestIndexLink_AppendsAfterExisting(t *testing.T) {
	db := newTestDB(t)

	n := indexNote("self_improvementa", "self_improvement", "Analysis")
	n.Links = []zettel.Link{{Target: "self_improvementb"}}
	require.NoError(t, IndexCard(db, n, "p", ""))

	require.NoError(t, IndexLink(db, "self_improvementa", "self_improvementc", "follow-up"))
	// Duplicate connect is a no-op
	require.NoError(t, IndexLink(db, "self_improvementa", "self_improvementc", "follow-up"))

	links, err := LinksFor(db, "self_improvementa")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "self_improvementc", links[1].TargetID)
	assert.Equal(t, 1, links[1].Position)
}

func TestSearchRecords(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, IndexCard(db, indexNote("self_improvementa", "self_improvement", "Analysis of orchestrator.py"), "p1", ""))
	require.NoError(t, IndexCard(db, indexNote("researcha", "research", "Bakunin source notes"), "p2", ""))

	records, err := SearchRecords(db, "orchestrator", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "self_improvementa", records[0].ZettelID)

	records, err = SearchRecords(db, "research", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = SearchRecords(db, "review", 10)
	require.NoError(t, err)
	assert.Len(t, records, 2) // tag match on both cards

	records, err = SearchRecords(db, "nomatchxyz", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReset(t *testing.T) {
	db := newTestDB(t)
	n := indexNote("self_improvementa", "self_improvement", "Analysis")
	n.Links = []zettel.Link{{Target: "self_improvementb"}}
	require.NoError(t, IndexCard(db, n, "p", ""))

	require.NoError(t, Reset(db))

	records, links, err := Counts(db)
	require.NoError(t, err)
	assert.Zero(t, records)
	assert.Zero(t, links)
}

func TestFindRecord_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := FindRecord(db, "missinga")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
