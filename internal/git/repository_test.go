// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, repoPath, name, content string) string {
	t.Helper()
	path := filepath.Join(repoPath, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestEnsureRepository_InitAndReopen(t *testing.T) {
	dir := t.TempDir()

	repo, err := EnsureRepository(dir)
	require.NoError(t, err)

	// Initial commit exists
	commits, err := repo.GetCommitHistory(0)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Contains(t, commits[0].Message, "Initialize zettelkasten store")

	// Second call opens rather than re-initializes
	reopened, err := EnsureRepository(dir)
	require.NoError(t, err)
	commits, err = reopened.GetCommitHistory(0)
	require.NoError(t, err)
	assert.Len(t, commits, 1)
}

func TestCommitFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := EnsureRepository(dir)
	require.NoError(t, err)

	path := writeFile(t, dir, "self_improvement/self_improvementa.md", "# card\n")
	msg := CommitMessageFormats{}.CreateCard("self_improvementa")
	require.NoError(t, repo.CommitFile(path, msg))

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)

	commits, err := repo.GetCommitHistory(1)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "card: File zettel 'self_improvementa'", commits[0].Message)
	assert.Equal(t, "B3Computer", commits[0].Author)
}

func TestCommitFile_ConfiguredAuthor(t *testing.T) {
	dir := t.TempDir()
	repo, err := EnsureRepository(dir)
	require.NoError(t, err)
	repo.SetAuthor("Ada", "ada@example.org")

	path := writeFile(t, dir, "research/researcha.md", "# card\n")
	require.NoError(t, repo.CommitFile(path, CommitMessageFormats{}.CreateCard("researcha")))

	writeFile(t, dir, "research/researchb.md", "# card\n")
	require.NoError(t, repo.CommitAll(CommitMessageFormats{}.AutoCommit()))

	commits, err := repo.GetCommitHistory(2)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "Ada", commits[0].Author)
	assert.Equal(t, "Ada", commits[1].Author)
}

func TestCommitFile_NoChanges(t *testing.T) {
	dir := t.TempDir()
	repo, err := EnsureRepository(dir)
	require.NoError(t, err)

	path := writeFile(t, dir, "card.md", "content\n")
	require.NoError(t, repo.CommitFile(path, "card: File zettel 'a'"))

	err = repo.CommitFile(path, "card: File zettel 'a'")
	assert.Error(t, err)
}

func TestCommitAll(t *testing.T) {
	dir := t.TempDir()
	repo, err := EnsureRepository(dir)
	require.NoError(t, err)

	writeFile(t, dir, "one.md", "1\n")
	writeFile(t, dir, "two.md", "2\n")

	require.NoError(t, repo.CommitAll(CommitMessageFormats{}.AutoCommit()))

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)
}

func TestGetFileHistory(t *testing.T) {
	dir := t.TempDir()
	repo, err := EnsureRepository(dir)
	require.NoError(t, err)

	a := writeFile(t, dir, "a.md", "a1\n")
	require.NoError(t, repo.CommitFile(a, "card: File zettel 'a'"))

	b := writeFile(t, dir, "b.md", "b1\n")
	require.NoError(t, repo.CommitFile(b, "card: File zettel 'b'"))

	writeFile(t, dir, "a.md", "a2\n")
	require.NoError(t, repo.CommitFile(a, "meta: Regenerate index for 'x'"))

	history, err := repo.GetFileHistory(a, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Contains(t, history[0].Message, "meta:")
	assert.Contains(t, history[1].Message, "card: File zettel 'a'")
}

func TestGetCommitHistory_Limit(t *testing.T) {
	dir := t.TempDir()
	repo, err := EnsureRepository(dir)
	require.NoError(t, err)

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		path := writeFile(t, dir, name, name)
		require.NoError(t, repo.CommitFile(path, "card: File zettel '"+name+"'"))
	}

	commits, err := repo.GetCommitHistory(2)
	require.NoError(t, err)
	assert.Len(t, commits, 2)
}

func TestHasChanges(t *testing.T) {
	dir := t.TempDir()
	repo, err := EnsureRepository(dir)
	require.NoError(t, err)

	changes, err := repo.HasChanges()
	require.NoError(t, err)
	assert.False(t, changes)

	writeFile(t, dir, "pending.md", "x\n")
	changes, err = repo.HasChanges()
	require.NoError(t, err)
	assert.True(t, changes)
}
