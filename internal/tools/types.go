// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"github.com/b3computer/zettel-mcp/internal/git"
	"github.com/b3computer/zettel-mcp/internal/store"
	"gorm.io/gorm"
)

// ToolContext holds shared dependencies for all tools:
// - DB: index database for search and link queries
// - Store: the card store (markdown files are the source of truth)
// - RepoPath: the store's git repository root
// - GitAuthor/GitEmail: commit signature for card commits; the repository
//   defaults apply when left empty
type ToolContext struct {
	DB        *gorm.DB
	Store     *store.Store
	RepoPath  string
	GitAuthor string
	GitEmail  string
}

// NewToolContext creates a new tool context
func NewToolContext(db *gorm.DB, s *store.Store, repoPath string) *ToolContext {
	return &ToolContext{
		DB:       db,
		Store:    s,
		RepoPath: repoPath,
	}
}

// GetRepository opens the git repository for operations, applying the
// configured commit signature.
func (tc *ToolContext) GetRepository() (*git.Repository, error) {
	repo, err := git.OpenRepository(tc.RepoPath)
	if err != nil {
		return nil, err
	}
	if tc.GitAuthor != "" || tc.GitEmail != "" {
		repo.SetAuthor(tc.GitAuthor, tc.GitEmail)
	}
	return repo, nil
}
