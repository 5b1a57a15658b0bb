// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// errStopIteration terminates commit iteration once the limit is reached.
var errStopIteration = errors.New("stop iteration")

// CommitOptions holds options for creating commits
type CommitOptions struct {
	Author     string
	Email      string
	Message    string
	AllowEmpty bool
}

// DefaultCommitOptions returns default commit options
func DefaultCommitOptions() *CommitOptions {
	return &CommitOptions{
		Author:     "B3Computer",
		Email:      "zettel@b3computer.local",
		AllowEmpty: false,
	}
}

// CommitInfo is a flattened view of a commit for history output
type CommitInfo struct {
	Hash    string
	Message string
	Author  string
	Date    time.Time
}

// commitOptions returns the repository's commit options, falling back to
// the defaults when no author was configured via SetAuthor.
func (r *Repository) commitOptions() *CommitOptions {
	opts := DefaultCommitOptions()
	if r.author != "" {
		opts.Author = r.author
	}
	if r.email != "" {
		opts.Email = r.email
	}
	return opts
}

// CommitFile commits a single file to the repository
func (r *Repository) CommitFile(filePath, message string) error {
	opts := r.commitOptions()
	opts.Message = message
	return r.AddAndCommit([]string{filePath}, opts)
}

// AddAndCommit adds files and commits them
func (r *Repository) AddAndCommit(files []string, opts *CommitOptions) error {
	if opts == nil {
		opts = r.commitOptions()
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, file := range files {
		relPath, err := filepath.Rel(r.Path, file)
		if err != nil {
			relPath = file
		}

		if _, err := worktree.Add(relPath); err != nil {
			return fmt.Errorf("failed to add file %s: %w", relPath, err)
		}
	}

	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if status.IsClean() && !opts.AllowEmpty {
		return fmt.Errorf("no changes to commit")
	}

	_, err = worktree.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  opts.Author,
			Email: opts.Email,
			When:  time.Now(),
		},
		AllowEmptyCommits: opts.AllowEmpty,
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// CommitAll commits all pending changes in the repository
func (r *Repository) CommitAll(message string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to add all changes: %w", err)
	}

	opts := r.commitOptions()
	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  opts.Author,
			Email: opts.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// GetCommitHistory returns up to maxCount most recent commits
func (r *Repository) GetCommitHistory(maxCount int) ([]CommitInfo, error) {
	return r.log(&git.LogOptions{}, maxCount)
}

// GetFileHistory returns the commits touching a single file, newest first
func (r *Repository) GetFileHistory(filePath string, maxCount int) ([]CommitInfo, error) {
	relPath, err := filepath.Rel(r.Path, filePath)
	if err != nil {
		relPath = filePath
	}

	return r.log(&git.LogOptions{
		FileName: &relPath,
	}, maxCount)
}

// log iterates commits from HEAD with an optional limit
func (r *Repository) log(opts *git.LogOptions, maxCount int) ([]CommitInfo, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	opts.From = ref.Hash()

	commitIter, err := r.repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}

	var commits []CommitInfo
	err = commitIter.ForEach(func(c *object.Commit) error {
		if maxCount > 0 && len(commits) >= maxCount {
			return errStopIteration
		}
		commits = append(commits, CommitInfo{
			Hash:    c.Hash.String(),
			Message: c.Message,
			Author:  c.Author.Name,
			Date:    c.Author.When,
		})
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	return commits, nil
}

// CommitMessageFormats provides standard commit message formats
type CommitMessageFormats struct{}

// CreateCard returns a commit message for filing a new card
func (CommitMessageFormats) CreateCard(id string) string {
	return fmt.Sprintf("card: File zettel '%s'", id)
}

// ConnectCards returns a commit message for recording a cross-reference
func (CommitMessageFormats) ConnectCards(sourceID, targetID string) string {
	return fmt.Sprintf("connect: Link '%s' <-> '%s'", sourceID, targetID)
}

// MetaNote returns a commit message for regenerating a folder index card
func (CommitMessageFormats) MetaNote(category string) string {
	return fmt.Sprintf("meta: Regenerate index for '%s'", category)
}

// AutoCommit returns a commit message for scheduled commits of pending changes
func (CommitMessageFormats) AutoCommit() string {
	return "chore: Commit pending card changes"
}

// InitialCommit returns a commit message for repository initialization
func (CommitMessageFormats) InitialCommit() string {
	return "chore: Initialize zettelkasten store"
}
