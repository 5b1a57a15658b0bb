// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scheduler

import (
	"log"
	"time"

	"github.com/b3computer/zettel-mcp/internal/git"
)

// Scheduler periodically commits pending changes in the card store.
// Tools commit their own writes; the scheduler picks up anything left
// behind by edits made outside the server.
type Scheduler struct {
	repoPath string
	interval time.Duration
	stopChan chan bool
	author   string
	email    string
}

// NewScheduler creates a new autocommit scheduler
func NewScheduler(repoPath string, intervalMinutes int) *Scheduler {
	return &Scheduler{
		repoPath: repoPath,
		interval: time.Duration(intervalMinutes) * time.Minute,
		stopChan: make(chan bool),
	}
}

// WithAuthor sets the commit signature for scheduled commits.
func (s *Scheduler) WithAuthor(name, email string) *Scheduler {
	s.author = name
	s.email = email
	return s
}

// Start begins the scheduler
func (s *Scheduler) Start() {
	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.commitPending()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.stopChan <- true
}

// commitPending commits any uncommitted changes in the store
func (s *Scheduler) commitPending() {
	repo, err := git.OpenRepository(s.repoPath)
	if err != nil {
		log.Printf("Autocommit: failed to open repository: %v", err)
		return
	}
	if s.author != "" || s.email != "" {
		repo.SetAuthor(s.author, s.email)
	}

	changes, err := repo.HasChanges()
	if err != nil {
		log.Printf("Autocommit: failed to check status: %v", err)
		return
	}
	if !changes {
		return
	}

	if err := repo.CommitAll(git.CommitMessageFormats{}.AutoCommit()); err != nil {
		log.Printf("Autocommit: failed to commit: %v", err)
		return
	}
	log.Printf("Autocommit: committed pending card changes")
}
