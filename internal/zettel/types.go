// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package zettel

import (
	"time"

	"github.com/b3computer/zettel-mcp/internal/analysis"
)

// Note represents a single zettel card: one structured record documenting
// one analysis event, identified by category plus a letter suffix.
type Note struct {
	ID         string            `json:"id"`
	Category   string            `json:"category"`
	Title      string            `json:"title"`
	Created    time.Time         `json:"created"`
	Modified   time.Time         `json:"modified"`
	Summary    *analysis.Summary `json:"summary,omitempty"`
	Commentary Commentary        `json:"commentary"`
	Links      []Link            `json:"links"`
}

// Hashtags returns the union of the commentary hashtag labels, user section
// first, preserving order and dropping duplicates.
func (n *Note) Hashtags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, t := range append(append([]string{}, n.Commentary.User.Tags...), n.Commentary.AI.Tags...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

// Commentary holds the two freeform sections of a card, one attributed to
// the human author and one to the automated author.
type Commentary struct {
	User Remark `json:"user"`
	AI   Remark `json:"ai"`
}

// Remark is a single commentary section with optional hashtag labels.
type Remark struct {
	Tags []string `json:"tags,omitempty"`
	Text string   `json:"text,omitempty"`
}

// Link is a recorded, unvalidated cross-reference to another card.
type Link struct {
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// LinkTargets returns the ordered outbound link ids of the note.
func (n *Note) LinkTargets() []string {
	targets := make([]string, 0, len(n.Links))
	for _, l := range n.Links {
		targets = append(targets, l.Target)
	}
	return targets
}

// AddLink appends a cross-reference if it is not already recorded.
func (n *Note) AddLink(target, label string) bool {
	for _, l := range n.Links {
		if l.Target == target {
			return false
		}
	}
	n.Links = append(n.Links, Link{Target: target, Label: label})
	return true
}

// HasLink reports whether the note records a link to target.
func (n *Note) HasLink(target string) bool {
	for _, l := range n.Links {
		if l.Target == target {
			return true
		}
	}
	return false
}
