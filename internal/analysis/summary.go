// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package analysis

import (
	"encoding/json"
	"fmt"
	"time"
)

// Summary is the structured payload the upstream improvement-analysis
// process emits for each reviewed artifact. It is embedded verbatim in the
// Summary section of a zettel card.
type Summary struct {
	Issues        []string  `json:"issues"`
	Improvements  []string  `json:"improvements"`
	RiskLevel     string    `json:"risk_level"`
	Priority      string    `json:"priority"`
	SuggestedCode string    `json:"suggested_code"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Risk and priority levels
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// ValidLevels returns all valid risk/priority levels
func ValidLevels() []string {
	return []string{LevelLow, LevelMedium, LevelHigh}
}

// IsValidLevel checks if a risk or priority level is valid
func IsValidLevel(level string) bool {
	for _, valid := range ValidLevels() {
		if level == valid {
			return true
		}
	}
	return false
}

// Parse decodes a summary JSON blob. The upstream generator has been
// observed to emit truncated JSON; callers must surface the error rather
// than accept a partial record.
func Parse(data []byte) (*Summary, error) {
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse summary JSON: %w", err)
	}
	if s.Issues == nil {
		s.Issues = []string{}
	}
	if s.Improvements == nil {
		s.Improvements = []string{}
	}
	return &s, nil
}

// Marshal encodes a summary as indented JSON, the form cards carry on disk.
func (s *Summary) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return data, nil
}

// Validate checks the enum fields. Empty values are allowed; the corpus
// contains cards written before priority was introduced.
func (s *Summary) Validate() error {
	if s.RiskLevel != "" && !IsValidLevel(s.RiskLevel) {
		return fmt.Errorf("risk_level must be one of low/medium/high, got '%s'", s.RiskLevel)
	}
	if s.Priority != "" && !IsValidLevel(s.Priority) {
		return fmt.Errorf("priority must be one of low/medium/high, got '%s'", s.Priority)
	}
	return nil
}
