// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package zettel

import (
	"fmt"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*[a-z]$`)

// NextSuffix returns the first free letter suffix for a category given the
// suffixes already issued: a through z, then aa, ab, and so on.
func NextSuffix(existing []string) string {
	used := make(map[string]bool, len(existing))
	for _, s := range existing {
		used[s] = true
	}
	for i := 1; ; i++ {
		s := suffixAt(i)
		if !used[s] {
			return s
		}
	}
}

// suffixAt converts a 1-based ordinal to a bijective base-26 letter string
// (1 -> "a", 26 -> "z", 27 -> "aa").
func suffixAt(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('a' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// MakeID joins a category and suffix into a card id.
func MakeID(category, suffix string) string {
	return category + suffix
}

// SplitID splits a card id into category and suffix given the categories
// known to the store. Categories may themselves end in letters, so the
// longest known category prefix wins.
func SplitID(id string, categories []string) (category, suffix string, err error) {
	best := ""
	for _, c := range categories {
		if len(c) <= len(best) {
			continue
		}
		if strings.HasPrefix(id, c) && isLetterSuffix(id[len(c):]) {
			best = c
		}
	}
	if best == "" {
		return "", "", fmt.Errorf("id '%s' does not match any known category", id)
	}
	return best, id[len(best):], nil
}

func isLetterSuffix(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// ValidateID checks that an id is well formed: lowercase alphanumerics and
// underscores ending in the letter suffix.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if len(id) < 2 {
		return fmt.Errorf("id must be at least 2 characters")
	}
	if len(id) > 200 {
		return fmt.Errorf("id cannot exceed 200 characters")
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("id must contain only lowercase letters, digits and underscores, ending in a letter")
	}
	return nil
}

// ValidateCategory checks a category label.
func ValidateCategory(category string) error {
	if category == "" {
		return fmt.Errorf("category cannot be empty")
	}
	for _, r := range category {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return fmt.Errorf("category must contain only lowercase letters, digits and underscores")
		}
	}
	return nil
}

// SanitizeTitle trims whitespace and strips control characters from a title.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	var b strings.Builder
	for _, r := range title {
		if r >= 0x20 && r != 0x7F {
			b.WriteRune(r)
		}
	}
	return b.String()
}
