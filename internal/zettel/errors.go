// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package zettel

import "fmt"

// ParseError reports a card that could not be deserialized. The corpus
// contains at least one card with a truncated summary blob; readers get the
// error, never a fabricated record.
type ParseError struct {
	ID      string // card id when known, empty otherwise
	Section string // card section that failed
	Err     error
}

func (e *ParseError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to parse card '%s' (%s section): %v", e.ID, e.Section, e.Err)
	}
	return fmt.Sprintf("failed to parse card (%s section): %v", e.Section, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
