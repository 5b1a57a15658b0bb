// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import "fmt"

// NotFoundError reports a lookup for a card id the store does not hold.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("card not found: %s", e.ID)
}

// DuplicateIDError reports a write that would collide with an existing card.
// The store rejects the write; it never silently overwrites.
type DuplicateIDError struct {
	ID   string
	Path string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("card '%s' already exists at %s", e.ID, e.Path)
}
