// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package locking

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultLockTTL is the default time-to-live for the store lock
const DefaultLockTTL = 5 * time.Minute

// StoreLock is the single-writer guard on a card store. The corpus is
// written by one process at a time; the lock makes that assumption explicit
// instead of relying on it silently.
type StoreLock struct {
	StorePath string    `gorm:"primaryKey" json:"store_path"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	LockedBy  string    `gorm:"not null" json:"locked_by"`
	LockedAt  time.Time `gorm:"not null" json:"locked_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// TableName specifies the table name for StoreLock
func (StoreLock) TableName() string {
	return "store_locks"
}

// MigrateLocks runs migrations for the store_locks table
func MigrateLocks(db *gorm.DB) error {
	return db.AutoMigrate(&StoreLock{})
}

// IsExpired returns true if the lock has expired
func (l *StoreLock) IsExpired() bool {
	return time.Now().After(l.ExpiresAt)
}

// LockError reports a store already held by another writer.
type LockError struct {
	StorePath string
	LockedBy  string
}

func (e *LockError) Error() string {
	return fmt.Sprintf("store '%s' is locked by '%s'", e.StorePath, e.LockedBy)
}
