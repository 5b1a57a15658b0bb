// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package locking

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Locker guards a card store against concurrent writers using a lock row
// in the index database.
type Locker struct {
	db    *gorm.DB
	owner string
	ttl   time.Duration
}

// NewLocker creates a locker identified by owner (typically host+pid)
func NewLocker(db *gorm.DB, owner string) *Locker {
	return &Locker{
		db:    db,
		owner: owner,
		ttl:   DefaultLockTTL,
	}
}

// WithTTL overrides the lock time-to-live
func (l *Locker) WithTTL(ttl time.Duration) *Locker {
	l.ttl = ttl
	return l
}

// Acquire takes the writer lock for storePath. It succeeds when no lock
// exists, when the caller already holds it (refreshing the expiry), or when
// the existing lock has expired. Otherwise it returns a *LockError.
func (l *Locker) Acquire(storePath string) error {
	now := time.Now()

	return l.db.Transaction(func(tx *gorm.DB) error {
		var existing StoreLock
		err := tx.Where("store_path = ?", storePath).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			lock := StoreLock{
				StorePath: storePath,
				Version:   1,
				LockedBy:  l.owner,
				LockedAt:  now,
				ExpiresAt: now.Add(l.ttl),
			}
			if err := tx.Create(&lock).Error; err != nil {
				return fmt.Errorf("failed to create store lock: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query store lock: %w", err)
		}

		if existing.LockedBy != l.owner && !existing.IsExpired() {
			return &LockError{StorePath: storePath, LockedBy: existing.LockedBy}
		}

		updates := map[string]interface{}{
			"version":    existing.Version + 1,
			"locked_by":  l.owner,
			"locked_at":  now,
			"expires_at": now.Add(l.ttl),
		}
		result := tx.Model(&StoreLock{}).
			Where("store_path = ? AND version = ?", storePath, existing.Version).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to take over store lock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Another writer won the race between our read and update
			return &LockError{StorePath: storePath, LockedBy: existing.LockedBy}
		}
		return nil
	})
}

// Refresh extends the expiry of a lock the caller holds
func (l *Locker) Refresh(storePath string) error {
	result := l.db.Model(&StoreLock{}).
		Where("store_path = ? AND locked_by = ?", storePath, l.owner).
		Update("expires_at", time.Now().Add(l.ttl))
	if result.Error != nil {
		return fmt.Errorf("failed to refresh store lock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("lock for '%s' is not held by '%s'", storePath, l.owner)
	}
	return nil
}

// Release drops the lock if the caller holds it. Releasing a lock held by
// someone else is an error; releasing a missing lock is not.
func (l *Locker) Release(storePath string) error {
	var existing StoreLock
	err := l.db.Where("store_path = ?", storePath).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query store lock: %w", err)
	}

	if existing.LockedBy != l.owner {
		return &LockError{StorePath: storePath, LockedBy: existing.LockedBy}
	}

	if err := l.db.Delete(&StoreLock{}, "store_path = ?", storePath).Error; err != nil {
		return fmt.Errorf("failed to release store lock: %w", err)
	}
	return nil
}
