// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"time"
)

// ZettelRecord is the searchable index row for a card. The markdown file
// remains the source of truth; the index can be rebuilt from the card tree
// at any time.
type ZettelRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ZettelID       string    `gorm:"uniqueIndex;not null" json:"zettel_id"`
	Title          string    `gorm:"not null" json:"title"`
	Category       string    `gorm:"index;not null" json:"category"`
	FilePath       string    `gorm:"not null" json:"file_path"`
	RiskLevel      string    `json:"risk_level"`
	Priority       string    `json:"priority"`
	Tags           string    `gorm:"type:text" json:"tags"` // JSON-encoded list
	ContentPreview string    `gorm:"type:text" json:"content_preview"`
	CardCreated    time.Time `json:"card_created"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for ZettelRecord
func (ZettelRecord) TableName() string {
	return "zettel_index"
}

// ZettelLink is an indexed outbound cross-reference between two cards.
// Position preserves the order the card records its links in.
type ZettelLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SourceID  string    `gorm:"index;not null" json:"source_id"`
	TargetID  string    `gorm:"index;not null" json:"target_id"`
	Label     string    `json:"label"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for ZettelLink
func (ZettelLink) TableName() string {
	return "zettel_links"
}

// ZettelTag is a hashtag label seen in card commentary.
type ZettelTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for ZettelTag
func (ZettelTag) TableName() string {
	return "zettel_tags"
}

// ZettelCardTag joins cards to tags.
type ZettelCardTag struct {
	RecordID uint `gorm:"primaryKey" json:"record_id"`
	TagID    uint `gorm:"primaryKey" json:"tag_id"`

	Record ZettelRecord `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"-"`
	Tag    ZettelTag    `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ZettelCardTag
func (ZettelCardTag) TableName() string {
	return "zettel_card_tags"
}
