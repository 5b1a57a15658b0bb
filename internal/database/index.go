// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"encoding/json"
	"fmt"

	"github.com/b3computer/zettel-mcp/internal/zettel"
	"gorm.io/gorm"
)

// previewLimit caps the content preview stored per card.
const previewLimit = 500

// IndexCard upserts the index row, links and tags for a card.
func IndexCard(db *gorm.DB, note *zettel.Note, relPath, preview string) error {
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	tags := note.Hashtags()
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	record := ZettelRecord{
		ZettelID:       note.ID,
		Title:          note.Title,
		Category:       note.Category,
		FilePath:       relPath,
		Tags:           string(tagsJSON),
		ContentPreview: preview,
		CardCreated:    note.Created,
	}
	if note.Summary != nil {
		record.RiskLevel = note.Summary.RiskLevel
		record.Priority = note.Summary.Priority
	}

	var existing ZettelRecord
	err = db.Where("zettel_id = ?", note.ID).First(&existing).Error
	switch {
	case err == nil:
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		if err := db.Save(&record).Error; err != nil {
			return fmt.Errorf("failed to update index row: %w", err)
		}
	case err == gorm.ErrRecordNotFound:
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create index row: %w", err)
		}
	default:
		return fmt.Errorf("failed to query index: %w", err)
	}

	// Replace links wholesale; the card is the source of truth for order
	if err := db.Where("source_id = ?", note.ID).Delete(&ZettelLink{}).Error; err != nil {
		return fmt.Errorf("failed to clear links: %w", err)
	}
	for i, l := range note.Links {
		link := ZettelLink{
			SourceID: note.ID,
			TargetID: l.Target,
			Label:    l.Label,
			Position: i,
		}
		if err := db.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to index link %s -> %s: %w", note.ID, l.Target, err)
		}
	}

	storeCardTags(db, record.ID, tags)

	return nil
}

// IndexLink records a single cross-reference created after the card was
// written (the connect operation).
func IndexLink(db *gorm.DB, sourceID, targetID, label string) error {
	var count int64
	db.Model(&ZettelLink{}).Where("source_id = ? AND target_id = ?", sourceID, targetID).Count(&count)
	if count > 0 {
		return nil
	}

	var maxPos int
	row := db.Model(&ZettelLink{}).Where("source_id = ?", sourceID).Select("COALESCE(MAX(position), -1)").Row()
	if err := row.Scan(&maxPos); err != nil {
		maxPos = -1
	}

	link := ZettelLink{
		SourceID: sourceID,
		TargetID: targetID,
		Label:    label,
		Position: maxPos + 1,
	}
	if err := db.Create(&link).Error; err != nil {
		return fmt.Errorf("failed to index link: %w", err)
	}
	return nil
}

// FindRecord looks up the index row for a card id.
func FindRecord(db *gorm.DB, zettelID string) (*ZettelRecord, error) {
	var record ZettelRecord
	if err := db.Where("zettel_id = ?", zettelID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// SearchRecords matches title, category or tags with a LIKE query, ordered
// by card id.
func SearchRecords(db *gorm.DB, query string, limit int) ([]ZettelRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	var records []ZettelRecord
	err := db.Where("title LIKE ? OR category LIKE ? OR tags LIKE ?", like, like, like).
		Order("zettel_id").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	return records, nil
}

// LinksFor returns the indexed outbound links of a card in recorded order.
func LinksFor(db *gorm.DB, sourceID string) ([]ZettelLink, error) {
	var links []ZettelLink
	err := db.Where("source_id = ?", sourceID).Order("position").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	return links, nil
}

// BacklinksFor returns the indexed links pointing at a card.
func BacklinksFor(db *gorm.DB, targetID string) ([]ZettelLink, error) {
	var links []ZettelLink
	err := db.Where("target_id = ?", targetID).Order("source_id").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query backlinks: %w", err)
	}
	return links, nil
}

// Counts returns the number of indexed cards and links.
func Counts(db *gorm.DB) (records int64, links int64, err error) {
	if err := db.Model(&ZettelRecord{}).Count(&records).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count records: %w", err)
	}
	if err := db.Model(&ZettelLink{}).Count(&links).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count links: %w", err)
	}
	return records, links, nil
}

// Reset drops all index rows, used by forced rebuilds.
func Reset(db *gorm.DB) error {
	for _, model := range []interface{}{&ZettelCardTag{}, &ZettelTag{}, &ZettelLink{}, &ZettelRecord{}} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("failed to reset index: %w", err)
		}
	}
	return nil
}

// DecodeTags unpacks the JSON-encoded tags column.
func (r *ZettelRecord) DecodeTags() []string {
	if r.Tags == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
		return nil
	}
	return tags
}

// storeCardTags records tag rows for a card, creating tags on first use.
func storeCardTags(db *gorm.DB, recordID uint, tags []string) {
	db.Where("record_id = ?", recordID).Delete(&ZettelCardTag{})
	for _, name := range tags {
		var tag ZettelTag
		db.Where("name = ?", name).FirstOrCreate(&tag, ZettelTag{Name: name})
		db.Create(&ZettelCardTag{RecordID: recordID, TagID: tag.ID})
	}
}
