// Package archive keeps a long-term, append-only record of every entry the
// watcher accepts, independent of the bounded live history. It backs the
// `search` command: the live history holds at most maxHistory entries, the
// archive remembers what scrolled out of it.
package archive

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ykotov/clipvault/internal/history"
)

// EntryModel is an archived clipboard entry.
type EntryModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Kind      string    `gorm:"size:8;not null;index"`
	Text      string    `gorm:"type:text"`
	Preview   string    `gorm:"size:128"`
	ImageHash string    `gorm:"size:64;index"`
	Timestamp time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for EntryModel.
func (EntryModel) TableName() string {
	return "entries"
}

// Archive is a SQLite-backed entry archive.
type Archive struct {
	db *gorm.DB
}

// Open creates or opens the archive database at path and migrates its schema.
func Open(path string) (*Archive, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	if err := db.AutoMigrate(&EntryModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Record appends an accepted history entry to the archive.
func (a *Archive) Record(e history.Entry) error {
	model := &EntryModel{
		Kind:      string(e.Kind),
		Text:      e.Text,
		Preview:   e.Preview,
		ImageHash: e.ImageHash,
		Timestamp: e.Time,
	}
	if err := a.db.Create(model).Error; err != nil {
		return fmt.Errorf("failed to archive entry: %w", err)
	}
	return nil
}

// Search returns archived entries whose text or preview contains pattern,
// case-insensitively, newest first. Image entries match the fixed image
// keyword the same way live filtering does. limit <= 0 means no limit.
func (a *Archive) Search(pattern string, limit int) ([]EntryModel, error) {
	needle := "%" + strings.ToLower(pattern) + "%"

	query := a.db.Model(&EntryModel{}).
		Where("lower(text) LIKE ? OR lower(preview) LIKE ?", needle, needle)
	if strings.Contains(strings.ToLower(pattern), "image") {
		query = a.db.Model(&EntryModel{}).
			Where("lower(text) LIKE ? OR lower(preview) LIKE ? OR kind = ?",
				needle, needle, string(history.KindImage))
	}

	query = query.Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []EntryModel
	if err := query.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to search archive: %w", err)
	}
	return results, nil
}

// Count returns the number of archived entries.
func (a *Archive) Count() (int64, error) {
	var n int64
	if err := a.db.Model(&EntryModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count archive entries: %w", err)
	}
	return n, nil
}

// Close releases the underlying database connection.
func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
