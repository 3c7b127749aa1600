package database

import (
	"fmt"

	"gorm.io/gorm"
)

// OptimizeIndexes creates the indexes used by range reads.
func OptimizeIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_daily_source_date
		ON daily_aggregates (source, date DESC)
	`).Error; err != nil {
		return fmt.Errorf("failed to create daily aggregates source index: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_daily_date
		ON daily_aggregates (date)
	`).Error; err != nil {
		return fmt.Errorf("failed to create daily aggregates date index: %w", err)
	}

	return nil
}
