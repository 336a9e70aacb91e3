package models

import (
	"time"

	"gorm.io/datatypes"
)

// ImportRun records one batch import for auditing. Stats holds the
// per-section created/updated/skipped counts as produced by the importer.
type ImportRun struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID    string `gorm:"type:varchar(36);not null;uniqueIndex" json:"run_id"`
	Filename string `gorm:"type:varchar(255)" json:"filename"`
	Format   string `gorm:"type:varchar(10);not null" json:"format"`

	Stats      datatypes.JSON `gorm:"type:jsonb" json:"stats"`
	DurationMs int64          `gorm:"not null;default:0" json:"duration_ms"`

	UserID    *uint64   `json:"user_id"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (ImportRun) TableName() string {
	return "map_import_runs"
}
