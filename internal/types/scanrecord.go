package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScanRecord is the per-user content-addressable cache row. The composite
// unique index on (user_id, cache_key) is what guarantees at most one row
// per normalized input per user, however many requests race on it.
type ScanRecord struct {
	gorm.Model
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_scan_record_owner_key" json:"user_id"`
	CacheKey     string         `gorm:"not null;column:cache_key;uniqueIndex:idx_scan_record_owner_key" json:"cache_key"`
	Modality     ScanModality   `gorm:"not null;column:modality" json:"modality"`
	InputSummary string         `gorm:"not null;column:input_summary" json:"input_summary"`
	Analysis     datatypes.JSON `gorm:"type:jsonb;column:analysis" json:"analysis"`
	DisplayName  *string        `gorm:"column:display_name" json:"display_name,omitempty"`
	LookupCount  int64          `gorm:"not null;default:1;column:lookup_count" json:"lookup_count"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (ScanRecord) TableName() string {
	return "scan_record"
}
