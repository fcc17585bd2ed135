package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanLog is the append-only lookup ledger. One row per orchestrated lookup,
// hit or miss; rows are never updated or deleted here, retention belongs to
// the analytics side.
type ScanLog struct {
	gorm.Model
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID    `gorm:"type:uuid;index;not null" json:"user_id"`
	ScanRecordID *uuid.UUID   `gorm:"type:uuid;index" json:"scan_record_id,omitempty"`
	Modality     ScanModality `gorm:"not null;column:modality" json:"modality"`
	InputSummary string       `gorm:"not null;column:input_summary" json:"input_summary"`
	DisplayName  *string      `gorm:"column:display_name" json:"display_name,omitempty"`
	CacheHit     bool         `gorm:"not null;column:cache_hit" json:"cache_hit"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

func (ScanLog) TableName() string {
	return "scan_log"
}
