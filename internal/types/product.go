package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is a catalog entity with a shared generated analysis. The analysis
// blob is replaced wholesale on regeneration; CommunityScore and CuratorNote
// are written by curation/aggregation processes outside this service and are
// overlaid onto the analysis at read time, never frozen into it.
type Product struct {
	gorm.Model
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string         `gorm:"not null;column:name" json:"name"`
	Barcode           *string        `gorm:"uniqueIndex;column:barcode" json:"barcode,omitempty"`
	Analysis          datatypes.JSON `gorm:"type:jsonb;column:analysis" json:"analysis,omitempty"`
	AnalysisUpdatedAt *time.Time     `gorm:"column:analysis_updated_at" json:"analysis_updated_at,omitempty"`
	CommunityScore    *float64       `gorm:"column:community_score" json:"community_score,omitempty"`
	CuratorNote       *string        `gorm:"column:curator_note" json:"curator_note,omitempty"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}
