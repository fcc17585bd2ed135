package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/yungbote/labelsense-backend/internal/types"
)

// Live field names injected into served analyses. They are owned by
// curation/aggregation processes and must reflect the product row on every
// read, even while the generated blob itself is served stale-tolerant.
const (
	liveFieldCommunityScore = "community_score"
	liveFieldCuratorNote    = "curator_note"
)

// OverlayLiveFields returns a copy of the cached analysis with the product
// row's live fields injected, overwriting any value the generated blob may
// have had there. The stored analysis is never modified.
func OverlayLiveFields(analysis datatypes.JSON, product *types.Product) (datatypes.JSON, error) {
	merged := map[string]interface{}{}
	if len(analysis) > 0 {
		if err := json.Unmarshal(analysis, &merged); err != nil {
			return nil, fmt.Errorf("decode cached analysis: %w", err)
		}
	}
	if product != nil {
		if product.CommunityScore != nil {
			merged[liveFieldCommunityScore] = *product.CommunityScore
		}
		if product.CuratorNote != nil {
			merged[liveFieldCuratorNote] = *product.CuratorNote
		}
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode merged analysis: %w", err)
	}
	return datatypes.JSON(out), nil
}
