package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/types"
)

func TestProductReplaceAnalysisPreservesLiveFields(t *testing.T) {
	db := openTestDB(t)
	repo := NewProductRepo(db, logger.NewNop())
	ctx := context.Background()

	score := 4.7
	note := "staff pick"
	barcode := "4006381333931"
	seeded, err := repo.Create(ctx, nil, []*types.Product{{
		Name:           "Sparkling Water",
		Barcode:        &barcode,
		CommunityScore: &score,
		CuratorNote:    &note,
	}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	productID := seeded[0].ID

	generatedAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	analysis := datatypes.JSON(`{"summary":"zero calories"}`)
	if err := repo.ReplaceAnalysis(ctx, nil, productID, analysis, generatedAt); err != nil {
		t.Fatalf("ReplaceAnalysis: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, productID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("product disappeared after ReplaceAnalysis")
	}
	if string(got.Analysis) != string(analysis) {
		t.Fatalf("analysis=%s, want %s", got.Analysis, analysis)
	}
	if got.AnalysisUpdatedAt == nil || !got.AnalysisUpdatedAt.Equal(generatedAt) {
		t.Fatalf("analysis_updated_at=%v, want %v", got.AnalysisUpdatedAt, generatedAt)
	}
	if got.CommunityScore == nil || *got.CommunityScore != score {
		t.Fatalf("community_score clobbered: %v", got.CommunityScore)
	}
	if got.CuratorNote == nil || *got.CuratorNote != note {
		t.Fatalf("curator_note clobbered: %v", got.CuratorNote)
	}
}

func TestProductGetByBarcode(t *testing.T) {
	db := openTestDB(t)
	repo := NewProductRepo(db, logger.NewNop())
	ctx := context.Background()

	barcode := "0123456789012"
	if _, err := repo.Create(ctx, nil, []*types.Product{{Name: "Granola", Barcode: &barcode}}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByBarcode(ctx, nil, barcode)
	if err != nil {
		t.Fatalf("GetByBarcode: %v", err)
	}
	if got == nil || got.Name != "Granola" {
		t.Fatalf("GetByBarcode returned %+v", got)
	}

	miss, err := repo.GetByBarcode(ctx, nil, "0000000000000")
	if err != nil {
		t.Fatalf("GetByBarcode miss: %v", err)
	}
	if miss != nil {
		t.Fatalf("expected nil on unknown barcode, got %+v", miss)
	}
}

func TestScanLogCreateAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewScanLogRepo(db, logger.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	recordID := uuid.New()
	logs := []*types.ScanLog{
		{UserID: userID, ScanRecordID: &recordID, Modality: types.ModalityBarcode, InputSummary: "barcode 111", CacheHit: true},
		{UserID: userID, Modality: types.ModalityText, InputSummary: "ingredient list", CacheHit: false},
		{UserID: uuid.New(), Modality: types.ModalityURL, InputSummary: "https://example.com", CacheHit: false},
	}
	if _, err := repo.Create(ctx, nil, logs); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows, err := repo.ListByUser(ctx, nil, userID, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 ledger rows for user, got %d", len(rows))
	}
	hits := 0
	for _, row := range rows {
		if row.CacheHit {
			hits++
		}
	}
	if hits != 1 {
		t.Fatalf("expected 1 hit row, got %d", hits)
	}
}
