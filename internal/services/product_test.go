package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/repos"
	"github.com/yungbote/labelsense-backend/internal/types"
)

func newTestProductService(t *testing.T, db *gorm.DB, ai AIClient, now time.Time) (ProductService, repos.ProductRepo) {
	t.Helper()
	log := logger.NewNop()
	productRepo := repos.NewProductRepo(db, log)
	scanLogRepo := repos.NewScanLogRepo(db, log)
	policy := NewFreshnessPolicyWithClock(DefaultProductAnalysisTTL, func() time.Time { return now })
	svc := NewProductService(db, log, productRepo, scanLogRepo, ai, nil, policy, 0)
	return svc, productRepo
}

func seedProduct(t *testing.T, repo repos.ProductRepo, product *types.Product) uuid.UUID {
	t.Helper()
	seeded, err := repo.Create(context.Background(), nil, []*types.Product{product})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return seeded[0].ID
}

func TestGetAnalysisFreshServedFromStore(t *testing.T) {
	db := openTestDB(t)
	ai := &fakeAIClient{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, productRepo := newTestProductService(t, db, ai, now)

	score := 4.5
	updatedAt := now.Add(-24 * time.Hour)
	productID := seedProduct(t, productRepo, &types.Product{
		Name:              "Oat Bar",
		Analysis:          datatypes.JSON(`{"summary":"high fiber"}`),
		AnalysisUpdatedAt: &updatedAt,
		CommunityScore:    &score,
	})

	got, err := svc.GetAnalysis(context.Background(), uuid.New(), productID)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if ai.calls.Load() != 0 {
		t.Fatalf("fresh analysis regenerated: %d calls", ai.calls.Load())
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(got, &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if payload["summary"] != "high fiber" {
		t.Fatalf("cached summary lost: %v", payload["summary"])
	}
	if payload["community_score"] != 4.5 {
		t.Fatalf("live field not overlaid: %v", payload["community_score"])
	}
}

func TestGetAnalysisStaleRegenerates(t *testing.T) {
	db := openTestDB(t)
	ai := &fakeAIClient{payload: datatypes.JSON(`{"summary":"regenerated"}`)}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, productRepo := newTestProductService(t, db, ai, now)

	note := "recipe changed in 2026"
	updatedAt := now.Add(-31 * 24 * time.Hour)
	productID := seedProduct(t, productRepo, &types.Product{
		Name:              "Oat Bar",
		Analysis:          datatypes.JSON(`{"summary":"outdated"}`),
		AnalysisUpdatedAt: &updatedAt,
		CuratorNote:       &note,
	})

	got, err := svc.GetAnalysis(context.Background(), uuid.New(), productID)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if ai.calls.Load() != 1 {
		t.Fatalf("stale analysis should regenerate once, got %d calls", ai.calls.Load())
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(got, &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if payload["summary"] != "regenerated" {
		t.Fatalf("stale payload served: %v", payload["summary"])
	}
	if payload["curator_note"] != note {
		t.Fatalf("live field missing after regeneration: %v", payload["curator_note"])
	}

	// The store holds the raw regenerated blob, never the overlaid copy.
	stored, err := productRepo.GetByID(context.Background(), nil, productID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if string(stored.Analysis) != `{"summary":"regenerated"}` {
		t.Fatalf("overlaid payload leaked into the store: %s", stored.Analysis)
	}
	if stored.AnalysisUpdatedAt == nil || !stored.AnalysisUpdatedAt.After(updatedAt) {
		t.Fatalf("analysis_updated_at not advanced: %v", stored.AnalysisUpdatedAt)
	}
	if stored.CuratorNote == nil || *stored.CuratorNote != note {
		t.Fatalf("curator_note clobbered by regeneration: %v", stored.CuratorNote)
	}
}

func TestGetAnalysisNeverGenerated(t *testing.T) {
	db := openTestDB(t)
	ai := &fakeAIClient{payload: datatypes.JSON(`{"summary":"first pass"}`)}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, productRepo := newTestProductService(t, db, ai, now)

	productID := seedProduct(t, productRepo, &types.Product{Name: "New Snack"})

	got, err := svc.GetAnalysis(context.Background(), uuid.New(), productID)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if ai.calls.Load() != 1 {
		t.Fatalf("missing analysis should generate, got %d calls", ai.calls.Load())
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(got, &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if payload["summary"] != "first pass" {
		t.Fatalf("generated payload not served: %v", payload["summary"])
	}
}

func TestGetAnalysisGenerationFailureKeepsStoredBlob(t *testing.T) {
	db := openTestDB(t)
	ai := &fakeAIClient{err: errors.New("gateway down")}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, productRepo := newTestProductService(t, db, ai, now)

	updatedAt := now.Add(-60 * 24 * time.Hour)
	productID := seedProduct(t, productRepo, &types.Product{
		Name:              "Oat Bar",
		Analysis:          datatypes.JSON(`{"summary":"outdated"}`),
		AnalysisUpdatedAt: &updatedAt,
	})

	_, err := svc.GetAnalysis(context.Background(), uuid.New(), productID)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	stored, err := productRepo.GetByID(context.Background(), nil, productID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if string(stored.Analysis) != `{"summary":"outdated"}` {
		t.Fatalf("failed regeneration touched the store: %s", stored.Analysis)
	}
	if !stored.AnalysisUpdatedAt.Equal(updatedAt) {
		t.Fatalf("timestamp advanced on failure: %v", stored.AnalysisUpdatedAt)
	}
}

func TestGetAnalysisCorruptBlobStillLedgered(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, productRepo := newTestProductService(t, db, &fakeAIClient{}, now)

	updatedAt := now.Add(-time.Hour)
	productID := seedProduct(t, productRepo, &types.Product{
		Name:              "Oat Bar",
		Analysis:          datatypes.JSON(`{corrupt`),
		AnalysisUpdatedAt: &updatedAt,
	})

	_, err := svc.GetAnalysis(context.Background(), uuid.New(), productID)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	var count int64
	if err := db.Model(&types.ScanLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count ledger rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 ledger row despite overlay failure, got %d", count)
	}
}

func TestGetAnalysisUnknownProduct(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestProductService(t, db, &fakeAIClient{}, now)

	_, err := svc.GetAnalysis(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGetAnalysisByBarcode(t *testing.T) {
	db := openTestDB(t)
	ai := &fakeAIClient{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, productRepo := newTestProductService(t, db, ai, now)

	barcode := "4006381333931"
	updatedAt := now.Add(-time.Hour)
	seedProduct(t, productRepo, &types.Product{
		Name:              "Sparkling Water",
		Barcode:           &barcode,
		Analysis:          datatypes.JSON(`{"summary":"plain water"}`),
		AnalysisUpdatedAt: &updatedAt,
	})

	// Scanner separators normalize away before the barcode lookup.
	got, err := svc.GetAnalysisByBarcode(context.Background(), uuid.New(), "4 006381-333931")
	if err != nil {
		t.Fatalf("GetAnalysisByBarcode: %v", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(got, &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if payload["summary"] != "plain water" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	if _, err := svc.GetAnalysisByBarcode(context.Background(), uuid.New(), "9999999999999"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for unknown barcode, got %v", err)
	}
}
