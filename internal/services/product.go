package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/labelsense-backend/internal/clients/redis"
	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/normalization"
	"github.com/yungbote/labelsense-backend/internal/repos"
	"github.com/yungbote/labelsense-backend/internal/types"
)

// ProductService is the shared catalog orchestrator. One analysis per
// product, served to everyone until the freshness TTL expires, then replaced
// wholesale. The product row's live fields are overlaid on every read so
// curation updates are visible between regenerations.
type ProductService interface {
	GetAnalysis(ctx context.Context, requesterID uuid.UUID, productID uuid.UUID) (datatypes.JSON, error)
	GetAnalysisByBarcode(ctx context.Context, requesterID uuid.UUID, barcode string) (datatypes.JSON, error)
}

type productService struct {
	db          *gorm.DB
	log         *logger.Logger
	productRepo repos.ProductRepo
	scanLogRepo repos.ScanLogRepo
	aiClient    AIClient
	events      redisclient.ScanEventBus
	freshness   FreshnessPolicy

	generationTimeout time.Duration
	// regenGroup collapses concurrent regenerations of the same product
	// within this process. Across processes the store stays
	// last-writer-wins, which is correct for a recomputable view.
	regenGroup singleflight.Group
}

func NewProductService(
	db *gorm.DB,
	log *logger.Logger,
	productRepo repos.ProductRepo,
	scanLogRepo repos.ScanLogRepo,
	aiClient AIClient,
	events redisclient.ScanEventBus,
	freshness FreshnessPolicy,
	generationTimeout time.Duration,
) ProductService {
	if generationTimeout <= 0 {
		generationTimeout = 120 * time.Second
	}
	return &productService{
		db:                db,
		log:               log.With("service", "ProductService"),
		productRepo:       productRepo,
		scanLogRepo:       scanLogRepo,
		aiClient:          aiClient,
		events:            events,
		freshness:         freshness,
		generationTimeout: generationTimeout,
	}
}

func (s *productService) GetAnalysis(ctx context.Context, requesterID uuid.UUID, productID uuid.UUID) (datatypes.JSON, error) {
	product, err := s.productRepo.GetByID(ctx, nil, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: reading product: %v", ErrStoreUnavailable, err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return s.serveAnalysis(ctx, requesterID, product)
}

func (s *productService) GetAnalysisByBarcode(ctx context.Context, requesterID uuid.UUID, barcode string) (datatypes.JSON, error) {
	normalized, _ := normalization.ParseBarcode(barcode)
	product, err := s.productRepo.GetByBarcode(ctx, nil, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: reading product by barcode: %v", ErrStoreUnavailable, err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: barcode %s", ErrProductNotFound, normalized)
	}
	return s.serveAnalysis(ctx, requesterID, product)
}

func (s *productService) serveAnalysis(ctx context.Context, requesterID uuid.UUID, product *types.Product) (datatypes.JSON, error) {
	if s.isFresh(product) {
		merged, err := OverlayLiveFields(product.Analysis, product)
		s.recordLookup(ctx, requesterID, product, err == nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return merged, nil
	}

	payload, err := s.regenerate(ctx, product)
	if err != nil {
		s.recordLookup(ctx, requesterID, product, false)
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	merged, err := OverlayLiveFields(payload, product)
	s.recordLookup(ctx, requesterID, product, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return merged, nil
}

func (s *productService) isFresh(product *types.Product) bool {
	if len(product.Analysis) == 0 || product.AnalysisUpdatedAt == nil {
		return false
	}
	return s.freshness.IsFresh(*product.AnalysisUpdatedAt)
}

func (s *productService) regenerate(ctx context.Context, product *types.Product) (datatypes.JSON, error) {
	payload, err, _ := s.regenGroup.Do(product.ID.String(), func() (interface{}, error) {
		genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
		defer cancel()

		result, err := s.aiClient.GenerateProductAnalysis(genCtx, AnalysisRequest{
			Modality:    types.ModalityCatalog,
			Input:       product.Name,
			ProductName: product.Name,
		})
		if err != nil {
			return nil, err
		}

		generatedAt := time.Now().UTC()
		if err := s.productRepo.ReplaceAnalysis(ctx, nil, product.ID, result.Payload, generatedAt); err != nil {
			return nil, fmt.Errorf("%w: replacing analysis: %v", ErrStoreUnavailable, err)
		}
		return result.Payload, nil
	})
	if err != nil {
		return nil, err
	}
	return payload.(datatypes.JSON), nil
}

func (s *productService) recordLookup(ctx context.Context, requesterID uuid.UUID, product *types.Product, hit bool) {
	entry := &types.ScanLog{
		UserID:       requesterID,
		Modality:     types.ModalityCatalog,
		InputSummary: fmt.Sprintf("product %s", product.ID),
		DisplayName:  &product.Name,
		CacheHit:     hit,
	}
	if _, err := s.scanLogRepo.Create(ctx, nil, []*types.ScanLog{entry}); err != nil {
		s.log.Warn("Failed to append scan log entry", "product_id", product.ID, "error", err)
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, redisclient.ScanEvent{
			UserID:      requesterID,
			Modality:    types.ModalityCatalog,
			CacheHit:    hit,
			DisplayName: product.Name,
			RecordedAt:  time.Now().UTC(),
		}); err != nil {
			s.log.Warn("Failed to publish scan event", "product_id", product.ID, "error", err)
		}
	}
}
