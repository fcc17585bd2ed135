package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/labelsense-backend/internal/clients/redis"
	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/repos"
	"github.com/yungbote/labelsense-backend/internal/types"
)

// ScanService is the per-user lookup orchestrator: derive key, consult the
// store, generate on miss, persist, log the lookup. Per-user records never
// expire; an input analyzed once for a user stays analyzed. There is no
// retry loop here, a failed generation surfaces immediately.
type ScanService interface {
	AnalyzeInput(ctx context.Context, ownerID uuid.UUID, modality types.ScanModality, raw []byte) (*types.ScanRecord, error)
	ListScans(ctx context.Context, ownerID uuid.UUID, limit int) ([]*types.ScanRecord, error)
}

type scanService struct {
	db          *gorm.DB
	log         *logger.Logger
	keys        ScanKeyService
	scanRepo    repos.ScanRecordRepo
	scanLogRepo repos.ScanLogRepo
	aiClient    AIClient
	events      redisclient.ScanEventBus

	generationTimeout time.Duration
}

func NewScanService(
	db *gorm.DB,
	log *logger.Logger,
	keys ScanKeyService,
	scanRepo repos.ScanRecordRepo,
	scanLogRepo repos.ScanLogRepo,
	aiClient AIClient,
	events redisclient.ScanEventBus,
	generationTimeout time.Duration,
) ScanService {
	if generationTimeout <= 0 {
		generationTimeout = 120 * time.Second
	}
	return &scanService{
		db:                db,
		log:               log.With("service", "ScanService"),
		keys:              keys,
		scanRepo:          scanRepo,
		scanLogRepo:       scanLogRepo,
		aiClient:          aiClient,
		events:            events,
		generationTimeout: generationTimeout,
	}
}

func (s *scanService) AnalyzeInput(ctx context.Context, ownerID uuid.UUID, modality types.ScanModality, raw []byte) (*types.ScanRecord, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner id required")
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty scan input")
	}

	cacheKey := s.keys.Derive(ownerID, modality, raw)
	summary := s.keys.Summarize(modality, raw)

	existing, err := s.scanRepo.GetByOwnerAndKey(ctx, nil, ownerID, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("%w: reading scan record: %v", ErrStoreUnavailable, err)
	}

	if existing != nil {
		// Plain hit. The increment is a best-effort popularity bump;
		// a failure here must not cost the user their cached result.
		if err := s.scanRepo.IncrementLookup(ctx, nil, existing.ID); err != nil {
			s.log.Warn("Failed to increment lookup count on cache hit",
				"scan_record_id", existing.ID, "error", err)
		} else if refreshed, rErr := s.scanRepo.GetByOwnerAndKey(ctx, nil, ownerID, cacheKey); rErr == nil && refreshed != nil {
			existing = refreshed
		}
		s.recordLookup(ctx, ownerID, &existing.ID, modality, summary, existing.DisplayName, true)
		return existing, nil
	}

	// Miss: invoke the generation gateway, bounded by our timeout. The
	// gateway gets the full normalized input; the truncated summary is
	// only for the stored row and the ledger. The attempt is logged as a
	// miss whether or not generation succeeds.
	genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()
	result, err := s.aiClient.GenerateProductAnalysis(genCtx, AnalysisRequest{
		Modality: modality,
		Input:    s.keys.GatewayInput(modality, raw),
	})
	if err != nil {
		s.recordLookup(ctx, ownerID, nil, modality, summary, nil, false)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	record := &types.ScanRecord{
		UserID:       ownerID,
		CacheKey:     cacheKey,
		Modality:     modality,
		InputSummary: summary,
		Analysis:     result.Payload,
	}
	if result.DisplayName != "" {
		record.DisplayName = &result.DisplayName
	}

	stored, err := s.scanRepo.CreateOrIncrement(ctx, nil, record)
	if err != nil {
		if errors.Is(err, repos.ErrConflictRowMissing) {
			return nil, fmt.Errorf("%w: race resolution: %v", ErrStoreUnavailable, err)
		}
		return nil, fmt.Errorf("%w: storing scan record: %v", ErrStoreUnavailable, err)
	}

	s.recordLookup(ctx, ownerID, &stored.ID, modality, summary, stored.DisplayName, false)
	return stored, nil
}

func (s *scanService) ListScans(ctx context.Context, ownerID uuid.UUID, limit int) ([]*types.ScanRecord, error) {
	records, err := s.scanRepo.ListByOwner(ctx, nil, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: listing scan records: %v", ErrStoreUnavailable, err)
	}
	return records, nil
}

// recordLookup appends the ledger row and publishes the live event. Both are
// analytics; failures are logged and never fail the lookup itself.
func (s *scanService) recordLookup(ctx context.Context, ownerID uuid.UUID, recordID *uuid.UUID, modality types.ScanModality, summary string, displayName *string, hit bool) {
	entry := &types.ScanLog{
		UserID:       ownerID,
		ScanRecordID: recordID,
		Modality:     modality,
		InputSummary: summary,
		DisplayName:  displayName,
		CacheHit:     hit,
	}
	if _, err := s.scanLogRepo.Create(ctx, nil, []*types.ScanLog{entry}); err != nil {
		s.log.Warn("Failed to append scan log entry", "user_id", ownerID, "error", err)
	}

	if s.events != nil {
		event := redisclient.ScanEvent{
			UserID:     ownerID,
			Modality:   modality,
			CacheHit:   hit,
			RecordedAt: time.Now().UTC(),
		}
		if displayName != nil {
			event.DisplayName = *displayName
		}
		if err := s.events.Publish(ctx, event); err != nil {
			s.log.Warn("Failed to publish scan event", "user_id", ownerID, "error", err)
		}
	}
}
