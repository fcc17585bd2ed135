package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/types"
)

type ScanLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*types.ScanLog) ([]*types.ScanLog, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ScanLog, error)
}

type scanLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScanLogRepo(db *gorm.DB, baseLog *logger.Logger) ScanLogRepo {
	return &scanLogRepo{db: db, log: baseLog.With("repo", "ScanLogRepo")}
}

func (r *scanLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.ScanLog) ([]*types.ScanLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(logs) == 0 {
		return []*types.ScanLog{}, nil
	}
	for _, l := range logs {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *scanLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ScanLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ScanLog
	if userID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
