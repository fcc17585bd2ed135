package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/types"
)

// ErrConflictRowMissing means an insert hit the (user_id, cache_key) unique
// index but the winning row could not be read back afterwards. Callers treat
// it like any other storage failure and may retry the whole lookup.
var ErrConflictRowMissing = errors.New("scan record conflict row missing on re-read")

type ScanRecordRepo interface {
	GetByOwnerAndKey(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cacheKey string) (*types.ScanRecord, error)
	// CreateOrIncrement inserts the record with lookup_count=1. If a
	// concurrent caller already created the row for the same
	// (user_id, cache_key), the insert's unique violation is absorbed:
	// the existing row gets an atomic lookup_count+1 and is returned.
	CreateOrIncrement(ctx context.Context, tx *gorm.DB, record *types.ScanRecord) (*types.ScanRecord, error)
	// IncrementLookup bumps lookup_count on a plain cache hit. This is a
	// read-then-write, so concurrent hits on the same row can lose an
	// update; lookup_count is a popularity signal, not an exact counter.
	IncrementLookup(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) error
	ListByOwner(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ScanRecord, error)
}

type scanRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScanRecordRepo(db *gorm.DB, baseLog *logger.Logger) ScanRecordRepo {
	return &scanRecordRepo{
		db:  db,
		log: baseLog.With("repo", "ScanRecordRepo"),
	}
}

func (r *scanRecordRepo) GetByOwnerAndKey(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cacheKey string) (*types.ScanRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || cacheKey == "" {
		return nil, nil
	}
	var row types.ScanRecord
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND cache_key = ?", userID, cacheKey).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *scanRecordRepo) CreateOrIncrement(ctx context.Context, tx *gorm.DB, record *types.ScanRecord) (*types.ScanRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if record == nil || record.UserID == uuid.Nil || record.CacheKey == "" {
		return nil, errors.New("scan record requires user_id and cache_key")
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.LookupCount = 1

	err := transaction.WithContext(ctx).Create(record).Error
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	// A concurrent caller won the insert. Fold this attempt into the
	// existing row instead of surfacing the constraint error.
	r.log.Debug("Insert lost race, incrementing existing row",
		"user_id", record.UserID, "cache_key", record.CacheKey)
	res := transaction.WithContext(ctx).
		Model(&types.ScanRecord{}).
		Where("user_id = ? AND cache_key = ?", record.UserID, record.CacheKey).
		UpdateColumns(map[string]interface{}{
			"lookup_count": gorm.Expr("lookup_count + ?", 1),
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	existing, err := r.GetByOwnerAndKey(ctx, transaction, record.UserID, record.CacheKey)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrConflictRowMissing
	}
	return existing, nil
}

func (r *scanRecordRepo) IncrementLookup(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if recordID == uuid.Nil {
		return nil
	}
	var row types.ScanRecord
	err := transaction.WithContext(ctx).
		Where("id = ?", recordID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return err
	}
	if row.ID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.ScanRecord{}).
		Where("id = ?", recordID).
		UpdateColumns(map[string]interface{}{
			"lookup_count": row.LookupCount + 1,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *scanRecordRepo) ListByOwner(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ScanRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ScanRecord
	if userID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
