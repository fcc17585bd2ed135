package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/types"
)

type ProductRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error)
	GetByBarcode(ctx context.Context, tx *gorm.DB, barcode string) (*types.Product, error)
	Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error)
	// ReplaceAnalysis overwrites the generated analysis blob and its
	// timestamp unconditionally, last writer wins. Live fields
	// (community_score, curator_note) are never written here.
	ReplaceAnalysis(ctx context.Context, tx *gorm.DB, productID uuid.UUID, analysis datatypes.JSON, generatedAt time.Time) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{
		db:  db,
		log: baseLog.With("repo", "ProductRepo"),
	}
}

func (r *productRepo) GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if productID == uuid.Nil {
		return nil, nil
	}
	var row types.Product
	err := transaction.WithContext(ctx).
		Where("id = ?", productID).
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

func (r *productRepo) GetByBarcode(ctx context.Context, tx *gorm.DB, barcode string) (*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if barcode == "" {
		return nil, nil
	}
	var row types.Product
	err := transaction.WithContext(ctx).
		Where("barcode = ?", barcode).
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

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) ReplaceAnalysis(ctx context.Context, tx *gorm.DB, productID uuid.UUID, analysis datatypes.JSON, generatedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if productID == uuid.Nil {
		return errors.New("product id required to replace analysis")
	}
	return transaction.WithContext(ctx).
		Model(&types.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]interface{}{
			"analysis":            analysis,
			"analysis_updated_at": generatedAt,
			"updated_at":          time.Now().UTC(),
		}).Error
}
