package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

// productFactsRow maps the read-only product_facts view maintained by the
// catalog service. The feed engine never writes it.
type productFactsRow struct {
	ProductID      uuid.UUID  `gorm:"column:product_id;primaryKey"`
	DeletedAt      *time.Time `gorm:"column:deleted_at"`
	ActiveFlag     bool       `gorm:"column:active_flag"`
	ApprovalStatus string     `gorm:"column:approval_status"`
	MerchantID     uuid.UUID  `gorm:"column:merchant_id"`
	StockQty       int        `gorm:"column:stock_qty"`
	CategoryID     *uuid.UUID `gorm:"column:category_id"`
}

func (productFactsRow) TableName() string {
	return "product_facts"
}

// ProductFactsRepo is the GORM-backed implementation of the catalog
// collaborator: one batch read per feed page, no per-reel lookups.
type ProductFactsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductFactsRepo(db *gorm.DB, baseLog *logger.Logger) *ProductFactsRepo {
	return &ProductFactsRepo{db: db, log: baseLog.With("repo", "ProductFactsRepo")}
}

func (r *ProductFactsRepo) VisibilityFacts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*domain.ProductFacts, error) {
	out := make(map[uuid.UUID]*domain.ProductFacts, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []productFactsRow
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = &domain.ProductFacts{
			ProductID:      row.ProductID,
			DeletedAt:      row.DeletedAt,
			Active:         row.ActiveFlag,
			ApprovalStatus: row.ApprovalStatus,
			MerchantID:     row.MerchantID,
			StockQty:       row.StockQty,
			CategoryID:     row.CategoryID,
		}
	}
	return out, nil
}

func (r *ProductFactsRepo) ProductIDsByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(categoryIDs) == 0 {
		return ids, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&productFactsRow{}).
		Where("category_id IN ?", categoryIDs).
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
