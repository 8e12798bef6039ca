package reels

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

// ReelRepo persists reels and their engagement counters. Counter updates
// are single-statement atomic UPDATEs so concurrent interactions on a
// popular reel never lose increments; the likes decrement is floored at
// zero in SQL.
//
// List methods only apply the cheap reel-level filters (tombstone, active
// flag). Product-level visibility needs catalog facts and is applied by the
// service layer after one batch facts call.
type ReelRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reels []*domain.Reel) ([]*domain.Reel, error)
	GetByID(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) (*domain.Reel, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, reelIDs []uuid.UUID) ([]*domain.Reel, error)
	ListByMerchants(ctx context.Context, tx *gorm.DB, merchantIDs []uuid.UUID, exclude []uuid.UUID, limit int) ([]*domain.Reel, error)
	ListByProducts(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID, exclude []uuid.UUID, limit int) ([]*domain.Reel, error)
	ListCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time, exclude []uuid.UUID, limit int) ([]*domain.Reel, error)
	ListNewest(ctx context.Context, tx *gorm.DB, exclude []uuid.UUID, limit int) ([]*domain.Reel, error)
	ListAllByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, limit, offset int) ([]*domain.Reel, int64, error)
	UpdateDescription(ctx context.Context, tx *gorm.DB, reelID uuid.UUID, description string) error
	SoftDelete(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error
	IncrementViews(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error
	IncrementLikes(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error
	DecrementLikes(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error
	IncrementShares(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error
}

type reelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReelRepo(db *gorm.DB, baseLog *logger.Logger) ReelRepo {
	return &reelRepo{db: db, log: baseLog.With("repo", "ReelRepo")}
}

func (r *reelRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *reelRepo) Create(ctx context.Context, tx *gorm.DB, reels []*domain.Reel) ([]*domain.Reel, error) {
	if len(reels) == 0 {
		return []*domain.Reel{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&reels).Error; err != nil {
		return nil, err
	}
	return reels, nil
}

func (r *reelRepo) GetByID(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) (*domain.Reel, error) {
	var reel domain.Reel
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", reelID).
		First(&reel).Error
	if err != nil {
		return nil, err
	}
	return &reel, nil
}

func (r *reelRepo) GetByIDs(ctx context.Context, tx *gorm.DB, reelIDs []uuid.UUID) ([]*domain.Reel, error) {
	var results []*domain.Reel
	if len(reelIDs) == 0 {
		return results, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("id IN ?", reelIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// live filters out tombstoned and deactivated reels.
func live(q *gorm.DB) *gorm.DB {
	return q.Where("deleted_at IS NULL").Where("is_active = ?", true)
}

func excluding(q *gorm.DB, exclude []uuid.UUID) *gorm.DB {
	if len(exclude) == 0 {
		return q
	}
	return q.Where("id NOT IN ?", exclude)
}

func (r *reelRepo) ListByMerchants(ctx context.Context, tx *gorm.DB, merchantIDs []uuid.UUID, exclude []uuid.UUID, limit int) ([]*domain.Reel, error) {
	var results []*domain.Reel
	if len(merchantIDs) == 0 {
		return results, nil
	}
	q := live(r.conn(tx).WithContext(ctx).Model(&domain.Reel{})).
		Where("merchant_id IN ?", merchantIDs)
	q = excluding(q, exclude)
	if err := q.Order("created_at DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reelRepo) ListByProducts(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID, exclude []uuid.UUID, limit int) ([]*domain.Reel, error) {
	var results []*domain.Reel
	if len(productIDs) == 0 {
		return results, nil
	}
	q := live(r.conn(tx).WithContext(ctx).Model(&domain.Reel{})).
		Where("product_id IN ?", productIDs)
	q = excluding(q, exclude)
	if err := q.Order("created_at DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reelRepo) ListCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time, exclude []uuid.UUID, limit int) ([]*domain.Reel, error) {
	var results []*domain.Reel
	q := live(r.conn(tx).WithContext(ctx).Model(&domain.Reel{})).
		Where("created_at >= ?", since)
	q = excluding(q, exclude)
	if err := q.Order("created_at DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reelRepo) ListNewest(ctx context.Context, tx *gorm.DB, exclude []uuid.UUID, limit int) ([]*domain.Reel, error) {
	var results []*domain.Reel
	q := live(r.conn(tx).WithContext(ctx).Model(&domain.Reel{}))
	q = excluding(q, exclude)
	if err := q.Order("created_at DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListAllByMerchant includes tombstoned and inactive reels; merchants see
// their whole catalog with disabling reasons, everyone else goes through
// the visibility-filtered paths.
func (r *reelRepo) ListAllByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, limit, offset int) ([]*domain.Reel, int64, error) {
	var results []*domain.Reel
	var total int64
	base := r.conn(tx).WithContext(ctx).Model(&domain.Reel{}).Where("merchant_id = ?", merchantID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := base.Order("created_at DESC").Limit(limit).Offset(offset).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *reelRepo) UpdateDescription(ctx context.Context, tx *gorm.DB, reelID uuid.UUID, description string) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Reel{}).
		Where("id = ?", reelID).
		Update("description", description).Error
}

func (r *reelRepo) SoftDelete(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Reel{}).
		Where("id = ? AND deleted_at IS NULL", reelID).
		Update("deleted_at", time.Now().UTC()).Error
}

func (r *reelRepo) IncrementViews(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Reel{}).
		Where("id = ?", reelID).
		Update("views_count", gorm.Expr("views_count + 1")).Error
}

func (r *reelRepo) IncrementLikes(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Reel{}).
		Where("id = ?", reelID).
		Update("likes_count", gorm.Expr("likes_count + 1")).Error
}

// DecrementLikes is a no-op when the counter is already zero.
func (r *reelRepo) DecrementLikes(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Reel{}).
		Where("id = ? AND likes_count > 0", reelID).
		Update("likes_count", gorm.Expr("likes_count - 1")).Error
}

func (r *reelRepo) IncrementShares(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Reel{}).
		Where("id = ?", reelID).
		Update("shares_count", gorm.Expr("shares_count + 1")).Error
}
