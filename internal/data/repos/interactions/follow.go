package interactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

// FollowRepo stores user → merchant follows, unique per pair.
type FollowRepo interface {
	Create(ctx context.Context, tx *gorm.DB, userID, merchantID uuid.UUID) (created bool, err error)
	Delete(ctx context.Context, tx *gorm.DB, userID, merchantID uuid.UUID) (removed bool, err error)
	Exists(ctx context.Context, tx *gorm.DB, userID, merchantID uuid.UUID) (bool, error)
	MerchantIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type followRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFollowRepo(db *gorm.DB, baseLog *logger.Logger) FollowRepo {
	return &followRepo{db: db, log: baseLog.With("repo", "FollowRepo")}
}

func (r *followRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *followRepo) Create(ctx context.Context, tx *gorm.DB, userID, merchantID uuid.UUID) (bool, error) {
	follow := &domain.MerchantFollow{
		ID:         uuid.New(),
		UserID:     userID,
		MerchantID: merchantID,
		FollowedAt: time.Now().UTC(),
	}
	res := r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "merchant_id"}},
			DoNothing: true,
		}).
		Create(follow)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepo) Delete(ctx context.Context, tx *gorm.DB, userID, merchantID uuid.UUID) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND merchant_id = ?", userID, merchantID).
		Delete(&domain.MerchantFollow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepo) Exists(ctx context.Context, tx *gorm.DB, userID, merchantID uuid.UUID) (bool, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&domain.MerchantFollow{}).
		Where("user_id = ? AND merchant_id = ?", userID, merchantID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *followRepo) MerchantIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(tx).WithContext(ctx).
		Model(&domain.MerchantFollow{}).
		Where("user_id = ?", userID).
		Order("followed_at DESC").
		Pluck("merchant_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *followRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&domain.MerchantFollow{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
