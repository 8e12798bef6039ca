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

// ShareRepo stores per-user shares, unique per (user, reel). Re-sharing
// bumps SharedAt instead of duplicating the row; created tells the caller
// whether the share counter should move.
type ShareRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (created bool, err error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type shareRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShareRepo(db *gorm.DB, baseLog *logger.Logger) ShareRepo {
	return &shareRepo{db: db, log: baseLog.With("repo", "ShareRepo")}
}

func (r *shareRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *shareRepo) Upsert(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	share := &domain.ReelShare{ID: uuid.New(), UserID: userID, ReelID: reelID, SharedAt: now}
	res := r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "reel_id"}},
			DoNothing: true,
		}).
		Create(share)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Model(&domain.ReelShare{}).
		Where("user_id = ? AND reel_id = ?", userID, reelID).
		Update("shared_at", now).Error
	return false, err
}

func (r *shareRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&domain.ReelShare{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
