package interactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

// LikeRepo stores per-user reel likes. Creation is guarded by the
// (user, reel) unique constraint: ON CONFLICT DO NOTHING makes concurrent
// likes race-safe, and the created flag tells the caller whether the
// counter should move.
type LikeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (created bool, err error)
	Delete(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (removed bool, err error)
	Exists(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (bool, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	ReelIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	ExistsForReels(ctx context.Context, tx *gorm.DB, userID uuid.UUID, reelIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	SimilarUserIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, likedReelIDs []uuid.UUID, minCommon int) ([]uuid.UUID, error)
	ReelIDsLikedByUsers(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, excludeReelIDs []uuid.UUID) ([]uuid.UUID, error)
}

type likeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLikeRepo(db *gorm.DB, baseLog *logger.Logger) LikeRepo {
	return &likeRepo{db: db, log: baseLog.With("repo", "LikeRepo")}
}

func (r *likeRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *likeRepo) Create(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (bool, error) {
	like := &domain.ReelLike{ID: uuid.New(), UserID: userID, ReelID: reelID}
	res := r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "reel_id"}},
			DoNothing: true,
		}).
		Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepo) Delete(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND reel_id = ?", userID, reelID).
		Delete(&domain.ReelLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepo) Exists(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (bool, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&domain.ReelLike{}).
		Where("user_id = ? AND reel_id = ?", userID, reelID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&domain.ReelLike{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *likeRepo) ReelIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(tx).WithContext(ctx).
		Model(&domain.ReelLike{}).
		Where("user_id = ?", userID).
		Pluck("reel_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *likeRepo) ExistsForReels(ctx context.Context, tx *gorm.DB, userID uuid.UUID, reelIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool, len(reelIDs))
	if len(reelIDs) == 0 {
		return liked, nil
	}
	var ids []uuid.UUID
	if err := r.conn(tx).WithContext(ctx).
		Model(&domain.ReelLike{}).
		Where("user_id = ? AND reel_id IN ?", userID, reelIDs).
		Pluck("reel_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// SimilarUserIDs finds users who share at least minCommon liked reels with
// the target user. likedReelIDs is the target's like set, passed in so the
// caller fetches it once per feed request.
func (r *likeRepo) SimilarUserIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, likedReelIDs []uuid.UUID, minCommon int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(likedReelIDs) == 0 {
		return ids, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Model(&domain.ReelLike{}).
		Select("user_id").
		Where("reel_id IN ? AND user_id <> ?", likedReelIDs, userID).
		Group("user_id").
		Having("COUNT(reel_id) >= ?", minCommon).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *likeRepo) ReelIDsLikedByUsers(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, excludeReelIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(userIDs) == 0 {
		return ids, nil
	}
	q := r.conn(tx).WithContext(ctx).
		Model(&domain.ReelLike{}).
		Distinct("reel_id").
		Where("user_id IN ?", userIDs)
	if len(excludeReelIDs) > 0 {
		q = q.Where("reel_id NOT IN ?", excludeReelIDs)
	}
	if err := q.Pluck("reel_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
