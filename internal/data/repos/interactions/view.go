package interactions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

// rewatchThreshold: a rewatch only counts as a fresh view when the new
// duration is at least 25% longer than the one already recorded.
const rewatchThreshold = 1.25

// ViewRepo stores per-user view history, one mutable row per (user, reel).
// Upsert reports whether the write should count as a fresh view; the
// counter increment itself belongs to the caller. EvictOldest bounds the
// history without a separate retention job.
type ViewRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID, duration *int) (freshView bool, err error)
	EvictOldest(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keep int) error
	GetByUserAndReels(ctx context.Context, tx *gorm.DB, userID uuid.UUID, reelIDs []uuid.UUID) (map[uuid.UUID]*domain.ReelView, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.ReelView, error)
}

type viewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewViewRepo(db *gorm.DB, baseLog *logger.Logger) ViewRepo {
	return &viewRepo{db: db, log: baseLog.With("repo", "ViewRepo")}
}

func (r *viewRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *viewRepo) Upsert(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID, duration *int) (bool, error) {
	conn := r.conn(tx).WithContext(ctx)
	now := time.Now().UTC()

	var existing domain.ReelView
	err := conn.Where("user_id = ? AND reel_id = ?", userID, reelID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		view := &domain.ReelView{
			ID:           uuid.New(),
			UserID:       userID,
			ReelID:       reelID,
			ViewedAt:     now,
			ViewDuration: duration,
		}
		if err := conn.Create(view).Error; err != nil {
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	}

	fresh := isRewatch(existing.ViewDuration, duration)
	updates := map[string]interface{}{"viewed_at": now}
	if duration != nil {
		updates["view_duration"] = *duration
	}
	if err := conn.Model(&domain.ReelView{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error; err != nil {
		return false, err
	}
	return fresh, nil
}

func isRewatch(old, new *int) bool {
	if new == nil {
		return false
	}
	if old == nil || *old <= 0 {
		return true
	}
	return float64(*new) >= float64(*old)*rewatchThreshold
}

// EvictOldest deletes everything past the keep most recent views for the
// user.
func (r *viewRepo) EvictOldest(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keep int) error {
	if keep <= 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Exec(`
		DELETE FROM reel_view
		WHERE user_id = ?
		  AND id NOT IN (
			SELECT id FROM reel_view
			WHERE user_id = ?
			ORDER BY viewed_at DESC
			LIMIT ?
		  )`, userID, userID, keep).Error
}

func (r *viewRepo) GetByUserAndReels(ctx context.Context, tx *gorm.DB, userID uuid.UUID, reelIDs []uuid.UUID) (map[uuid.UUID]*domain.ReelView, error) {
	out := make(map[uuid.UUID]*domain.ReelView, len(reelIDs))
	if len(reelIDs) == 0 {
		return out, nil
	}
	var views []*domain.ReelView
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND reel_id IN ?", userID, reelIDs).
		Find(&views).Error; err != nil {
		return nil, err
	}
	for _, v := range views {
		out[v.ReelID] = v
	}
	return out, nil
}

func (r *viewRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&domain.ReelView{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *viewRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.ReelView, error) {
	var views []*domain.ReelView
	q := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("viewed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}
