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

// PreferenceRepo maintains per-(user, category) affinity rows. ApplyDelta
// is a single upsert: the row is created with the delta if absent,
// otherwise the score is adjusted in place, clamped to [0, 1] in SQL so
// concurrent updates cannot push it out of range.
type PreferenceRepo interface {
	ApplyDelta(ctx context.Context, tx *gorm.DB, userID, categoryID uuid.UUID, delta float64) error
	TopByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.CategoryPreference, error)
	GetByUserAndCategories(ctx context.Context, tx *gorm.DB, userID uuid.UUID, categoryIDs []uuid.UUID) ([]*domain.CategoryPreference, error)
}

type preferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return &preferenceRepo{db: db, log: baseLog.With("repo", "PreferenceRepo")}
}

func (r *preferenceRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *preferenceRepo) ApplyDelta(ctx context.Context, tx *gorm.DB, userID, categoryID uuid.UUID, delta float64) error {
	now := time.Now().UTC()
	clamped := delta
	if clamped > 1.0 {
		clamped = 1.0
	}
	if clamped < 0 {
		clamped = 0
	}
	pref := &domain.CategoryPreference{
		ID:                uuid.New(),
		UserID:            userID,
		CategoryID:        categoryID,
		PreferenceScore:   clamped,
		InteractionCount:  1,
		LastInteractionAt: &now,
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"preference_score":    gorm.Expr("GREATEST(0.0, LEAST(1.0, category_preference.preference_score + ?))", delta),
				"interaction_count":   gorm.Expr("category_preference.interaction_count + 1"),
				"last_interaction_at": now,
				"updated_at":          now,
			}),
		}).
		Create(pref).Error
}

func (r *preferenceRepo) TopByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.CategoryPreference, error) {
	var prefs []*domain.CategoryPreference
	q := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("preference_score DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}

func (r *preferenceRepo) GetByUserAndCategories(ctx context.Context, tx *gorm.DB, userID uuid.UUID, categoryIDs []uuid.UUID) ([]*domain.CategoryPreference, error) {
	var prefs []*domain.CategoryPreference
	if len(categoryIDs) == 0 {
		return prefs, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND category_id IN ?", userID, categoryIDs).
		Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}
