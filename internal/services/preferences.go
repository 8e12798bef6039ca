package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aoinlabs/reels-backend/internal/data/repos/interactions"
	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

// Preference deltas per interaction. Views scale with how much of the reel
// was actually watched.
const (
	likeDelta   = 0.30
	unlikeDelta = -0.15
	orderDelta  = 0.20

	viewDeltaFull    = 0.10 // >= 80% watched
	viewDeltaPartial = 0.05 // >= 50% watched
	viewDeltaGlance  = 0.02
)

// PreferenceTracker maintains the decaying per-(user, category) affinity
// scores every tracked interaction feeds.
type PreferenceTracker interface {
	RecordView(ctx context.Context, userID, categoryID uuid.UUID, watchPct float64) error
	RecordLike(ctx context.Context, userID, categoryID uuid.UUID) error
	RecordUnlike(ctx context.Context, userID, categoryID uuid.UUID) error
	RecordOrder(ctx context.Context, userID, categoryID uuid.UUID) error
	TopCategories(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CategoryPreference, error)
	DecayedScores(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID, now time.Time) (map[uuid.UUID]float64, error)
}

type preferenceTracker struct {
	log      *logger.Logger
	prefRepo interactions.PreferenceRepo
}

func NewPreferenceTracker(log *logger.Logger, prefRepo interactions.PreferenceRepo) PreferenceTracker {
	return &preferenceTracker{
		log:      log.With("service", "PreferenceTracker"),
		prefRepo: prefRepo,
	}
}

// ViewDelta maps watch completion to a preference delta.
func ViewDelta(watchPct float64) float64 {
	switch {
	case watchPct >= 0.8:
		return viewDeltaFull
	case watchPct >= 0.5:
		return viewDeltaPartial
	default:
		return viewDeltaGlance
	}
}

func (t *preferenceTracker) RecordView(ctx context.Context, userID, categoryID uuid.UUID, watchPct float64) error {
	return t.prefRepo.ApplyDelta(ctx, nil, userID, categoryID, ViewDelta(watchPct))
}

func (t *preferenceTracker) RecordLike(ctx context.Context, userID, categoryID uuid.UUID) error {
	return t.prefRepo.ApplyDelta(ctx, nil, userID, categoryID, likeDelta)
}

func (t *preferenceTracker) RecordUnlike(ctx context.Context, userID, categoryID uuid.UUID) error {
	return t.prefRepo.ApplyDelta(ctx, nil, userID, categoryID, unlikeDelta)
}

func (t *preferenceTracker) RecordOrder(ctx context.Context, userID, categoryID uuid.UUID) error {
	return t.prefRepo.ApplyDelta(ctx, nil, userID, categoryID, orderDelta)
}

func (t *preferenceTracker) TopCategories(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CategoryPreference, error) {
	return t.prefRepo.TopByUser(ctx, nil, userID, limit)
}

// DecayedScores batch-loads the stored preferences for the given
// categories and returns their effective (decayed) scores.
func (t *preferenceTracker) DecayedScores(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID, now time.Time) (map[uuid.UUID]float64, error) {
	out := make(map[uuid.UUID]float64, len(categoryIDs))
	prefs, err := t.prefRepo.GetByUserAndCategories(ctx, nil, userID, categoryIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range prefs {
		out[p.CategoryID] = p.EffectiveScore(now)
	}
	return out, nil
}
