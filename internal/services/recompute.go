package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/aoinlabs/reels-backend/internal/data/repos/interactions"
	"github.com/aoinlabs/reels-backend/internal/data/repos/reels"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

// PreferenceRecomputer rebuilds a user's category preferences from their
// stored interaction history. It is an explicitly owned background worker:
// dependencies are injected, Enqueue is non-blocking, and Run exits when
// its context is cancelled.
type PreferenceRecomputer struct {
	log      *logger.Logger
	reelRepo reels.ReelRepo
	likeRepo interactions.LikeRepo
	viewRepo interactions.ViewRepo
	prefRepo interactions.PreferenceRepo
	catalog  ProductCatalog

	queue chan uuid.UUID
}

func NewPreferenceRecomputer(
	log *logger.Logger,
	reelRepo reels.ReelRepo,
	likeRepo interactions.LikeRepo,
	viewRepo interactions.ViewRepo,
	prefRepo interactions.PreferenceRepo,
	catalog ProductCatalog,
) *PreferenceRecomputer {
	return &PreferenceRecomputer{
		log:      log.With("service", "PreferenceRecomputer"),
		reelRepo: reelRepo,
		likeRepo: likeRepo,
		viewRepo: viewRepo,
		prefRepo: prefRepo,
		catalog:  catalog,
		queue:    make(chan uuid.UUID, 256),
	}
}

// Enqueue requests a recomputation for the user. Drops the request when
// the queue is full; the next interaction will enqueue again.
func (p *PreferenceRecomputer) Enqueue(userID uuid.UUID) {
	select {
	case p.queue <- userID:
	default:
		p.log.Debug("recompute queue full, dropping request", "user_id", userID)
	}
}

// Run drains the queue until ctx is cancelled.
func (p *PreferenceRecomputer) Run(ctx context.Context) {
	p.log.Info("preference recomputer started")
	for {
		select {
		case <-ctx.Done():
			p.log.Info("preference recomputer stopped")
			return
		case userID := <-p.queue:
			if err := p.RecomputeUser(ctx, userID); err != nil {
				p.log.Warn("preference recompute failed", "user_id", userID, "error", err)
			}
		}
	}
}

// RecomputeUser rebuilds category scores from likes and retained views:
// likes weigh 0.30, views 0.10, normalized against the strongest category
// so the top affinity lands at 1.0.
func (p *PreferenceRecomputer) RecomputeUser(ctx context.Context, userID uuid.UUID) error {
	likedIDs, err := p.likeRepo.ReelIDsByUser(ctx, nil, userID)
	if err != nil {
		return err
	}
	views, err := p.viewRepo.ListByUser(ctx, nil, userID, 0)
	if err != nil {
		return err
	}

	weights := make(map[uuid.UUID]float64, len(likedIDs)+len(views))
	for _, id := range likedIDs {
		weights[id] += likeDelta
	}
	for _, v := range views {
		weights[v.ReelID] += viewDeltaFull
	}
	if len(weights) == 0 {
		return nil
	}

	reelIDs := make([]uuid.UUID, 0, len(weights))
	for id := range weights {
		reelIDs = append(reelIDs, id)
	}
	reelList, err := p.reelRepo.GetByIDs(ctx, nil, reelIDs)
	if err != nil {
		return err
	}
	productIDs := make([]uuid.UUID, 0, len(reelList))
	productByReel := make(map[uuid.UUID]uuid.UUID, len(reelList))
	for _, r := range reelList {
		productIDs = append(productIDs, r.ProductID)
		productByReel[r.ID] = r.ProductID
	}
	facts, err := p.catalog.VisibilityFacts(ctx, productIDs)
	if err != nil {
		return err
	}

	categoryScores := make(map[uuid.UUID]float64)
	for reelID, weight := range weights {
		f, ok := facts[productByReel[reelID]]
		if !ok || f.CategoryID == nil {
			continue
		}
		categoryScores[*f.CategoryID] += weight
	}
	if len(categoryScores) == 0 {
		return nil
	}

	maxScore := 0.0
	for _, s := range categoryScores {
		if s > maxScore {
			maxScore = s
		}
	}
	for categoryID, s := range categoryScores {
		if err := p.prefRepo.ApplyDelta(ctx, nil, userID, categoryID, s/maxScore); err != nil {
			return err
		}
	}
	return nil
}
