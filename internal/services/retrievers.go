package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aoinlabs/reels-backend/internal/data/repos/interactions"
	"github.com/aoinlabs/reels-backend/internal/data/repos/reels"
	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

const (
	// Top categories considered by the category tier.
	categoryTierTopN = 5

	// Minimum overlap for the collaborative tier: similar users share at
	// least this many liked reels, and the target needs as many total
	// likes before the tier produces anything.
	minCommonLikes = 3

	// Over-fetch factor so visibility filtering and diversity caps still
	// leave enough candidates to fill a page.
	overFetch = 2
)

// candidate is one retrieved reel with its freshly fetched catalog facts
// and the tier that produced it.
type candidate struct {
	reel  *domain.Reel
	facts *domain.ProductFacts
	tier  domain.Tier
}

// candidateRetriever implements the five retrieval tiers. Every tier
// returns deduplicated, visibility-filtered candidates; product facts are
// loaded with one batch call per tier, never per reel.
type candidateRetriever struct {
	log        *logger.Logger
	reelRepo   reels.ReelRepo
	likeRepo   interactions.LikeRepo
	followRepo interactions.FollowRepo
	prefs      PreferenceTracker
	catalog    ProductCatalog
}

func NewCandidateRetriever(
	log *logger.Logger,
	reelRepo reels.ReelRepo,
	likeRepo interactions.LikeRepo,
	followRepo interactions.FollowRepo,
	prefs PreferenceTracker,
	catalog ProductCatalog,
) *candidateRetriever {
	return &candidateRetriever{
		log:        log.With("service", "CandidateRetriever"),
		reelRepo:   reelRepo,
		likeRepo:   likeRepo,
		followRepo: followRepo,
		prefs:      prefs,
		catalog:    catalog,
	}
}

// visibleCandidates batch-fetches product facts for the reels and keeps
// only the visible ones, preserving input order.
func (cr *candidateRetriever) visibleCandidates(ctx context.Context, reelList []*domain.Reel, tier domain.Tier) ([]candidate, error) {
	if len(reelList) == 0 {
		return nil, nil
	}
	productIDs := make([]uuid.UUID, 0, len(reelList))
	for _, r := range reelList {
		productIDs = append(productIDs, r.ProductID)
	}
	facts, err := cr.catalog.VisibilityFacts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	out := make([]candidate, 0, len(reelList))
	for _, r := range reelList {
		f := facts[r.ProductID]
		if !domain.IsVisible(r, f) {
			continue
		}
		out = append(out, candidate{reel: r, facts: f, tier: tier})
	}
	return out, nil
}

// followedReels returns reels from merchants the user follows, newest
// first. capPerMerchant > 0 applies the merchant diversity cap during
// selection; the plain following feed passes 0 and keeps everything.
func (cr *candidateRetriever) followedReels(ctx context.Context, userID uuid.UUID, limit, capPerMerchant int, exclude []uuid.UUID) ([]candidate, error) {
	merchantIDs, err := cr.followRepo.MerchantIDsByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if len(merchantIDs) == 0 {
		return nil, nil
	}
	reelList, err := cr.reelRepo.ListByMerchants(ctx, nil, merchantIDs, exclude, limit*overFetch)
	if err != nil {
		return nil, err
	}
	cands, err := cr.visibleCandidates(ctx, reelList, domain.TierFollowed)
	if err != nil {
		return nil, err
	}
	if capPerMerchant <= 0 {
		if len(cands) > limit {
			cands = cands[:limit]
		}
		return cands, nil
	}

	perMerchant := make(map[uuid.UUID]int)
	selected := make([]candidate, 0, limit)
	for _, c := range cands {
		if len(selected) >= limit {
			break
		}
		if perMerchant[c.reel.MerchantID] >= capPerMerchant {
			continue
		}
		perMerchant[c.reel.MerchantID]++
		selected = append(selected, c)
	}
	return selected, nil
}

// categoryReels returns visible reels from the user's top categories by
// decayed preference score, ordered preference-first then recency, capped
// per category during selection.
func (cr *candidateRetriever) categoryReels(ctx context.Context, userID uuid.UUID, limit int, exclude []uuid.UUID) ([]candidate, error) {
	now := time.Now().UTC()
	prefs, err := cr.prefs.TopCategories(ctx, userID, categoryTierTopN)
	if err != nil {
		return nil, err
	}
	if len(prefs) == 0 {
		return nil, nil
	}
	categoryIDs := make([]uuid.UUID, 0, len(prefs))
	scoreByCategory := make(map[uuid.UUID]float64, len(prefs))
	for _, p := range prefs {
		categoryIDs = append(categoryIDs, p.CategoryID)
		scoreByCategory[p.CategoryID] = p.EffectiveScore(now)
	}

	productIDs, err := cr.catalog.ProductIDsByCategories(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	reelList, err := cr.reelRepo.ListByProducts(ctx, nil, productIDs, exclude, limit*overFetch)
	if err != nil {
		return nil, err
	}
	cands, err := cr.visibleCandidates(ctx, reelList, domain.TierCategory)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(cands, func(i, j int) bool {
		si, sj := 0.0, 0.0
		if cands[i].facts.CategoryID != nil {
			si = scoreByCategory[*cands[i].facts.CategoryID]
		}
		if cands[j].facts.CategoryID != nil {
			sj = scoreByCategory[*cands[j].facts.CategoryID]
		}
		if si != sj {
			return si > sj
		}
		return cands[i].reel.CreatedAt.After(cands[j].reel.CreatedAt)
	})

	perCategory := make(map[uuid.UUID]int)
	selected := make([]candidate, 0, limit)
	for _, c := range cands {
		if len(selected) >= limit {
			break
		}
		if c.facts.CategoryID != nil {
			if perCategory[*c.facts.CategoryID] >= maxPerCategory {
				continue
			}
			perCategory[*c.facts.CategoryID]++
		}
		selected = append(selected, c)
	}
	return selected, nil
}

// trendingReels scores the last week's visible reels and returns the top
// of the board for the given scoring window.
func (cr *candidateRetriever) trendingReels(ctx context.Context, limit int, windowHours float64, exclude []uuid.UUID) ([]candidate, error) {
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -trendingCandidateBoxDays)
	reelList, err := cr.reelRepo.ListCreatedSince(ctx, nil, cutoff, exclude, limit*overFetch*overFetch)
	if err != nil {
		return nil, err
	}
	cands, err := cr.visibleCandidates(ctx, reelList, domain.TierTrending)
	if err != nil {
		return nil, err
	}
	visible := make([]*domain.Reel, 0, len(cands))
	factsByReel := make(map[uuid.UUID]*domain.ProductFacts, len(cands))
	for _, c := range cands {
		visible = append(visible, c.reel)
		factsByReel[c.reel.ID] = c.facts
	}

	ranked := sortByTrending(visible, now, windowHours)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]candidate, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, candidate{reel: r, facts: factsByReel[r.ID], tier: domain.TierTrending})
	}
	return out, nil
}

// collaborativeReels finds reels liked by users with overlapping taste
// that the target user has not liked yet, ordered by like count then
// recency. Users with fewer than three likes have too little signal and
// get nothing from this tier.
func (cr *candidateRetriever) collaborativeReels(ctx context.Context, userID uuid.UUID, limit int, exclude []uuid.UUID) ([]candidate, error) {
	likedIDs, err := cr.likeRepo.ReelIDsByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if len(likedIDs) < minCommonLikes {
		return nil, nil
	}

	similarUsers, err := cr.likeRepo.SimilarUserIDs(ctx, nil, userID, likedIDs, minCommonLikes)
	if err != nil {
		return nil, err
	}
	if len(similarUsers) == 0 {
		return nil, nil
	}

	excludeAll := append(append([]uuid.UUID{}, likedIDs...), exclude...)
	reelIDs, err := cr.likeRepo.ReelIDsLikedByUsers(ctx, nil, similarUsers, excludeAll)
	if err != nil {
		return nil, err
	}
	reelList, err := cr.reelRepo.GetByIDs(ctx, nil, reelIDs)
	if err != nil {
		return nil, err
	}
	cands, err := cr.visibleCandidates(ctx, reelList, domain.TierSimilarUsers)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].reel.LikesCount != cands[j].reel.LikesCount {
			return cands[i].reel.LikesCount > cands[j].reel.LikesCount
		}
		return cands[i].reel.CreatedAt.After(cands[j].reel.CreatedAt)
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	return cands, nil
}

// generalReels is the fallback tier: newest visible reels globally.
func (cr *candidateRetriever) generalReels(ctx context.Context, limit int, exclude []uuid.UUID) ([]candidate, error) {
	reelList, err := cr.reelRepo.ListNewest(ctx, nil, exclude, limit*overFetch)
	if err != nil {
		return nil, err
	}
	cands, err := cr.visibleCandidates(ctx, reelList, domain.TierGeneral)
	if err != nil {
		return nil, err
	}
	if len(cands) > limit {
		cands = cands[:limit]
	}
	return cands, nil
}
