package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	redisclient "github.com/aoinlabs/reels-backend/internal/clients/redis"
	"github.com/aoinlabs/reels-backend/internal/data/repos/interactions"
	"github.com/aoinlabs/reels-backend/internal/data/repos/reels"
	"github.com/aoinlabs/reels-backend/internal/data/repos/users"
	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/apierr"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

const (
	recommendedTTL = 5 * time.Minute
	trendingTTL    = 10 * time.Minute
	followingTTL   = 5 * time.Minute

	// Cold-start trigger: too few interactions or too new an account.
	coldStartMinInteractions = 3
	coldStartAccountAgeDays  = 7

	// Cold-start tier mix.
	coldStartTrendingShare = 0.7

	defaultPageSize = 20
	maxPageSize     = 50
)

// FeedResult is one page of a feed plus the metadata describing how it was
// assembled. Liked is populated only for authenticated callers.
type FeedResult struct {
	Reels    []*domain.Reel
	Liked    map[uuid.UUID]bool
	Info     domain.FeedInfo
	Page     int
	PageSize int
}

// FeedService assembles the three feed surfaces. Pages are computed from
// the full ranked selection window and cached as ID lists; reels are
// always rehydrated from Postgres so counters stay live.
type FeedService interface {
	GetPersonalizedFeed(ctx context.Context, userID uuid.UUID, page, pageSize int) (*FeedResult, error)
	GetTrendingFeed(ctx context.Context, userID *uuid.UUID, window string, page, pageSize int) (*FeedResult, error)
	GetFollowedFeed(ctx context.Context, userID uuid.UUID, page, pageSize int) (*FeedResult, error)
}

type feedService struct {
	log        *logger.Logger
	retriever  *candidateRetriever
	userRepo   users.UserRepo
	reelRepo   reels.ReelRepo
	likeRepo   interactions.LikeRepo
	viewRepo   interactions.ViewRepo
	followRepo interactions.FollowRepo
	prefs      PreferenceTracker
	cache      redisclient.FeedCache
}

func NewFeedService(
	log *logger.Logger,
	retriever *candidateRetriever,
	userRepo users.UserRepo,
	reelRepo reels.ReelRepo,
	likeRepo interactions.LikeRepo,
	viewRepo interactions.ViewRepo,
	followRepo interactions.FollowRepo,
	prefs PreferenceTracker,
	cache redisclient.FeedCache,
) FeedService {
	return &feedService{
		log:        log.With("service", "FeedService"),
		retriever:  retriever,
		userRepo:   userRepo,
		reelRepo:   reelRepo,
		likeRepo:   likeRepo,
		viewRepo:   viewRepo,
		followRepo: followRepo,
		prefs:      prefs,
		cache:      cache,
	}
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// GetPersonalizedFeed serves the recommended feed: cache lookup first, then
// the full pipeline of parallel retrieval, scoring, diversity selection and
// general fill. Page N is sliced out of a selection window of N pages so
// diversity caps hold across everything the user has scrolled through.
func (s *feedService) GetPersonalizedFeed(ctx context.Context, userID uuid.UUID, page, pageSize int) (*FeedResult, error) {
	page, pageSize = normalizePaging(page, pageSize)
	key := redisclient.RecommendedKey(userID, page, pageSize)

	if cached, ok := s.cache.Get(ctx, key); ok {
		return s.rehydrate(ctx, cached, &userID, page, pageSize)
	}

	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, apierr.NotFound("user_not_found", err)
		}
		return nil, err
	}

	cold, err := s.isColdStart(ctx, user)
	if err != nil {
		return nil, err
	}
	if cold {
		return s.coldStartFeed(ctx, userID, key, page, pageSize)
	}

	windowSize := page * pageSize

	var followed, category, trending, similar []candidate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		followed, err = s.retriever.followedReels(gctx, userID, windowSize, maxPerMerchant, nil)
		return err
	})
	g.Go(func() error {
		var err error
		category, err = s.retriever.categoryReels(gctx, userID, windowSize, nil)
		return err
	})
	g.Go(func() error {
		var err error
		trending, err = s.retriever.trendingReels(gctx, windowSize, scoringTrendingHours, nil)
		return err
	})
	g.Go(func() error {
		var err error
		similar, err = s.retriever.collaborativeReels(gctx, userID, windowSize, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// First tier to produce a reel owns it; order matters for tier
	// attribution, not for ranking.
	pool := mergeCandidates(followed, category, trending, similar)

	rc, err := s.buildRankContext(ctx, userID, pool, similar)
	if err != nil {
		return nil, err
	}

	scored := make([]scoredCandidate, 0, len(pool))
	for _, c := range pool {
		scored = append(scored, scoredCandidate{candidate: c, score: finalScore(c, rc)})
	}
	sortByScore(scored)

	sel := newDiversitySelection(windowSize)
	sel.take(scored)
	if err := s.generalFill(ctx, sel, rc); err != nil {
		return nil, err
	}

	info := domain.FeedInfo{
		FeedType:    domain.FeedTypeRecommended,
		TiersUsed:   tiersUsed(sel.selected),
		GeneratedAt: time.Now().UTC(),
	}
	return s.finishPage(ctx, key, redisclient.UserIndex(userID), recommendedTTL, sel.selected, info, &userID, page, pageSize)
}

// GetTrendingFeed serves the shared trending board for one of the accepted
// windows. Optional auth only affects the is_liked flags.
func (s *feedService) GetTrendingFeed(ctx context.Context, userID *uuid.UUID, window string, page, pageSize int) (*FeedResult, error) {
	page, pageSize = normalizePaging(page, pageSize)
	windowHours, err := trendingWindowHours(window)
	if err != nil {
		return nil, err
	}
	key := redisclient.TrendingKey(window, page, pageSize)

	if cached, ok := s.cache.Get(ctx, key); ok {
		return s.rehydrate(ctx, cached, userID, page, pageSize)
	}

	windowSize := page * pageSize
	cands, err := s.retriever.trendingReels(ctx, windowSize, windowHours, nil)
	if err != nil {
		return nil, err
	}

	info := domain.FeedInfo{
		FeedType:    domain.FeedTypeTrending,
		TimeWindow:  window,
		GeneratedAt: time.Now().UTC(),
	}
	selected := make([]scoredCandidate, 0, len(cands))
	for _, c := range cands {
		selected = append(selected, scoredCandidate{candidate: c})
	}
	return s.finishPage(ctx, key, redisclient.TrendingIndex, trendingTTL, selected, info, userID, page, pageSize)
}

// GetFollowedFeed is chronological and uncapped: everything from followed
// merchants, newest first.
func (s *feedService) GetFollowedFeed(ctx context.Context, userID uuid.UUID, page, pageSize int) (*FeedResult, error) {
	page, pageSize = normalizePaging(page, pageSize)
	key := redisclient.FollowingKey(userID, page, pageSize)

	if cached, ok := s.cache.Get(ctx, key); ok {
		return s.rehydrate(ctx, cached, &userID, page, pageSize)
	}

	windowSize := page * pageSize
	cands, err := s.retriever.followedReels(ctx, userID, windowSize, 0, nil)
	if err != nil {
		return nil, err
	}

	info := domain.FeedInfo{
		FeedType:    domain.FeedTypeFollowing,
		GeneratedAt: time.Now().UTC(),
	}
	selected := make([]scoredCandidate, 0, len(cands))
	for _, c := range cands {
		selected = append(selected, scoredCandidate{candidate: c})
	}
	return s.finishPage(ctx, key, redisclient.UserIndex(userID), followingTTL, selected, info, &userID, page, pageSize)
}

// coldStartFeed fills a page with 70% trending and 30% category reels,
// topped up from the general pool. Diversity caps still apply.
func (s *feedService) coldStartFeed(ctx context.Context, userID uuid.UUID, key string, page, pageSize int) (*FeedResult, error) {
	windowSize := page * pageSize
	trendingWant := int(float64(windowSize)*coldStartTrendingShare + 0.5)
	categoryWant := windowSize - trendingWant

	var trending, category []candidate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trending, err = s.retriever.trendingReels(gctx, trendingWant, scoringTrendingHours, nil)
		return err
	})
	g.Go(func() error {
		var err error
		category, err = s.retriever.categoryReels(gctx, userID, categoryWant, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool := mergeCandidates(trending, category)
	rc := &rankContext{
		now:      time.Now().UTC(),
		followed: map[uuid.UUID]bool{},
		prefs:    map[uuid.UUID]float64{},
		views:    map[uuid.UUID]*domain.ReelView{},
		similar:  map[uuid.UUID]bool{},
	}

	scored := make([]scoredCandidate, 0, len(pool))
	for _, c := range pool {
		scored = append(scored, scoredCandidate{candidate: c, score: finalScore(c, rc)})
	}
	sortByScore(scored)

	sel := newDiversitySelection(windowSize)
	sel.take(scored)
	if err := s.generalFill(ctx, sel, rc); err != nil {
		return nil, err
	}

	info := domain.FeedInfo{
		FeedType:    domain.FeedTypeRecommended,
		FeedVariant: domain.FeedVariantColdStart,
		TiersUsed:   tiersUsed(sel.selected),
		GeneratedAt: rc.now,
	}
	return s.finishPage(ctx, key, redisclient.UserIndex(userID), recommendedTTL, sel.selected, info, &userID, page, pageSize)
}

// generalFill tops up an under-filled selection with the newest visible
// reels, reusing the selection's counters so the caps still hold.
func (s *feedService) generalFill(ctx context.Context, sel *diversitySelection, rc *rankContext) error {
	if sel.full() {
		return nil
	}
	exclude := make([]uuid.UUID, 0, len(sel.selected))
	for _, sc := range sel.selected {
		exclude = append(exclude, sc.reel.ID)
	}
	need := sel.limit - len(sel.selected)
	general, err := s.retriever.generalReels(ctx, need*overFetch, exclude)
	if err != nil {
		return err
	}
	scored := make([]scoredCandidate, 0, len(general))
	for _, c := range general {
		scored = append(scored, scoredCandidate{candidate: c, score: finalScore(c, rc)})
	}
	sortByScore(scored)
	sel.take(scored)
	return nil
}

// isColdStart checks the interaction total and account age.
func (s *feedService) isColdStart(ctx context.Context, user *domain.User) (bool, error) {
	if time.Since(user.CreatedAt) < coldStartAccountAgeDays*24*time.Hour {
		return true, nil
	}
	likes, err := s.likeRepo.CountByUser(ctx, nil, user.ID)
	if err != nil {
		return false, err
	}
	views, err := s.viewRepo.CountByUser(ctx, nil, user.ID)
	if err != nil {
		return false, err
	}
	follows, err := s.followRepo.CountByUser(ctx, nil, user.ID)
	if err != nil {
		return false, err
	}
	return likes+views+follows < coldStartMinInteractions, nil
}

// buildRankContext batch-fetches every per-user signal the scorer needs.
func (s *feedService) buildRankContext(ctx context.Context, userID uuid.UUID, pool []candidate, similar []candidate) (*rankContext, error) {
	now := time.Now().UTC()

	merchantIDs, err := s.followRepo.MerchantIDsByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	followedSet := make(map[uuid.UUID]bool, len(merchantIDs))
	for _, id := range merchantIDs {
		followedSet[id] = true
	}

	categorySet := make(map[uuid.UUID]bool)
	reelIDs := make([]uuid.UUID, 0, len(pool))
	for _, c := range pool {
		reelIDs = append(reelIDs, c.reel.ID)
		if c.facts != nil && c.facts.CategoryID != nil {
			categorySet[*c.facts.CategoryID] = true
		}
	}
	categoryIDs := make([]uuid.UUID, 0, len(categorySet))
	for id := range categorySet {
		categoryIDs = append(categoryIDs, id)
	}
	prefScores, err := s.prefs.DecayedScores(ctx, userID, categoryIDs, now)
	if err != nil {
		return nil, err
	}

	views, err := s.viewRepo.GetByUserAndReels(ctx, nil, userID, reelIDs)
	if err != nil {
		return nil, err
	}

	similarSet := make(map[uuid.UUID]bool, len(similar))
	for _, c := range similar {
		similarSet[c.reel.ID] = true
	}

	return &rankContext{
		now:      now,
		followed: followedSet,
		prefs:    prefScores,
		views:    views,
		similar:  similarSet,
	}, nil
}

// finishPage slices the requested page out of the selection window, writes
// it through to the cache and attaches the caller's like flags.
func (s *feedService) finishPage(ctx context.Context, key, index string, ttl time.Duration, selected []scoredCandidate, info domain.FeedInfo, userID *uuid.UUID, page, pageSize int) (*FeedResult, error) {
	start := (page - 1) * pageSize
	if start > len(selected) {
		start = len(selected)
	}
	end := start + pageSize
	if end > len(selected) {
		end = len(selected)
	}
	window := selected[start:end]

	pageReels := make([]*domain.Reel, 0, len(window))
	pageIDs := make([]uuid.UUID, 0, len(window))
	for _, sc := range window {
		pageReels = append(pageReels, sc.reel)
		pageIDs = append(pageIDs, sc.reel.ID)
	}

	s.cache.Set(ctx, key, &redisclient.CachedFeed{ReelIDs: pageIDs, FeedInfo: info}, ttl, index)

	liked, err := s.likedFlags(ctx, userID, pageIDs)
	if err != nil {
		return nil, err
	}
	return &FeedResult{
		Reels:    pageReels,
		Liked:    liked,
		Info:     info,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// rehydrate turns a cached ID list back into reels, preserving cached
// order and silently dropping anything deleted since the page was built.
func (s *feedService) rehydrate(ctx context.Context, cached *redisclient.CachedFeed, userID *uuid.UUID, page, pageSize int) (*FeedResult, error) {
	reelList, err := s.reelRepo.GetByIDs(ctx, nil, cached.ReelIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Reel, len(reelList))
	for _, r := range reelList {
		byID[r.ID] = r
	}
	ordered := make([]*domain.Reel, 0, len(cached.ReelIDs))
	presentIDs := make([]uuid.UUID, 0, len(cached.ReelIDs))
	for _, id := range cached.ReelIDs {
		if r, ok := byID[id]; ok && r.DeletedAt == nil && r.IsActive {
			ordered = append(ordered, r)
			presentIDs = append(presentIDs, id)
		}
	}

	liked, err := s.likedFlags(ctx, userID, presentIDs)
	if err != nil {
		return nil, err
	}
	return &FeedResult{
		Reels:    ordered,
		Liked:    liked,
		Info:     cached.FeedInfo,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *feedService) likedFlags(ctx context.Context, userID *uuid.UUID, reelIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	if userID == nil || len(reelIDs) == 0 {
		return map[uuid.UUID]bool{}, nil
	}
	return s.likeRepo.ExistsForReels(ctx, nil, *userID, reelIDs)
}

// mergeCandidates deduplicates by reel ID; the earliest tier wins.
func mergeCandidates(tiers ...[]candidate) []candidate {
	seen := make(map[uuid.UUID]bool)
	var out []candidate
	for _, tier := range tiers {
		for _, c := range tier {
			if seen[c.reel.ID] {
				continue
			}
			seen[c.reel.ID] = true
			out = append(out, c)
		}
	}
	return out
}

func tiersUsed(selected []scoredCandidate) []domain.Tier {
	present := make(map[domain.Tier]bool)
	for _, sc := range selected {
		present[sc.tier] = true
	}
	out := make([]domain.Tier, 0, len(present))
	for _, t := range []domain.Tier{domain.TierFollowed, domain.TierCategory, domain.TierTrending, domain.TierSimilarUsers, domain.TierGeneral} {
		if present[t] {
			out = append(out, t)
		}
	}
	return out
}

func trendingWindowHours(window string) (float64, error) {
	switch window {
	case domain.Window24h:
		return 24, nil
	case domain.Window7d:
		return 168, nil
	case domain.Window30d:
		return 720, nil
	default:
		return 0, apierr.Validation("invalid_time_window", fmt.Errorf("unknown time window %q", window))
	}
}
