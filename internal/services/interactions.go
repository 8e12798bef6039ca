package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/aoinlabs/reels-backend/internal/clients/redis"
	"github.com/aoinlabs/reels-backend/internal/data/db"
	"github.com/aoinlabs/reels-backend/internal/data/repos/interactions"
	"github.com/aoinlabs/reels-backend/internal/data/repos/reels"
	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/apierr"
	"github.com/aoinlabs/reels-backend/internal/platform/envutil"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

const defaultViewHistoryCap = 50

// ViewResult reports what a view submission did.
type ViewResult struct {
	CountedView bool
	ViewsCount  int64
}

// InteractionService handles every engagement write as one logical unit:
// the interaction row, the atomic counter, the preference delta and the
// cache invalidation. Duplicate likes and follows surface as conflicts,
// never double-counts.
type InteractionService interface {
	Like(ctx context.Context, userID, reelID uuid.UUID) error
	Unlike(ctx context.Context, userID, reelID uuid.UUID) error
	View(ctx context.Context, userID, reelID uuid.UUID, viewDuration *int) (*ViewResult, error)
	Share(ctx context.Context, userID, reelID uuid.UUID) error
	Follow(ctx context.Context, userID, merchantID uuid.UUID) error
	Unfollow(ctx context.Context, userID, merchantID uuid.UUID) error
	OrderPlaced(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error
}

type interactionService struct {
	log        *logger.Logger
	txm        db.TxManager
	reelRepo   reels.ReelRepo
	likeRepo   interactions.LikeRepo
	viewRepo   interactions.ViewRepo
	shareRepo  interactions.ShareRepo
	followRepo interactions.FollowRepo
	prefs      PreferenceTracker
	catalog    ProductCatalog
	cache      redisclient.FeedCache
	recomputer *PreferenceRecomputer

	viewHistoryCap int
}

func NewInteractionService(
	log *logger.Logger,
	txm db.TxManager,
	reelRepo reels.ReelRepo,
	likeRepo interactions.LikeRepo,
	viewRepo interactions.ViewRepo,
	shareRepo interactions.ShareRepo,
	followRepo interactions.FollowRepo,
	prefs PreferenceTracker,
	catalog ProductCatalog,
	cache redisclient.FeedCache,
	recomputer *PreferenceRecomputer,
) InteractionService {
	return &interactionService{
		log:            log.With("service", "InteractionService"),
		txm:            txm,
		reelRepo:       reelRepo,
		likeRepo:       likeRepo,
		viewRepo:       viewRepo,
		shareRepo:      shareRepo,
		followRepo:     followRepo,
		prefs:          prefs,
		catalog:        catalog,
		cache:          cache,
		recomputer:     recomputer,
		viewHistoryCap: envutil.GetEnvAsInt("VIEW_HISTORY_CAP", defaultViewHistoryCap, log),
	}
}

// visibleReel loads the reel and its catalog facts and rejects anything a
// regular user should not be able to interact with.
func (s *interactionService) visibleReel(ctx context.Context, reelID uuid.UUID) (*domain.Reel, *domain.ProductFacts, error) {
	reel, err := s.reelRepo.GetByID(ctx, nil, reelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierr.NotFound("reel_not_found", err)
		}
		return nil, nil, err
	}
	facts, err := s.catalog.VisibilityFacts(ctx, []uuid.UUID{reel.ProductID})
	if err != nil {
		return nil, nil, err
	}
	f := facts[reel.ProductID]
	if !domain.IsVisible(reel, f) {
		return nil, nil, apierr.NotFound("reel_unavailable", fmt.Errorf("reel %s is not visible", reelID))
	}
	return reel, f, nil
}

func (s *interactionService) Like(ctx context.Context, userID, reelID uuid.UUID) error {
	reel, facts, err := s.visibleReel(ctx, reelID)
	if err != nil {
		return err
	}

	err = s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		created, err := s.likeRepo.Create(ctx, tx, userID, reelID)
		if err != nil {
			return err
		}
		if !created {
			return apierr.Conflict("already_liked", fmt.Errorf("user %s already liked reel %s", userID, reelID))
		}
		return s.reelRepo.IncrementLikes(ctx, tx, reelID)
	})
	if err != nil {
		return err
	}

	if facts.CategoryID != nil {
		if err := s.prefs.RecordLike(ctx, userID, *facts.CategoryID); err != nil {
			s.log.Warn("preference update failed after like", "user_id", userID, "reel_id", reelID, "error", err)
		}
	}
	s.cache.InvalidateUser(ctx, userID)
	s.recomputer.Enqueue(userID)
	s.log.Debug("reel liked", "user_id", userID, "reel_id", reelID, "merchant_id", reel.MerchantID)
	return nil
}

func (s *interactionService) Unlike(ctx context.Context, userID, reelID uuid.UUID) error {
	// Unlike works even on reels that went invisible after the like.
	reel, err := s.reelRepo.GetByID(ctx, nil, reelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("reel_not_found", err)
		}
		return err
	}

	err = s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		removed, err := s.likeRepo.Delete(ctx, tx, userID, reelID)
		if err != nil {
			return err
		}
		if !removed {
			return apierr.Conflict("not_liked", fmt.Errorf("user %s has not liked reel %s", userID, reelID))
		}
		return s.reelRepo.DecrementLikes(ctx, tx, reelID)
	})
	if err != nil {
		return err
	}

	facts, ferr := s.catalog.VisibilityFacts(ctx, []uuid.UUID{reel.ProductID})
	if ferr == nil {
		if f := facts[reel.ProductID]; f != nil && f.CategoryID != nil {
			if err := s.prefs.RecordUnlike(ctx, userID, *f.CategoryID); err != nil {
				s.log.Warn("preference update failed after unlike", "user_id", userID, "reel_id", reelID, "error", err)
			}
		}
	}
	s.cache.InvalidateUser(ctx, userID)
	return nil
}

// View upserts the history row, bumps the counter only for fresh views or
// real rewatches, and evicts history beyond the retention cap. Views do not
// invalidate cached feeds; the short TTL absorbs them.
func (s *interactionService) View(ctx context.Context, userID, reelID uuid.UUID, viewDuration *int) (*ViewResult, error) {
	reel, facts, err := s.visibleReel(ctx, reelID)
	if err != nil {
		return nil, err
	}

	var counted bool
	err = s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		fresh, err := s.viewRepo.Upsert(ctx, tx, userID, reelID, viewDuration)
		if err != nil {
			return err
		}
		counted = fresh
		if fresh {
			if err := s.reelRepo.IncrementViews(ctx, tx, reelID); err != nil {
				return err
			}
		}
		return s.viewRepo.EvictOldest(ctx, tx, userID, s.viewHistoryCap)
	})
	if err != nil {
		return nil, err
	}

	if facts.CategoryID != nil {
		watchPct := 0.0
		if viewDuration != nil && reel.DurationSeconds > 0 {
			watchPct = float64(*viewDuration) / float64(reel.DurationSeconds)
		}
		if err := s.prefs.RecordView(ctx, userID, *facts.CategoryID, watchPct); err != nil {
			s.log.Warn("preference update failed after view", "user_id", userID, "reel_id", reelID, "error", err)
		}
	}

	views := reel.ViewsCount
	if counted {
		views++
	}
	return &ViewResult{CountedView: counted, ViewsCount: views}, nil
}

func (s *interactionService) Share(ctx context.Context, userID, reelID uuid.UUID) error {
	if _, _, err := s.visibleReel(ctx, reelID); err != nil {
		return err
	}
	return s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		created, err := s.shareRepo.Upsert(ctx, tx, userID, reelID)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		return s.reelRepo.IncrementShares(ctx, tx, reelID)
	})
}

func (s *interactionService) Follow(ctx context.Context, userID, merchantID uuid.UUID) error {
	created, err := s.followRepo.Create(ctx, nil, userID, merchantID)
	if err != nil {
		return err
	}
	if !created {
		return apierr.Conflict("already_following", fmt.Errorf("user %s already follows merchant %s", userID, merchantID))
	}
	s.cache.InvalidateUser(ctx, userID)
	return nil
}

func (s *interactionService) Unfollow(ctx context.Context, userID, merchantID uuid.UUID) error {
	removed, err := s.followRepo.Delete(ctx, nil, userID, merchantID)
	if err != nil {
		return err
	}
	if !removed {
		return apierr.Conflict("not_following", fmt.Errorf("user %s does not follow merchant %s", userID, merchantID))
	}
	s.cache.InvalidateUser(ctx, userID)
	return nil
}

// OrderPlaced is the commerce signal: a purchase bumps the preference for
// every distinct category in the order.
func (s *interactionService) OrderPlaced(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return apierr.Validation("empty_order", errors.New("order has no products"))
	}
	facts, err := s.catalog.VisibilityFacts(ctx, productIDs)
	if err != nil {
		return err
	}
	seen := make(map[uuid.UUID]bool)
	for _, f := range facts {
		if f == nil || f.CategoryID == nil || seen[*f.CategoryID] {
			continue
		}
		seen[*f.CategoryID] = true
		if err := s.prefs.RecordOrder(ctx, userID, *f.CategoryID); err != nil {
			return err
		}
	}
	s.cache.InvalidateUser(ctx, userID)
	s.recomputer.Enqueue(userID)
	return nil
}
