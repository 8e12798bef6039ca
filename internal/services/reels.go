package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/aoinlabs/reels-backend/internal/clients/redis"
	"github.com/aoinlabs/reels-backend/internal/data/repos/interactions"
	"github.com/aoinlabs/reels-backend/internal/data/repos/reels"
	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/apierr"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

const maxDescriptionLen = 5000

// CreateReelInput carries already-hosted video metadata; upload and
// transcoding happen upstream.
type CreateReelInput struct {
	MerchantID      uuid.UUID
	ProductID       uuid.UUID
	VideoURL        string
	ThumbnailURL    string
	Description     string
	DurationSeconds int
}

// ReelDetail is a single reel with its current visibility verdict and,
// for authenticated callers, whether they liked it.
type ReelDetail struct {
	Reel    *domain.Reel
	Facts   *domain.ProductFacts
	Reasons []domain.ReasonCode
	IsLiked bool
}

// ReelService owns the reel lifecycle. Creation validates the linked
// product through the catalog; deletion is always a tombstone.
type ReelService interface {
	Create(ctx context.Context, input CreateReelInput) (*domain.Reel, error)
	Get(ctx context.Context, reelID uuid.UUID, viewerID *uuid.UUID) (*ReelDetail, error)
	ListPublic(ctx context.Context, limit int) ([]*domain.Reel, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*ReelDetail, int64, error)
	UpdateDescription(ctx context.Context, merchantID, reelID uuid.UUID, description string) (*domain.Reel, error)
	Delete(ctx context.Context, merchantID, reelID uuid.UUID) error
}

type reelService struct {
	log      *logger.Logger
	reelRepo reels.ReelRepo
	likeRepo interactions.LikeRepo
	catalog  ProductCatalog
	cache    redisclient.FeedCache
}

func NewReelService(
	log *logger.Logger,
	reelRepo reels.ReelRepo,
	likeRepo interactions.LikeRepo,
	catalog ProductCatalog,
	cache redisclient.FeedCache,
) ReelService {
	return &reelService{
		log:      log.With("service", "ReelService"),
		reelRepo: reelRepo,
		likeRepo: likeRepo,
		catalog:  catalog,
		cache:    cache,
	}
}

// Create validates the linked product and publishes the reel. A new reel
// can change what every viewer should see next, so the trending and
// recommended caches are invalidated immediately.
func (s *reelService) Create(ctx context.Context, input CreateReelInput) (*domain.Reel, error) {
	if strings.TrimSpace(input.VideoURL) == "" {
		return nil, apierr.Validation("missing_video_url", errors.New("video_url is required"))
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apierr.Validation("missing_description", errors.New("description is required"))
	}
	if len(input.Description) > maxDescriptionLen {
		return nil, apierr.Validation("description_too_long", fmt.Errorf("description exceeds %d characters", maxDescriptionLen))
	}
	if input.DurationSeconds < 0 {
		return nil, apierr.Validation("invalid_duration", errors.New("duration_seconds must not be negative"))
	}

	if err := s.validateProduct(ctx, input.MerchantID, input.ProductID); err != nil {
		return nil, err
	}

	reel := &domain.Reel{
		MerchantID:      input.MerchantID,
		ProductID:       input.ProductID,
		VideoURL:        input.VideoURL,
		ThumbnailURL:    input.ThumbnailURL,
		Description:     input.Description,
		DurationSeconds: input.DurationSeconds,
		IsActive:        true,
	}
	created, err := s.reelRepo.Create(ctx, nil, []*domain.Reel{reel})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateTrending(ctx)
	s.log.Info("reel created", "reel_id", created[0].ID, "merchant_id", input.MerchantID, "product_id", input.ProductID)
	return created[0], nil
}

// validateProduct rejects reel creation against products that could never
// pass the visibility predicate.
func (s *reelService) validateProduct(ctx context.Context, merchantID, productID uuid.UUID) error {
	facts, err := s.catalog.VisibilityFacts(ctx, []uuid.UUID{productID})
	if err != nil {
		return err
	}
	f := facts[productID]
	switch {
	case f == nil || f.DeletedAt != nil:
		return apierr.NotFound("product_not_found", fmt.Errorf("product %s not found", productID))
	case f.MerchantID != merchantID:
		return apierr.Validation("product_merchant_mismatch", fmt.Errorf("product %s belongs to another merchant", productID))
	case f.ApprovalStatus != domain.ApprovalApproved:
		return apierr.Validation("product_not_approved", fmt.Errorf("product %s is not approved", productID))
	case !f.Active:
		return apierr.Validation("product_inactive", fmt.Errorf("product %s is inactive", productID))
	case f.StockQty <= 0:
		return apierr.Validation("product_out_of_stock", fmt.Errorf("product %s is out of stock", productID))
	}
	return nil
}

func (s *reelService) Get(ctx context.Context, reelID uuid.UUID, viewerID *uuid.UUID) (*ReelDetail, error) {
	reel, err := s.reelRepo.GetByID(ctx, nil, reelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("reel_not_found", err)
		}
		return nil, err
	}
	facts, err := s.catalog.VisibilityFacts(ctx, []uuid.UUID{reel.ProductID})
	if err != nil {
		return nil, err
	}
	f := facts[reel.ProductID]
	reasons := domain.DisablingReasons(reel, f)

	detail := &ReelDetail{Reel: reel, Facts: f, Reasons: reasons}
	if viewerID != nil {
		liked, err := s.likeRepo.Exists(ctx, nil, *viewerID, reelID)
		if err != nil {
			return nil, err
		}
		detail.IsLiked = liked
	}
	return detail, nil
}

// ListPublic returns the newest visible reels.
func (s *reelService) ListPublic(ctx context.Context, limit int) ([]*domain.Reel, error) {
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	reelList, err := s.reelRepo.ListNewest(ctx, nil, nil, limit*overFetch)
	if err != nil {
		return nil, err
	}
	productIDs := make([]uuid.UUID, 0, len(reelList))
	for _, r := range reelList {
		productIDs = append(productIDs, r.ProductID)
	}
	facts, err := s.catalog.VisibilityFacts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Reel, 0, limit)
	for _, r := range reelList {
		if len(out) >= limit {
			break
		}
		if domain.IsVisible(r, facts[r.ProductID]) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListByMerchant shows a merchant their full catalog, tombstoned reels
// included, each annotated with its disabling reasons.
func (s *reelService) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*ReelDetail, int64, error) {
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	reelList, total, err := s.reelRepo.ListAllByMerchant(ctx, nil, merchantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	productIDs := make([]uuid.UUID, 0, len(reelList))
	for _, r := range reelList {
		productIDs = append(productIDs, r.ProductID)
	}
	facts, err := s.catalog.VisibilityFacts(ctx, productIDs)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*ReelDetail, 0, len(reelList))
	for _, r := range reelList {
		f := facts[r.ProductID]
		out = append(out, &ReelDetail{
			Reel:    r,
			Facts:   f,
			Reasons: domain.DisablingReasons(r, f),
		})
	}
	return out, total, nil
}

func (s *reelService) UpdateDescription(ctx context.Context, merchantID, reelID uuid.UUID, description string) (*domain.Reel, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apierr.Validation("missing_description", errors.New("description is required"))
	}
	if len(description) > maxDescriptionLen {
		return nil, apierr.Validation("description_too_long", fmt.Errorf("description exceeds %d characters", maxDescriptionLen))
	}
	reel, err := s.ownedReel(ctx, merchantID, reelID)
	if err != nil {
		return nil, err
	}
	if err := s.reelRepo.UpdateDescription(ctx, nil, reelID, description); err != nil {
		return nil, err
	}
	reel.Description = description
	return reel, nil
}

func (s *reelService) Delete(ctx context.Context, merchantID, reelID uuid.UUID) error {
	if _, err := s.ownedReel(ctx, merchantID, reelID); err != nil {
		return err
	}
	if err := s.reelRepo.SoftDelete(ctx, nil, reelID); err != nil {
		return err
	}
	s.cache.InvalidateTrending(ctx)
	s.log.Info("reel deleted", "reel_id", reelID, "merchant_id", merchantID)
	return nil
}

func (s *reelService) ownedReel(ctx context.Context, merchantID, reelID uuid.UUID) (*domain.Reel, error) {
	reel, err := s.reelRepo.GetByID(ctx, nil, reelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("reel_not_found", err)
		}
		return nil, err
	}
	if reel.MerchantID != merchantID {
		return nil, apierr.New(http.StatusForbidden, "not_reel_owner", fmt.Errorf("reel %s is not owned by merchant %s", reelID, merchantID))
	}
	if reel.DeletedAt != nil {
		return nil, apierr.NotFound("reel_not_found", fmt.Errorf("reel %s is deleted", reelID))
	}
	return reel, nil
}
