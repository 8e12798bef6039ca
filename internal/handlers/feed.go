package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/middleware"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
	"github.com/aoinlabs/reels-backend/internal/services"
)

// FeedResponse is one page of any feed surface.
type FeedResponse struct {
	Reels    []ReelView      `json:"reels"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	FeedInfo domain.FeedInfo `json:"feed_info"`
}

type FeedHandler struct {
	log  *logger.Logger
	feed services.FeedService
}

func NewFeedHandler(log *logger.Logger, feed services.FeedService) *FeedHandler {
	return &FeedHandler{
		log:  log.With("handler", "FeedHandler"),
		feed: feed,
	}
}

func paging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

func feedResponse(result *services.FeedResult, fields map[string]bool) FeedResponse {
	return FeedResponse{
		Reels:    BuildReelViews(result.Reels, result.Liked, fields),
		Page:     result.Page,
		PageSize: result.PageSize,
		FeedInfo: result.Info,
	}
}

// GetRecommended serves GET /api/feed.
func (h *FeedHandler) GetRecommended(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, errUnauthenticated)
		return
	}
	page, pageSize := paging(c)

	result, err := h.feed.GetPersonalizedFeed(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		h.log.Warn("personalized feed failed", "user_id", userID, "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, feedResponse(result, ParseFieldSet(c.Query("fields"))))
}

// GetTrending serves GET /api/feed/trending. Anonymous access is fine;
// auth only adds is_liked flags.
func (h *FeedHandler) GetTrending(c *gin.Context) {
	page, pageSize := paging(c)
	window := c.DefaultQuery("time_window", domain.Window24h)

	result, err := h.feed.GetTrendingFeed(c.Request.Context(), middleware.OptionalUserID(c), window, page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, feedResponse(result, ParseFieldSet(c.Query("fields"))))
}

// GetFollowing serves GET /api/feed/following.
func (h *FeedHandler) GetFollowing(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, errUnauthenticated)
		return
	}
	page, pageSize := paging(c)

	result, err := h.feed.GetFollowedFeed(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		h.log.Warn("following feed failed", "user_id", userID, "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, feedResponse(result, ParseFieldSet(c.Query("fields"))))
}
