package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/middleware"
	"github.com/aoinlabs/reels-backend/internal/platform/apierr"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
	"github.com/aoinlabs/reels-backend/internal/services"
)

var errUnauthenticated = apierr.New(http.StatusUnauthorized, "unauthenticated", errors.New("authentication required"))

type ReelHandler struct {
	log   *logger.Logger
	reels services.ReelService
}

func NewReelHandler(log *logger.Logger, reels services.ReelService) *ReelHandler {
	return &ReelHandler{
		log:   log.With("handler", "ReelHandler"),
		reels: reels,
	}
}

type createReelRequest struct {
	ProductID       uuid.UUID `json:"product_id" binding:"required"`
	VideoURL        string    `json:"video_url" binding:"required"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	Description     string    `json:"description" binding:"required"`
	DurationSeconds int       `json:"duration_seconds"`
}

// Create serves POST /api/reels. The authenticated user acts as the
// merchant publishing the reel.
func (h *ReelHandler) Create(c *gin.Context) {
	merchantID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, errUnauthenticated)
		return
	}
	var req createReelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", err))
		return
	}

	reel, err := h.reels.Create(c.Request.Context(), services.CreateReelInput{
		MerchantID:      merchantID,
		ProductID:       req.ProductID,
		VideoURL:        req.VideoURL,
		ThumbnailURL:    req.ThumbnailURL,
		Description:     req.Description,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, BuildReelView(reel, false, nil))
}

type reelDetailResponse struct {
	ReelView
	IsVisible        bool                `json:"is_visible"`
	DisablingReasons []domain.ReasonCode `json:"disabling_reasons,omitempty"`
}

// Get serves GET /api/reels/:id.
func (h *ReelHandler) Get(c *gin.Context) {
	reelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid_reel_id", err))
		return
	}

	detail, err := h.reels.Get(c.Request.Context(), reelID, middleware.OptionalUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, reelDetailResponse{
		ReelView:         BuildReelView(detail.Reel, detail.IsLiked, ParseFieldSet(c.Query("fields"))),
		IsVisible:        len(detail.Reasons) == 0,
		DisablingReasons: detail.Reasons,
	})
}

// List serves GET /api/reels, the public newest-first listing.
func (h *ReelHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	reels, err := h.reels.ListPublic(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"reels": BuildReelViews(reels, nil, ParseFieldSet(c.Query("fields")))})
}

// ListMine serves GET /api/merchants/me/reels: the owner's full catalog
// with per-reel visibility verdicts.
func (h *ReelHandler) ListMine(c *gin.Context) {
	merchantID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, errUnauthenticated)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	details, total, err := h.reels.ListByMerchant(c.Request.Context(), merchantID, limit, offset)
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]reelDetailResponse, 0, len(details))
	for _, d := range details {
		out = append(out, reelDetailResponse{
			ReelView:         BuildReelView(d.Reel, d.IsLiked, nil),
			IsVisible:        len(d.Reasons) == 0,
			DisablingReasons: d.Reasons,
		})
	}
	RespondOK(c, gin.H{"reels": out, "total": total})
}

type updateReelRequest struct {
	Description string `json:"description" binding:"required"`
}

// Update serves PATCH /api/reels/:id.
func (h *ReelHandler) Update(c *gin.Context) {
	merchantID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, errUnauthenticated)
		return
	}
	reelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid_reel_id", err))
		return
	}
	var req updateReelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", err))
		return
	}

	reel, err := h.reels.UpdateDescription(c.Request.Context(), merchantID, reelID, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, BuildReelView(reel, false, nil))
}

// Delete serves DELETE /api/reels/:id.
func (h *ReelHandler) Delete(c *gin.Context) {
	merchantID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, errUnauthenticated)
		return
	}
	reelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid_reel_id", err))
		return
	}
	if err := h.reels.Delete(c.Request.Context(), merchantID, reelID); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
