package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aoinlabs/reels-backend/internal/middleware"
	"github.com/aoinlabs/reels-backend/internal/platform/apierr"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
	"github.com/aoinlabs/reels-backend/internal/services"
)

type InteractionHandler struct {
	log   *logger.Logger
	inter services.InteractionService
}

func NewInteractionHandler(log *logger.Logger, inter services.InteractionService) *InteractionHandler {
	return &InteractionHandler{
		log:   log.With("handler", "InteractionHandler"),
		inter: inter,
	}
}

func (h *InteractionHandler) callerAndTarget(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, errUnauthenticated
	}
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apierr.Validation("invalid_id", err)
	}
	return userID, targetID, nil
}

// Like serves POST /api/reels/:id/like.
func (h *InteractionHandler) Like(c *gin.Context) {
	userID, reelID, err := h.callerAndTarget(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.inter.Like(c.Request.Context(), userID, reelID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"liked": true})
}

// Unlike serves DELETE /api/reels/:id/like.
func (h *InteractionHandler) Unlike(c *gin.Context) {
	userID, reelID, err := h.callerAndTarget(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.inter.Unlike(c.Request.Context(), userID, reelID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"liked": false})
}

type viewRequest struct {
	ViewDuration *int `json:"view_duration"`
}

// View serves POST /api/reels/:id/view.
func (h *InteractionHandler) View(c *gin.Context) {
	userID, reelID, err := h.callerAndTarget(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req viewRequest
	// Body is optional; a bare POST records a durationless view.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, apierr.Validation("invalid_body", err))
			return
		}
	}
	if req.ViewDuration != nil && *req.ViewDuration < 0 {
		RespondError(c, apierr.Validation("invalid_view_duration", nil))
		return
	}

	result, err := h.inter.View(c.Request.Context(), userID, reelID, req.ViewDuration)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"counted_view": result.CountedView, "views_count": result.ViewsCount})
}

// Share serves POST /api/reels/:id/share.
func (h *InteractionHandler) Share(c *gin.Context) {
	userID, reelID, err := h.callerAndTarget(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.inter.Share(c.Request.Context(), userID, reelID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"shared": true})
}

// Follow serves POST /api/merchants/:id/follow.
func (h *InteractionHandler) Follow(c *gin.Context) {
	userID, merchantID, err := h.callerAndTarget(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.inter.Follow(c.Request.Context(), userID, merchantID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"following": true})
}

// Unfollow serves DELETE /api/merchants/:id/follow.
func (h *InteractionHandler) Unfollow(c *gin.Context) {
	userID, merchantID, err := h.callerAndTarget(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.inter.Unfollow(c.Request.Context(), userID, merchantID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"following": false})
}

type orderSignalRequest struct {
	UserID     uuid.UUID   `json:"user_id" binding:"required"`
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required"`
}

// OrderSignal serves POST /api/signals/order, the order-completed hook
// from the commerce side.
func (h *InteractionHandler) OrderSignal(c *gin.Context) {
	var req orderSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", err))
		return
	}
	if err := h.inter.OrderPlaced(c.Request.Context(), req.UserID, req.ProductIDs); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
