package handlers

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aoinlabs/reels-backend/internal/domain"
)

// ReelView is the wire shape of one reel. The field set is fixed; the
// fields= query parameter can only narrow it, never extend it, so the
// projection is a set intersection against known JSON keys.
type ReelView struct {
	ID              *uuid.UUID `json:"id,omitempty"`
	MerchantID      *uuid.UUID `json:"merchant_id,omitempty"`
	ProductID       *uuid.UUID `json:"product_id,omitempty"`
	VideoURL        *string    `json:"video_url,omitempty"`
	ThumbnailURL    *string    `json:"thumbnail_url,omitempty"`
	Description     *string    `json:"description,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	ViewsCount      *int64     `json:"views_count,omitempty"`
	LikesCount      *int64     `json:"likes_count,omitempty"`
	SharesCount     *int64     `json:"shares_count,omitempty"`
	IsLiked         *bool      `json:"is_liked,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

// reelViewFields is the closed set of projectable keys.
var reelViewFields = map[string]bool{
	"id":               true,
	"merchant_id":      true,
	"product_id":       true,
	"video_url":        true,
	"thumbnail_url":    true,
	"description":      true,
	"duration_seconds": true,
	"views_count":      true,
	"likes_count":      true,
	"shares_count":     true,
	"is_liked":         true,
	"created_at":       true,
}

// ParseFieldSet parses a comma-separated fields parameter into the subset
// of known keys. Unknown names are dropped silently; an empty result means
// no projection and the full view is returned.
func ParseFieldSet(raw string) map[string]bool {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	out := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(strings.ToLower(part))
		if reelViewFields[name] {
			out[name] = true
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func want(fields map[string]bool, name string) bool {
	return fields == nil || fields[name]
}

// BuildReelView projects a reel onto the wire shape.
func BuildReelView(reel *domain.Reel, isLiked bool, fields map[string]bool) ReelView {
	var view ReelView
	if want(fields, "id") {
		id := reel.ID
		view.ID = &id
	}
	if want(fields, "merchant_id") {
		id := reel.MerchantID
		view.MerchantID = &id
	}
	if want(fields, "product_id") {
		id := reel.ProductID
		view.ProductID = &id
	}
	if want(fields, "video_url") {
		v := reel.VideoURL
		view.VideoURL = &v
	}
	if want(fields, "thumbnail_url") {
		v := reel.ThumbnailURL
		view.ThumbnailURL = &v
	}
	if want(fields, "description") {
		v := reel.Description
		view.Description = &v
	}
	if want(fields, "duration_seconds") {
		v := reel.DurationSeconds
		view.DurationSeconds = &v
	}
	if want(fields, "views_count") {
		v := reel.ViewsCount
		view.ViewsCount = &v
	}
	if want(fields, "likes_count") {
		v := reel.LikesCount
		view.LikesCount = &v
	}
	if want(fields, "shares_count") {
		v := reel.SharesCount
		view.SharesCount = &v
	}
	if want(fields, "is_liked") {
		v := isLiked
		view.IsLiked = &v
	}
	if want(fields, "created_at") {
		v := reel.CreatedAt
		view.CreatedAt = &v
	}
	return view
}

// BuildReelViews projects a page of reels, looking liked flags up per reel.
func BuildReelViews(reels []*domain.Reel, liked map[uuid.UUID]bool, fields map[string]bool) []ReelView {
	out := make([]ReelView, 0, len(reels))
	for _, r := range reels {
		out = append(out, BuildReelView(r, liked[r.ID], fields))
	}
	return out
}
