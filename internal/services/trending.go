package services

import (
	"sort"
	"time"

	"github.com/aoinlabs/reels-backend/internal/domain"
)

const (
	// Engagement weights for the trending formula.
	trendingLikeWeight  = 2.0
	trendingViewWeight  = 1.0
	trendingShareWeight = 3.0

	// Reels younger than this get the freshness multiplier.
	trendingFreshHours = 6.0
	trendingFreshBoost = 1.5

	// Candidates for trending are always drawn from the last 7 days, no
	// matter how wide the scoring window is.
	trendingCandidateBoxDays = 7
)

// TrendingScore is the time-decayed engagement score for a reel. Zero
// outside the window; otherwise engagement divided by (hours+1)^2 so a
// burst on a fresh reel outranks the same burst on an old one.
func TrendingScore(reel *domain.Reel, now time.Time, windowHours float64) float64 {
	hours := reel.AgeHours(now)
	if hours > windowHours {
		return 0
	}
	if hours < 0 {
		hours = 0
	}
	engagement := float64(reel.LikesCount)*trendingLikeWeight +
		float64(reel.ViewsCount)*trendingViewWeight +
		float64(reel.SharesCount)*trendingShareWeight
	score := engagement / ((hours + 1) * (hours + 1))
	if hours < trendingFreshHours {
		score *= trendingFreshBoost
	}
	return score
}

// sortByTrending orders reels by score descending, newest first on ties.
// Deterministic: no randomness anywhere in the pipeline.
func sortByTrending(reels []*domain.Reel, now time.Time, windowHours float64) []*domain.Reel {
	type scored struct {
		reel  *domain.Reel
		score float64
	}
	items := make([]scored, 0, len(reels))
	for _, r := range reels {
		s := TrendingScore(r, now, windowHours)
		if s > 0 {
			items = append(items, scored{reel: r, score: s})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].reel.CreatedAt.After(items[j].reel.CreatedAt)
	})
	out := make([]*domain.Reel, len(items))
	for i, it := range items {
		out[i] = it.reel
	}
	return out
}
