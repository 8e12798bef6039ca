package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/aoinlabs/reels-backend/internal/domain"
)

// Final score weights. The score orders one page and is then discarded;
// it is never persisted.
const (
	followedWeight       = 10.0
	followedFreshBonus   = 2.0
	categoryWeight       = 5.0
	trendingWeight       = 3.0
	similarUsersWeight   = 2.0
	freshWindowHours     = 24.0
	scoringTrendingHours = 24.0

	// Watch-completion boosts applied to the category score.
	fullWatchBoost    = 0.2
	partialWatchBoost = 0.1
)

// rankContext carries everything the final scorer needs, batch-fetched
// once per feed request: the follow set, decayed category preferences,
// the user's view history for the candidate reels, and which candidates
// came out of the collaborative tier.
type rankContext struct {
	now      time.Time
	followed map[uuid.UUID]bool
	prefs    map[uuid.UUID]float64
	views    map[uuid.UUID]*domain.ReelView
	similar  map[uuid.UUID]bool
}

// categoryScore is the decayed preference for the reel's category, boosted
// when the user watched most of this reel before, capped at 1.0.
func (rc *rankContext) categoryScore(c candidate) float64 {
	if c.facts == nil || c.facts.CategoryID == nil {
		return 0
	}
	score := rc.prefs[*c.facts.CategoryID]

	if view, ok := rc.views[c.reel.ID]; ok && view.ViewDuration != nil && c.reel.DurationSeconds > 0 {
		watched := float64(*view.ViewDuration) / float64(c.reel.DurationSeconds)
		switch {
		case watched >= 0.8:
			score += fullWatchBoost
		case watched >= 0.5:
			score += partialWatchBoost
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// finalScore combines tier membership, category affinity, trending and
// recency into the single scalar the diversity ranker sorts by.
func finalScore(c candidate, rc *rankContext) float64 {
	score := 0.0
	hours := c.reel.AgeHours(rc.now)

	if rc.followed[c.reel.MerchantID] {
		score += followedWeight
		if hours < freshWindowHours {
			score += followedFreshBonus
		}
	}

	score += rc.categoryScore(c) * categoryWeight
	score += TrendingScore(c.reel, rc.now, scoringTrendingHours) * trendingWeight

	if rc.similar[c.reel.ID] {
		score += similarUsersWeight
	}

	if hours >= 0 && hours < freshWindowHours {
		score += 1.0 - hours/freshWindowHours
	}

	return score
}
