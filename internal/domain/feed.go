package domain

import "time"

// Tier names one candidate-retrieval strategy. feed_info reports the subset
// that contributed to a page.
type Tier string

const (
	TierFollowed     Tier = "followed"
	TierCategory     Tier = "category"
	TierTrending     Tier = "trending"
	TierSimilarUsers Tier = "similar_users"
	TierGeneral      Tier = "general"
)

// Feed types and variants reported in feed_info.
const (
	FeedTypeRecommended = "recommended"
	FeedTypeTrending    = "trending"
	FeedTypeFollowing   = "following"

	FeedVariantColdStart = "cold_start"
)

// TrendingWindow labels accepted by the trending feed.
const (
	Window24h = "24h"
	Window7d  = "7d"
	Window30d = "30d"
)

// FeedInfo is the observability metadata returned with every feed page.
type FeedInfo struct {
	FeedType    string    `json:"feed_type"`
	FeedVariant string    `json:"feed_variant,omitempty"`
	TiersUsed   []Tier    `json:"tiers_used,omitempty"`
	TimeWindow  string    `json:"time_window,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
