package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

// opTimeout bounds every cache call; the feed path treats a slow cache as
// a miss rather than waiting on it.
const opTimeout = 2 * time.Second

// CachedFeed is what the cache stores: ordered IDs plus metadata, never
// full reel objects, so counter updates can't go stale inside the cache.
type CachedFeed struct {
	ReelIDs  []uuid.UUID     `json:"reel_ids"`
	FeedInfo domain.FeedInfo `json:"feed_info"`
}

// FeedCache is a short-TTL store of computed feed pages. Keys are tracked
// in explicit index sets ("feedidx:user:<id>", "feedidx:trending") so
// invalidation is a direct lookup and delete, never a keyspace scan.
type FeedCache interface {
	Get(ctx context.Context, key string) (*CachedFeed, bool)
	Set(ctx context.Context, key string, feed *CachedFeed, ttl time.Duration, indexes ...string)
	InvalidateUser(ctx context.Context, userID uuid.UUID)
	InvalidateTrending(ctx context.Context)
	Close() error
}

// Cache key and index builders shared by the feed service.
func RecommendedKey(userID uuid.UUID, page, pageSize int) string {
	return fmt.Sprintf("feed:recommended:%s:%d:%d", userID, page, pageSize)
}
func FollowingKey(userID uuid.UUID, page, pageSize int) string {
	return fmt.Sprintf("feed:following:%s:%d:%d", userID, page, pageSize)
}
func TrendingKey(window string, page, pageSize int) string {
	return fmt.Sprintf("feed:trending:%s:%d:%d", window, page, pageSize)
}
func UserIndex(userID uuid.UUID) string { return "feedidx:user:" + userID.String() }

const TrendingIndex = "feedidx:trending"

type feedCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewFeedCache(log *logger.Logger) (FeedCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
		ReadTimeout: opTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &feedCache{
		log: log.With("client", "FeedCache"),
		rdb: rdb,
	}, nil
}

// Get treats every failure as a miss; the caller recomputes.
func (c *feedCache) Get(ctx context.Context, key string) (*CachedFeed, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("cache get failed, treating as miss", "key", key, "error", err)
		}
		return nil, false
	}
	var feed CachedFeed
	if err := json.Unmarshal(raw, &feed); err != nil {
		c.log.Warn("bad cache payload, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return &feed, true
}

func (c *feedCache) Set(ctx context.Context, key string, feed *CachedFeed, ttl time.Duration, indexes ...string) {
	raw, err := json.Marshal(feed)
	if err != nil {
		c.log.Warn("cache marshal failed", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipe := c.rdb.Pipeline()
	pipe.Set(ctx, key, raw, ttl)
	for _, idx := range indexes {
		pipe.SAdd(ctx, idx, key)
		// Index outlives the entries slightly so invalidation still finds
		// keys that just expired.
		pipe.Expire(ctx, idx, ttl+time.Minute)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *feedCache) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	c.invalidateIndex(ctx, UserIndex(userID))
}

func (c *feedCache) InvalidateTrending(ctx context.Context) {
	c.invalidateIndex(ctx, TrendingIndex)
}

func (c *feedCache) invalidateIndex(ctx context.Context, index string) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	keys, err := c.rdb.SMembers(ctx, index).Result()
	if err != nil {
		c.log.Warn("cache index read failed", "index", index, "error", err)
		return
	}
	keys = append(keys, index)
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache invalidation failed", "index", index, "error", err)
	}
}

func (c *feedCache) Close() error {
	return c.rdb.Close()
}

// NoopFeedCache is wired when REDIS_ADDR is unset: every read misses and
// writes are dropped, so the engine always recomputes.
type NoopFeedCache struct{}

func (NoopFeedCache) Get(ctx context.Context, key string) (*CachedFeed, bool) { return nil, false }
func (NoopFeedCache) Set(ctx context.Context, key string, feed *CachedFeed, ttl time.Duration, indexes ...string) {
}
func (NoopFeedCache) InvalidateUser(ctx context.Context, userID uuid.UUID) {}
func (NoopFeedCache) InvalidateTrending(ctx context.Context)               {}
func (NoopFeedCache) Close() error                                         { return nil }
