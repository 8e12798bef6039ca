package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/aoinlabs/reels-backend/internal/clients/redis"
	"github.com/aoinlabs/reels-backend/internal/data/repos/users"
	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
)

// fakeStore is a shared in-memory backing for all fake repos, so a test
// can assemble a full scenario (users, reels, facts, interactions) and run
// services against it without a database.
type fakeStore struct {
	mu sync.Mutex

	users    map[uuid.UUID]*domain.User
	reels    map[uuid.UUID]*domain.Reel
	products map[uuid.UUID]*domain.ProductFacts

	likes   map[uuid.UUID]map[uuid.UUID]time.Time // user -> reel -> liked at
	views   map[uuid.UUID]map[uuid.UUID]*domain.ReelView
	shares  map[uuid.UUID]map[uuid.UUID]time.Time
	follows map[uuid.UUID]map[uuid.UUID]time.Time // user -> merchant
	prefs   map[uuid.UUID]map[uuid.UUID]*domain.CategoryPreference
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[uuid.UUID]*domain.User{},
		reels:    map[uuid.UUID]*domain.Reel{},
		products: map[uuid.UUID]*domain.ProductFacts{},
		likes:    map[uuid.UUID]map[uuid.UUID]time.Time{},
		views:    map[uuid.UUID]map[uuid.UUID]*domain.ReelView{},
		shares:   map[uuid.UUID]map[uuid.UUID]time.Time{},
		follows:  map[uuid.UUID]map[uuid.UUID]time.Time{},
		prefs:    map[uuid.UUID]map[uuid.UUID]*domain.CategoryPreference{},
	}
}

func (s *fakeStore) addUser(createdAt time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = &domain.User{ID: id, Email: id.String() + "@example.com", CreatedAt: createdAt}
	return id
}

// addProduct registers an approved, active, in-stock product.
func (s *fakeStore) addProduct(merchantID uuid.UUID, categoryID *uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.products[id] = &domain.ProductFacts{
		ProductID:      id,
		Active:         true,
		ApprovalStatus: domain.ApprovalApproved,
		MerchantID:     merchantID,
		StockQty:       10,
		CategoryID:     categoryID,
	}
	return id
}

func (s *fakeStore) addReel(merchantID, productID uuid.UUID, createdAt time.Time) *domain.Reel {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &domain.Reel{
		ID:              uuid.New(),
		MerchantID:      merchantID,
		ProductID:       productID,
		VideoURL:        "https://cdn.example.com/v.mp4",
		Description:     "reel",
		DurationSeconds: 30,
		IsActive:        true,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	s.reels[r.ID] = r
	return r
}

func (s *fakeStore) addFollow(userID, merchantID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.follows[userID] == nil {
		s.follows[userID] = map[uuid.UUID]time.Time{}
	}
	s.follows[userID][merchantID] = time.Now()
}

func (s *fakeStore) addLike(userID, reelID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.likes[userID] == nil {
		s.likes[userID] = map[uuid.UUID]time.Time{}
	}
	s.likes[userID][reelID] = time.Now()
}

func (s *fakeStore) liveReelsSorted() []*domain.Reel {
	out := make([]*domain.Reel, 0, len(s.reels))
	for _, r := range s.reels {
		if r.DeletedAt == nil && r.IsActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func excludeSet(exclude []uuid.UUID) map[uuid.UUID]bool {
	m := make(map[uuid.UUID]bool, len(exclude))
	for _, id := range exclude {
		m[id] = true
	}
	return m
}

func capLimit(reels []*domain.Reel, limit int) []*domain.Reel {
	if limit > 0 && len(reels) > limit {
		return reels[:limit]
	}
	return reels
}

// fakeReelRepo implements reels.ReelRepo over the store.
type fakeReelRepo struct{ s *fakeStore }

func (f *fakeReelRepo) Create(ctx context.Context, tx *gorm.DB, list []*domain.Reel) ([]*domain.Reel, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, r := range list {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now()
		}
		f.s.reels[r.ID] = r
	}
	return list, nil
}

func (f *fakeReelRepo) GetByID(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) (*domain.Reel, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.reels[reelID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReelRepo) GetByIDs(ctx context.Context, tx *gorm.DB, reelIDs []uuid.UUID) ([]*domain.Reel, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*domain.Reel
	for _, id := range reelIDs {
		if r, ok := f.s.reels[id]; ok {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReelRepo) ListByMerchants(ctx context.Context, tx *gorm.DB, merchantIDs []uuid.UUID, exclude []uuid.UUID, limit int) ([]*domain.Reel, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	want := excludeSet(nil)
	for _, id := range merchantIDs {
		want[id] = true
	}
	skip := excludeSet(exclude)
	var out []*domain.Reel
	for _, r := range f.s.liveReelsSorted() {
		if want[r.MerchantID] && !skip[r.ID] {
			out = append(out, r)
		}
	}
	return capLimit(out, limit), nil
}

func (f *fakeReelRepo) ListByProducts(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID, exclude []uuid.UUID, limit int) ([]*domain.Reel, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	want := excludeSet(productIDs)
	skip := excludeSet(exclude)
	var out []*domain.Reel
	for _, r := range f.s.liveReelsSorted() {
		if want[r.ProductID] && !skip[r.ID] {
			out = append(out, r)
		}
	}
	return capLimit(out, limit), nil
}

func (f *fakeReelRepo) ListCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time, exclude []uuid.UUID, limit int) ([]*domain.Reel, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	skip := excludeSet(exclude)
	var out []*domain.Reel
	for _, r := range f.s.liveReelsSorted() {
		if !r.CreatedAt.Before(since) && !skip[r.ID] {
			out = append(out, r)
		}
	}
	return capLimit(out, limit), nil
}

func (f *fakeReelRepo) ListNewest(ctx context.Context, tx *gorm.DB, exclude []uuid.UUID, limit int) ([]*domain.Reel, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	skip := excludeSet(exclude)
	var out []*domain.Reel
	for _, r := range f.s.liveReelsSorted() {
		if !skip[r.ID] {
			out = append(out, r)
		}
	}
	return capLimit(out, limit), nil
}

func (f *fakeReelRepo) ListAllByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, limit, offset int) ([]*domain.Reel, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var all []*domain.Reel
	for _, r := range f.s.reels {
		if r.MerchantID == merchantID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	return capLimit(all, limit), total, nil
}

func (f *fakeReelRepo) UpdateDescription(ctx context.Context, tx *gorm.DB, reelID uuid.UUID, description string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if r, ok := f.s.reels[reelID]; ok {
		r.Description = description
	}
	return nil
}

func (f *fakeReelRepo) SoftDelete(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if r, ok := f.s.reels[reelID]; ok && r.DeletedAt == nil {
		now := time.Now()
		r.DeletedAt = &now
	}
	return nil
}

func (f *fakeReelRepo) IncrementViews(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if r, ok := f.s.reels[reelID]; ok {
		r.ViewsCount++
	}
	return nil
}

func (f *fakeReelRepo) IncrementLikes(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if r, ok := f.s.reels[reelID]; ok {
		r.LikesCount++
	}
	return nil
}

func (f *fakeReelRepo) DecrementLikes(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if r, ok := f.s.reels[reelID]; ok && r.LikesCount > 0 {
		r.LikesCount--
	}
	return nil
}

func (f *fakeReelRepo) IncrementShares(ctx context.Context, tx *gorm.DB, reelID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if r, ok := f.s.reels[reelID]; ok {
		r.SharesCount++
	}
	return nil
}

// fakeLikeRepo implements interactions.LikeRepo.
type fakeLikeRepo struct{ s *fakeStore }

func (f *fakeLikeRepo) Create(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.likes[userID] == nil {
		f.s.likes[userID] = map[uuid.UUID]time.Time{}
	}
	if _, ok := f.s.likes[userID][reelID]; ok {
		return false, nil
	}
	f.s.likes[userID][reelID] = time.Now()
	return true, nil
}

func (f *fakeLikeRepo) Delete(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.likes[userID][reelID]; !ok {
		return false, nil
	}
	delete(f.s.likes[userID], reelID)
	return true, nil
}

func (f *fakeLikeRepo) Exists(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.likes[userID][reelID]
	return ok, nil
}

func (f *fakeLikeRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.s.likes[userID])), nil
}

func (f *fakeLikeRepo) ReelIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []uuid.UUID
	for id := range f.s.likes[userID] {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeLikeRepo) ExistsForReels(ctx context.Context, tx *gorm.DB, userID uuid.UUID, reelIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make(map[uuid.UUID]bool, len(reelIDs))
	for _, id := range reelIDs {
		if _, ok := f.s.likes[userID][id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeLikeRepo) SimilarUserIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, likedReelIDs []uuid.UUID, minCommon int) ([]uuid.UUID, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	liked := excludeSet(likedReelIDs)
	var out []uuid.UUID
	for other, theirs := range f.s.likes {
		if other == userID {
			continue
		}
		common := 0
		for id := range theirs {
			if liked[id] {
				common++
			}
		}
		if common >= minCommon {
			out = append(out, other)
		}
	}
	return out, nil
}

func (f *fakeLikeRepo) ReelIDsLikedByUsers(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, excludeReelIDs []uuid.UUID) ([]uuid.UUID, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	skip := excludeSet(excludeReelIDs)
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, u := range userIDs {
		for id := range f.s.likes[u] {
			if !skip[id] && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// fakeViewRepo implements interactions.ViewRepo with the same freshness
// rule as the real store: new rows and meaningful rewatches count.
type fakeViewRepo struct{ s *fakeStore }

func (f *fakeViewRepo) Upsert(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID, duration *int) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.views[userID] == nil {
		f.s.views[userID] = map[uuid.UUID]*domain.ReelView{}
	}
	existing, ok := f.s.views[userID][reelID]
	now := time.Now()
	if !ok {
		f.s.views[userID][reelID] = &domain.ReelView{
			ID: uuid.New(), UserID: userID, ReelID: reelID, ViewedAt: now, ViewDuration: duration,
		}
		return true, nil
	}
	fresh := false
	if duration != nil {
		if existing.ViewDuration == nil || *existing.ViewDuration == 0 {
			fresh = true
		} else if float64(*duration) >= float64(*existing.ViewDuration)*1.25 {
			fresh = true
		}
	}
	existing.ViewedAt = now
	if duration != nil {
		existing.ViewDuration = duration
	}
	return fresh, nil
}

func (f *fakeViewRepo) EvictOldest(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keep int) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	views := f.s.views[userID]
	if len(views) <= keep {
		return nil
	}
	all := make([]*domain.ReelView, 0, len(views))
	for _, v := range views {
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ViewedAt.After(all[j].ViewedAt) })
	for _, v := range all[keep:] {
		delete(views, v.ReelID)
	}
	return nil
}

func (f *fakeViewRepo) GetByUserAndReels(ctx context.Context, tx *gorm.DB, userID uuid.UUID, reelIDs []uuid.UUID) (map[uuid.UUID]*domain.ReelView, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[uuid.UUID]*domain.ReelView{}
	for _, id := range reelIDs {
		if v, ok := f.s.views[userID][id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (f *fakeViewRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.s.views[userID])), nil
}

func (f *fakeViewRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.ReelView, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*domain.ReelView
	for _, v := range f.s.views[userID] {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ViewedAt.After(out[j].ViewedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeShareRepo implements interactions.ShareRepo.
type fakeShareRepo struct{ s *fakeStore }

func (f *fakeShareRepo) Upsert(ctx context.Context, tx *gorm.DB, userID, reelID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.shares[userID] == nil {
		f.s.shares[userID] = map[uuid.UUID]time.Time{}
	}
	_, existed := f.s.shares[userID][reelID]
	f.s.shares[userID][reelID] = time.Now()
	return !existed, nil
}

func (f *fakeShareRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.s.shares[userID])), nil
}

// fakeFollowRepo implements interactions.FollowRepo.
type fakeFollowRepo struct{ s *fakeStore }

func (f *fakeFollowRepo) Create(ctx context.Context, tx *gorm.DB, userID, merchantID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.follows[userID] == nil {
		f.s.follows[userID] = map[uuid.UUID]time.Time{}
	}
	if _, ok := f.s.follows[userID][merchantID]; ok {
		return false, nil
	}
	f.s.follows[userID][merchantID] = time.Now()
	return true, nil
}

func (f *fakeFollowRepo) Delete(ctx context.Context, tx *gorm.DB, userID, merchantID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.follows[userID][merchantID]; !ok {
		return false, nil
	}
	delete(f.s.follows[userID], merchantID)
	return true, nil
}

func (f *fakeFollowRepo) Exists(ctx context.Context, tx *gorm.DB, userID, merchantID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.follows[userID][merchantID]
	return ok, nil
}

func (f *fakeFollowRepo) MerchantIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []uuid.UUID
	for id := range f.s.follows[userID] {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeFollowRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.s.follows[userID])), nil
}

// fakePrefRepo implements interactions.PreferenceRepo with the clamp the
// real upsert applies in SQL.
type fakePrefRepo struct{ s *fakeStore }

func (f *fakePrefRepo) ApplyDelta(ctx context.Context, tx *gorm.DB, userID, categoryID uuid.UUID, delta float64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.prefs[userID] == nil {
		f.s.prefs[userID] = map[uuid.UUID]*domain.CategoryPreference{}
	}
	now := time.Now()
	p, ok := f.s.prefs[userID][categoryID]
	if !ok {
		p = &domain.CategoryPreference{ID: uuid.New(), UserID: userID, CategoryID: categoryID}
		f.s.prefs[userID][categoryID] = p
	}
	score := p.PreferenceScore + delta
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	p.PreferenceScore = score
	p.InteractionCount++
	p.LastInteractionAt = &now
	return nil
}

func (f *fakePrefRepo) TopByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.CategoryPreference, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*domain.CategoryPreference
	for _, p := range f.s.prefs[userID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PreferenceScore > out[j].PreferenceScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePrefRepo) GetByUserAndCategories(ctx context.Context, tx *gorm.DB, userID uuid.UUID, categoryIDs []uuid.UUID) ([]*domain.CategoryPreference, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*domain.CategoryPreference
	for _, id := range categoryIDs {
		if p, ok := f.s.prefs[userID][id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeUserRepo implements users.UserRepo.
type fakeUserRepo struct{ s *fakeStore }

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[userID]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, list []*domain.User) ([]*domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range list {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		f.s.users[u.ID] = u
	}
	return list, nil
}

// fakeCatalog implements ProductCatalog.
type fakeCatalog struct{ s *fakeStore }

func (f *fakeCatalog) VisibilityFacts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*domain.ProductFacts, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make(map[uuid.UUID]*domain.ProductFacts, len(productIDs))
	for _, id := range productIDs {
		if p, ok := f.s.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (f *fakeCatalog) ProductIDsByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	want := excludeSet(categoryIDs)
	var out []uuid.UUID
	for id, p := range f.s.products {
		if p.CategoryID != nil && want[*p.CategoryID] {
			out = append(out, id)
		}
	}
	return out, nil
}

// fakeCache records invalidations and stores entries like the real cache,
// minus TTL expiry.
type fakeCache struct {
	mu sync.Mutex

	entries map[string]*redisclient.CachedFeed
	indexes map[string]map[string]bool

	userInvalidations     int
	trendingInvalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: map[string]*redisclient.CachedFeed{},
		indexes: map[string]map[string]bool{},
	}
}

func (c *fakeCache) Get(ctx context.Context, key string) (*redisclient.CachedFeed, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	feed, ok := c.entries[key]
	return feed, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, feed *redisclient.CachedFeed, ttl time.Duration, indexes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = feed
	for _, idx := range indexes {
		if c.indexes[idx] == nil {
			c.indexes[idx] = map[string]bool{}
		}
		c.indexes[idx][key] = true
	}
}

func (c *fakeCache) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userInvalidations++
	for key := range c.indexes[redisclient.UserIndex(userID)] {
		delete(c.entries, key)
	}
	delete(c.indexes, redisclient.UserIndex(userID))
}

func (c *fakeCache) InvalidateTrending(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trendingInvalidations++
	for key := range c.indexes[redisclient.TrendingIndex] {
		delete(c.entries, key)
	}
	delete(c.indexes, redisclient.TrendingIndex)
}

func (c *fakeCache) Close() error { return nil }

// fakeTxManager satisfies db.TxManager by running the function outside any
// transaction; the fakes are already atomic under their mutex.
type fakeTxManager struct{}

func (fakeTxManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger(tb interface{ Fatalf(string, ...any) }) *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("logger: %v", err)
	}
	return log
}
