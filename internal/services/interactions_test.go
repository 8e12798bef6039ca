package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aoinlabs/reels-backend/internal/domain"
	"github.com/aoinlabs/reels-backend/internal/platform/apierr"
)

func expectAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %d/%s error, got nil", status, code)
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apierr.Error, got %T: %v", err, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("expected %d/%s, got %d/%s", status, code, ae.Status, ae.Code)
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	fx := newFeedFixture(t)
	ctx := context.Background()

	userID := fx.store.addUser(time.Now().Add(-30 * 24 * time.Hour))
	merchant := uuid.New()
	category := uuid.New()
	product := fx.store.addProduct(merchant, &category)
	reel := fx.store.addReel(merchant, product, time.Now().Add(-time.Hour))

	if err := fx.inter.Like(ctx, userID, reel.ID); err != nil {
		t.Fatalf("first like: %v", err)
	}
	if fx.store.reels[reel.ID].LikesCount != 1 {
		t.Fatalf("likes_count after first like: got %d want 1", fx.store.reels[reel.ID].LikesCount)
	}

	err := fx.inter.Like(ctx, userID, reel.ID)
	expectAPIError(t, err, http.StatusConflict, "already_liked")
	if fx.store.reels[reel.ID].LikesCount != 1 {
		t.Fatalf("duplicate like must not double-count, got %d", fx.store.reels[reel.ID].LikesCount)
	}

	// The like also bumped the category preference.
	pref := fx.store.prefs[userID][category]
	if pref == nil || pref.PreferenceScore != likeDelta {
		t.Fatalf("expected preference %f after like, got %+v", likeDelta, pref)
	}
}

func TestLikeRejectsHiddenReel(t *testing.T) {
	fx := newFeedFixture(t)
	ctx := context.Background()

	userID := fx.store.addUser(time.Now().Add(-30 * 24 * time.Hour))
	merchant := uuid.New()
	product := fx.store.addProduct(merchant, nil)
	fx.store.products[product].ApprovalStatus = domain.ApprovalPending
	reel := fx.store.addReel(merchant, product, time.Now().Add(-time.Hour))

	err := fx.inter.Like(ctx, userID, reel.ID)
	expectAPIError(t, err, http.StatusNotFound, "reel_unavailable")
}

func TestLikeUnknownReel(t *testing.T) {
	fx := newFeedFixture(t)
	err := fx.inter.Like(context.Background(), uuid.New(), uuid.New())
	expectAPIError(t, err, http.StatusNotFound, "reel_not_found")
}

func TestUnlikeWithoutLike(t *testing.T) {
	fx := newFeedFixture(t)
	ctx := context.Background()

	userID := fx.store.addUser(time.Now().Add(-30 * 24 * time.Hour))
	merchant := uuid.New()
	product := fx.store.addProduct(merchant, nil)
	reel := fx.store.addReel(merchant, product, time.Now().Add(-time.Hour))

	err := fx.inter.Unlike(ctx, userID, reel.ID)
	expectAPIError(t, err, http.StatusConflict, "not_liked")
	if fx.store.reels[reel.ID].LikesCount != 0 {
		t.Fatalf("likes_count must stay at zero, got %d", fx.store.reels[reel.ID].LikesCount)
	}
}

func TestLikeUnlikeRoundTrip(t *testing.T) {
	fx := newFeedFixture(t)
	ctx := context.Background()

	userID := fx.store.addUser(time.Now().Add(-30 * 24 * time.Hour))
	merchant := uuid.New()
	category := uuid.New()
	product := fx.store.addProduct(merchant, &category)
	reel := fx.store.addReel(merchant, product, time.Now().Add(-time.Hour))

	if err := fx.inter.Like(ctx, userID, reel.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := fx.inter.Unlike(ctx, userID, reel.ID); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if got := fx.store.reels[reel.ID].LikesCount; got != 0 {
		t.Fatalf("likes_count after round trip: got %d want 0", got)
	}
	// +0.30 then -0.15 nets out to +0.15.
	pref := fx.store.prefs[userID][category]
	if pref == nil || !approxEqual(pref.PreferenceScore, likeDelta+unlikeDelta) {
		t.Fatalf("expected net preference %f, got %+v", likeDelta+unlikeDelta, pref)
	}
}

func TestViewCountsOncePerUser(t *testing.T) {
	fx := newFeedFixture(t)
	ctx := context.Background()

	userID := fx.store.addUser(time.Now().Add(-30 * 24 * time.Hour))
	merchant := uuid.New()
	product := fx.store.addProduct(merchant, nil)
	reel := fx.store.addReel(merchant, product, time.Now().Add(-time.Hour))

	dur := 10
	res, err := fx.inter.View(ctx, userID, reel.ID, &dur)
	if err != nil {
		t.Fatalf("first view: %v", err)
	}
	if !res.CountedView {
		t.Fatalf("first view should count")
	}

	// Shorter rewatch: history updates, counter does not.
	short := 11
	res, err = fx.inter.View(ctx, userID, reel.ID, &short)
	if err != nil {
		t.Fatalf("repeat view: %v", err)
	}
	if res.CountedView {
		t.Fatalf("marginal rewatch should not count")
	}
	if got := fx.store.reels[reel.ID].ViewsCount; got != 1 {
		t.Fatalf("views_count: got %d want 1", got)
	}

	// A much longer rewatch counts again.
	long := 25
	res, err = fx.inter.View(ctx, userID, reel.ID, &long)
	if err != nil {
		t.Fatalf("rewatch: %v", err)
	}
	if !res.CountedView {
		t.Fatalf("substantially longer rewatch should count")
	}
	if got := fx.store.reels[reel.ID].ViewsCount; got != 2 {
		t.Fatalf("views_count after rewatch: got %d want 2", got)
	}
}

func TestFollowConflicts(t *testing.T) {
	fx := newFeedFixture(t)
	ctx := context.Background()

	userID := fx.store.addUser(time.Now().Add(-30 * 24 * time.Hour))
	merchant := uuid.New()

	if err := fx.inter.Follow(ctx, userID, merchant); err != nil {
		t.Fatalf("follow: %v", err)
	}
	expectAPIError(t, fx.inter.Follow(ctx, userID, merchant), http.StatusConflict, "already_following")

	if err := fx.inter.Unfollow(ctx, userID, merchant); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	expectAPIError(t, fx.inter.Unfollow(ctx, userID, merchant), http.StatusConflict, "not_following")
}

func TestShareIsIdempotentOnCounter(t *testing.T) {
	fx := newFeedFixture(t)
	ctx := context.Background()

	userID := fx.store.addUser(time.Now().Add(-30 * 24 * time.Hour))
	merchant := uuid.New()
	product := fx.store.addProduct(merchant, nil)
	reel := fx.store.addReel(merchant, product, time.Now().Add(-time.Hour))

	if err := fx.inter.Share(ctx, userID, reel.ID); err != nil {
		t.Fatalf("first share: %v", err)
	}
	if err := fx.inter.Share(ctx, userID, reel.ID); err != nil {
		t.Fatalf("repeat share: %v", err)
	}
	if got := fx.store.reels[reel.ID].SharesCount; got != 1 {
		t.Fatalf("shares_count: got %d want 1", got)
	}
}

func TestOrderPlacedBumpsCategories(t *testing.T) {
	fx := newFeedFixture(t)
	ctx := context.Background()

	userID := fx.store.addUser(time.Now().Add(-30 * 24 * time.Hour))
	merchant := uuid.New()
	catA := uuid.New()
	catB := uuid.New()
	productA := fx.store.addProduct(merchant, &catA)
	productB := fx.store.addProduct(merchant, &catB)
	// Two products in the same category count once.
	productA2 := fx.store.addProduct(merchant, &catA)

	if err := fx.inter.OrderPlaced(ctx, userID, []uuid.UUID{productA, productB, productA2}); err != nil {
		t.Fatalf("OrderPlaced: %v", err)
	}
	if got := fx.store.prefs[userID][catA].PreferenceScore; !approxEqual(got, orderDelta) {
		t.Fatalf("category A preference: got %f want %f", got, orderDelta)
	}
	if got := fx.store.prefs[userID][catB].PreferenceScore; !approxEqual(got, orderDelta) {
		t.Fatalf("category B preference: got %f want %f", got, orderDelta)
	}
}

func TestOrderPlacedEmptyOrder(t *testing.T) {
	fx := newFeedFixture(t)
	err := fx.inter.OrderPlaced(context.Background(), uuid.New(), nil)
	expectAPIError(t, err, http.StatusBadRequest, "empty_order")
}
