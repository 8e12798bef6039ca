package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func visibleFixture() (*Reel, *ProductFacts) {
	merchantID := uuid.New()
	productID := uuid.New()
	categoryID := uuid.New()
	reel := &Reel{
		ID:         uuid.New(),
		MerchantID: merchantID,
		ProductID:  productID,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	facts := &ProductFacts{
		ProductID:      productID,
		Active:         true,
		ApprovalStatus: ApprovalApproved,
		MerchantID:     merchantID,
		StockQty:       5,
		CategoryID:     &categoryID,
	}
	return reel, facts
}

func TestDisablingReasons_VisibleWhenAllFactsHealthy(t *testing.T) {
	reel, facts := visibleFixture()
	if reasons := DisablingReasons(reel, facts); len(reasons) != 0 {
		t.Fatalf("expected no reasons, got %v", reasons)
	}
	if !IsVisible(reel, facts) {
		t.Fatalf("expected visible")
	}
}

func TestDisablingReasons_EachTriggerIndependentlyDisables(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		name   string
		mutate func(r *Reel, f *ProductFacts)
		want   ReasonCode
	}{
		{"reel deleted", func(r *Reel, f *ProductFacts) { r.DeletedAt = &now }, ReasonReelDeleted},
		{"reel inactive", func(r *Reel, f *ProductFacts) { r.IsActive = false }, ReasonReelInactive},
		{"product deleted", func(r *Reel, f *ProductFacts) { f.DeletedAt = &now }, ReasonProductDeleted},
		{"product inactive", func(r *Reel, f *ProductFacts) { f.Active = false }, ReasonProductInactive},
		{"product pending", func(r *Reel, f *ProductFacts) { f.ApprovalStatus = ApprovalPending }, ReasonProductPendingApproval},
		{"product rejected", func(r *Reel, f *ProductFacts) { f.ApprovalStatus = ApprovalRejected }, ReasonProductRejected},
		{"product unknown state", func(r *Reel, f *ProductFacts) { f.ApprovalStatus = "draft" }, ReasonProductNotApproved},
		{"merchant mismatch", func(r *Reel, f *ProductFacts) { f.MerchantID = uuid.New() }, ReasonProductMerchantMismatch},
		{"out of stock", func(r *Reel, f *ProductFacts) { f.StockQty = 0 }, ReasonProductOutOfStock},
	}

	for _, tc := range cases {
		reel, facts := visibleFixture()
		tc.mutate(reel, facts)
		reasons := DisablingReasons(reel, facts)
		if len(reasons) != 1 || reasons[0] != tc.want {
			t.Fatalf("%s: expected [%s], got %v", tc.name, tc.want, reasons)
		}
		if IsVisible(reel, facts) {
			t.Fatalf("%s: expected not visible", tc.name)
		}
	}
}

func TestDisablingReasons_ReversingOneTriggerIsNotEnough(t *testing.T) {
	reel, facts := visibleFixture()
	now := time.Now().UTC()
	reel.DeletedAt = &now
	facts.StockQty = 0

	if got := len(DisablingReasons(reel, facts)); got != 2 {
		t.Fatalf("expected 2 reasons, got %d", got)
	}

	// Restocking alone must not restore visibility while the tombstone remains.
	facts.StockQty = 3
	reasons := DisablingReasons(reel, facts)
	if len(reasons) != 1 || reasons[0] != ReasonReelDeleted {
		t.Fatalf("expected [REEL_DELETED], got %v", reasons)
	}

	reel.DeletedAt = nil
	if !IsVisible(reel, facts) {
		t.Fatalf("expected visible after clearing both triggers")
	}
}

func TestDisablingReasons_MissingProductShortCircuits(t *testing.T) {
	reel, _ := visibleFixture()
	reasons := DisablingReasons(reel, nil)
	if len(reasons) != 1 || reasons[0] != ReasonProductNotFound {
		t.Fatalf("expected [PRODUCT_NOT_FOUND], got %v", reasons)
	}

	reel.IsActive = false
	reasons = DisablingReasons(reel, nil)
	if len(reasons) != 2 || reasons[0] != ReasonReelInactive || reasons[1] != ReasonProductNotFound {
		t.Fatalf("expected reel-level reason before PRODUCT_NOT_FOUND, got %v", reasons)
	}
}
