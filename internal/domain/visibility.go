package domain

// ReasonCode names one failure that keeps a reel out of every feed.
type ReasonCode string

const (
	ReasonReelDeleted             ReasonCode = "REEL_DELETED"
	ReasonReelInactive            ReasonCode = "REEL_INACTIVE"
	ReasonProductNotFound         ReasonCode = "PRODUCT_NOT_FOUND"
	ReasonProductDeleted          ReasonCode = "PRODUCT_DELETED"
	ReasonProductInactive         ReasonCode = "PRODUCT_INACTIVE"
	ReasonProductPendingApproval  ReasonCode = "PRODUCT_PENDING_APPROVAL"
	ReasonProductRejected         ReasonCode = "PRODUCT_REJECTED"
	ReasonProductNotApproved      ReasonCode = "PRODUCT_NOT_APPROVED"
	ReasonProductMerchantMismatch ReasonCode = "PRODUCT_MERCHANT_MISMATCH"
	ReasonProductOutOfStock       ReasonCode = "PRODUCT_OUT_OF_STOCK"
)

// DisablingReasons returns every reason the reel may not appear in a feed,
// reel-level failures first. A nil facts value means the linked product is
// unknown to the catalog, which short-circuits the product checks. The
// result is empty iff the reel is visible.
func DisablingReasons(reel *Reel, facts *ProductFacts) []ReasonCode {
	var reasons []ReasonCode

	if reel.DeletedAt != nil {
		reasons = append(reasons, ReasonReelDeleted)
	}
	if !reel.IsActive {
		reasons = append(reasons, ReasonReelInactive)
	}

	if facts == nil {
		return append(reasons, ReasonProductNotFound)
	}

	if facts.DeletedAt != nil {
		reasons = append(reasons, ReasonProductDeleted)
	}
	if !facts.Active {
		reasons = append(reasons, ReasonProductInactive)
	}
	switch facts.ApprovalStatus {
	case ApprovalApproved:
	case ApprovalPending:
		reasons = append(reasons, ReasonProductPendingApproval)
	case ApprovalRejected:
		reasons = append(reasons, ReasonProductRejected)
	default:
		reasons = append(reasons, ReasonProductNotApproved)
	}
	if facts.MerchantID != reel.MerchantID {
		reasons = append(reasons, ReasonProductMerchantMismatch)
	}
	if facts.StockQty <= 0 {
		reasons = append(reasons, ReasonProductOutOfStock)
	}

	return reasons
}

// IsVisible reports whether the reel may appear in any feed right now.
func IsVisible(reel *Reel, facts *ProductFacts) bool {
	return len(DisablingReasons(reel, facts)) == 0
}
