package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product approval states, as reported by the catalog collaborator.
const (
	ApprovalApproved = "approved"
	ApprovalPending  = "pending"
	ApprovalRejected = "rejected"
)

// ProductFacts is a snapshot of the catalog facts the visibility predicate
// reads. Stock and approval change independently of the reel, so facts are
// fetched fresh on every read and never persisted alongside the reel.
type ProductFacts struct {
	ProductID      uuid.UUID
	DeletedAt      *time.Time
	Active         bool
	ApprovalStatus string
	MerchantID     uuid.UUID
	StockQty       int
	CategoryID     *uuid.UUID
}
