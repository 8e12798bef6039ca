package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReelLike records that a user liked a reel. The (user, reel) pair is
// unique; the constraint is what makes likes idempotent under races.
type ReelLike struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reel_like_user_reel;column:user_id" json:"user_id"`
	ReelID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reel_like_user_reel;column:reel_id" json:"reel_id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ReelLike) TableName() string {
	return "reel_like"
}

// ReelView is unique per (user, reel) but mutable: rewatches update
// ViewedAt and ViewDuration in place. Only the most recent N per user are
// retained (see ViewRepo.EvictOldest).
type ReelView struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reel_view_user_reel;column:user_id" json:"user_id"`
	ReelID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reel_view_user_reel;column:reel_id" json:"reel_id"`
	ViewedAt     time.Time `gorm:"not null;index;column:viewed_at" json:"viewed_at"`
	ViewDuration *int      `gorm:"column:view_duration" json:"view_duration,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ReelView) TableName() string {
	return "reel_view"
}

// ReelShare is unique per (user, reel); re-sharing bumps SharedAt.
type ReelShare struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reel_share_user_reel;column:user_id" json:"user_id"`
	ReelID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reel_share_user_reel;column:reel_id" json:"reel_id"`
	SharedAt  time.Time `gorm:"not null;column:shared_at" json:"shared_at"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ReelShare) TableName() string {
	return "reel_share"
}

// MerchantFollow relates a user to a merchant they follow.
type MerchantFollow struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_merchant_follow_user_merchant;column:user_id" json:"user_id"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_merchant_follow_user_merchant;column:merchant_id" json:"merchant_id"`
	FollowedAt time.Time `gorm:"not null;index;column:followed_at" json:"followed_at"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (MerchantFollow) TableName() string {
	return "merchant_follow"
}
