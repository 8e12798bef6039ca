package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reel is a merchant-uploaded product video. Counters are mutated only
// through atomic repo updates; DeletedAt is a tombstone, reels are never
// hard-deleted.
type Reel struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MerchantID      uuid.UUID `gorm:"type:uuid;not null;index;column:merchant_id" json:"merchant_id"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index;column:product_id" json:"product_id"`
	VideoURL        string    `gorm:"not null;column:video_url" json:"video_url"`
	ThumbnailURL    string    `gorm:"column:thumbnail_url" json:"thumbnail_url"`
	Description     string    `gorm:"type:text;not null;column:description" json:"description"`
	DurationSeconds int       `gorm:"column:duration_seconds" json:"duration_seconds"`

	ViewsCount  int64 `gorm:"not null;default:0;column:views_count" json:"views_count"`
	LikesCount  int64 `gorm:"not null;default:0;column:likes_count" json:"likes_count"`
	SharesCount int64 `gorm:"not null;default:0;column:shares_count" json:"shares_count"`

	IsActive bool `gorm:"not null;default:true;index;column:is_active" json:"is_active"`

	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`
}

func (Reel) TableName() string {
	return "reel"
}

// AgeHours is the scoring clock for trending and recency bonuses.
func (r *Reel) AgeHours(now time.Time) float64 {
	return now.Sub(r.CreatedAt).Hours()
}
