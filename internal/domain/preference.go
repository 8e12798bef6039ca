package domain

import (
	"time"

	"github.com/google/uuid"
)

// CategoryPreference is a per-(user, category) affinity score in [0, 1].
// Rows are created lazily on first interaction and updated in place after
// that; PreferenceScore is the raw stored value, the ranker always reads it
// through EffectiveScore.
type CategoryPreference struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uq_category_pref_user_category;column:user_id" json:"user_id"`
	CategoryID        uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uq_category_pref_user_category;column:category_id" json:"category_id"`
	PreferenceScore   float64    `gorm:"not null;default:0;index;column:preference_score" json:"preference_score"`
	InteractionCount  int        `gorm:"not null;default:0;column:interaction_count" json:"interaction_count"`
	LastInteractionAt *time.Time `gorm:"index;column:last_interaction_at" json:"last_interaction_at"`
	CreatedAt         time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (CategoryPreference) TableName() string {
	return "category_preference"
}

// EffectiveScore applies recency decay to the stored score: full weight
// within 7 days of the last interaction, linear decay from 1.0 to 0.5
// between 7 and 30 days, then a slower slide floored at 0.1. The decayed
// value is what feeds the ranker, never the raw score.
func (p *CategoryPreference) EffectiveScore(now time.Time) float64 {
	if p == nil {
		return 0
	}
	if p.LastInteractionAt == nil {
		return p.PreferenceScore
	}
	days := now.Sub(*p.LastInteractionAt).Hours() / 24
	var decay float64
	switch {
	case days <= 7:
		decay = 1.0
	case days <= 30:
		decay = 1.0 - (days-7)/46.0
	default:
		decay = 0.5 - (days-30)/120.0
		if decay < 0.1 {
			decay = 0.1
		}
	}
	return p.PreferenceScore * decay
}
