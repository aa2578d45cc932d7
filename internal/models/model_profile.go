package models

import (
	"time"

	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

// Profile is the 1:1 per-user record holding a denormalized mirror of the
// subscription fields for fast reads. The subscription row wins whenever the
// two disagree; the mirror is repaired only by the billing write path.
type Profile struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex" json:"user_id"`
	Email  string `gorm:"column:email;type:varchar(255);not null" json:"email"`

	SubscriptionTier   types.SubscriptionTier   `gorm:"column:subscription_tier;type:varchar(32)" json:"subscription_tier"`
	SubscriptionStatus types.SubscriptionStatus `gorm:"column:subscription_status;type:varchar(32)" json:"subscription_status"`
	TrialStartedAt     *time.Time               `gorm:"column:trial_started_at;default:null" json:"trial_started_at"`
	TrialEndsAt        *time.Time               `gorm:"column:trial_ends_at;default:null" json:"trial_ends_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}
