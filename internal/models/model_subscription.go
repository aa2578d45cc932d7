package models

import (
	"time"

	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
	"gorm.io/datatypes"
)

// Subscription stores the billing state of a user. It is the authoritative
// source for entitlement decisions; the profile row only mirrors it for fast
// reads. Rows are never hard-deleted, status moves to canceled instead.
type Subscription struct {
	ID     string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string                   `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex" json:"user_id"`
	Tier   types.SubscriptionTier   `gorm:"column:tier;type:varchar(32);not null" json:"tier"`
	Status types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// TrialStartedAt/TrialEndsAt are set once when the trial is granted.
	TrialStartedAt *time.Time `gorm:"column:trial_started_at;default:null" json:"trial_started_at"`
	TrialEndsAt    *time.Time `gorm:"column:trial_ends_at;default:null" json:"trial_ends_at"`
	// Current billing period, written by the billing integration.
	CurrentPeriodStart *time.Time `gorm:"column:current_period_start;default:null" json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `gorm:"column:current_period_end;default:null" json:"current_period_end"`
	CancelAtPeriodEnd  bool       `gorm:"column:cancel_at_period_end;not null;default:false" json:"cancel_at_period_end"`
	// CanceledAt anchors the retention window for paid cancellations.
	CanceledAt *time.Time `gorm:"column:canceled_at;default:null" json:"canceled_at"`
	// Extra stores additional JSON data (for example provider ids and price info).
	Extra     datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// OnActiveTrial reports whether the subscription is a trial that has not yet
// ended at the given time.
func (s *Subscription) OnActiveTrial(now time.Time) bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusTrialing &&
		s.TrialEndsAt != nil &&
		s.TrialEndsAt.After(now)
}
