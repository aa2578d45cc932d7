package models

import "time"

// TrialEligibility records that a normalized email address has consumed its
// one lifetime trial. Keyed by email, not user id, so deleting and recreating
// an account under the same address cannot earn a second trial. Rows are
// created once and never reset or deleted; the unique index doubles as the
// check-and-set backstop against concurrent trial starts.
type TrialEligibility struct {
	ID string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	// Email is stored lower-cased and trimmed.
	Email        string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	HasUsedTrial bool      `gorm:"column:has_used_trial;not null;default:true" json:"has_used_trial"`
	UsedByUserID string    `gorm:"column:used_by_user_id;type:varchar(64);not null" json:"used_by_user_id"`
	UsedAt       time.Time `gorm:"column:used_at;not null" json:"used_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (TrialEligibility) TableName() string {
	return "trial_eligibility"
}
