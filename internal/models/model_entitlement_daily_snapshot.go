package models

import (
	"time"

	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
	"gorm.io/datatypes"
)

// EntitlementDailySnapshot is a daily per-user record of the derived account
// mode, written by the retention sweep for analytics and purge reporting.
type EntitlementDailySnapshot struct {
	ID          string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID      string                   `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:idx_user_id_snapshot_date,priority:1" json:"user_id"`
	AccountMode types.AccountMode        `gorm:"column:account_mode;type:varchar(32);not null" json:"account_mode"`
	Tier        types.SubscriptionTier   `gorm:"column:tier;type:varchar(32)" json:"tier"`
	Status      types.SubscriptionStatus `gorm:"column:status;type:varchar(32)" json:"status"`
	// Extra carries per-snapshot context, currently the retention anchor the
	// sweep derived for restricted accounts.
	Extra             datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	SnapshotDate      string            `gorm:"column:snapshot_date;uniqueIndex:idx_user_id_snapshot_date,priority:2" json:"snapshot_date"`
	SnapshotCreatedAt time.Time         `gorm:"column:snapshot_created_at" json:"snapshot_created_at"`
	CreatedAt         time.Time      `json:"created_at"`
}

func (EntitlementDailySnapshot) TableName() string {
	return "entitlement_daily_snapshot"
}
