package models

import (
	"time"

	"gorm.io/datatypes"
)

// Campaign holds an outbound calling campaign and its compliance time window.
// The window fields are immutable inputs to the call-window evaluator; the
// dialer asks for a decision before every call attempt.
type Campaign struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Name   string `gorm:"column:name;type:varchar(255);not null" json:"name"`

	// Timezone is an IANA zone name, for example America/New_York.
	Timezone string `gorm:"column:timezone;type:varchar(64);not null" json:"timezone"`
	// CallStartTime/CallEndTime are local wall-clock times in HH:MM:SS form.
	// The end bound is exclusive.
	CallStartTime string `gorm:"column:call_start_time;type:varchar(8);not null" json:"call_start_time"`
	CallEndTime   string `gorm:"column:call_end_time;type:varchar(8);not null" json:"call_end_time"`
	// CallDays holds lower-case weekday tags (mon..sun).
	CallDays datatypes.JSONSlice[string] `gorm:"column:call_days;type:jsonb;not null" json:"call_days"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaign"
}
