package types

type SubscriptionStatus string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"
)

func (s SubscriptionStatus) Known() bool {
	switch s {
	case SubscriptionStatusTrialing, SubscriptionStatusActive, SubscriptionStatusPastDue,
		SubscriptionStatusCanceled, SubscriptionStatusPaused:
		return true
	}
	return false
}

type SubscriptionTier string

const (
	SubscriptionTierBasic    SubscriptionTier = "basic"
	SubscriptionTierAdvanced SubscriptionTier = "advanced"
	SubscriptionTierElite    SubscriptionTier = "elite"
)

func (t SubscriptionTier) Known() bool {
	switch t {
	case SubscriptionTierBasic, SubscriptionTierAdvanced, SubscriptionTierElite:
		return true
	}
	return false
}

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonTrialStart   SubscriptionChangeReason = "trialStart"
	SubscriptionChangeReasonBillingEvent SubscriptionChangeReason = "billingEvent"
	SubscriptionChangeReasonAdmin        SubscriptionChangeReason = "admin"
)
