package lifecycle

import (
	"time"

	"go.uber.org/zap"

	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
	cfgpkg "github.com/usecmdr-rgb/ovrsee-sub007/pkg/config"
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

// Service derives the account mode of a user from the subscription row, the
// profile mirror and wall-clock time. There is no persisted state machine and
// no timers: every call recomputes from scratch.
type Service struct {
	// trialRetention is the grace period after trial expiry.
	trialRetention time.Duration
	// cancelRetention is the grace period after paid cancellation (also used
	// for past_due and paused records).
	cancelRetention time.Duration
	log             *zap.SugaredLogger
}

func NewService(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Service {
	return &Service{
		trialRetention:  time.Duration(cfg.Retention.TrialDays) * 24 * time.Hour,
		cancelRetention: time.Duration(cfg.Retention.CancelDays) * 24 * time.Hour,
		log:             log,
	}
}

// ComputeAccountMode returns the account mode at `now`. Deterministic in its
// three inputs. The subscription row is authoritative; when profile and
// subscription disagree the discrepancy is logged as a warning and the
// subscription value is used, never repaired here.
func (s *Service) ComputeAccountMode(profile *models.Profile, sub *models.Subscription, now time.Time) types.AccountMode {
	if mismatch, field := detectDrift(profile, sub); mismatch {
		s.log.Warnw("profile and subscription disagree, subscription wins",
			"field", field,
			"user_id", userID(profile, sub),
		)
	}
	return s.computeFromSubscription(sub, now)
}

func (s *Service) computeFromSubscription(sub *models.Subscription, now time.Time) types.AccountMode {
	if sub == nil {
		return types.AccountModePreview
	}

	switch sub.Status {
	case types.SubscriptionStatusActive:
		return types.AccountModeSubscribed

	case types.SubscriptionStatusTrialing:
		if sub.TrialEndsAt == nil {
			// Malformed record: a trialing row must carry an end date. Treat
			// the trial as over rather than granting open-ended access.
			return types.AccountModeTrialExpired
		}
		if now.Before(*sub.TrialEndsAt) {
			return types.AccountModeTrialActive
		}
		return s.retentionMode(*sub.TrialEndsAt, s.trialRetention, now)

	case types.SubscriptionStatusCanceled, types.SubscriptionStatusPastDue, types.SubscriptionStatusPaused:
		return s.retentionMode(retentionAnchor(sub), s.cancelRetention, now)

	default:
		// Unknown status from the billing integration: restrict rather than
		// grant access that cannot be verified.
		return types.AccountModeTrialExpired
	}
}

// retentionMode maps an elapsed retention window to data-cleared, otherwise
// to the restricted trial-expired mode.
func (s *Service) retentionMode(anchor time.Time, window time.Duration, now time.Time) types.AccountMode {
	if now.Sub(anchor) >= window {
		return types.AccountModeDataCleared
	}
	return types.AccountModeTrialExpired
}

// RetentionAnchor returns the timestamp the retention window counts from, or
// nil when the subscription is not in a retention-restricted status.
func RetentionAnchor(sub *models.Subscription) *time.Time {
	if sub == nil {
		return nil
	}
	switch sub.Status {
	case types.SubscriptionStatusTrialing:
		return sub.TrialEndsAt
	case types.SubscriptionStatusCanceled, types.SubscriptionStatusPastDue, types.SubscriptionStatusPaused:
		a := retentionAnchor(sub)
		return &a
	}
	return nil
}

// retentionAnchor picks the timestamp the retention window counts from for a
// canceled, past_due or paused subscription.
func retentionAnchor(sub *models.Subscription) time.Time {
	if sub.CanceledAt != nil {
		return *sub.CanceledAt
	}
	if sub.CurrentPeriodEnd != nil {
		return *sub.CurrentPeriodEnd
	}
	return sub.UpdatedAt
}

// detectDrift compares the profile mirror with the subscription row and
// returns the first mismatching field name.
func detectDrift(profile *models.Profile, sub *models.Subscription) (bool, string) {
	if profile == nil || sub == nil {
		return false, ""
	}
	if profile.SubscriptionStatus != "" && profile.SubscriptionStatus != sub.Status {
		return true, "subscription_status"
	}
	if profile.SubscriptionTier != "" && profile.SubscriptionTier != sub.Tier {
		return true, "subscription_tier"
	}
	return false, ""
}

func userID(profile *models.Profile, sub *models.Subscription) string {
	if sub != nil {
		return sub.UserID
	}
	if profile != nil {
		return profile.UserID
	}
	return ""
}
