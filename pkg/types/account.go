package types

// AccountMode is the derived entitlement classification of a user. It is never
// persisted; every read recomputes it from the subscription record and the clock.
type AccountMode string

const (
	AccountModePreview      AccountMode = "preview"
	AccountModeTrialActive  AccountMode = "trial-active"
	AccountModeTrialExpired AccountMode = "trial-expired"
	AccountModeSubscribed   AccountMode = "subscribed"
	// AccountModeDataCleared means the retention window has elapsed with no
	// reactivation. User-owned data is eligible for purge by the external
	// retention job; this service only reports the state.
	AccountModeDataCleared AccountMode = "data-cleared"
)

// Entitled reports whether the mode grants access to gated features at all.
// preview, trial-expired and data-cleared deny everything regardless of tier.
func (m AccountMode) Entitled() bool {
	return m == AccountModeTrialActive || m == AccountModeSubscribed
}
