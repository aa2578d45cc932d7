package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/billing"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/callwindow"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/lifecycle"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/trial"
	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

// Stable denial codes. Clients branch on these strings; they must never
// change.
const (
	CodeTrialAlreadyUsed   = "TRIAL_ALREADY_USED"
	CodeTrialAlreadyActive = "TRIAL_ALREADY_ACTIVE"
	CodeSubscriptionActive = "SUBSCRIPTION_ACTIVE"
)

// TrialDenied is the recoverable refusal returned by CanStartTrial.
type TrialDenied struct {
	Code string
}

func (e *TrialDenied) Error() string {
	return fmt.Sprintf("trial denied: %s", e.Code)
}

// DenialFor maps the trial guard's sentinels onto the wire codes; nil for
// anything that is not a denial.
func DenialFor(err error) *TrialDenied {
	switch {
	case errors.Is(err, trial.ErrTrialAlreadyUsed):
		return &TrialDenied{Code: CodeTrialAlreadyUsed}
	case errors.Is(err, trial.ErrTrialAlreadyActive):
		return &TrialDenied{Code: CodeTrialAlreadyActive}
	case errors.Is(err, trial.ErrSubscriptionActive):
		return &TrialDenied{Code: CodeSubscriptionActive}
	}
	return nil
}

// Gate is the decision point consulted before privileged actions: starting a
// trial, placing an outbound call, accessing an agent.
type Gate struct {
	trials    *trial.Service
	billing   *billing.Service
	lifecycle *lifecycle.Service
	windows   *callwindow.Evaluator
	log       *zap.SugaredLogger
}

func NewGate(trials *trial.Service, b *billing.Service, lc *lifecycle.Service, windows *callwindow.Evaluator, log *zap.SugaredLogger) *Gate {
	return &Gate{trials: trials, billing: b, lifecycle: lc, windows: windows, log: log}
}

// CanStartTrial checks the one-trial-per-email rule and the current trial
// state. Returns nil when a trial may start, a *TrialDenied when refused, or
// a non-denial error on infrastructure failure. The transactional re-check in
// trial.Service.StartTrial remains authoritative; this is the fast path.
func (g *Gate) CanStartTrial(ctx context.Context, userID, email string) error {
	used, err := g.trials.HasEmailUsedTrial(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check trial eligibility: %w", err)
	}
	if used {
		return &TrialDenied{Code: CodeTrialAlreadyUsed}
	}

	active, err := g.trials.IsUserOnActiveTrial(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check active trial: %w", err)
	}
	if active {
		return &TrialDenied{Code: CodeTrialAlreadyActive}
	}
	return nil
}

// CanPlaceCall is the dialer pre-flight: the call-window decision for the
// campaign config at `now`. Fails closed on unverifiable configuration.
func (g *Gate) CanPlaceCall(cfg callwindow.Config, now time.Time) callwindow.Decision {
	return g.windows.Evaluate(cfg, now)
}

// CanAccessAgent intersects the static tier matrix with the account mode.
// preview, trial-expired and data-cleared deny all agents regardless of tier.
func (g *Gate) CanAccessAgent(mode types.AccountMode, tier types.SubscriptionTier, agent types.Agent) bool {
	if !mode.Entitled() {
		return false
	}
	return TierAllowsAgent(tier, agent)
}

// ResolveAccountMode loads the user's billing records and derives the account
// mode at `now`.
func (g *Gate) ResolveAccountMode(ctx context.Context, userID string, now time.Time) (types.AccountMode, *models.Subscription, error) {
	profile, sub, err := g.billing.LoadUserBilling(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load billing records: %w", err)
	}
	return g.lifecycle.ComputeAccountMode(profile, sub, now), sub, nil
}
