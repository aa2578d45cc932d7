package entitlement

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/callwindow"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/trial"
)

func TestDenialFor(t *testing.T) {
	d := DenialFor(trial.ErrTrialAlreadyUsed)
	require.NotNil(t, d)
	assert.Equal(t, "TRIAL_ALREADY_USED", d.Code)

	d = DenialFor(fmt.Errorf("start trial: %w", trial.ErrTrialAlreadyActive))
	require.NotNil(t, d)
	assert.Equal(t, "TRIAL_ALREADY_ACTIVE", d.Code)

	d = DenialFor(trial.ErrSubscriptionActive)
	require.NotNil(t, d)
	assert.Equal(t, "SUBSCRIPTION_ACTIVE", d.Code)

	assert.Nil(t, DenialFor(errors.New("connection refused")))
	assert.Nil(t, DenialFor(nil))
}

func TestTrialDeniedError(t *testing.T) {
	err := &TrialDenied{Code: CodeTrialAlreadyUsed}
	assert.Contains(t, err.Error(), "TRIAL_ALREADY_USED")
}

func TestCanPlaceCall_FailsClosed(t *testing.T) {
	g := &Gate{windows: callwindow.New()}

	d := g.CanPlaceCall(callwindow.Config{
		Timezone:  "Not/AZone",
		StartTime: "09:00:00",
		EndTime:   "18:00:00",
		Days:      []string{"mon"},
	}, time.Now())
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Reason)
}

func TestCanPlaceCall_Allows(t *testing.T) {
	g := &Gate{windows: callwindow.New()}

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// Monday 2026-01-05 at 10:00 New York time.
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, loc)

	d := g.CanPlaceCall(callwindow.Config{
		Timezone:  "America/New_York",
		StartTime: "09:00:00",
		EndTime:   "18:00:00",
		Days:      []string{"mon", "tue", "wed", "thu", "fri"},
	}, now)
	assert.True(t, d.Allowed)
}
