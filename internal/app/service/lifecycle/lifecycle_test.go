package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

func newTestService() *Service {
	return &Service{
		trialRetention:  30 * 24 * time.Hour,
		cancelRetention: 60 * 24 * time.Hour,
		log:             zap.NewNop().Sugar(),
	}
}

func ptr[T any](v T) *T { return &v }

func TestComputeAccountMode_AllCases(t *testing.T) {
	s := newTestService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sub  *models.Subscription
		want types.AccountMode
	}{
		{name: "no subscription is preview", sub: nil, want: types.AccountModePreview},
		{
			name: "active is subscribed",
			sub:  &models.Subscription{Status: types.SubscriptionStatusActive},
			want: types.AccountModeSubscribed,
		},
		{
			name: "active with pending cancel is still subscribed",
			sub: &models.Subscription{
				Status:            types.SubscriptionStatusActive,
				CancelAtPeriodEnd: true,
				CurrentPeriodEnd:  ptr(now.Add(5 * 24 * time.Hour)),
			},
			want: types.AccountModeSubscribed,
		},
		{
			name: "trialing before end",
			sub: &models.Subscription{
				Status:      types.SubscriptionStatusTrialing,
				TrialEndsAt: ptr(now.Add(time.Hour)),
			},
			want: types.AccountModeTrialActive,
		},
		{
			name: "trialing one second past end",
			sub: &models.Subscription{
				Status:      types.SubscriptionStatusTrialing,
				TrialEndsAt: ptr(now.Add(-time.Second)),
			},
			want: types.AccountModeTrialExpired,
		},
		{
			name: "trialing exactly at end is expired",
			sub: &models.Subscription{
				Status:      types.SubscriptionStatusTrialing,
				TrialEndsAt: ptr(now),
			},
			want: types.AccountModeTrialExpired,
		},
		{
			name: "trialing 29 days past end is still retained",
			sub: &models.Subscription{
				Status:      types.SubscriptionStatusTrialing,
				TrialEndsAt: ptr(now.Add(-29 * 24 * time.Hour)),
			},
			want: types.AccountModeTrialExpired,
		},
		{
			name: "trialing 31 days past end is data-cleared",
			sub: &models.Subscription{
				Status:      types.SubscriptionStatusTrialing,
				TrialEndsAt: ptr(now.Add(-31 * 24 * time.Hour)),
			},
			want: types.AccountModeDataCleared,
		},
		{
			name: "trialing without end date is restricted",
			sub:  &models.Subscription{Status: types.SubscriptionStatusTrialing},
			want: types.AccountModeTrialExpired,
		},
		{
			name: "canceled inside the 60 day window",
			sub: &models.Subscription{
				Status:     types.SubscriptionStatusCanceled,
				CanceledAt: ptr(now.Add(-59 * 24 * time.Hour)),
			},
			want: types.AccountModeTrialExpired,
		},
		{
			name: "canceled past the 60 day window",
			sub: &models.Subscription{
				Status:     types.SubscriptionStatusCanceled,
				CanceledAt: ptr(now.Add(-61 * 24 * time.Hour)),
			},
			want: types.AccountModeDataCleared,
		},
		{
			name: "canceled without canceled_at falls back to period end",
			sub: &models.Subscription{
				Status:           types.SubscriptionStatusCanceled,
				CurrentPeriodEnd: ptr(now.Add(-61 * 24 * time.Hour)),
			},
			want: types.AccountModeDataCleared,
		},
		{
			name: "past_due is retained within the window",
			sub: &models.Subscription{
				Status:           types.SubscriptionStatusPastDue,
				CurrentPeriodEnd: ptr(now.Add(-10 * 24 * time.Hour)),
			},
			want: types.AccountModeTrialExpired,
		},
		{
			name: "paused is retained within the window",
			sub: &models.Subscription{
				Status:           types.SubscriptionStatusPaused,
				CurrentPeriodEnd: ptr(now.Add(-10 * 24 * time.Hour)),
			},
			want: types.AccountModeTrialExpired,
		},
		{
			name: "unknown status is restricted",
			sub:  &models.Subscription{Status: "mystery"},
			want: types.AccountModeTrialExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ComputeAccountMode(nil, tt.sub, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeAccountMode_Deterministic(t *testing.T) {
	s := newTestService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := &models.Subscription{
		Status:      types.SubscriptionStatusTrialing,
		TrialEndsAt: ptr(now.Add(-time.Second)),
	}
	profile := &models.Profile{SubscriptionStatus: types.SubscriptionStatusTrialing}

	first := s.ComputeAccountMode(profile, sub, now)
	second := s.ComputeAccountMode(profile, sub, now)
	assert.Equal(t, first, second)
	assert.Equal(t, types.AccountModeTrialExpired, first)
}

func TestComputeAccountMode_SubscriptionWinsOverProfile(t *testing.T) {
	s := newTestService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Profile claims active but the subscription row is canceled past the
	// retention window; the subscription value must win.
	profile := &models.Profile{
		UserID:             "u1",
		SubscriptionStatus: types.SubscriptionStatusActive,
	}
	sub := &models.Subscription{
		UserID:     "u1",
		Status:     types.SubscriptionStatusCanceled,
		CanceledAt: ptr(now.Add(-90 * 24 * time.Hour)),
	}

	got := s.ComputeAccountMode(profile, sub, now)
	assert.Equal(t, types.AccountModeDataCleared, got)
}

func TestDetectDrift(t *testing.T) {
	sub := &models.Subscription{Status: types.SubscriptionStatusActive, Tier: types.SubscriptionTierBasic}

	mismatch, field := detectDrift(&models.Profile{SubscriptionStatus: types.SubscriptionStatusCanceled}, sub)
	assert.True(t, mismatch)
	assert.Equal(t, "subscription_status", field)

	mismatch, field = detectDrift(&models.Profile{
		SubscriptionStatus: types.SubscriptionStatusActive,
		SubscriptionTier:   types.SubscriptionTierElite,
	}, sub)
	assert.True(t, mismatch)
	assert.Equal(t, "subscription_tier", field)

	// Empty mirror fields are not drift; the profile may simply be unpopulated.
	mismatch, _ = detectDrift(&models.Profile{}, sub)
	assert.False(t, mismatch)

	mismatch, _ = detectDrift(nil, sub)
	assert.False(t, mismatch)
}

func TestRetentionAnchor(t *testing.T) {
	now := time.Now()
	canceledAt := now.Add(-time.Hour)
	periodEnd := now.Add(-2 * time.Hour)
	trialEnd := now.Add(-3 * time.Hour)

	assert.Nil(t, RetentionAnchor(nil))
	assert.Nil(t, RetentionAnchor(&models.Subscription{Status: types.SubscriptionStatusActive}))

	// trialing counts from the trial end.
	assert.Equal(t, &trialEnd, RetentionAnchor(&models.Subscription{
		Status:      types.SubscriptionStatusTrialing,
		TrialEndsAt: &trialEnd,
	}))

	// canceled prefers CanceledAt, then CurrentPeriodEnd, then UpdatedAt.
	got := RetentionAnchor(&models.Subscription{
		Status:           types.SubscriptionStatusCanceled,
		CanceledAt:       &canceledAt,
		CurrentPeriodEnd: &periodEnd,
	})
	assert.Equal(t, canceledAt, *got)

	got = RetentionAnchor(&models.Subscription{
		Status:           types.SubscriptionStatusPastDue,
		CurrentPeriodEnd: &periodEnd,
	})
	assert.Equal(t, periodEnd, *got)

	updated := now.Add(-4 * time.Hour)
	got = RetentionAnchor(&models.Subscription{
		Status:    types.SubscriptionStatusPaused,
		UpdatedAt: updated,
	})
	assert.Equal(t, updated, *got)
}
