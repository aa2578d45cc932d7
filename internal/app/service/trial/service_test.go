package trial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
	cfgpkg "github.com/usecmdr-rgb/ovrsee-sub007/pkg/config"
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A@Example.com", "a@example.com"},
		{"a@example.com", "a@example.com"},
		{"  USER@Host.IO  ", "user@host.io"},
		{"MiXeD@CaSe.CoM", "mixed@case.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in))
	}

	// Case variants of one address must normalize identically, so eligibility
	// reads for either form hit the same row.
	assert.Equal(t, NormalizeEmail("A@Example.com"), NormalizeEmail("a@example.com"))
}

func TestSubscriptionOnActiveTrial(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		sub  *models.Subscription
		want bool
	}{
		{name: "nil subscription", sub: nil, want: false},
		{
			name: "trialing with future end",
			sub:  &models.Subscription{Status: types.SubscriptionStatusTrialing, TrialEndsAt: &future},
			want: true,
		},
		{
			name: "trialing with past end",
			sub:  &models.Subscription{Status: types.SubscriptionStatusTrialing, TrialEndsAt: &past},
			want: false,
		},
		{
			name: "trialing without end date",
			sub:  &models.Subscription{Status: types.SubscriptionStatusTrialing},
			want: false,
		},
		{
			name: "active subscription is not a trial",
			sub:  &models.Subscription{Status: types.SubscriptionStatusActive, TrialEndsAt: &future},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.OnActiveTrial(now))
		})
	}
}

func TestTrialTier(t *testing.T) {
	s := &Service{cfg: &cfgpkg.Config{Trial: cfgpkg.TrialConfig{Tier: "advanced"}}}
	assert.Equal(t, types.SubscriptionTierAdvanced, s.trialTier())

	// Unknown configured tier falls back to elite.
	s = &Service{cfg: &cfgpkg.Config{Trial: cfgpkg.TrialConfig{Tier: "platinum"}}}
	assert.Equal(t, types.SubscriptionTierElite, s.trialTier())
}
