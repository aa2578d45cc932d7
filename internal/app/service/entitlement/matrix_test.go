package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

func TestTierAllowsAgent(t *testing.T) {
	tests := []struct {
		tier  types.SubscriptionTier
		agent types.Agent
		want  bool
	}{
		{types.SubscriptionTierBasic, types.AgentAloha, true},
		{types.SubscriptionTierBasic, types.AgentSync, true},
		{types.SubscriptionTierBasic, types.AgentStudio, false},
		{types.SubscriptionTierBasic, types.AgentInsight, false},
		{types.SubscriptionTierAdvanced, types.AgentStudio, true},
		{types.SubscriptionTierAdvanced, types.AgentInsight, false},
		{types.SubscriptionTierElite, types.AgentInsight, true},
		{"unknown", types.AgentAloha, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierAllowsAgent(tt.tier, tt.agent), "%s/%s", tt.tier, tt.agent)
	}
}

func TestAgentsForTier(t *testing.T) {
	assert.Equal(t, []types.Agent{types.AgentAloha, types.AgentSync}, AgentsForTier(types.SubscriptionTierBasic))
	assert.Equal(t, types.AllAgents, AgentsForTier(types.SubscriptionTierElite))
	assert.Empty(t, AgentsForTier("unknown"))
}

func TestCanAccessAgent_ModeGating(t *testing.T) {
	g := &Gate{}

	// Restricted modes deny everything, even for elite.
	for _, mode := range []types.AccountMode{
		types.AccountModePreview,
		types.AccountModeTrialExpired,
		types.AccountModeDataCleared,
	} {
		for _, agent := range types.AllAgents {
			assert.False(t, g.CanAccessAgent(mode, types.SubscriptionTierElite, agent),
				"%s must deny %s", mode, agent)
		}
	}

	// Entitled modes follow the tier matrix.
	assert.True(t, g.CanAccessAgent(types.AccountModeSubscribed, types.SubscriptionTierBasic, types.AgentAloha))
	assert.False(t, g.CanAccessAgent(types.AccountModeSubscribed, types.SubscriptionTierBasic, types.AgentInsight))
	assert.True(t, g.CanAccessAgent(types.AccountModeTrialActive, types.SubscriptionTierElite, types.AgentInsight))
}
