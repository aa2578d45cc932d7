package entitlement

import (
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

// tierAgents is the static entitlement matrix: which agents each tier may
// use. Access still requires an entitled account mode; see CanAccessAgent.
var tierAgents = map[types.SubscriptionTier]map[types.Agent]bool{
	types.SubscriptionTierBasic: {
		types.AgentAloha:   true,
		types.AgentSync:    true,
		types.AgentStudio:  false,
		types.AgentInsight: false,
	},
	types.SubscriptionTierAdvanced: {
		types.AgentAloha:   true,
		types.AgentSync:    true,
		types.AgentStudio:  true,
		types.AgentInsight: false,
	},
	types.SubscriptionTierElite: {
		types.AgentAloha:   true,
		types.AgentSync:    true,
		types.AgentStudio:  true,
		types.AgentInsight: true,
	},
}

// TierAllowsAgent reports whether the plan tier includes the agent, ignoring
// account mode.
func TierAllowsAgent(tier types.SubscriptionTier, agent types.Agent) bool {
	agents, ok := tierAgents[tier]
	if !ok {
		return false
	}
	return agents[agent]
}

// AgentsForTier lists the agents a tier includes, in canonical order.
func AgentsForTier(tier types.SubscriptionTier) []types.Agent {
	var out []types.Agent
	for _, agent := range types.AllAgents {
		if TierAllowsAgent(tier, agent) {
			out = append(out, agent)
		}
	}
	return out
}
