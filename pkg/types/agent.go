package types

// Agent identifies one of the LLM-driven product agents.
type Agent string

const (
	AgentAloha   Agent = "aloha"
	AgentSync    Agent = "sync"
	AgentStudio  Agent = "studio"
	AgentInsight Agent = "insight"
)

var AllAgents = []Agent{AgentAloha, AgentSync, AgentStudio, AgentInsight}

func (a Agent) Known() bool {
	switch a {
	case AgentAloha, AgentSync, AgentStudio, AgentInsight:
		return true
	}
	return false
}
