package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/entitlement"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/response"
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

type accountModeResp struct {
	AccountMode types.AccountMode      `json:"account_mode"`
	Tier        types.SubscriptionTier `json:"tier,omitempty"`
	TrialEndsAt *time.Time             `json:"trial_ends_at,omitempty"`
	Agents      []types.Agent          `json:"agents"`
}

// @Summary      Account mode
// @Description  Derives the caller's entitlement mode from billing records and the clock.
// @Tags         Account
// @Produce      json
// @Success      200  {object}  handlers.RespAccountMode
// @Router       /api/v1/account/mode [get]
func ApiAccountMode(gate *entitlement.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		mode, sub, err := gate.ResolveAccountMode(c.Request.Context(), userID, time.Now())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		out := accountModeResp{AccountMode: mode, Agents: []types.Agent{}}
		if sub != nil {
			out.Tier = sub.Tier
			out.TrialEndsAt = sub.TrialEndsAt
			if mode.Entitled() {
				out.Agents = entitlement.AgentsForTier(sub.Tier)
			}
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

type agentAccessResp struct {
	Agent       types.Agent       `json:"agent"`
	Allowed     bool              `json:"allowed"`
	AccountMode types.AccountMode `json:"account_mode"`
}

// @Summary      Agent access
// @Description  Reports whether the caller may use the named agent.
// @Tags         Account
// @Produce      json
// @Param        agent path string true "Agent name (aloha, sync, studio, insight)"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/agents/{agent}/access [get]
func ApiAgentAccess(gate *entitlement.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		agent := types.Agent(c.Param("agent"))
		if !agent.Known() {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "unknown agent"))
			return
		}
		userID := c.GetString("user_id")

		mode, sub, err := gate.ResolveAccountMode(c.Request.Context(), userID, time.Now())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		var tier types.SubscriptionTier
		if sub != nil {
			tier = sub.Tier
		}
		c.JSON(http.StatusOK, response.OKT(agentAccessResp{
			Agent:       agent,
			Allowed:     gate.CanAccessAgent(mode, tier, agent),
			AccountMode: mode,
		}))
	}
}

func RegisterAccountRoutes(r gin.IRouter, gate *entitlement.Gate) {
	r.GET("/account/mode", ApiAccountMode(gate))
	r.GET("/agents/:agent/access", ApiAgentAccess(gate))
}
