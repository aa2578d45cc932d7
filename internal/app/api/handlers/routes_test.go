package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1")
	RegisterAccountRoutes(g, nil)
	RegisterTrialRoutes(g, nil, nil)
	RegisterCampaignRoutes(g, nil)
	RegisterAdminRoutes(g.Group("/admin"), nil, nil)
	RegisterHealthRoutes(r)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("GET /healthz"))
	require.True(t, contains("GET /api/v1/account/mode"))
	require.True(t, contains("GET /api/v1/agents/:agent/access"))
	require.True(t, contains("POST /api/v1/trial/start"))
	require.True(t, contains("POST /api/v1/campaigns"))
	require.True(t, contains("GET /api/v1/campaigns/:id"))
	require.True(t, contains("GET /api/v1/campaigns/:id/call-window"))
	require.True(t, contains("POST /api/v1/admin/billing/subscription"))
	require.True(t, contains("POST /api/v1/admin/entitlement/snapshots"))
}
