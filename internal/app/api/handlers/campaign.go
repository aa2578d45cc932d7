package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/campaign"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/response"
)

// @Summary      Create campaign
// @Description  Creates an outbound calling campaign with its compliance time window.
// @Tags         Campaign
// @Accept       json
// @Produce      json
// @Param        request body campaign.CreateRequest true "Campaign definition"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/campaigns [post]
func ApiCreateCampaign(svc *campaign.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req campaign.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		out, err := svc.Create(c.Request.Context(), c.GetString("user_id"), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

// @Summary      Get campaign
// @Tags         Campaign
// @Produce      json
// @Param        id path string true "Campaign ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/campaigns/{id} [get]
func ApiGetCampaign(svc *campaign.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, campaign.ErrCampaignNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

// @Summary      Call-window decision
// @Description  Dialer pre-flight: whether an outbound call may be placed for this campaign right now.
// @Tags         Campaign
// @Produce      json
// @Param        id path string true "Campaign ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/campaigns/{id}/call-window [get]
func ApiCampaignCallWindow(svc *campaign.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := svc.DecideCallWindow(c.Request.Context(), c.Param("id"), time.Now())
		if err != nil {
			if errors.Is(err, campaign.ErrCampaignNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(decision))
	}
}

func RegisterCampaignRoutes(r gin.IRouter, svc *campaign.Service) {
	r.POST("/campaigns", ApiCreateCampaign(svc))
	r.GET("/campaigns/:id", ApiGetCampaign(svc))
	r.GET("/campaigns/:id/call-window", ApiCampaignCallWindow(svc))
}
