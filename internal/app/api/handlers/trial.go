package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/entitlement"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/trial"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/response"
)

type trialStartResp struct {
	Started     bool       `json:"started"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
}

// trialDeniedResp carries the stable denial code clients branch on.
type trialDeniedResp struct {
	Code string `json:"code"`
}

// @Summary      Start trial
// @Description  Grants the caller's one-per-email free trial. Denials carry the stable codes TRIAL_ALREADY_USED and TRIAL_ALREADY_ACTIVE.
// @Tags         Trial
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/trial/start [post]
func ApiStartTrial(gate *entitlement.Gate, trials *trial.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		email := c.GetString("email")
		if email == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing email claim"))
			return
		}

		// Fast-path check; the transactional re-check inside StartTrial is
		// authoritative under concurrency.
		if err := gate.CanStartTrial(c.Request.Context(), userID, email); err != nil {
			var d *entitlement.TrialDenied
			if errors.As(err, &d) {
				c.JSON(http.StatusOK, response.ErrorT(response.APIResponseCodeDenied, trialDeniedResp{Code: d.Code}))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		sub, err := trials.StartTrial(c.Request.Context(), userID, email)
		if err != nil {
			if d := entitlement.DenialFor(err); d != nil {
				c.JSON(http.StatusOK, response.ErrorT(response.APIResponseCodeDenied, trialDeniedResp{Code: d.Code}))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		c.JSON(http.StatusOK, response.OKT(trialStartResp{Started: true, TrialEndsAt: sub.TrialEndsAt}))
	}
}

func RegisterTrialRoutes(r gin.IRouter, gate *entitlement.Gate, trials *trial.Service) {
	r.POST("/trial/start", ApiStartTrial(gate, trials))
}
