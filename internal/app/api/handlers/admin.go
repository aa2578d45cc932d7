package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/billing"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/retention"
	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/response"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

type ListSnapshotsRequest struct {
	Filters []*types.CommonFilter `json:"filters"`
	From    int                   `json:"from"`
	Size    int                   `json:"size"`
}

type SnapshotItem struct {
	ID           string                   `json:"id"`
	UserID       string                   `json:"user_id"`
	AccountMode  types.AccountMode        `json:"account_mode"`
	Tier         types.SubscriptionTier   `json:"tier"`
	Status       types.SubscriptionStatus `json:"status"`
	SnapshotDate string                   `json:"snapshot_date"`
	CreatedAt    time.Time                `json:"created_at"`
}

type ListSnapshotsResponse struct {
	Items []*SnapshotItem `json:"items"`
}

func toSnapshotItem(m *models.EntitlementDailySnapshot) *SnapshotItem {
	return &SnapshotItem{
		ID:           m.ID,
		UserID:       m.UserID,
		AccountMode:  m.AccountMode,
		Tier:         m.Tier,
		Status:       m.Status,
		SnapshotDate: m.SnapshotDate,
		CreatedAt:    m.SnapshotCreatedAt,
	}
}

// @Summary      Apply Subscription Update (Admin)
// @Description  Applies a parsed billing provider event to the subscription record and its profile mirror.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body billing.ApplyRequest true "Parsed subscription status change"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/billing/subscription [post]
func ApiApplySubscriptionUpdate(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing.ApplyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		sub, err := svc.ApplySubscriptionUpdate(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      List Entitlement Snapshots (Admin)
// @Description  Retrieves daily entitlement snapshots, newest date first, with optional filters.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListSnapshotsRequest true "List snapshots request with filters and pagination"
// @Success      200  {object}  handlers.RespListSnapshots
// @Router       /api/v1/admin/entitlement/snapshots [post]
func ApiListEntitlementSnapshots(svc *retention.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListSnapshotsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.Size <= 0 {
			req.Size = 50
		}
		snaps, err := svc.ListSnapshots(c.Request.Context(), req.Filters, req.From, req.Size)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		items := lo.Map(snaps, func(m *models.EntitlementDailySnapshot, _ int) *SnapshotItem { return toSnapshotItem(m) })
		c.JSON(http.StatusOK, response.OKT(&ListSnapshotsResponse{Items: items}))
	}
}

func RegisterAdminRoutes(r gin.IRouter, bill *billing.Service, ret *retention.Service) {
	r.POST("/billing/subscription", ApiApplySubscriptionUpdate(bill))
	r.POST("/entitlement/snapshots", ApiListEntitlementSnapshots(ret))
}
