package handlers

import (
	"time"

	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/response"
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespAccountMode wraps the derived account mode in the standard envelope.
type RespAccountMode struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SwaggerAccountMode       `json:"data"`
}

// SwaggerAccountMode is the account mode payload for documentation purposes.
type SwaggerAccountMode struct {
	AccountMode types.AccountMode      `json:"account_mode"`
	Tier        types.SubscriptionTier `json:"tier,omitempty"`
	TrialEndsAt *time.Time             `json:"trial_ends_at,omitempty"`
	Agents      []types.Agent          `json:"agents"`
}

// RespListSnapshots wraps ListSnapshotsResponse in the standard envelope.
type RespListSnapshots struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListSnapshotsResponse    `json:"data"`
}
