package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/lifecycle"
	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
	cfgpkg "github.com/usecmdr-rgb/ovrsee-sub007/pkg/config"
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

func newTestService() *Service {
	cfg := &cfgpkg.Config{}
	cfg.Retention.TrialDays = 30
	cfg.Retention.CancelDays = 60
	log := zap.NewNop().Sugar()
	return &Service{lifecycle: lifecycle.NewService(cfg, log), log: log}
}

func TestBuildSnapshot_RecordsRetentionAnchor(t *testing.T) {
	s := newTestService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	canceledAt := now.Add(-10 * 24 * time.Hour)

	sub := &models.Subscription{
		UserID:     "user-1",
		Tier:       types.SubscriptionTierAdvanced,
		Status:     types.SubscriptionStatusCanceled,
		CanceledAt: &canceledAt,
	}

	snap := s.buildSnapshot(sub, now, "2026-03-01")
	assert.Equal(t, "user-1", snap.UserID)
	assert.Equal(t, types.AccountModeTrialExpired, snap.AccountMode)
	assert.Equal(t, "2026-03-01", snap.SnapshotDate)
	require.Contains(t, snap.Extra, "retention_anchor")
	assert.Equal(t, &canceledAt, snap.Extra["retention_anchor"])
}

func TestBuildSnapshot_NoAnchorForEntitledAccounts(t *testing.T) {
	s := newTestService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sub := &models.Subscription{
		UserID: "user-2",
		Tier:   types.SubscriptionTierElite,
		Status: types.SubscriptionStatusActive,
	}

	snap := s.buildSnapshot(sub, now, "2026-03-01")
	assert.Equal(t, types.AccountModeSubscribed, snap.AccountMode)
	assert.NotContains(t, snap.Extra, "retention_anchor")
}

func TestBuildSnapshot_ClearedAccount(t *testing.T) {
	s := newTestService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	trialEnd := now.Add(-31 * 24 * time.Hour)

	sub := &models.Subscription{
		UserID:      "user-3",
		Tier:        types.SubscriptionTierElite,
		Status:      types.SubscriptionStatusTrialing,
		TrialEndsAt: &trialEnd,
	}

	snap := s.buildSnapshot(sub, now, "2026-03-01")
	assert.Equal(t, types.AccountModeDataCleared, snap.AccountMode)
	require.Contains(t, snap.Extra, "retention_anchor")
	assert.Equal(t, &trialEnd, snap.Extra["retention_anchor"])
}
