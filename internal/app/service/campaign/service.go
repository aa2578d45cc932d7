package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/callwindow"
	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/platform/cache"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/logctx"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/tool"
)

const campaignCacheTTL = 5 * time.Minute

var ErrCampaignNotFound = errors.New("campaign not found")

// Service owns campaign rows and answers the dialer's pre-flight question:
// may a call for this campaign be placed now.
type Service struct {
	db      *gorm.DB
	cache   cache.Cache
	windows *callwindow.Evaluator
	log     *zap.SugaredLogger
}

func NewService(db *gorm.DB, c cache.Cache, windows *callwindow.Evaluator, log *zap.SugaredLogger) *Service {
	return &Service{db: db, cache: c, windows: windows, log: log}
}

// CreateRequest is validated at the boundary; the window fields are checked
// again by the evaluator on every decision, so a bad row can only ever deny.
type CreateRequest struct {
	Name          string   `json:"name" binding:"required"`
	Timezone      string   `json:"timezone" binding:"required"`
	CallStartTime string   `json:"call_start_time" binding:"required"`
	CallEndTime   string   `json:"call_end_time" binding:"required"`
	CallDays      []string `json:"call_days" binding:"required,min=1"`
}

func (s *Service) Create(ctx context.Context, userID string, req *CreateRequest) (*models.Campaign, error) {
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", req.Timezone, err)
	}

	c := &models.Campaign{
		ID:            tool.GenerateUUIDV7(),
		UserID:        userID,
		Name:          req.Name,
		Timezone:      req.Timezone,
		CallStartTime: req.CallStartTime,
		CallEndTime:   req.CallEndTime,
		CallDays:      datatypes.NewJSONSlice(req.CallDays),
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("campaign created", "campaign_id", c.ID, "user_id", userID)
	return c, nil
}

func campaignCacheKey(id string) string {
	return fmt.Sprintf("campaign:%s", id)
}

// Get loads a campaign by id, read through the cache.
func (s *Service) Get(ctx context.Context, id string) (*models.Campaign, error) {
	key := campaignCacheKey(id)

	var cached models.Campaign
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("campaign cache read failed", "key", key, "err", err)
	}
	if found {
		return &cached, nil
	}

	var c models.Campaign
	err = s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	if err := s.cache.Set(ctx, key, &c, campaignCacheTTL); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("campaign cache write failed", "key", key, "err", err)
	}
	return &c, nil
}

// DecideCallWindow answers the dialer pre-flight for a campaign at `now`.
func (s *Service) DecideCallWindow(ctx context.Context, id string, now time.Time) (callwindow.Decision, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return callwindow.Decision{}, err
	}
	return s.windows.Evaluate(WindowConfig(c), now), nil
}

// WindowConfig maps a campaign row onto the evaluator's input.
func WindowConfig(c *models.Campaign) callwindow.Config {
	return callwindow.Config{
		Timezone:  c.Timezone,
		StartTime: c.CallStartTime,
		EndTime:   c.CallEndTime,
		Days:      c.CallDays,
	}
}
