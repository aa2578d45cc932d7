package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/platform/cache"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/logctx"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/tool"
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

const billingCacheTTL = 30 * time.Second

// Service owns reads and writes of the billing records (subscription row plus
// profile mirror). The billing integration, having parsed provider events
// elsewhere, applies status changes through ApplySubscriptionUpdate; this
// service never talks to the provider itself.
type Service struct {
	db    *gorm.DB
	cache cache.Cache
	log   *zap.SugaredLogger
}

func NewService(db *gorm.DB, c cache.Cache, log *zap.SugaredLogger) *Service {
	return &Service{db: db, cache: c, log: log}
}

// userBilling is the cached pair of rows backing entitlement reads.
type userBilling struct {
	Profile      *models.Profile      `json:"profile"`
	Subscription *models.Subscription `json:"subscription"`
}

func billingCacheKey(userID string) string {
	return fmt.Sprintf("billing:user:%s", userID)
}

// LoadUserBilling returns the profile and subscription rows for a user, read
// through the cache with a short TTL. Either row may be nil when absent; a
// missing row is not an error.
func (s *Service) LoadUserBilling(ctx context.Context, userID string) (*models.Profile, *models.Subscription, error) {
	key := billingCacheKey(userID)

	var cached userBilling
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("billing cache read failed", "key", key, "err", err)
	}
	if found {
		return cached.Profile, cached.Subscription, nil
	}

	var profile *models.Profile
	var row models.Profile
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err == nil {
		profile = &row
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var sub *models.Subscription
	var subRow models.Subscription
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&subRow).Error
	if err == nil {
		sub = &subRow
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	if err := s.cache.Set(ctx, key, &userBilling{Profile: profile, Subscription: sub}, billingCacheTTL); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("billing cache write failed", "key", key, "err", err)
	}
	return profile, sub, nil
}

// InvalidateUserBilling drops the cached billing rows for a user. Every
// writer of the subscription or profile row must call this after commit, the
// trial start path included, or reads serve the pre-write rows until the TTL
// runs out. Failures are logged, not returned: the cache self-heals at TTL.
func (s *Service) InvalidateUserBilling(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, billingCacheKey(userID)); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("billing cache invalidate failed", "user_id", userID, "err", err)
	}
}

// ApplyRequest is the parsed billing status change posted by the billing
// integration.
type ApplyRequest struct {
	UserID             string                   `json:"user_id" binding:"required"`
	Tier               types.SubscriptionTier   `json:"tier" binding:"required"`
	Status             types.SubscriptionStatus `json:"status" binding:"required"`
	CurrentPeriodStart *time.Time               `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time               `json:"current_period_end"`
	CancelAtPeriodEnd  bool                     `json:"cancel_at_period_end"`
	CanceledAt         *time.Time               `json:"canceled_at"`
}

// ApplySubscriptionUpdate upserts the subscription row (authoritative write,
// performed first) and then the profile mirror, preserving row identity and
// creation time on update, and change-logs the transition.
func (s *Service) ApplySubscriptionUpdate(ctx context.Context, req *ApplyRequest) (*models.Subscription, error) {
	if !req.Status.Known() {
		return nil, fmt.Errorf("unknown subscription status: %q", req.Status)
	}
	if !req.Tier.Known() {
		return nil, fmt.Errorf("unknown subscription tier: %q", req.Tier)
	}

	var sub *models.Subscription
	var before *models.Subscription

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original models.Subscription
		err := tx.Where("user_id = ?", req.UserID).First(&original).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load original subscription: %w", err)
		}

		sub = &models.Subscription{
			ID:                 tool.GenerateUUIDV7(),
			UserID:             req.UserID,
			Tier:               req.Tier,
			Status:             req.Status,
			CurrentPeriodStart: req.CurrentPeriodStart,
			CurrentPeriodEnd:   req.CurrentPeriodEnd,
			CancelAtPeriodEnd:  req.CancelAtPeriodEnd,
			CanceledAt:         req.CanceledAt,
		}
		if original.ID != "" {
			// Preserve identity and the trial timestamps the billing provider
			// does not know about.
			cp := original
			before = &cp
			sub.ID = original.ID
			sub.CreatedAt = original.CreatedAt
			sub.TrialStartedAt = original.TrialStartedAt
			sub.TrialEndsAt = original.TrialEndsAt
			sub.Extra = original.Extra
		}

		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		// Mirror to profile after the authoritative write.
		var profile models.Profile
		err = tx.Where("user_id = ?", req.UserID).First(&profile).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.Profile{ID: tool.GenerateUUIDV7(), UserID: req.UserID}
		}
		profile.SubscriptionTier = sub.Tier
		profile.SubscriptionStatus = sub.Status
		profile.TrialStartedAt = sub.TrialStartedAt
		profile.TrialEndsAt = sub.TrialEndsAt
		if err := tx.Save(&profile).Error; err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply subscription update: %w", err)
	}

	s.InvalidateUserBilling(ctx, req.UserID)

	// Write the change log asynchronously; errors are logged but not returned.
	go func(b, a *models.Subscription) {
		entry := &models.SubscriptionLog{
			ID:     tool.GenerateUUIDV7(),
			UserID: a.UserID,
			Reason: types.SubscriptionChangeReasonBillingEvent,
			Before: datatypes.NewJSONType(b),
			After:  datatypes.NewJSONType(a),
			Extra:  datatypes.JSONMap{},
		}
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save subscription log: %v", err)
		}
	}(before, sub)

	return sub, nil
}
