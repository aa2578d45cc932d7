package trial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/billing"
	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
	cfgpkg "github.com/usecmdr-rgb/ovrsee-sub007/pkg/config"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/logctx"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/tool"
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

// Denial sentinels. These are recoverable outcomes reported to the caller
// with a stable code, not logged as errors.
var (
	ErrTrialAlreadyUsed   = errors.New("trial already used for this email")
	ErrTrialAlreadyActive = errors.New("trial already active for this user")
	ErrSubscriptionActive = errors.New("user already has a live subscription")
)

// Service guards the one-trial-per-email rule and owns the trial start write
// path. Eligibility is keyed by normalized email, not user id, so recreating
// an account under the same address cannot earn a second trial.
type Service struct {
	cfg     *cfgpkg.Config
	db      *gorm.DB
	billing *billing.Service
	log     *zap.SugaredLogger
}

func NewService(cfg *cfgpkg.Config, db *gorm.DB, bill *billing.Service, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, billing: bill, log: log}
}

// NormalizeEmail lower-cases and trims an address. All eligibility reads and
// writes go through this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasEmailUsedTrial reports whether the normalized email has ever consumed a
// trial. The flag never resets once set.
func (s *Service) HasEmailUsedTrial(ctx context.Context, email string) (bool, error) {
	var row models.TrialEligibility
	err := s.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load trial eligibility: %w", err)
	}
	return row.HasUsedTrial, nil
}

// IsUserOnActiveTrial reports whether the user's subscription is trialing
// with an end date still in the future.
func (s *Service) IsUserOnActiveTrial(ctx context.Context, userID string) (bool, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load subscription: %w", err)
	}
	return sub.OnActiveTrial(time.Now()), nil
}

// MarkTrialUsed flags the email as having consumed its trial. Idempotent:
// the unique index on email makes a second call a no-op, it never un-flags
// or double-counts.
func (s *Service) MarkTrialUsed(ctx context.Context, userID, email string) error {
	return s.markTrialUsedTx(ctx, s.db, userID, email)
}

func (s *Service) markTrialUsedTx(ctx context.Context, tx *gorm.DB, userID, email string) error {
	row := &models.TrialEligibility{
		ID:           tool.GenerateUUIDV7(),
		Email:        NormalizeEmail(email),
		HasUsedTrial: true,
		UsedByUserID: userID,
		UsedAt:       time.Now(),
	}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return fmt.Errorf("failed to mark trial used: %w", res.Error)
	}
	return nil
}

// StartTrial grants a trial: eligibility check, mark-used and subscription
// creation run in one transaction so two concurrent starts for the same
// email cannot both pass. The unique index on trial_eligibility.email is the
// backstop; losing the race surfaces as ErrTrialAlreadyUsed.
func (s *Service) StartTrial(ctx context.Context, userID, email string) (*models.Subscription, error) {
	var sub *models.Subscription

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		normalized := NormalizeEmail(email)

		var eligibility models.TrialEligibility
		err := tx.Where("email = ?", normalized).First(&eligibility).Error
		if err == nil && eligibility.HasUsedTrial {
			return ErrTrialAlreadyUsed
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load trial eligibility: %w", err)
		}

		var existing models.Subscription
		err = tx.Where("user_id = ?", userID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load subscription: %w", err)
		}
		if err == nil {
			if existing.OnActiveTrial(time.Now()) {
				return ErrTrialAlreadyActive
			}
			// A live billing record must never be overwritten by a trial:
			// a paying (or past_due/paused, still reactivatable) customer
			// posting trial/start would lose their paid tier, period dates
			// and provider ids. Only an expired trial or a fully canceled
			// subscription may be replaced.
			switch existing.Status {
			case types.SubscriptionStatusTrialing, types.SubscriptionStatusCanceled:
			default:
				return ErrSubscriptionActive
			}
		}

		// Claim the email. RowsAffected == 0 means a concurrent start won the
		// insert between our read and now.
		claim := &models.TrialEligibility{
			ID:           tool.GenerateUUIDV7(),
			Email:        normalized,
			HasUsedTrial: true,
			UsedByUserID: userID,
			UsedAt:       time.Now(),
		}
		res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
			Create(claim)
		if res.Error != nil {
			return fmt.Errorf("failed to mark trial used: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrTrialAlreadyUsed
		}

		now := time.Now()
		ends := now.Add(time.Duration(s.cfg.Trial.DurationDays) * 24 * time.Hour)
		sub = &models.Subscription{
			ID:             tool.GenerateUUIDV7(),
			UserID:         userID,
			Tier:           s.trialTier(),
			Status:         types.SubscriptionStatusTrialing,
			TrialStartedAt: &now,
			TrialEndsAt:    &ends,
		}
		if existing.ID != "" {
			// Preserve identity and the provider metadata a prior record
			// carried, the same way the billing apply path does.
			sub.ID = existing.ID
			sub.CreatedAt = existing.CreatedAt
			sub.Extra = existing.Extra
		}
		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}

		if err := s.mirrorProfile(ctx, tx, userID, normalized, sub); err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Drop the cached billing rows so the next account-mode read sees the
	// trial immediately instead of the pre-trial pair until the TTL expires.
	s.billing.InvalidateUserBilling(ctx, userID)

	logctx.FromCtx(ctx, s.log).Infow("trial started",
		"user_id", userID, "trial_ends_at", sub.TrialEndsAt)

	// Write the change log asynchronously; errors are logged but not returned.
	go func(after *models.Subscription) {
		entry := &models.SubscriptionLog{
			ID:     tool.GenerateUUIDV7(),
			UserID: after.UserID,
			Reason: types.SubscriptionChangeReasonTrialStart,
			After:  datatypes.NewJSONType(after),
			Extra:  datatypes.JSONMap{},
		}
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save subscription log: %v", err)
		}
	}(sub)

	return sub, nil
}

// mirrorProfile writes the denormalized subscription fields onto the profile
// row, creating it when missing.
func (s *Service) mirrorProfile(ctx context.Context, tx *gorm.DB, userID, email string, sub *models.Subscription) error {
	var profile models.Profile
	err := tx.Where("user_id = ?", userID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.Profile{
			ID:     tool.GenerateUUIDV7(),
			UserID: userID,
			Email:  email,
		}
	}
	profile.SubscriptionTier = sub.Tier
	profile.SubscriptionStatus = sub.Status
	profile.TrialStartedAt = sub.TrialStartedAt
	profile.TrialEndsAt = sub.TrialEndsAt
	if err := tx.Save(&profile).Error; err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *Service) trialTier() types.SubscriptionTier {
	tier := types.SubscriptionTier(s.cfg.Trial.Tier)
	if !tier.Known() {
		return types.SubscriptionTierElite
	}
	return tier
}
