package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/lifecycle"
	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
	cfgpkg "github.com/usecmdr-rgb/ovrsee-sub007/pkg/config"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/tool"
	types "github.com/usecmdr-rgb/ovrsee-sub007/pkg/types"
)

const sweepBatchSize = 500

// Service runs the daily entitlement sweep: it snapshots every user's derived
// account mode and reports accounts that have entered data-cleared. It never
// deletes anything; the purge itself belongs to the external retention job.
type Service struct {
	db        *gorm.DB
	lifecycle *lifecycle.Service
	cronSpec  string
	log       *zap.SugaredLogger

	c *cron.Cron
}

func NewService(cfg *cfgpkg.Config, db *gorm.DB, lc *lifecycle.Service, log *zap.SugaredLogger) *Service {
	return &Service{db: db, lifecycle: lc, cronSpec: cfg.Retention.CronSpec, log: log}
}

// Sweep walks all subscriptions in batches, computes the account mode for
// each and upserts the daily snapshot. Returns the number of accounts seen in
// data-cleared.
func (s *Service) Sweep(ctx context.Context, now time.Time) (int, error) {
	snapshotDate := now.Format(time.DateOnly)
	cleared := 0
	offset := 0

	for {
		var subs []*models.Subscription
		err := s.db.WithContext(ctx).
			Order("user_id").
			Limit(sweepBatchSize).
			Offset(offset).
			Find(&subs).Error
		if err != nil {
			return cleared, fmt.Errorf("failed to scan subscriptions: %w", err)
		}
		if len(subs) == 0 {
			break
		}

		snaps := lo.Map(subs, func(sub *models.Subscription, _ int) *models.EntitlementDailySnapshot {
			return s.buildSnapshot(sub, now, snapshotDate)
		})
		cleared += lo.CountBy(snaps, func(snap *models.EntitlementDailySnapshot) bool {
			return snap.AccountMode == types.AccountModeDataCleared
		})

		// Re-running the sweep on the same day overwrites that day's rows.
		err = s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
				UpdateAll: true,
			}).
			Create(snaps).Error
		if err != nil {
			return cleared, fmt.Errorf("failed to save snapshots: %w", err)
		}

		if len(subs) < sweepBatchSize {
			break
		}
		offset += sweepBatchSize
	}

	s.log.Infow("entitlement sweep finished",
		"snapshot_date", snapshotDate, "data_cleared", cleared)
	return cleared, nil
}

// buildSnapshot derives one user's snapshot row. Restricted accounts also
// record the retention anchor their window counts from, so the purge report
// shows when each account entered its window.
func (s *Service) buildSnapshot(sub *models.Subscription, now time.Time, snapshotDate string) *models.EntitlementDailySnapshot {
	extra := datatypes.JSONMap{}
	if anchor := lifecycle.RetentionAnchor(sub); anchor != nil {
		extra["retention_anchor"] = anchor
	}
	return &models.EntitlementDailySnapshot{
		ID:                tool.GenerateUUIDV7(),
		UserID:            sub.UserID,
		AccountMode:       s.lifecycle.ComputeAccountMode(nil, sub, now),
		Tier:              sub.Tier,
		Status:            sub.Status,
		Extra:             extra,
		SnapshotDate:      snapshotDate,
		SnapshotCreatedAt: time.Now(),
	}
}

// ListSnapshots returns snapshots for the admin listing, newest date first,
// optionally narrowed by generic filters.
func (s *Service) ListSnapshots(ctx context.Context, filters []*types.CommonFilter, from, size int) ([]*models.EntitlementDailySnapshot, error) {
	q := s.db.WithContext(ctx).Model(&models.EntitlementDailySnapshot{})
	for _, f := range filters {
		q = q.Where(clause.Where{Exprs: []clause.Expression{f}})
	}
	var snaps []*models.EntitlementDailySnapshot
	if err := q.Order("snapshot_date desc").Offset(from).Limit(size).Find(&snaps).Error; err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snaps, nil
}

// start schedules the sweep.
func (s *Service) start() error {
	s.c = cron.New()
	_, err := s.c.AddFunc(s.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx, time.Now()); err != nil {
			s.log.Errorf("entitlement sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}
	s.c.Start()
	s.log.Infow("retention sweep scheduled", "spec", s.cronSpec)
	return nil
}

func (s *Service) stop() {
	if s.c != nil {
		<-s.c.Stop().Done()
	}
}

func runSweeper(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.start()
		},
		OnStop: func(ctx context.Context) error {
			s.stop()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(runSweeper),
)
