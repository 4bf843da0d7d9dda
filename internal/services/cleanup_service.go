package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/juju/clock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/krishnaproperties/estate-service/internal/config"
	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

const (
	// cleanupBatchSize bounds every delete commit.
	cleanupBatchSize = 400
	// A batch that keeps racing another writer is given up on after this
	// many fresh selections.
	cleanupMaxRaces   = 3
	cleanupRetryDelay = 3 * time.Second
)

// CleanupService prunes raw events and notifications past retention,
// folding event counts into the monthly rollup first.
type CleanupService interface {
	Run(ctx context.Context) (*dtos.CleanupResponse, error)
	CleanupDaily(ctx context.Context) error
}

type cleanupService struct {
	eventRepo repositories.EventRepository
	notifRepo repositories.NotificationRepository
	cfg       *config.Config
	metrics   *Metrics
	clk       clock.Clock
}

func NewCleanupService(
	eventRepo repositories.EventRepository,
	notifRepo repositories.NotificationRepository,
	cfg *config.Config,
	metrics *Metrics,
	clk clock.Clock,
) CleanupService {
	return &cleanupService{
		eventRepo: eventRepo,
		notifRepo: notifRepo,
		cfg:       cfg,
		metrics:   metrics,
		clk:       clk,
	}
}

// Run deletes in batches. Each batch commits on its own, so an error
// leaves earlier batches deleted and reports the counts so far.
func (s *cleanupService) Run(ctx context.Context) (*dtos.CleanupResponse, error) {
	cutoff := s.clk.Now().UTC().Add(-s.cfg.EventRetention)
	res := &dtos.CleanupResponse{Message: "Cleanup completed", AggregatedMonths: []string{}}

	months := map[string]struct{}{}
	err := s.cleanEvents(ctx, cutoff, res, months)
	for m := range months {
		res.AggregatedMonths = append(res.AggregatedMonths, m)
	}
	sort.Strings(res.AggregatedMonths)
	if err != nil {
		return res, err
	}

	if err := s.cleanNotifications(ctx, cutoff, res); err != nil {
		return res, err
	}

	utils.Logger.Infof("Cleanup removed %d events and %d notifications older than %s",
		res.EventsDeleted, res.NotificationsDeleted, cutoff.Format(time.RFC3339))
	return res, nil
}

func (s *cleanupService) cleanEvents(ctx context.Context, cutoff time.Time, res *dtos.CleanupResponse, months map[string]struct{}) error {
	races := 0
	for {
		batch, err := s.eventRepo.ExpiredBatch(ctx, cutoff, cleanupBatchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		ids := make([]any, 0, len(batch))
		rollup := map[string]map[string]int64{}
		for _, ev := range batch {
			ids = append(ids, ev.ID)
			// Untyped or undated events are dropped without being counted.
			if ev.Type == "" || ev.Month == "" {
				continue
			}
			if rollup[ev.Month] == nil {
				rollup[ev.Month] = map[string]int64{}
			}
			rollup[ev.Month][ev.Type]++
		}

		err = s.eventRepo.DeleteAndRollUp(ctx, ids, rollup)
		if errors.Is(err, utils.ErrBatchChanged) && races < cleanupMaxRaces {
			races++
			utils.Logger.Warn("Event batch changed during cleanup; reselecting")
			continue
		}
		if err != nil {
			return err
		}
		races = 0

		res.EventsDeleted += len(ids)
		s.metrics.cleaned(repositories.CollEvents, len(ids))
		for m := range rollup {
			months[m] = struct{}{}
		}
		if len(batch) < cleanupBatchSize {
			return nil
		}
	}
}

func (s *cleanupService) cleanNotifications(ctx context.Context, cutoff time.Time, res *dtos.CleanupResponse) error {
	races := 0
	for {
		ids, err := s.notifRepo.ExpiredBatch(ctx, cutoff, cleanupBatchSize)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		err = s.notifRepo.DeleteBatch(ctx, ids)
		if errors.Is(err, utils.ErrBatchChanged) && races < cleanupMaxRaces {
			races++
			utils.Logger.Warn("Notification batch changed during cleanup; reselecting")
			continue
		}
		if err != nil {
			return err
		}
		races = 0

		res.NotificationsDeleted += len(ids)
		s.metrics.cleaned(repositories.CollNotifications, len(ids))
		if len(ids) < cleanupBatchSize {
			return nil
		}
	}
}

// CleanupDaily is the cron entry point. A transient network error gets
// one retry after a short pause.
func (s *cleanupService) CleanupDaily(ctx context.Context) error {
	_, err := s.Run(ctx)
	if err != nil && (mongo.IsNetworkError(err) || mongo.IsTimeout(err)) {
		utils.Logger.WithError(err).Warn("Cleanup hit transient DB error; retrying once")
		select {
		case <-s.clk.After(cleanupRetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
		_, err = s.Run(ctx)
	}
	if err != nil {
		utils.Logger.WithError(err).Error("Daily cleanup failed")
		return err
	}
	utils.Logger.Info("Daily cleanup completed successfully.")
	return nil
}
