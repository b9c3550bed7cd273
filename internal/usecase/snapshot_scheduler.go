package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
)

type SnapshotScheduleConfig struct {
	Hour       int
	Minute     int
	RunOnStart bool
}

// SnapshotScheduler fires the aggregator once a day at a fixed UTC time.
type SnapshotScheduler struct {
	aggregator *SnapshotAggregator
	cfg        SnapshotScheduleConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewSnapshotScheduler(aggregator *SnapshotAggregator, cfg SnapshotScheduleConfig, logger *logging.Logger) *SnapshotScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotScheduler{
		aggregator: aggregator,
		cfg:        cfg,
		logger:     logger.Named("snapshot-scheduler"),
		now:        time.Now,
	}
}

// NextDailyRun returns the first hour:minute UTC strictly after now.
func NextDailyRun(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks until ctx is cancelled.
func (s *SnapshotScheduler) Run(ctx context.Context) {
	s.aggregator.MarkInitialized()
	s.logger.InfoContext(ctx, "snapshot scheduler started",
		"daily_at", fmt.Sprintf("%02d:%02d", s.cfg.Hour, s.cfg.Minute),
		"run_on_start", s.cfg.RunOnStart,
	)

	if s.cfg.RunOnStart {
		s.fire(ctx, jobscheduler.TriggerStartup)
	}

	for {
		next := NextDailyRun(s.now(), s.cfg.Hour, s.cfg.Minute)
		s.aggregator.SetNextRun(next)

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("snapshot scheduler stopped")
			return
		case <-timer.C:
			s.fire(ctx, jobscheduler.TriggerScheduled)
		}
	}
}

func (s *SnapshotScheduler) fire(ctx context.Context, trigger jobscheduler.Trigger) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "snapshot run panicked", "trigger", string(trigger), "panic", rec, "stack", string(debug.Stack()))
		}
	}()

	run, err := s.aggregator.Run(ctx, trigger)
	switch {
	case errors.Is(err, ErrRunInProgress):
		return
	case err != nil:
		s.logger.ErrorContext(ctx, "snapshot run failed", "trigger", string(trigger), "run_id", run.ID, "error", err)
	}
}
