package usecase

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/skill-league/internal/domain/league"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	"github.com/riskibarqy/skill-league/internal/domain/user"
	"github.com/riskibarqy/skill-league/internal/platform/id"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

type SnapshotConfig struct {
	Subjects      []string
	TopN          int
	RetentionDays int
	Workers       int
}

// JobStatus is the scheduler-facing view of the aggregator.
type JobStatus struct {
	Running     bool
	Initialized bool
	NextRunAt   *time.Time
	LastRun     *jobscheduler.Run
}

// SnapshotAggregator builds and persists the daily top-N boards. At most one
// run executes at a time; overlapping triggers are skipped.
type SnapshotAggregator struct {
	leagueRepo   league.Repository
	snapshotRepo snapshot.Repository
	runRepo      jobscheduler.Repository
	profiles     user.Directory
	ids          id.Generator
	metrics      SnapshotMetrics
	cfg          SnapshotConfig
	logger       *logging.Logger
	now          func() time.Time

	running     atomic.Bool
	initialized atomic.Bool
	nextRun     atomic.Pointer[time.Time]
	lastRun     atomic.Pointer[jobscheduler.Run]
}

func NewSnapshotAggregator(
	leagueRepo league.Repository,
	snapshotRepo snapshot.Repository,
	runRepo jobscheduler.Repository,
	profiles user.Directory,
	ids id.Generator,
	metrics SnapshotMetrics,
	cfg SnapshotConfig,
	logger *logging.Logger,
) *SnapshotAggregator {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TopN <= 0 || cfg.TopN > snapshot.MaxTopPerformers {
		cfg.TopN = snapshot.MaxTopPerformers
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	cfg.RetentionDays = snapshot.ClampRetentionDays(cfg.RetentionDays)

	return &SnapshotAggregator{
		leagueRepo:   leagueRepo,
		snapshotRepo: snapshotRepo,
		runRepo:      runRepo,
		profiles:     profiles,
		ids:          ids,
		metrics:      metrics,
		cfg:          cfg,
		logger:       logger.Named("snapshot"),
		now:          time.Now,
	}
}

// Run aggregates every subject scope and then the global scope, purges
// snapshots past retention and records the run. It returns ErrRunInProgress
// without doing any work when another run holds the flag. A run where every
// scope failed also returns ErrScopeAggregationFailed; partial failures only
// show in the report.
func (a *SnapshotAggregator) Run(ctx context.Context, trigger jobscheduler.Trigger) (jobscheduler.Run, error) {
	if !a.running.CompareAndSwap(false, true) {
		a.metrics.IncSkippedRun(string(trigger))
		a.logger.WarnContext(ctx, "snapshot run skipped, previous run still in progress", "trigger", string(trigger))
		return jobscheduler.Run{}, ErrRunInProgress
	}
	defer a.running.Store(false)

	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotAggregator.Run")
	defer span.End()

	runID, err := a.ids.NewID()
	if err != nil {
		return jobscheduler.Run{}, fmt.Errorf("generate run id: %w", err)
	}
	now := a.now().UTC()
	run := jobscheduler.Run{
		ID:        runID,
		JobName:   jobscheduler.JobSnapshot,
		Trigger:   trigger,
		Status:    jobscheduler.StatusRunning,
		StartedAt: now,
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		run.TraceID = spanCtx.TraceID().String()
		run.SpanID = spanCtx.SpanID().String()
	}
	a.logger.InfoContext(ctx, "snapshot run started", "run_id", run.ID, "trigger", string(trigger))

	leagues, err := a.leagueRepo.List(ctx)
	if err != nil {
		run.Status = jobscheduler.StatusFailed
		run.ErrorMessage = fmt.Sprintf("list leagues: %v", err)
		a.finish(ctx, &run)
		return run, fmt.Errorf("list leagues: %w", err)
	}

	subjectResults, err := a.runSubjectScopes(ctx, leagues, now)
	if err != nil {
		run.Status = jobscheduler.StatusFailed
		run.ErrorMessage = err.Error()
		a.finish(ctx, &run)
		return run, err
	}
	run.Scopes = append(subjectResults, a.runScope(ctx, snapshot.ScopeGlobal, leagues, now))

	cutoff := snapshot.DateOf(now).AddDate(0, 0, -a.cfg.RetentionDays)
	purged, err := a.snapshotRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		a.logger.WarnContext(ctx, "purge expired snapshots failed", "cutoff", cutoff.Format(time.DateOnly), "error", err)
	} else {
		run.Purged = purged
	}

	run.Status = jobscheduler.ResolveStatus(run.Scopes)
	if failed := run.Failed(); len(failed) > 0 {
		run.ErrorMessage = "failed scopes: " + strings.Join(failed, ",")
	}
	a.finish(ctx, &run)

	if run.Status == jobscheduler.StatusFailed {
		return run, fmt.Errorf("%w: %s", snapshot.ErrScopeAggregationFailed, run.ErrorMessage)
	}
	return run, nil
}

func (a *SnapshotAggregator) runSubjectScopes(ctx context.Context, leagues []league.League, now time.Time) ([]jobscheduler.ScopeResult, error) {
	scopes := make([]snapshot.Scope, 0, len(a.cfg.Subjects))
	for _, subject := range a.cfg.Subjects {
		scope := snapshot.ParseScope(subject)
		if scope == "" || scope.IsGlobal() {
			continue
		}
		scopes = append(scopes, scope)
	}
	results := make([]jobscheduler.ScopeResult, len(scopes))
	if len(scopes) == 0 {
		return results, nil
	}

	pool, err := ants.NewPool(min(a.cfg.Workers, len(scopes)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, scope := range scopes {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results[i] = a.runScope(ctx, scope, leagues, now)
		}); err != nil {
			workers.Done()
			results[i] = jobscheduler.ScopeResult{
				Scope:  scope.String(),
				Status: jobscheduler.StatusFailed,
				Error:  fmt.Sprintf("submit to worker pool: %v", err),
			}
		}
	}
	workers.Wait()
	return results, nil
}

// runScope never panics; a failing scope is reported and the run moves on.
func (a *SnapshotAggregator) runScope(ctx context.Context, scope snapshot.Scope, leagues []league.League, now time.Time) (result jobscheduler.ScopeResult) {
	start := time.Now()
	result = jobscheduler.ScopeResult{Scope: scope.String(), Status: jobscheduler.StatusSucceeded}
	defer func() {
		if rec := recover(); rec != nil {
			result.Status = jobscheduler.StatusFailed
			result.Error = fmt.Sprintf("panic: %v", rec)
			a.logger.ErrorContext(ctx, "snapshot scope panicked", "scope", scope.String(), "panic", rec, "stack", string(debug.Stack()))
		}
		result.Duration = time.Since(start)
		a.metrics.ObserveScope(result.Scope, string(result.Status), result.Duration)
	}()

	item := snapshot.Build(snapshot.BuildInput{
		Scope:    scope,
		Leagues:  leagues,
		Subjects: a.cfg.Subjects,
		Now:      now,
		TopN:     a.cfg.TopN,
	})
	a.attachProfiles(ctx, &item)

	saved, err := a.snapshotRepo.Upsert(ctx, item)
	if err != nil {
		result.Status = jobscheduler.StatusFailed
		result.Error = err.Error()
		a.logger.ErrorContext(ctx, "persist snapshot failed", "scope", scope.String(), "error", err)
		return result
	}

	result.Performers = len(saved.TopPerformers)
	a.logger.InfoContext(ctx, "snapshot scope stored", "scope", scope.String(), "performers", result.Performers, "date", saved.Date.Format(time.DateOnly))
	return result
}

// attachProfiles fills display fields. Directory failures leave them empty.
func (a *SnapshotAggregator) attachProfiles(ctx context.Context, item *snapshot.Snapshot) {
	if a.profiles == nil || len(item.TopPerformers) == 0 {
		return
	}
	userIDs := make([]string, 0, len(item.TopPerformers))
	for _, p := range item.TopPerformers {
		userIDs = append(userIDs, p.UserID)
	}
	profiles, err := a.profiles.GetProfiles(ctx, userIDs)
	if err != nil {
		a.logger.WarnContext(ctx, "profile lookup failed, storing snapshot without display fields", "scope", item.Scope.String(), "error", err)
		return
	}
	for i := range item.TopPerformers {
		if profile, ok := profiles[item.TopPerformers[i].UserID]; ok {
			item.TopPerformers[i].DisplayName = profile.DisplayName
			item.TopPerformers[i].Email = profile.Email
		}
	}
}

func (a *SnapshotAggregator) finish(ctx context.Context, run *jobscheduler.Run) {
	run.FinishedAt = a.now().UTC()
	if a.runRepo != nil {
		if err := a.runRepo.Save(ctx, *run); err != nil {
			a.logger.WarnContext(ctx, "save snapshot run failed", "run_id", run.ID, "error", err)
		}
	}
	saved := *run
	a.lastRun.Store(&saved)
	a.metrics.ObserveRun(string(run.Trigger), string(run.Status), run.Duration())

	a.logger.InfoContext(ctx, "snapshot run finished",
		"run_id", run.ID,
		"status", string(run.Status),
		"scopes", len(run.Scopes),
		"purged", run.Purged,
		"duration", run.Duration(),
	)
}

func (a *SnapshotAggregator) Running() bool {
	return a.running.Load()
}

func (a *SnapshotAggregator) MarkInitialized() {
	a.initialized.Store(true)
}

func (a *SnapshotAggregator) SetNextRun(at time.Time) {
	at = at.UTC()
	a.nextRun.Store(&at)
}

func (a *SnapshotAggregator) Status(ctx context.Context) (JobStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotAggregator.Status")
	defer span.End()

	out := JobStatus{
		Running:     a.running.Load(),
		Initialized: a.initialized.Load(),
		NextRunAt:   a.nextRun.Load(),
		LastRun:     a.lastRun.Load(),
	}
	if out.LastRun == nil && a.runRepo != nil {
		last, ok, err := a.runRepo.GetLatest(ctx, jobscheduler.JobSnapshot)
		if err != nil {
			return JobStatus{}, fmt.Errorf("get latest snapshot run: %w", err)
		}
		if ok {
			out.LastRun = &last
		}
	}
	return out, nil
}

func (a *SnapshotAggregator) Stats(ctx context.Context) (snapshot.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotAggregator.Stats")
	defer span.End()

	summary, err := a.snapshotRepo.Summary(ctx)
	if err != nil {
		return snapshot.Summary{}, fmt.Errorf("summarize snapshots: %w", err)
	}
	return summary, nil
}

func (a *SnapshotAggregator) RecentRuns(ctx context.Context, limit int) ([]jobscheduler.Run, error) {
	if limit <= 0 || limit > 100 {
		return nil, fmt.Errorf("%w: limit must be within 1..100", ErrInvalidInput)
	}
	if a.runRepo == nil {
		return []jobscheduler.Run{}, nil
	}
	runs, err := a.runRepo.ListRecent(ctx, jobscheduler.JobSnapshot, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshot runs: %w", err)
	}
	return runs, nil
}

// Purge deletes snapshots dated more than days before today.
func (a *SnapshotAggregator) Purge(ctx context.Context, days int) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotAggregator.Purge")
	defer span.End()

	if days < snapshot.MinRetentionDays || days > snapshot.MaxRetentionDays {
		return 0, fmt.Errorf("%w: days must be within %d..%d", ErrInvalidInput, snapshot.MinRetentionDays, snapshot.MaxRetentionDays)
	}
	cutoff := snapshot.DateOf(a.now()).AddDate(0, 0, -days)
	deleted, err := a.snapshotRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots before %s: %w", cutoff.Format(time.DateOnly), err)
	}
	a.logger.InfoContext(ctx, "snapshots purged", "cutoff", cutoff.Format(time.DateOnly), "deleted", deleted)
	return deleted, nil
}
