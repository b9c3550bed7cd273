package usecase

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/skill-league/internal/domain/league"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	"github.com/riskibarqy/skill-league/internal/domain/user"
	"github.com/riskibarqy/skill-league/internal/infrastructure/repository/memory"
	jobschedulermock "github.com/riskibarqy/skill-league/internal/mocks/domain/jobscheduler"
	usermock "github.com/riskibarqy/skill-league/internal/mocks/domain/user"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type aggregatorFixture struct {
	aggregator *SnapshotAggregator
	snapshots  *memory.SnapshotRepository
	runs       *memory.JobRunRepository
	metrics    *recordingMetrics
}

func seededLeagues() []league.League {
	joined := testNow.Add(-5 * time.Hour)
	return []league.League{
		activeTestLeague("m1", "math", league.ScoringPointsOnly,
			scoredParticipant("ana", joined, league.Score{Points: 60, Accuracy: 90, TimeSeconds: 30}),
			scoredParticipant("bob", joined, league.Score{Points: 40, Accuracy: 80, TimeSeconds: 20}),
		),
		activeTestLeague("s1", "science", league.ScoringPointsOnly,
			scoredParticipant("bob", joined, league.Score{Points: 70, Accuracy: 85, TimeSeconds: 40}),
		),
	}
}

func newAggregatorFixture(t *testing.T, leagueRepo league.Repository, snapshotRepo snapshot.Repository, profiles user.Directory) aggregatorFixture {
	t.Helper()

	memSnapshots := memory.NewSnapshotRepository(&counterIDs{})
	if snapshotRepo == nil {
		snapshotRepo = memSnapshots
	}
	runs := memory.NewJobRunRepository()
	metrics := newRecordingMetrics()
	agg := NewSnapshotAggregator(leagueRepo, snapshotRepo, runs, profiles, &counterIDs{}, metrics, SnapshotConfig{
		Subjects:      []string{"math", "science"},
		RetentionDays: 90,
		Workers:       2,
	}, nil)
	agg.now = fixedClock
	return aggregatorFixture{aggregator: agg, snapshots: memSnapshots, runs: runs, metrics: metrics}
}

func TestSnapshotAggregator_Run_StoresEveryScopeAndPurges(t *testing.T) {
	t.Parallel()

	profiles := usermock.NewDirectory(t)
	profiles.
		On("GetProfiles", mock.Anything, mock.Anything).
		Return(map[string]user.Profile{
			"ana": {UserID: "ana", DisplayName: "Ana", Email: "ana@example.com"},
		}, nil)

	f := newAggregatorFixture(t, memory.NewLeagueRepository(seededLeagues()), nil, profiles)
	ctx := context.Background()
	today := snapshot.DateOf(testNow)
	for _, age := range []int{91, 89} {
		_, err := f.snapshots.Upsert(ctx, snapshot.Snapshot{Date: today.AddDate(0, 0, -age), Scope: snapshot.ScopeGlobal})
		require.NoError(t, err)
	}

	run, err := f.aggregator.Run(ctx, jobscheduler.TriggerManual)
	require.NoError(t, err)
	require.Equal(t, jobscheduler.StatusSucceeded, run.Status)
	require.Len(t, run.Scopes, 3)
	require.Equal(t, int64(1), run.Purged)

	global, ok, err := f.snapshots.GetByDate(ctx, snapshot.ScopeGlobal, today)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, global.TopPerformers, 2)
	require.Equal(t, "bob", global.TopPerformers[0].UserID)
	require.Equal(t, map[string]int{"math": 2, "science": 1}, global.TopPerformers[0].SubjectRanks)
	require.Equal(t, "Ana", global.TopPerformers[1].DisplayName)
	require.Empty(t, global.TopPerformers[0].DisplayName)

	math, ok, _ := f.snapshots.GetLatest(ctx, "math")
	require.True(t, ok)
	require.Equal(t, "ana", math.TopPerformers[0].UserID)

	_, kept, _ := f.snapshots.GetByDate(ctx, snapshot.ScopeGlobal, today.AddDate(0, 0, -89))
	require.True(t, kept, "89-day-old snapshot must survive retention")

	stored, ok, err := f.runs.GetLatest(ctx, jobscheduler.JobSnapshot)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, run.ID, stored.ID)
	require.Equal(t, 1, f.metrics.runs[string(jobscheduler.StatusSucceeded)])

	again, err := f.aggregator.Run(ctx, jobscheduler.TriggerManual)
	require.NoError(t, err)
	require.Equal(t, jobscheduler.StatusSucceeded, again.Status)
	summary, _ := f.snapshots.Summary(ctx)
	require.Equal(t, 4, summary.TotalSnapshots, "same-day rerun must overwrite, not duplicate")
}

// blockingLeagueRepo holds List until released so a run stays in flight.
type blockingLeagueRepo struct {
	league.Repository
	entered chan struct{}
	release chan struct{}
}

func (r *blockingLeagueRepo) List(ctx context.Context) ([]league.League, error) {
	close(r.entered)
	<-r.release
	return r.Repository.List(ctx)
}

func TestSnapshotAggregator_Run_OverlappingTriggerIsSkipped(t *testing.T) {
	t.Parallel()

	repo := &blockingLeagueRepo{
		Repository: memory.NewLeagueRepository(seededLeagues()),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	f := newAggregatorFixture(t, repo, nil, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := f.aggregator.Run(ctx, jobscheduler.TriggerScheduled)
		done <- err
	}()
	<-repo.entered

	status, err := f.aggregator.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Running)

	_, err = f.aggregator.Run(ctx, jobscheduler.TriggerManual)
	require.ErrorIs(t, err, ErrRunInProgress)

	close(repo.release)
	require.NoError(t, <-done)
	require.Equal(t, 1, f.metrics.skipped)

	runs, err := f.aggregator.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1, "skipped trigger must not record a run")
	require.False(t, f.aggregator.Running())
}

// flakySnapshotRepo fails or panics on chosen scopes.
type flakySnapshotRepo struct {
	snapshot.Repository
	fail  map[snapshot.Scope]bool
	panic map[snapshot.Scope]bool
}

func (r *flakySnapshotRepo) Upsert(ctx context.Context, item snapshot.Snapshot) (snapshot.Snapshot, error) {
	if r.panic[item.Scope] {
		panic("boom")
	}
	if r.fail[item.Scope] {
		return snapshot.Snapshot{}, errors.New("disk full")
	}
	return r.Repository.Upsert(ctx, item)
}

func TestSnapshotAggregator_Run_ScopeFailuresAreIsolated(t *testing.T) {
	t.Parallel()

	backing := memory.NewSnapshotRepository(&counterIDs{})
	repo := &flakySnapshotRepo{
		Repository: backing,
		fail:       map[snapshot.Scope]bool{"science": true},
		panic:      map[snapshot.Scope]bool{"math": true},
	}
	f := newAggregatorFixture(t, memory.NewLeagueRepository(seededLeagues()), repo, nil)

	run, err := f.aggregator.Run(context.Background(), jobscheduler.TriggerManual)
	require.NoError(t, err)
	require.Equal(t, jobscheduler.StatusPartial, run.Status)

	failed := run.Failed()
	slices.Sort(failed)
	require.Equal(t, []string{"math", "science"}, failed)
	require.Contains(t, run.ErrorMessage, "math")

	_, ok, _ := backing.GetLatest(context.Background(), snapshot.ScopeGlobal)
	require.True(t, ok, "global scope must still be stored")
	require.Equal(t, string(jobscheduler.StatusFailed), f.metrics.scopes["math"])
}

func TestSnapshotAggregator_Run_AllScopesFailing(t *testing.T) {
	t.Parallel()

	repo := &flakySnapshotRepo{
		Repository: memory.NewSnapshotRepository(nil),
		fail:       map[snapshot.Scope]bool{"math": true, "science": true, snapshot.ScopeGlobal: true},
	}
	f := newAggregatorFixture(t, memory.NewLeagueRepository(seededLeagues()), repo, nil)

	run, err := f.aggregator.Run(context.Background(), jobscheduler.TriggerCLI)
	require.ErrorIs(t, err, snapshot.ErrScopeAggregationFailed)
	require.Equal(t, jobscheduler.StatusFailed, run.Status)

	status, err := f.aggregator.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.LastRun)
	require.Equal(t, run.ID, status.LastRun.ID)
}

func TestSnapshotAggregator_PurgeValidatesWindow(t *testing.T) {
	t.Parallel()

	f := newAggregatorFixture(t, memory.NewLeagueRepository(nil), nil, nil)
	ctx := context.Background()
	today := snapshot.DateOf(testNow)
	for _, age := range []int{45, 31, 5} {
		_, _ = f.snapshots.Upsert(ctx, snapshot.Snapshot{Date: today.AddDate(0, 0, -age), Scope: "math"})
	}

	_, err := f.aggregator.Purge(ctx, 7)
	require.ErrorIs(t, err, ErrInvalidInput)

	deleted, err := f.aggregator.Purge(ctx, 30)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	stats, err := f.aggregator.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalSnapshots)
}

func TestSnapshotAggregator_StatusReadsPersistedRunAfterRestart(t *testing.T) {
	t.Parallel()

	persisted := jobscheduler.Run{
		ID:      "run-before-restart",
		JobName: jobscheduler.JobSnapshot,
		Trigger: jobscheduler.TriggerScheduled,
		Status:  jobscheduler.StatusPartial,
	}
	runRepo := jobschedulermock.NewRepository(t)
	runRepo.On("GetLatest", mock.Anything, jobscheduler.JobSnapshot).Return(persisted, true, nil).Once()
	runRepo.On("ListRecent", mock.Anything, jobscheduler.JobSnapshot, 5).Return(nil, errors.New("db down")).Once()

	agg := NewSnapshotAggregator(memory.NewLeagueRepository(nil), memory.NewSnapshotRepository(&counterIDs{}), runRepo, nil, &counterIDs{}, nil, SnapshotConfig{}, nil)

	status, err := agg.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.LastRun)
	require.Equal(t, "run-before-restart", status.LastRun.ID)
	require.False(t, status.Running)
	require.Nil(t, status.NextRunAt)

	_, err = agg.RecentRuns(context.Background(), 5)
	require.ErrorContains(t, err, "db down")

	_, err = agg.RecentRuns(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}
