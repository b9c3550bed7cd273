package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/skill-league/internal/infrastructure/repository/memory"
)

func TestNextDailyRun(t *testing.T) {
	t.Parallel()

	jakarta := time.FixedZone("WIB", 7*3600)
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "later today", now: time.Date(2026, 6, 15, 1, 0, 0, 0, time.UTC), want: time.Date(2026, 6, 15, 2, 30, 0, 0, time.UTC)},
		{name: "exactly at fire time", now: time.Date(2026, 6, 15, 2, 30, 0, 0, time.UTC), want: time.Date(2026, 6, 16, 2, 30, 0, 0, time.UTC)},
		{name: "already passed", now: time.Date(2026, 6, 15, 23, 59, 0, 0, time.UTC), want: time.Date(2026, 6, 16, 2, 30, 0, 0, time.UTC)},
		{name: "non utc input", now: time.Date(2026, 6, 15, 8, 0, 0, 0, jakarta), want: time.Date(2026, 6, 16, 2, 30, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		if got := NextDailyRun(c.now, 2, 30); !got.Equal(c.want) {
			t.Fatalf("%s: got=%s want=%s", c.name, got, c.want)
		}
	}
}

func TestSnapshotScheduler_RunOnStartThenStops(t *testing.T) {
	t.Parallel()

	f := newAggregatorFixture(t, memory.NewLeagueRepository(seededLeagues()), nil, nil)
	scheduler := NewSnapshotScheduler(f.aggregator, SnapshotScheduleConfig{Hour: 0, Minute: 0, RunOnStart: true}, nil)
	scheduler.now = fixedClock

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		scheduler.Run(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	var status JobStatus
	for time.Now().Before(deadline) {
		status, _ = f.aggregator.Status(context.Background())
		if status.LastRun != nil && status.NextRunAt != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-stopped

	if !status.Initialized {
		t.Fatalf("scheduler must mark the aggregator initialized")
	}
	if status.LastRun == nil || status.LastRun.Trigger != jobscheduler.TriggerStartup {
		t.Fatalf("expected a startup run, got %+v", status.LastRun)
	}
	if status.NextRunAt == nil || !status.NextRunAt.Equal(time.Date(2026, 6, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next run: %v", status.NextRunAt)
	}
}
