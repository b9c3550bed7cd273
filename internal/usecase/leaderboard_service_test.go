package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/skill-league/internal/domain/league"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	"github.com/riskibarqy/skill-league/internal/infrastructure/repository/memory"
)

func newTestLeaderboardService(t *testing.T, leagues []league.League, snaps ...snapshot.Snapshot) *LeaderboardService {
	t.Helper()

	snapshotRepo := memory.NewSnapshotRepository(&counterIDs{})
	for _, s := range snaps {
		if _, err := snapshotRepo.Upsert(context.Background(), s); err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}
	svc := NewLeaderboardService(memory.NewLeagueRepository(leagues), snapshotRepo, LeaderboardConfig{Subjects: []string{"math", "science"}}, nil)
	svc.now = fixedClock
	return svc
}

func board(date time.Time, scope snapshot.Scope, performers ...snapshot.Performer) snapshot.Snapshot {
	for i := range performers {
		performers[i].Rank = i + 1
	}
	return snapshot.Snapshot{Date: date, Scope: scope, TopPerformers: performers, Stats: snapshot.ComputeStats(performers)}
}

func TestLeaderboardService_LeagueLeaderboard_RanksAndPaginates(t *testing.T) {
	t.Parallel()

	joined := testNow.Add(-10 * time.Hour)
	l := activeTestLeague("l1", "math", league.ScoringPointsOnly,
		league.Participant{UserID: "A", JoinedAt: joined},
		scoredParticipant("B", joined.Add(time.Minute), league.Score{Points: 50}),
		scoredParticipant("C", joined.Add(2*time.Minute), league.Score{Points: 80}),
		scoredParticipant("D", joined.Add(3*time.Minute), league.Score{Points: 80}),
		scoredParticipant("E", joined.Add(4*time.Minute), league.Score{Points: 30}),
	)
	svc := newTestLeaderboardService(t, []league.League{l})
	ctx := context.Background()

	full, err := svc.LeagueLeaderboard(ctx, "l1", 0, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	order := make([]string, 0, len(full.Page.Entries))
	for _, e := range full.Page.Entries {
		order = append(order, e.UserID)
	}
	if diff := cmp.Diff([]string{"C", "D", "B", "E"}, order); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	if full.Page.Total != 4 || full.Status != league.StatusActive {
		t.Fatalf("unexpected page meta: total=%d status=%s", full.Page.Total, full.Status)
	}

	page, err := svc.LeagueLeaderboard(ctx, "l1", 1, 2)
	if err != nil {
		t.Fatalf("paged leaderboard: %v", err)
	}
	if len(page.Page.Entries) != 2 || page.Page.Entries[0].Rank != 2 || page.Page.Entries[1].UserID != "B" {
		t.Fatalf("unexpected page: %+v", page.Page.Entries)
	}

	if _, err := svc.LeagueLeaderboard(ctx, "l1", -1, 10); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative offset, got %v", err)
	}

	me, err := svc.MyLeagueRank(ctx, "l1", "A")
	if err != nil {
		t.Fatalf("my rank: %v", err)
	}
	if me.Ranked || me.Total != 4 {
		t.Fatalf("participant without score must be unranked: %+v", me)
	}
	me, _ = svc.MyLeagueRank(ctx, "l1", "D")
	if !me.Ranked || me.Entry.Rank != 2 {
		t.Fatalf("unexpected rank for D: %+v", me)
	}
	if _, err := svc.MyLeagueRank(ctx, "l1", "Z"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non participant, got %v", err)
	}
}

func TestLeaderboardService_ScopeBoard_LiveFallbackWithoutSnapshot(t *testing.T) {
	t.Parallel()

	l := activeTestLeague("l1", "math", league.ScoringPointsOnly,
		scoredParticipant("ana", testNow.Add(-time.Hour), league.Score{Points: 40, Accuracy: 90, TimeSeconds: 10}),
	)
	svc := newTestLeaderboardService(t, []league.League{l})

	got, err := svc.ScopeBoard(context.Background(), "Math", TimeframeCurrent, 0)
	if err != nil {
		t.Fatalf("scope board: %v", err)
	}
	if got.Source != SourceLive || len(got.Performers) != 1 || got.Performers[0].Movement != snapshot.RankMovementNew {
		t.Fatalf("unexpected live board: %+v", got)
	}

	monthly, err := svc.ScopeBoard(context.Background(), "math", TimeframeMonthly, 0)
	if err != nil {
		t.Fatalf("monthly board: %v", err)
	}
	if monthly.Source != SourceEmpty || len(monthly.Performers) != 0 {
		t.Fatalf("expected empty monthly board, got %+v", monthly)
	}
}

func TestLeaderboardService_ScopeBoard_StaleSnapshotFallsBackToLive(t *testing.T) {
	t.Parallel()

	today := snapshot.DateOf(testNow)
	l := activeTestLeague("l1", "math", league.ScoringPointsOnly,
		scoredParticipant("ana", testNow.Add(-time.Hour), league.Score{Points: 40, Accuracy: 90, TimeSeconds: 10}),
	)

	tests := []struct {
		name       string
		snapAge    int
		wantSource BoardSource
		wantUser   string
	}{
		{name: "forty days old", snapAge: 40, wantSource: SourceLive, wantUser: "ana"},
		{name: "two days old", snapAge: 2, wantSource: SourceLive, wantUser: "ana"},
		{name: "yesterday", snapAge: 1, wantSource: SourceSnapshot, wantUser: "old"},
		{name: "today", snapAge: 0, wantSource: SourceSnapshot, wantUser: "old"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := newTestLeaderboardService(t, []league.League{l},
				board(today.AddDate(0, 0, -tt.snapAge), snapshot.ScopeGlobal, snapshot.Performer{UserID: "old", TotalPoints: 999}),
			)

			got, err := svc.ScopeBoard(context.Background(), "global", TimeframeCurrent, 0)
			if err != nil {
				t.Fatalf("scope board: %v", err)
			}
			if got.Source != tt.wantSource {
				t.Fatalf("unexpected source got=%s want=%s", got.Source, tt.wantSource)
			}
			if len(got.Performers) != 1 || got.Performers[0].UserID != tt.wantUser {
				t.Fatalf("unexpected performers: %+v", got.Performers)
			}

			spot, err := svc.Spotlight(context.Background(), "global")
			if err != nil {
				t.Fatalf("spotlight: %v", err)
			}
			if spot.Source != tt.wantSource || spot.TopPoints == nil || spot.TopPoints.Performer.UserID != tt.wantUser {
				t.Fatalf("unexpected spotlight: source=%s top=%+v", spot.Source, spot.TopPoints)
			}
		})
	}
}

func TestLeaderboardService_ScopeBoard_WeeklyMovement(t *testing.T) {
	t.Parallel()

	today := snapshot.DateOf(testNow)
	svc := newTestLeaderboardService(t, nil,
		board(today.AddDate(0, 0, -6), snapshot.ScopeGlobal,
			snapshot.Performer{UserID: "ana", TotalPoints: 90},
			snapshot.Performer{UserID: "bob", TotalPoints: 80},
		),
		board(today.AddDate(0, 0, -2), snapshot.ScopeGlobal,
			snapshot.Performer{UserID: "ana", TotalPoints: 95},
		),
		board(today, snapshot.ScopeGlobal,
			snapshot.Performer{UserID: "bob", TotalPoints: 120},
			snapshot.Performer{UserID: "ana", TotalPoints: 100},
			snapshot.Performer{UserID: "cat", TotalPoints: 60},
		),
		board(today.AddDate(0, 0, -20), snapshot.ScopeGlobal,
			snapshot.Performer{UserID: "cat", TotalPoints: 500},
		),
	)

	got, err := svc.ScopeBoard(context.Background(), "global", TimeframeWeekly, 0)
	if err != nil {
		t.Fatalf("weekly board: %v", err)
	}
	if got.Source != SourceSnapshot || !got.Date.Equal(today) {
		t.Fatalf("unexpected board source/date: %s %s", got.Source, got.Date)
	}
	if got.BaselineDate == nil || !got.BaselineDate.Equal(today.AddDate(0, 0, -6)) {
		t.Fatalf("unexpected baseline: %v", got.BaselineDate)
	}
	movements := map[string]snapshot.RankMovement{}
	for _, p := range got.Performers {
		movements[p.UserID] = p.Movement
	}
	want := map[string]snapshot.RankMovement{
		"bob": snapshot.RankMovementUp,
		"ana": snapshot.RankMovementDown,
		"cat": snapshot.RankMovementNew,
	}
	if diff := cmp.Diff(want, movements); diff != "" {
		t.Fatalf("unexpected movements (-want +got):\n%s", diff)
	}

	current, err := svc.ScopeBoard(context.Background(), "global", TimeframeCurrent, 2)
	if err != nil {
		t.Fatalf("current board: %v", err)
	}
	if len(current.Performers) != 2 {
		t.Fatalf("limit not applied: %d performers", len(current.Performers))
	}
	if current.BaselineDate != nil {
		t.Fatalf("current board compares against yesterday only, got baseline %v", current.BaselineDate)
	}
}

func TestLeaderboardService_ScopeValidation(t *testing.T) {
	t.Parallel()

	svc := newTestLeaderboardService(t, nil)
	ctx := context.Background()

	if _, err := svc.ScopeBoard(ctx, "astrology", TimeframeCurrent, 0); !errors.Is(err, snapshot.ErrUnknownScope) {
		t.Fatalf("expected ErrUnknownScope, got %v", err)
	}
	if _, err := svc.ScopeBoard(ctx, "global", TimeframeCurrent, 101); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for limit, got %v", err)
	}
	if _, err := ParseTimeframe("yearly"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for timeframe, got %v", err)
	}
	if _, err := svc.LatestSnapshot(ctx, "science"); !errors.Is(err, snapshot.ErrNoSnapshotAvailable) {
		t.Fatalf("expected ErrNoSnapshotAvailable, got %v", err)
	}
	if _, err := svc.SnapshotOn(ctx, "science", testNow); !errors.Is(err, snapshot.ErrNoSnapshotAvailable) {
		t.Fatalf("expected ErrNoSnapshotAvailable for dated lookup, got %v", err)
	}
}

func TestLeaderboardService_SnapshotOn(t *testing.T) {
	t.Parallel()

	today := snapshot.DateOf(testNow)
	svc := newTestLeaderboardService(t, nil,
		board(today.AddDate(0, 0, -1), "math", snapshot.Performer{UserID: "ana"}),
		board(today, "math", snapshot.Performer{UserID: "bob"}),
	)

	got, err := svc.SnapshotOn(context.Background(), " MATH ", today.AddDate(0, 0, -1).Add(15*time.Hour))
	if err != nil {
		t.Fatalf("snapshot on: %v", err)
	}
	if len(got.TopPerformers) != 1 || got.TopPerformers[0].UserID != "ana" {
		t.Fatalf("unexpected performers: %+v", got.TopPerformers)
	}
}

func TestLeaderboardService_Spotlight(t *testing.T) {
	t.Parallel()

	today := snapshot.DateOf(testNow)
	svc := newTestLeaderboardService(t, nil,
		board(today.AddDate(0, 0, -8), "math",
			snapshot.Performer{UserID: "ana"},
			snapshot.Performer{UserID: "bob"},
			snapshot.Performer{UserID: "cat"},
			snapshot.Performer{UserID: "dan"},
		),
		board(today, "math",
			snapshot.Performer{UserID: "dan", TotalPoints: 300, Accuracy: 70, SubmissionCount: 4, AverageTime: 50},
			snapshot.Performer{UserID: "ana", TotalPoints: 200, Accuracy: 99, SubmissionCount: 2, AverageTime: 0},
			snapshot.Performer{UserID: "bob", TotalPoints: 100, Accuracy: 80, SubmissionCount: 9, AverageTime: 20},
		),
	)

	got, err := svc.Spotlight(context.Background(), "math")
	if err != nil {
		t.Fatalf("spotlight: %v", err)
	}
	picks := map[string]string{
		"top":      got.TopPoints.Performer.UserID,
		"accuracy": got.BestAccuracy.Performer.UserID,
		"active":   got.MostActive.Performer.UserID,
		"fastest":  got.Fastest.Performer.UserID,
		"rising":   got.RisingStar.Performer.UserID,
	}
	want := map[string]string{"top": "dan", "accuracy": "ana", "active": "bob", "fastest": "bob", "rising": "dan"}
	if diff := cmp.Diff(want, picks); diff != "" {
		t.Fatalf("unexpected spotlight (-want +got):\n%s", diff)
	}
	if got.RisingStar.RankGain != 3 {
		t.Fatalf("rising star gain: got=%d want=3", got.RisingStar.RankGain)
	}
}

func TestLeaderboardService_UserHistory(t *testing.T) {
	t.Parallel()

	today := snapshot.DateOf(testNow)
	svc := newTestLeaderboardService(t, nil,
		board(today.AddDate(0, 0, -2), "science", snapshot.Performer{UserID: "bob"}, snapshot.Performer{UserID: "ana", TotalPoints: 10}),
		board(today.AddDate(0, 0, -1), "science", snapshot.Performer{UserID: "bob"}),
		board(today, "science", snapshot.Performer{UserID: "ana", TotalPoints: 30}),
		board(today.AddDate(0, 0, -40), "science", snapshot.Performer{UserID: "ana"}),
	)

	got, err := svc.UserHistory(context.Background(), "science", "ana", 7)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := []HistoryPoint{
		{Date: today.AddDate(0, 0, -2), Ranked: true, Rank: 2, TotalPoints: 10},
		{Date: today.AddDate(0, 0, -1)},
		{Date: today, Ranked: true, Rank: 1, TotalPoints: 30},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected history (-want +got):\n%s", diff)
	}
	if _, err := svc.UserHistory(context.Background(), "science", "ana", 91); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for days, got %v", err)
	}
}
