package snapshot

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/skill-league/internal/domain/league"
)

var aggNow = time.Date(2026, 4, 2, 0, 5, 0, 0, time.UTC)

func scored(userID string, points int, accuracy, secs float64, at time.Time, count int) league.Participant {
	subs := make([]league.Submission, 0, count)
	for i := 0; i < count; i++ {
		subs = append(subs, league.Submission{
			Score:       league.Score{Points: points, Accuracy: accuracy, TimeSeconds: secs},
			SubmittedAt: at.Add(-time.Duration(i) * time.Minute),
		})
	}
	return league.Participant{
		UserID:      userID,
		JoinedAt:    at.Add(-time.Hour),
		Submissions: subs,
		Best:        league.Score{Points: points, Accuracy: accuracy, TimeSeconds: secs},
	}
}

func runningLeague(id, subject string, participants ...league.Participant) league.League {
	return league.League{
		ID:              id,
		Subject:         subject,
		StartsAt:        aggNow.Add(-48 * time.Hour),
		EndsAt:          aggNow.Add(48 * time.Hour),
		MaxParticipants: 100,
		MaxSubmissions:  10,
		Method:          league.ScoringPointsOnly,
		Participants:    participants,
	}
}

func TestBuild_GroupsAcrossLeagues(t *testing.T) {
	t.Parallel()

	yesterday := aggNow.Add(-24 * time.Hour)
	leagues := []league.League{
		runningLeague("math-1", "Math",
			scored("alice", 50, 90, 30, yesterday, 2),
			scored("bob", 70, 80, 40, yesterday, 1),
		),
		runningLeague("sci-1", "science",
			scored("alice", 40, 70, 50, aggNow.Add(-time.Hour), 3),
		),
		func() league.League {
			l := runningLeague("old", "math", scored("carol", 500, 99, 1, yesterday, 1))
			l.Status = league.StatusCompleted
			return l
		}(),
	}

	got := Build(BuildInput{
		Scope:    ScopeGlobal,
		Leagues:  leagues,
		Subjects: []string{"math", "science"},
		Now:      aggNow,
		TopN:     100,
	})

	if !got.Date.Equal(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected snapshot date: %s", got.Date)
	}
	want := []Performer{
		{
			Rank:            1,
			UserID:          "alice",
			TotalPoints:     90,
			Accuracy:        80,
			SubmissionCount: 5,
			AverageTime:     40,
			LastActiveAt:    aggNow.Add(-time.Hour),
			SubjectRanks:    map[string]int{"math": 2, "science": 1},
		},
		{
			Rank:            2,
			UserID:          "bob",
			TotalPoints:     70,
			Accuracy:        80,
			SubmissionCount: 1,
			AverageTime:     40,
			LastActiveAt:    yesterday,
			SubjectRanks:    map[string]int{"math": 1},
		},
	}
	if diff := cmp.Diff(want, got.TopPerformers); diff != "" {
		t.Fatalf("unexpected performers (-want +got):\n%s", diff)
	}

	wantStats := Stats{TotalUsers: 2, AverageAccuracy: 80, AveragePoints: 80, TotalSubmissions: 6}
	if diff := cmp.Diff(wantStats, got.Stats); diff != "" {
		t.Fatalf("unexpected stats (-want +got):\n%s", diff)
	}
}

func TestBuild_SubjectScopeFiltersAndSkipsSubjectRanks(t *testing.T) {
	t.Parallel()

	leagues := []league.League{
		runningLeague("math-1", "math", scored("alice", 50, 90, 30, aggNow, 1)),
		runningLeague("sci-1", "science", scored("bob", 99, 90, 30, aggNow, 1)),
	}
	got := Build(BuildInput{Scope: "math", Leagues: leagues, Subjects: []string{"math", "science"}, Now: aggNow})
	if len(got.TopPerformers) != 1 || got.TopPerformers[0].UserID != "alice" {
		t.Fatalf("unexpected performers: %+v", got.TopPerformers)
	}
	if got.TopPerformers[0].SubjectRanks != nil {
		t.Fatalf("subject scope must not carry subject ranks")
	}
}

func TestBuild_TieBreakOrder(t *testing.T) {
	t.Parallel()

	leagues := []league.League{
		runningLeague("l", "math",
			scored("slow", 50, 90, 60, aggNow, 1),
			scored("fast", 50, 90, 30, aggNow, 1),
			scored("sharp", 50, 95, 90, aggNow, 1),
			scored("beta", 50, 90, 30, aggNow, 1),
		),
	}
	got := Build(BuildInput{Scope: ScopeGlobal, Leagues: leagues, Now: aggNow})
	order := make([]string, 0, len(got.TopPerformers))
	for _, p := range got.TopPerformers {
		order = append(order, p.UserID)
	}
	if diff := cmp.Diff([]string{"sharp", "beta", "fast", "slow"}, order); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestBuild_CapsAtTopN(t *testing.T) {
	t.Parallel()

	participants := make([]league.Participant, 0, 150)
	for i := 0; i < 150; i++ {
		participants = append(participants, scored(fmt.Sprintf("u%03d", i), i+1, 50, 10, aggNow, 1))
	}
	got := Build(BuildInput{Scope: ScopeGlobal, Leagues: []league.League{runningLeague("l", "math", participants...)}, Now: aggNow, TopN: 500})
	if len(got.TopPerformers) != MaxTopPerformers {
		t.Fatalf("top performers: got=%d want=%d", len(got.TopPerformers), MaxTopPerformers)
	}
	if got.TopPerformers[0].UserID != "u149" || got.TopPerformers[99].Rank != 100 {
		t.Fatalf("unexpected head/tail: %+v / %+v", got.TopPerformers[0], got.TopPerformers[99])
	}
	if got.Stats.TotalUsers != MaxTopPerformers {
		t.Fatalf("stats must cover the top list only: got=%d", got.Stats.TotalUsers)
	}
}

func TestBuild_EmptyScope(t *testing.T) {
	t.Parallel()

	got := Build(BuildInput{Scope: "history", Now: aggNow})
	if len(got.TopPerformers) != 0 || got.Stats != (Stats{}) {
		t.Fatalf("expected empty snapshot, got %+v", got)
	}
}

func TestMovementBetween(t *testing.T) {
	t.Parallel()

	three := 3
	cases := []struct {
		prev *int
		cur  int
		want RankMovement
	}{
		{prev: nil, cur: 1, want: RankMovementNew},
		{prev: &three, cur: 1, want: RankMovementUp},
		{prev: &three, cur: 5, want: RankMovementDown},
		{prev: &three, cur: 3, want: RankMovementSame},
	}
	for _, c := range cases {
		if got := MovementBetween(c.prev, c.cur); got != c.want {
			t.Fatalf("MovementBetween(%v, %d)=%s want=%s", c.prev, c.cur, got, c.want)
		}
	}
}

func TestClampRetentionDays(t *testing.T) {
	t.Parallel()

	cases := map[int]int{0: 90, -5: 90, 10: 30, 45: 45, 365: 90}
	for in, want := range cases {
		if got := ClampRetentionDays(in); got != want {
			t.Fatalf("ClampRetentionDays(%d)=%d want=%d", in, got, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	got := Summarize([]Snapshot{
		{Date: day(2), Scope: "math", Stats: Stats{TotalUsers: 4}},
		{Date: day(1), Scope: ScopeGlobal, Stats: Stats{TotalUsers: 10}},
		{Date: day(3), Scope: "math", Stats: Stats{TotalUsers: 5}},
		{Date: day(3), Scope: ScopeGlobal, Stats: Stats{TotalUsers: 11}},
	})

	oldest, latest := day(1), day(3)
	want := Summary{
		TotalSnapshots: 4,
		OldestDate:     &oldest,
		LatestDate:     &latest,
		Scopes: []ScopeSummary{
			{Scope: ScopeGlobal, Count: 2, LatestDate: day(3), AverageUsers: 10.5},
			{Scope: "math", Count: 2, LatestDate: day(3), AverageUsers: 4.5},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected summary (-want +got):\n%s", diff)
	}
	if empty := Summarize(nil); empty.TotalSnapshots != 0 || empty.LatestDate != nil {
		t.Fatalf("unexpected empty summary: %+v", empty)
	}
}
