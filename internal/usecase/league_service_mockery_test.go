package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/league"
	leaguemock "github.com/riskibarqy/skill-league/internal/mocks/domain/league"
	"github.com/stretchr/testify/mock"
)

func TestLeagueService_GetLeague_NotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)
	service := NewLeagueService(leagueRepo, &counterIDs{}, nil, LeagueConfig{}, nil)

	leagueRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "missing-league").
		Return(league.League{}, false, nil).
		Once()

	_, err := service.GetLeague(ctx, "missing-league")
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, league.ErrLeagueNotFound) {
		t.Fatalf("expected ErrNotFound wrapping ErrLeagueNotFound, got %v", err)
	}
}

func TestLeagueService_CreateLeague_UsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)
	service := NewLeagueService(leagueRepo, &counterIDs{}, nil, LeagueConfig{}, nil)
	service.now = fixedClock

	leagueRepo.
		On("Create", mock.Anything, mock.MatchedBy(func(item league.League) bool {
			return item.ID == "id-001" &&
				item.Subject == "math" &&
				item.Method == league.ScoringPointsOnly &&
				item.Status == league.StatusUpcoming &&
				item.CreatedAt.Equal(testNow)
		})).
		Return(nil).
		Once()

	got, err := service.CreateLeague(ctx, CreateLeagueInput{
		Name:            "  Algebra Cup ",
		Subject:         " Math ",
		StartsAt:        testNow.Add(time.Hour),
		EndsAt:          testNow.Add(48 * time.Hour),
		MaxParticipants: 20,
		MaxSubmissions:  3,
	})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	if got.League.Name != "Algebra Cup" || got.Status != league.StatusUpcoming || got.SpotsRemaining != 20 {
		t.Fatalf("unexpected view: %+v", got)
	}
}

func TestLeagueService_CreateLeague_RejectsInvalidUsingMockery(t *testing.T) {
	t.Parallel()

	leagueRepo := leaguemock.NewRepository(t)
	service := NewLeagueService(leagueRepo, &counterIDs{}, nil, LeagueConfig{}, nil)

	cases := map[string]CreateLeagueInput{
		"end before start": {Name: "x", Subject: "math", StartsAt: testNow, EndsAt: testNow.Add(-time.Hour), MaxParticipants: 1, MaxSubmissions: 1},
		"zero capacity":    {Name: "x", Subject: "math", StartsAt: testNow, EndsAt: testNow.Add(time.Hour), MaxParticipants: 0, MaxSubmissions: 1},
		"zero cap":         {Name: "x", Subject: "math", StartsAt: testNow, EndsAt: testNow.Add(time.Hour), MaxParticipants: 1, MaxSubmissions: 0},
		"unknown method":   {Name: "x", Subject: "math", StartsAt: testNow, EndsAt: testNow.Add(time.Hour), MaxParticipants: 1, MaxSubmissions: 1, Method: "fastest"},
	}
	for name, input := range cases {
		if _, err := service.CreateLeague(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestLeagueService_CreateLeague_OnlyConfiguredSubjectsUsingMockery(t *testing.T) {
	t.Parallel()

	leagueRepo := leaguemock.NewRepository(t)
	service := NewLeagueService(leagueRepo, &counterIDs{}, nil, LeagueConfig{Subjects: []string{" Math", "science "}}, nil)
	service.now = fixedClock

	input := CreateLeagueInput{Name: "x", Subject: "astronomy", StartsAt: testNow, EndsAt: testNow.Add(time.Hour), MaxParticipants: 1, MaxSubmissions: 1}
	if _, err := service.CreateLeague(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for subject without a board, got %v", err)
	}

	leagueRepo.
		On("Create", mock.Anything, mock.MatchedBy(func(item league.League) bool { return item.Subject == "science" })).
		Return(nil).
		Once()

	input.Subject = "SCIENCE"
	if _, err := service.CreateLeague(context.Background(), input); err != nil {
		t.Fatalf("create league for configured subject: %v", err)
	}
}

func TestLeagueService_JoinLeague_RunsLedgerUnderRepositoryLockUsingMockery(t *testing.T) {
	t.Parallel()

	leagueRepo := leaguemock.NewRepository(t)
	service := NewLeagueService(leagueRepo, &counterIDs{}, nil, LeagueConfig{}, nil)
	service.now = fixedClock

	stored := activeTestLeague("l1", "math", league.ScoringPointsOnly)
	stored.MaxParticipants = 1
	stored.Participants = []league.Participant{{UserID: "first", JoinedAt: testNow.Add(-time.Hour)}}

	leagueRepo.
		On("Join", mock.Anything, "l1", mock.AnythingOfType("league.JoinFunc")).
		Return(func(_ context.Context, _ string, fn league.JoinFunc) (league.Participant, error) {
			return fn(stored)
		}).
		Once()

	_, err := service.JoinLeague(context.Background(), "l1", "second")
	if !errors.Is(err, league.ErrLeagueFull) {
		t.Fatalf("expected ErrLeagueFull, got %v", err)
	}
}
