package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/skill-league/internal/domain/league"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	leaguemock "github.com/riskibarqy/skill-league/internal/mocks/domain/league"
	snapshotmock "github.com/riskibarqy/skill-league/internal/mocks/domain/snapshot"
	basecache "github.com/riskibarqy/skill-league/internal/platform/cache"
)

var testDate = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func TestSnapshotRepository_GetLatestServedFromCacheUntilUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := snapshotmock.NewRepository(t)
	stored := snapshot.Snapshot{
		ID:    "snap-1",
		Date:  testDate,
		Scope: snapshot.ScopeGlobal,
		TopPerformers: []snapshot.Performer{
			{Rank: 1, UserID: "user-a", TotalPoints: 90, SubjectRanks: map[string]int{"math": 1}},
		},
	}
	next.On("GetLatest", mock.Anything, snapshot.ScopeGlobal).Return(stored, true, nil).Times(2)
	next.On("Upsert", mock.Anything, mock.AnythingOfType("snapshot.Snapshot")).Return(stored, nil).Once()

	repo := NewSnapshotRepository(next, basecache.NewLoader(basecache.NewStore(time.Minute)))

	for range 3 {
		got, ok, err := repo.GetLatest(ctx, snapshot.ScopeGlobal)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "user-a", got.TopPerformers[0].UserID)
		require.Equal(t, 1, got.TopPerformers[0].SubjectRanks["math"])
	}

	_, err := repo.Upsert(ctx, stored)
	require.NoError(t, err)

	_, _, err = repo.GetLatest(ctx, snapshot.ScopeGlobal)
	require.NoError(t, err)
}

func TestSnapshotRepository_CachesMissesAndSkipsErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := snapshotmock.NewRepository(t)
	next.On("GetByDate", mock.Anything, snapshot.Scope("math"), testDate).Return(snapshot.Snapshot{}, false, nil).Once()
	next.On("Summary", mock.Anything).Return(snapshot.Summary{}, errors.New("db down")).Times(2)

	repo := NewSnapshotRepository(next, basecache.NewLoader(basecache.NewStore(time.Minute)))

	for range 2 {
		_, ok, err := repo.GetByDate(ctx, "math", testDate)
		require.NoError(t, err)
		require.False(t, ok)
	}

	for range 2 {
		_, err := repo.Summary(ctx)
		require.Error(t, err)
	}
}

func TestSnapshotRepository_PurgeInvalidatesOnlyWhenRowsRemoved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	from := testDate.AddDate(0, 0, -6)
	next := snapshotmock.NewRepository(t)
	next.On("ListRange", mock.Anything, snapshot.ScopeGlobal, from, testDate).Return([]snapshot.Snapshot{{ID: "a"}}, nil).Times(2)
	next.On("DeleteBefore", mock.Anything, mock.Anything).Return(int64(0), nil).Once()
	next.On("DeleteBefore", mock.Anything, mock.Anything).Return(int64(3), nil).Once()

	repo := NewSnapshotRepository(next, basecache.NewLoader(basecache.NewStore(time.Minute)))

	_, err := repo.ListRange(ctx, snapshot.ScopeGlobal, from, testDate)
	require.NoError(t, err)

	_, err = repo.DeleteBefore(ctx, testDate.AddDate(0, 0, -90))
	require.NoError(t, err)
	_, err = repo.ListRange(ctx, snapshot.ScopeGlobal, from, testDate)
	require.NoError(t, err)

	purged, err := repo.DeleteBefore(ctx, testDate.AddDate(0, 0, -90))
	require.NoError(t, err)
	require.EqualValues(t, 3, purged)
	items, err := repo.ListRange(ctx, snapshot.ScopeGlobal, from, testDate)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestLeagueRepository_WritesInvalidateReads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	item := league.League{ID: "league-1", Name: "Math Sprint", MaxParticipants: 10}
	next := leaguemock.NewRepository(t)
	next.On("GetByID", mock.Anything, "league-1").Return(item, true, nil).Times(2)
	next.On("Join", mock.Anything, "league-1", mock.Anything).Return(league.Participant{LeagueID: "league-1", UserID: "user-a"}, nil).Once()

	repo := NewLeagueRepository(next, basecache.NewLoader(basecache.NewStore(time.Minute)))

	for range 2 {
		got, ok, err := repo.GetByID(ctx, "league-1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Math Sprint", got.Name)
	}

	_, err := repo.Join(ctx, "league-1", func(current league.League) (league.Participant, error) {
		return current.Join("user-a", testDate)
	})
	require.NoError(t, err)

	_, _, err = repo.GetByID(ctx, "league-1")
	require.NoError(t, err)
}
