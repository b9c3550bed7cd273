package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/league"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	basecache "github.com/riskibarqy/skill-league/internal/platform/cache"
)

const (
	leaguePrefix   = "league:"
	snapshotPrefix = "snapshot:"
)

// LeagueRepository caches league reads. Every write drops all league keys
// since a join or submission changes List as well as GetByID.
type LeagueRepository struct {
	next   league.Repository
	loader *basecache.Loader
}

func NewLeagueRepository(next league.Repository, loader *basecache.Loader) *LeagueRepository {
	return &LeagueRepository{next: next, loader: loader}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	return basecache.GetOrLoad(ctx, r.loader, leaguePrefix+"list", r.next.List)
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	cached, err := basecache.GetOrLoad(ctx, r.loader, leaguePrefix+"id:"+leagueID, func(ctx context.Context) (cachedLeague, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		return cachedLeague{Value: item, Exists: exists}, err
	})
	if err != nil {
		return league.League{}, false, err
	}
	return cached.Value, cached.Exists, nil
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League) error {
	defer r.invalidate(ctx)
	return r.next.Create(ctx, item)
}

func (r *LeagueRepository) UpdateStatus(ctx context.Context, leagueID string, status league.Status) error {
	defer r.invalidate(ctx)
	return r.next.UpdateStatus(ctx, leagueID, status)
}

func (r *LeagueRepository) Join(ctx context.Context, leagueID string, fn league.JoinFunc) (league.Participant, error) {
	defer r.invalidate(ctx)
	return r.next.Join(ctx, leagueID, fn)
}

func (r *LeagueRepository) Submit(ctx context.Context, leagueID, userID string, fn league.SubmitFunc) (league.Participant, error) {
	defer r.invalidate(ctx)
	return r.next.Submit(ctx, leagueID, userID, fn)
}

func (r *LeagueRepository) invalidate(ctx context.Context) {
	if r.loader == nil || r.loader.Cache() == nil {
		return
	}
	r.loader.Cache().DeletePrefix(ctx, leaguePrefix)
}

type cachedLeague struct {
	Value  league.League
	Exists bool
}

// SnapshotRepository caches snapshot reads until the next upsert or purge.
type SnapshotRepository struct {
	next   snapshot.Repository
	loader *basecache.Loader
}

func NewSnapshotRepository(next snapshot.Repository, loader *basecache.Loader) *SnapshotRepository {
	return &SnapshotRepository{next: next, loader: loader}
}

func (r *SnapshotRepository) Upsert(ctx context.Context, item snapshot.Snapshot) (snapshot.Snapshot, error) {
	stored, err := r.next.Upsert(ctx, item)
	if err == nil {
		r.invalidate(ctx)
	}
	return stored, err
}

func (r *SnapshotRepository) GetLatest(ctx context.Context, scope snapshot.Scope) (snapshot.Snapshot, bool, error) {
	cached, err := basecache.GetOrLoad(ctx, r.loader, snapshotKey("latest", scope.String()), func(ctx context.Context) (cachedSnapshot, error) {
		item, exists, err := r.next.GetLatest(ctx, scope)
		return cachedSnapshot{Value: item, Exists: exists}, err
	})
	if err != nil {
		return snapshot.Snapshot{}, false, err
	}
	return cached.Value, cached.Exists, nil
}

func (r *SnapshotRepository) GetByDate(ctx context.Context, scope snapshot.Scope, date time.Time) (snapshot.Snapshot, bool, error) {
	key := snapshotKey("date", scope.String(), dateKey(date))
	cached, err := basecache.GetOrLoad(ctx, r.loader, key, func(ctx context.Context) (cachedSnapshot, error) {
		item, exists, err := r.next.GetByDate(ctx, scope, date)
		return cachedSnapshot{Value: item, Exists: exists}, err
	})
	if err != nil {
		return snapshot.Snapshot{}, false, err
	}
	return cached.Value, cached.Exists, nil
}

func (r *SnapshotRepository) ListRange(ctx context.Context, scope snapshot.Scope, from, to time.Time) ([]snapshot.Snapshot, error) {
	key := snapshotKey("range", scope.String(), dateKey(from), dateKey(to))
	return basecache.GetOrLoad(ctx, r.loader, key, func(ctx context.Context) ([]snapshot.Snapshot, error) {
		return r.next.ListRange(ctx, scope, from, to)
	})
}

func (r *SnapshotRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	purged, err := r.next.DeleteBefore(ctx, cutoff)
	if err == nil && purged > 0 {
		r.invalidate(ctx)
	}
	return purged, err
}

func (r *SnapshotRepository) Summary(ctx context.Context) (snapshot.Summary, error) {
	return basecache.GetOrLoad(ctx, r.loader, snapshotKey("summary"), r.next.Summary)
}

func (r *SnapshotRepository) invalidate(ctx context.Context) {
	if r.loader == nil || r.loader.Cache() == nil {
		return
	}
	r.loader.Cache().DeletePrefix(ctx, snapshotPrefix)
}

type cachedSnapshot struct {
	Value  snapshot.Snapshot
	Exists bool
}

func snapshotKey(parts ...string) string {
	return snapshotPrefix + strings.Join(parts, ":")
}

func dateKey(t time.Time) string {
	return snapshot.DateOf(t).Format(time.DateOnly)
}
