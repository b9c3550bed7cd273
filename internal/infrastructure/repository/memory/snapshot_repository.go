package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	"github.com/riskibarqy/skill-league/internal/platform/id"
)

type SnapshotRepository struct {
	mu    sync.RWMutex
	items map[string]snapshot.Snapshot
	ids   id.Generator
	now   func() time.Time
}

func NewSnapshotRepository(ids id.Generator) *SnapshotRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &SnapshotRepository{
		items: make(map[string]snapshot.Snapshot),
		ids:   ids,
		now:   time.Now,
	}
}

func (r *SnapshotRepository) Upsert(_ context.Context, item snapshot.Snapshot) (snapshot.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.Date = snapshot.DateOf(item.Date)
	key := snapshotKey(item.Scope, item.Date)
	now := r.now().UTC()
	if existing, ok := r.items[key]; ok {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	} else {
		newID, err := r.ids.NewID()
		if err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("generate snapshot id: %w", err)
		}
		item.ID = newID
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	r.items[key] = cloneSnapshot(item)
	return cloneSnapshot(item), nil
}

func (r *SnapshotRepository) GetLatest(_ context.Context, scope snapshot.Scope) (snapshot.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest snapshot.Snapshot
	found := false
	for _, item := range r.items {
		if item.Scope != scope {
			continue
		}
		if !found || item.Date.After(latest.Date) {
			latest = item
			found = true
		}
	}
	if !found {
		return snapshot.Snapshot{}, false, nil
	}
	return cloneSnapshot(latest), true, nil
}

func (r *SnapshotRepository) GetByDate(_ context.Context, scope snapshot.Scope, date time.Time) (snapshot.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[snapshotKey(scope, snapshot.DateOf(date))]
	if !ok {
		return snapshot.Snapshot{}, false, nil
	}
	return cloneSnapshot(item), true, nil
}

func (r *SnapshotRepository) ListRange(_ context.Context, scope snapshot.Scope, from, to time.Time) ([]snapshot.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	from, to = snapshot.DateOf(from), snapshot.DateOf(to)
	out := make([]snapshot.Snapshot, 0)
	for _, item := range r.items {
		if item.Scope != scope || item.Date.Before(from) || item.Date.After(to) {
			continue
		}
		out = append(out, cloneSnapshot(item))
	}
	slices.SortFunc(out, func(a, b snapshot.Snapshot) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

func (r *SnapshotRepository) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff = snapshot.DateOf(cutoff)
	var deleted int64
	for key, item := range r.items {
		if item.Date.Before(cutoff) {
			delete(r.items, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *SnapshotRepository) Summary(_ context.Context) (snapshot.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := slices.SortedFunc(maps.Values(r.items), func(a, b snapshot.Snapshot) int {
		return cmp.Compare(snapshotKey(a.Scope, a.Date), snapshotKey(b.Scope, b.Date))
	})
	return snapshot.Summarize(items), nil
}

func snapshotKey(scope snapshot.Scope, date time.Time) string {
	return string(scope) + "::" + date.Format(time.DateOnly)
}

func cloneSnapshot(s snapshot.Snapshot) snapshot.Snapshot {
	copied := s
	copied.TopPerformers = make([]snapshot.Performer, 0, len(s.TopPerformers))
	for _, p := range s.TopPerformers {
		p.SubjectRanks = maps.Clone(p.SubjectRanks)
		copied.TopPerformers = append(copied.TopPerformers, p)
	}
	return copied
}
