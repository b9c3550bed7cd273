package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
)

// JobRunRepository keeps the newest runs per job, up to maxJobRuns each.
type JobRunRepository struct {
	mu    sync.RWMutex
	items map[string][]jobscheduler.Run
}

const maxJobRuns = 200

func NewJobRunRepository() *JobRunRepository {
	return &JobRunRepository{items: make(map[string][]jobscheduler.Run)}
}

func (r *JobRunRepository) Save(_ context.Context, run jobscheduler.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run.Scopes = slices.Clone(run.Scopes)
	runs := r.items[run.JobName]
	if idx := slices.IndexFunc(runs, func(item jobscheduler.Run) bool { return item.ID == run.ID }); idx >= 0 {
		runs[idx] = run
		return nil
	}
	runs = append(runs, run)
	if len(runs) > maxJobRuns {
		runs = slices.Clone(runs[len(runs)-maxJobRuns:])
	}
	r.items[run.JobName] = runs
	return nil
}

func (r *JobRunRepository) GetLatest(_ context.Context, jobName string) (jobscheduler.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := r.items[jobName]
	if len(runs) == 0 {
		return jobscheduler.Run{}, false, nil
	}
	latest := runs[len(runs)-1]
	latest.Scopes = slices.Clone(latest.Scopes)
	return latest, true, nil
}

// ListRecent returns newest first.
func (r *JobRunRepository) ListRecent(_ context.Context, jobName string, limit int) ([]jobscheduler.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := r.items[jobName]
	out := make([]jobscheduler.Run, 0, min(limit, len(runs)))
	for i := len(runs) - 1; i >= 0 && len(out) < limit; i-- {
		item := runs[i]
		item.Scopes = slices.Clone(item.Scopes)
		out = append(out, item)
	}
	return out, nil
}
