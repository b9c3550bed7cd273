package jobscheduler

import "context"

type Repository interface {
	Save(ctx context.Context, run Run) error
	GetLatest(ctx context.Context, jobName string) (Run, bool, error)
	ListRecent(ctx context.Context, jobName string, limit int) ([]Run, error)
}
