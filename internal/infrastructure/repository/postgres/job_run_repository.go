package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/skill-league/internal/platform/querybuilder"
)

const jobRunUpsertSuffix = `ON CONFLICT (public_id) DO UPDATE SET
	status = EXCLUDED.status,
	finished_at = EXCLUDED.finished_at,
	scopes = EXCLUDED.scopes,
	purged = EXCLUDED.purged,
	error_message = EXCLUDED.error_message`

type JobRunRepository struct {
	db *sqlx.DB
}

func NewJobRunRepository(db *sqlx.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

func (r *JobRunRepository) Save(ctx context.Context, run jobscheduler.Run) error {
	model, err := jobRunInsertFromDomain(run)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("snapshot_job_runs", model, jobRunUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert job run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job run id=%s: %w", run.ID, err)
	}
	return nil
}

func (r *JobRunRepository) GetLatest(ctx context.Context, jobName string) (jobscheduler.Run, bool, error) {
	runs, err := r.ListRecent(ctx, jobName, 1)
	if err != nil {
		return jobscheduler.Run{}, false, err
	}
	if len(runs) == 0 {
		return jobscheduler.Run{}, false, nil
	}
	return runs[0], true, nil
}

func (r *JobRunRepository) ListRecent(ctx context.Context, jobName string, limit int) ([]jobscheduler.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query, args, err := qb.Select("*").From("snapshot_job_runs").
		Where(qb.Eq("job_name", jobName)).
		OrderBy("started_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list job runs query: %w", err)
	}

	var rows []jobRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select job runs job=%s: %w", jobName, err)
	}

	out := make([]jobscheduler.Run, 0, len(rows))
	for _, row := range rows {
		run, err := jobRunFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}
