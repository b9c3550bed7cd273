package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	"github.com/riskibarqy/skill-league/internal/platform/id"
	qb "github.com/riskibarqy/skill-league/internal/platform/querybuilder"
)

const snapshotUpsertSuffix = `ON CONFLICT (snapshot_date, scope) DO UPDATE SET
	total_users = EXCLUDED.total_users,
	average_accuracy = EXCLUDED.average_accuracy,
	average_points = EXCLUDED.average_points,
	total_submissions = EXCLUDED.total_submissions,
	top_performers = EXCLUDED.top_performers,
	updated_at = EXCLUDED.updated_at
RETURNING *`

type SnapshotRepository struct {
	db  *sqlx.DB
	ids id.Generator
	now func() time.Time
}

func NewSnapshotRepository(db *sqlx.DB, ids id.Generator) *SnapshotRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &SnapshotRepository{db: db, ids: ids, now: time.Now}
}

// Upsert writes one (date, scope) row. On conflict the stored public_id and
// created_at survive and the returned snapshot carries them.
func (r *SnapshotRepository) Upsert(ctx context.Context, item snapshot.Snapshot) (snapshot.Snapshot, error) {
	publicID, err := r.ids.NewID()
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("generate snapshot id: %w", err)
	}
	now := r.now().UTC()
	item.ID = publicID
	item.CreatedAt = now
	item.UpdatedAt = now

	model, err := snapshotInsertFromDomain(item)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	query, args, err := qb.InsertModel("leaderboard_snapshots", model, snapshotUpsertSuffix)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("build upsert snapshot query: %w", err)
	}

	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("upsert snapshot scope=%s date=%s: %w", item.Scope, model.SnapshotDate.Format(time.DateOnly), err)
	}
	return snapshotFromRow(row)
}

func (r *SnapshotRepository) GetLatest(ctx context.Context, scope snapshot.Scope) (snapshot.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("leaderboard_snapshots").
		Where(qb.Eq("scope", scope.String())).
		OrderBy("snapshot_date DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("build latest snapshot query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *SnapshotRepository) GetByDate(ctx context.Context, scope snapshot.Scope, date time.Time) (snapshot.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("leaderboard_snapshots").
		Where(
			qb.Eq("scope", scope.String()),
			qb.Eq("snapshot_date", snapshot.DateOf(date)),
		).
		ToSQL()
	if err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("build snapshot by date query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *SnapshotRepository) ListRange(ctx context.Context, scope snapshot.Scope, from, to time.Time) ([]snapshot.Snapshot, error) {
	query, args, err := qb.Select("*").From("leaderboard_snapshots").
		Where(
			qb.Eq("scope", scope.String()),
			qb.Cmp("snapshot_date", ">=", snapshot.DateOf(from)),
			qb.Cmp("snapshot_date", "<=", snapshot.DateOf(to)),
		).
		OrderBy("snapshot_date ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build snapshot range query: %w", err)
	}

	var rows []snapshotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select snapshot range scope=%s: %w", scope, err)
	}

	out := make([]snapshot.Snapshot, 0, len(rows))
	for _, row := range rows {
		item, err := snapshotFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *SnapshotRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := qb.DeleteFrom("leaderboard_snapshots").
		Where(qb.Cmp("snapshot_date", "<", snapshot.DateOf(cutoff))).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build purge snapshots query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge snapshots before %s: %w", cutoff.Format(time.DateOnly), err)
	}
	return res.RowsAffected()
}

func (r *SnapshotRepository) Summary(ctx context.Context) (snapshot.Summary, error) {
	query, args, err := qb.Select(
		"scope",
		"COUNT(1) AS snapshot_count",
		"MIN(snapshot_date) AS oldest_date",
		"MAX(snapshot_date) AS latest_date",
		"COALESCE(AVG(total_users), 0) AS average_users",
	).From("leaderboard_snapshots").
		GroupBy("scope").
		ToSQL()
	if err != nil {
		return snapshot.Summary{}, fmt.Errorf("build snapshot summary query: %w", err)
	}

	var rows []snapshotScopeSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return snapshot.Summary{}, fmt.Errorf("select snapshot summary: %w", err)
	}
	return summaryFromRows(rows), nil
}

func (r *SnapshotRepository) getOne(ctx context.Context, query string, args []any) (snapshot.Snapshot, bool, error) {
	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return snapshot.Snapshot{}, false, nil
		}
		return snapshot.Snapshot{}, false, fmt.Errorf("get snapshot: %w", err)
	}
	item, err := snapshotFromRow(row)
	if err != nil {
		return snapshot.Snapshot{}, false, err
	}
	return item, true, nil
}

func summaryFromRows(rows []snapshotScopeSummaryRow) snapshot.Summary {
	out := snapshot.Summary{Scopes: make([]snapshot.ScopeSummary, 0, len(rows))}
	for _, row := range rows {
		oldest := snapshot.DateOf(row.OldestDate)
		latest := snapshot.DateOf(row.LatestDate)
		out.TotalSnapshots += row.Count
		if out.OldestDate == nil || oldest.Before(*out.OldestDate) {
			out.OldestDate = &oldest
		}
		if out.LatestDate == nil || latest.After(*out.LatestDate) {
			out.LatestDate = &latest
		}
		out.Scopes = append(out.Scopes, snapshot.ScopeSummary{
			Scope:        snapshot.Scope(row.Scope),
			Count:        row.Count,
			LatestDate:   latest,
			AverageUsers: math.Round(row.AverageUsers*100) / 100,
		})
	}
	snapshot.SortScopeSummaries(out.Scopes)
	return out
}
