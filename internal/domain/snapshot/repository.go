package snapshot

import (
	"context"
	"time"
)

// Repository persists daily snapshots. Upsert is keyed by (Date, Scope);
// an existing row keeps its ID and CreatedAt.
type Repository interface {
	Upsert(ctx context.Context, item Snapshot) (Snapshot, error)
	GetLatest(ctx context.Context, scope Scope) (Snapshot, bool, error)
	GetByDate(ctx context.Context, scope Scope, date time.Time) (Snapshot, bool, error)
	// ListRange returns snapshots dated within [from, to], oldest first.
	ListRange(ctx context.Context, scope Scope, from, to time.Time) ([]Snapshot, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Summary(ctx context.Context) (Summary, error)
}
