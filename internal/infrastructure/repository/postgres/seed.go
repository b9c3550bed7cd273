package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/skill-league/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/skill-league/internal/platform/querybuilder"
)

// BootstrapSeed loads the demo leagues into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, l := range memory.SeedLeagues(now) {
		query, args, err := qb.InsertModel("leagues", leagueInsertFromDomain(l), "ON CONFLICT (public_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed league %s query: %w", l.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed league %s: %w", l.ID, err)
		}

		for _, p := range l.Participants {
			query, args, err := qb.InsertModel("league_participants", participantInsertFromDomain(p), "ON CONFLICT (league_public_id, user_id) DO NOTHING")
			if err != nil {
				return fmt.Errorf("build seed participant %s/%s query: %w", l.ID, p.UserID, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("seed participant %s/%s: %w", l.ID, p.UserID, err)
			}

			for _, sub := range p.Submissions {
				model, err := submissionInsertFromDomain(l.ID, p.UserID, sub)
				if err != nil {
					return fmt.Errorf("encode seed submission %s/%s: %w", l.ID, p.UserID, err)
				}
				query, args, err := qb.InsertModel("league_submissions", model, "")
				if err != nil {
					return fmt.Errorf("build seed submission %s/%s query: %w", l.ID, p.UserID, err)
				}
				if _, err := tx.ExecContext(ctx, query, args...); err != nil {
					return fmt.Errorf("seed submission %s/%s: %w", l.ID, p.UserID, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
