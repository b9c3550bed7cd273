package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/skill-league/internal/domain/league"
	qb "github.com/riskibarqy/skill-league/internal/platform/querybuilder"
)

// LeagueRepository stores leagues, participants and their submission
// history. Join locks the league row; Submit locks the participant row.
type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		OrderBy("starts_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PublicID)
	}
	participants, err := loadParticipants(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		item := leagueFromRow(row)
		item.Participants = participants[row.PublicID]
		out = append(out, item)
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	item, ok, err := getLeague(ctx, r.db, leagueID, false)
	if err != nil || !ok {
		return league.League{}, ok, err
	}

	participants, err := loadParticipants(ctx, r.db, []string{leagueID})
	if err != nil {
		return league.League{}, false, err
	}
	item.Participants = participants[leagueID]
	return item, true, nil
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League) error {
	query, args, err := qb.InsertModel("leagues", leagueInsertFromDomain(item), "")
	if err != nil {
		return fmt.Errorf("build insert league query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("league %s already exists", item.ID)
		}
		return fmt.Errorf("insert league id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *LeagueRepository) UpdateStatus(ctx context.Context, leagueID string, status league.Status) error {
	query, args, err := qb.Update("leagues").
		Set("status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", leagueID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update league status query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update league status id=%s: %w", leagueID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("league status rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: league=%s", league.ErrLeagueNotFound, leagueID)
	}
	return nil
}

func (r *LeagueRepository) Join(ctx context.Context, leagueID string, fn league.JoinFunc) (league.Participant, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return league.Participant{}, fmt.Errorf("begin join tx: %w", err)
	}
	defer tx.Rollback()

	current, ok, err := getLeague(ctx, tx, leagueID, true)
	if err != nil {
		return league.Participant{}, err
	}
	if !ok {
		return league.Participant{}, fmt.Errorf("%w: league=%s", league.ErrLeagueNotFound, leagueID)
	}
	participants, err := loadParticipants(ctx, tx, []string{leagueID})
	if err != nil {
		return league.Participant{}, err
	}
	current.Participants = participants[leagueID]

	participant, err := fn(current)
	if err != nil {
		return league.Participant{}, err
	}

	query, args, err := qb.InsertModel("league_participants", participantInsertFromDomain(participant), "")
	if err != nil {
		return league.Participant{}, fmt.Errorf("build insert participant query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return league.Participant{}, fmt.Errorf("%w: league=%s user=%s", league.ErrAlreadyJoined, leagueID, participant.UserID)
		}
		return league.Participant{}, fmt.Errorf("insert participant league=%s user=%s: %w", leagueID, participant.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		return league.Participant{}, fmt.Errorf("commit join tx: %w", err)
	}
	return participant, nil
}

// Submit passes fn the league without its participant list; only the locked
// participant is loaded.
func (r *LeagueRepository) Submit(ctx context.Context, leagueID, userID string, fn league.SubmitFunc) (league.Participant, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return league.Participant{}, fmt.Errorf("begin submit tx: %w", err)
	}
	defer tx.Rollback()

	current, ok, err := getLeague(ctx, tx, leagueID, false)
	if err != nil {
		return league.Participant{}, err
	}
	if !ok {
		return league.Participant{}, fmt.Errorf("%w: league=%s", league.ErrLeagueNotFound, leagueID)
	}

	query, args, err := qb.Select("*").From("league_participants").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_id", userID),
		).
		ForUpdate().
		ToSQL()
	if err != nil {
		return league.Participant{}, fmt.Errorf("build lock participant query: %w", err)
	}

	var row participantTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.Participant{}, fmt.Errorf("%w: league=%s user=%s", league.ErrNotParticipant, leagueID, userID)
		}
		return league.Participant{}, fmt.Errorf("lock participant league=%s user=%s: %w", leagueID, userID, err)
	}

	subs, err := selectSubmissions(ctx, tx, qb.Eq("league_public_id", leagueID), qb.Eq("user_id", userID))
	if err != nil {
		return league.Participant{}, err
	}
	participant, err := participantFromRow(row, subs)
	if err != nil {
		return league.Participant{}, fmt.Errorf("decode participant league=%s user=%s: %w", leagueID, userID, err)
	}

	next, err := fn(current, participant)
	if err != nil {
		return participant, err
	}

	for _, sub := range next.Submissions[len(participant.Submissions):] {
		model, err := submissionInsertFromDomain(leagueID, userID, sub)
		if err != nil {
			return participant, fmt.Errorf("encode submission metadata: %w", err)
		}
		query, args, err := qb.InsertModel("league_submissions", model, "")
		if err != nil {
			return participant, fmt.Errorf("build insert submission query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return participant, fmt.Errorf("insert submission league=%s user=%s: %w", leagueID, userID, err)
		}
	}

	var lastSubmittedAt *time.Time
	if last := next.LastSubmittedAt(); !last.IsZero() {
		last = last.UTC()
		lastSubmittedAt = &last
	}
	query, args, err = qb.Update("league_participants").
		Set("best_accuracy", next.Best.Accuracy).
		Set("best_time_seconds", next.Best.TimeSeconds).
		Set("best_points", next.Best.Points).
		Set("submission_count", next.SubmissionCount()).
		Set("last_submitted_at", lastSubmittedAt).
		Where(qb.Eq("id", row.ID)).
		ToSQL()
	if err != nil {
		return participant, fmt.Errorf("build update participant query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return participant, fmt.Errorf("update participant league=%s user=%s: %w", leagueID, userID, err)
	}

	if err := tx.Commit(); err != nil {
		return participant, fmt.Errorf("commit submit tx: %w", err)
	}
	return next, nil
}

func getLeague(ctx context.Context, q sqlx.QueryerContext, leagueID string, forUpdate bool) (league.League, bool, error) {
	builder := qb.Select("*").From("leagues").Where(qb.Eq("public_id", leagueID))
	if forUpdate {
		builder = builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league id=%s: %w", leagueID, err)
	}
	return leagueFromRow(row), true, nil
}

// loadParticipants returns participants per league in join order.
func loadParticipants(ctx context.Context, q sqlx.QueryerContext, leagueIDs []string) (map[string][]league.Participant, error) {
	out := make(map[string][]league.Participant, len(leagueIDs))
	if len(leagueIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("*").From("league_participants").
		Where(qb.In("league_public_id", anySlice(leagueIDs))).
		OrderBy("joined_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select participants query: %w", err)
	}
	var rows []participantTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}
	if len(rows) == 0 {
		return out, nil
	}

	subs, err := selectSubmissions(ctx, q, qb.In("league_public_id", anySlice(leagueIDs)))
	if err != nil {
		return nil, err
	}
	byParticipant := make(map[string][]submissionTableModel, len(rows))
	for _, sub := range subs {
		key := sub.LeagueID + "|" + sub.UserID
		byParticipant[key] = append(byParticipant[key], sub)
	}

	for _, row := range rows {
		p, err := participantFromRow(row, byParticipant[row.LeagueID+"|"+row.UserID])
		if err != nil {
			return nil, fmt.Errorf("decode participant league=%s user=%s: %w", row.LeagueID, row.UserID, err)
		}
		out[row.LeagueID] = append(out[row.LeagueID], p)
	}
	return out, nil
}

func selectSubmissions(ctx context.Context, q sqlx.QueryerContext, conditions ...qb.Condition) ([]submissionTableModel, error) {
	query, args, err := qb.Select("*").From("league_submissions").
		Where(conditions...).
		OrderBy("submitted_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select submissions query: %w", err)
	}
	var rows []submissionTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select submissions: %w", err)
	}
	return rows, nil
}
