package postgres

import (
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/league"
)

type leagueTableModel struct {
	ID              int64     `db:"id"`
	PublicID        string    `db:"public_id"`
	Name            string    `db:"name"`
	Description     string    `db:"description"`
	Subject         string    `db:"subject"`
	StartsAt        time.Time `db:"starts_at"`
	EndsAt          time.Time `db:"ends_at"`
	MaxParticipants int       `db:"max_participants"`
	MaxSubmissions  int       `db:"max_submissions"`
	ScoringMethod   string    `db:"scoring_method"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type leagueInsertModel struct {
	PublicID        string    `db:"public_id"`
	Name            string    `db:"name"`
	Description     string    `db:"description"`
	Subject         string    `db:"subject"`
	StartsAt        time.Time `db:"starts_at"`
	EndsAt          time.Time `db:"ends_at"`
	MaxParticipants int       `db:"max_participants"`
	MaxSubmissions  int       `db:"max_submissions"`
	ScoringMethod   string    `db:"scoring_method"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type participantTableModel struct {
	ID              int64      `db:"id"`
	LeagueID        string     `db:"league_public_id"`
	UserID          string     `db:"user_id"`
	JoinedAt        time.Time  `db:"joined_at"`
	BestAccuracy    float64    `db:"best_accuracy"`
	BestTimeSeconds float64    `db:"best_time_seconds"`
	BestPoints      int        `db:"best_points"`
	SubmissionCount int        `db:"submission_count"`
	LastSubmittedAt *time.Time `db:"last_submitted_at"`
}

type participantInsertModel struct {
	LeagueID        string     `db:"league_public_id"`
	UserID          string     `db:"user_id"`
	JoinedAt        time.Time  `db:"joined_at"`
	BestAccuracy    float64    `db:"best_accuracy"`
	BestTimeSeconds float64    `db:"best_time_seconds"`
	BestPoints      int        `db:"best_points"`
	SubmissionCount int        `db:"submission_count"`
	LastSubmittedAt *time.Time `db:"last_submitted_at"`
}

type submissionTableModel struct {
	ID          int64     `db:"id"`
	LeagueID    string    `db:"league_public_id"`
	UserID      string    `db:"user_id"`
	Accuracy    float64   `db:"accuracy"`
	TimeSeconds float64   `db:"time_seconds"`
	Points      int       `db:"points"`
	Metadata    []byte    `db:"metadata"`
	SubmittedAt time.Time `db:"submitted_at"`
}

type submissionInsertModel struct {
	LeagueID    string    `db:"league_public_id"`
	UserID      string    `db:"user_id"`
	Accuracy    float64   `db:"accuracy"`
	TimeSeconds float64   `db:"time_seconds"`
	Points      int       `db:"points"`
	Metadata    string    `db:"metadata"`
	SubmittedAt time.Time `db:"submitted_at"`
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:              row.PublicID,
		Name:            row.Name,
		Description:     row.Description,
		Subject:         row.Subject,
		StartsAt:        row.StartsAt.UTC(),
		EndsAt:          row.EndsAt.UTC(),
		MaxParticipants: row.MaxParticipants,
		MaxSubmissions:  row.MaxSubmissions,
		Method:          league.ScoringMethod(row.ScoringMethod),
		Status:          league.Status(row.Status),
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}

func leagueInsertFromDomain(item league.League) leagueInsertModel {
	return leagueInsertModel{
		PublicID:        item.ID,
		Name:            item.Name,
		Description:     item.Description,
		Subject:         item.SubjectKey(),
		StartsAt:        item.StartsAt.UTC(),
		EndsAt:          item.EndsAt.UTC(),
		MaxParticipants: item.MaxParticipants,
		MaxSubmissions:  item.MaxSubmissions,
		ScoringMethod:   string(item.Method),
		Status:          string(item.Status),
		CreatedAt:       item.CreatedAt.UTC(),
		UpdatedAt:       item.UpdatedAt.UTC(),
	}
}

func participantFromRow(row participantTableModel, subs []submissionTableModel) (league.Participant, error) {
	out := league.Participant{
		LeagueID: row.LeagueID,
		UserID:   row.UserID,
		JoinedAt: row.JoinedAt.UTC(),
		Best: league.Score{
			Accuracy:    row.BestAccuracy,
			TimeSeconds: row.BestTimeSeconds,
			Points:      row.BestPoints,
		},
		Submissions: make([]league.Submission, 0, len(subs)),
	}
	for _, sub := range subs {
		var metadata map[string]any
		if err := unmarshalJSON(sub.Metadata, &metadata); err != nil {
			return league.Participant{}, err
		}
		if len(metadata) == 0 {
			metadata = nil
		}
		out.Submissions = append(out.Submissions, league.Submission{
			Score: league.Score{
				Accuracy:    sub.Accuracy,
				TimeSeconds: sub.TimeSeconds,
				Points:      sub.Points,
			},
			SubmittedAt: sub.SubmittedAt.UTC(),
			Metadata:    metadata,
		})
	}
	return out, nil
}

func participantInsertFromDomain(p league.Participant) participantInsertModel {
	out := participantInsertModel{
		LeagueID:        p.LeagueID,
		UserID:          p.UserID,
		JoinedAt:        p.JoinedAt.UTC(),
		BestAccuracy:    p.Best.Accuracy,
		BestTimeSeconds: p.Best.TimeSeconds,
		BestPoints:      p.Best.Points,
		SubmissionCount: p.SubmissionCount(),
	}
	if last := p.LastSubmittedAt(); !last.IsZero() {
		last = last.UTC()
		out.LastSubmittedAt = &last
	}
	return out
}

func submissionInsertFromDomain(leagueID, userID string, sub league.Submission) (submissionInsertModel, error) {
	metadata, err := marshalJSON(sub.Metadata, "{}")
	if err != nil {
		return submissionInsertModel{}, err
	}
	return submissionInsertModel{
		LeagueID:    leagueID,
		UserID:      userID,
		Accuracy:    sub.Accuracy,
		TimeSeconds: sub.TimeSeconds,
		Points:      sub.Points,
		Metadata:    metadata,
		SubmittedAt: sub.SubmittedAt.UTC(),
	}, nil
}
