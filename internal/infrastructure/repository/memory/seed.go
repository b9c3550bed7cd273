package memory

import (
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/league"
)

const (
	LeagueIDMathSprint      = "league-math-sprint"
	LeagueIDScienceWeekly   = "league-science-weekly"
	LeagueIDHistoryUpcoming = "league-history-upcoming"
	LeagueIDLanguageArchive = "league-language-archive"
)

// SeedLeagues returns demo leagues positioned around now so that the
// active/upcoming/completed states all show up in a dev environment.
func SeedLeagues(now time.Time) []league.League {
	now = now.UTC()
	day := 24 * time.Hour

	return []league.League{
		{
			ID:              LeagueIDMathSprint,
			Name:            "Math Sprint",
			Description:     "Mental arithmetic drills, best accuracy wins.",
			Subject:         "math",
			StartsAt:        now.Add(-3 * day),
			EndsAt:          now.Add(4 * day),
			MaxParticipants: 50,
			MaxSubmissions:  5,
			Method:          league.ScoringAccuracyThenTime,
			Status:          league.StatusActive,
			CreatedAt:       now.Add(-7 * day),
			UpdatedAt:       now.Add(-7 * day),
			Participants: []league.Participant{
				seedParticipant(LeagueIDMathSprint, "user-ana", now.Add(-3*day), league.Score{Accuracy: 92.5, TimeSeconds: 48, Points: 85}),
				seedParticipant(LeagueIDMathSprint, "user-budi", now.Add(-2*day), league.Score{Accuracy: 88, TimeSeconds: 35, Points: 80}),
				seedParticipant(LeagueIDMathSprint, "user-citra", now.Add(-1*day), league.Score{Accuracy: 92.5, TimeSeconds: 41, Points: 82}),
			},
		},
		{
			ID:              LeagueIDScienceWeekly,
			Name:            "Science Weekly",
			Description:     "Weekly science quiz ranked by points.",
			Subject:         "science",
			StartsAt:        now.Add(-1 * day),
			EndsAt:          now.Add(6 * day),
			MaxParticipants: 100,
			MaxSubmissions:  3,
			Method:          league.ScoringPointsOnly,
			Status:          league.StatusActive,
			CreatedAt:       now.Add(-2 * day),
			UpdatedAt:       now.Add(-2 * day),
			Participants: []league.Participant{
				seedParticipant(LeagueIDScienceWeekly, "user-ana", now.Add(-20*time.Hour), league.Score{Accuracy: 70, TimeSeconds: 120, Points: 64}),
				seedParticipant(LeagueIDScienceWeekly, "user-dewi", now.Add(-18*time.Hour), league.Score{Accuracy: 95, TimeSeconds: 90, Points: 91}),
			},
		},
		{
			ID:              LeagueIDHistoryUpcoming,
			Name:            "History Marathon",
			Subject:         "history",
			StartsAt:        now.Add(2 * day),
			EndsAt:          now.Add(9 * day),
			MaxParticipants: 20,
			MaxSubmissions:  10,
			Method:          league.ScoringTimeThenAccuracy,
			Status:          league.StatusUpcoming,
			CreatedAt:       now.Add(-1 * day),
			UpdatedAt:       now.Add(-1 * day),
		},
		{
			ID:              LeagueIDLanguageArchive,
			Name:            "Vocabulary Cup",
			Subject:         "language",
			StartsAt:        now.Add(-20 * day),
			EndsAt:          now.Add(-13 * day),
			MaxParticipants: 30,
			MaxSubmissions:  5,
			Method:          league.ScoringPointsOnly,
			Status:          league.StatusCompleted,
			CreatedAt:       now.Add(-25 * day),
			UpdatedAt:       now.Add(-13 * day),
			Participants: []league.Participant{
				seedParticipant(LeagueIDLanguageArchive, "user-budi", now.Add(-19*day), league.Score{Accuracy: 81, TimeSeconds: 200, Points: 77}),
			},
		},
	}
}

func seedParticipant(leagueID, userID string, joinedAt time.Time, best league.Score) league.Participant {
	return league.Participant{
		LeagueID: leagueID,
		UserID:   userID,
		JoinedAt: joinedAt,
		Submissions: []league.Submission{
			{Score: best, SubmittedAt: joinedAt.Add(30 * time.Minute)},
		},
		Best: best,
	}
}
