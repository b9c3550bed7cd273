package leaderboard

import (
	"slices"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/league"
)

// Entry is a ranked row derived from a participant's best submission.
type Entry struct {
	Rank            int
	UserID          string
	Best            league.Score
	SubmissionCount int
	JoinedAt        time.Time
	LastSubmittedAt time.Time
}

type Page struct {
	Entries []Entry
	Total   int
	Offset  int
	Limit   int
}

// Rank orders participants with a recorded score. Participants that compare
// equal under the method keep join order. Ranks are 1-based and never shared.
func Rank(participants []league.Participant, method league.ScoringMethod) []Entry {
	better := league.ComparatorFor(method)

	entries := make([]Entry, 0, len(participants))
	for _, p := range participants {
		if !p.Best.HasScore() {
			continue
		}
		entries = append(entries, Entry{
			UserID:          p.UserID,
			Best:            p.Best,
			SubmissionCount: p.SubmissionCount(),
			JoinedAt:        p.JoinedAt,
			LastSubmittedAt: p.LastSubmittedAt(),
		})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case better(a.Best, b.Best):
			return -1
		case better(b.Best, a.Best):
			return 1
		default:
			return a.JoinedAt.Compare(b.JoinedAt)
		}
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Paginate slices entries without renumbering them.
func Paginate(entries []Entry, offset, limit int) Page {
	if offset < 0 {
		offset = 0
	}
	page := Page{
		Total:  len(entries),
		Offset: offset,
		Limit:  limit,
	}
	if offset >= len(entries) || limit <= 0 {
		page.Entries = []Entry{}
		return page
	}

	end := min(offset+limit, len(entries))
	page.Entries = slices.Clone(entries[offset:end])
	return page
}

func Find(entries []Entry, userID string) (Entry, bool) {
	for _, e := range entries {
		if e.UserID == userID {
			return e, true
		}
	}
	return Entry{}, false
}
