package snapshot

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/league"
)

// Totals accumulates one user's best results across the leagues of a scope.
type Totals struct {
	UserID          string
	TotalPoints     int
	SubmissionCount int
	AverageAccuracy float64
	AverageTime     float64
	LastActiveAt    time.Time
}

type BuildInput struct {
	Scope    Scope
	Leagues  []league.League
	Subjects []string
	Now      time.Time
	TopN     int
}

// Build runs filter, group, sort and limit for one scope. The result has no
// ID or timestamps; persistence assigns those.
func Build(in BuildInput) Snapshot {
	topN := in.TopN
	if topN <= 0 || topN > MaxTopPerformers {
		topN = MaxTopPerformers
	}

	totals := GroupByUser(FilterLeagues(in.Leagues, in.Scope, in.Now))
	SortTotals(totals)
	performers := Limit(totals, topN)

	if in.Scope.IsGlobal() {
		AttachSubjectRanks(performers, SubjectRankIndex(in.Leagues, in.Subjects, in.Now))
	}

	return Snapshot{
		Date:          DateOf(in.Now),
		Scope:         in.Scope,
		Stats:         ComputeStats(performers),
		TopPerformers: performers,
	}
}

// FilterLeagues keeps leagues active at now. Subject scopes additionally
// match on the league subject.
func FilterLeagues(leagues []league.League, scope Scope, now time.Time) []league.League {
	out := make([]league.League, 0, len(leagues))
	for _, l := range leagues {
		if !l.IsActiveAt(now) {
			continue
		}
		if !scope.IsGlobal() && l.SubjectKey() != string(scope) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// GroupByUser sums best points and averages best accuracy and time over the
// leagues a user has submitted to.
func GroupByUser(leagues []league.League) []Totals {
	type acc struct {
		totals      Totals
		leagues     int
		sumAccuracy float64
		sumTime     float64
	}

	byUser := make(map[string]*acc)
	order := make([]string, 0)
	for _, l := range leagues {
		for _, p := range l.Participants {
			if p.SubmissionCount() == 0 {
				continue
			}
			a, ok := byUser[p.UserID]
			if !ok {
				a = &acc{totals: Totals{UserID: p.UserID}}
				byUser[p.UserID] = a
				order = append(order, p.UserID)
			}
			a.leagues++
			a.totals.TotalPoints += p.Best.Points
			a.totals.SubmissionCount += p.SubmissionCount()
			a.sumAccuracy += p.Best.Accuracy
			a.sumTime += p.Best.TimeSeconds
			if last := p.LastSubmittedAt(); last.After(a.totals.LastActiveAt) {
				a.totals.LastActiveAt = last
			}
		}
	}

	out := make([]Totals, 0, len(order))
	for _, userID := range order {
		a := byUser[userID]
		a.totals.AverageAccuracy = round2(a.sumAccuracy / float64(a.leagues))
		a.totals.AverageTime = round2(a.sumTime / float64(a.leagues))
		out = append(out, a.totals)
	}
	return out
}

// SortTotals orders by points desc, accuracy desc, time asc, then user ID.
func SortTotals(totals []Totals) {
	slices.SortFunc(totals, func(a, b Totals) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(b.AverageAccuracy, a.AverageAccuracy); c != 0 {
			return c
		}
		if c := cmp.Compare(a.AverageTime, b.AverageTime); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
}

// Limit takes the first n sorted totals and assigns ranks 1..n.
func Limit(totals []Totals, n int) []Performer {
	if n > len(totals) {
		n = len(totals)
	}
	out := make([]Performer, 0, n)
	for i := 0; i < n; i++ {
		t := totals[i]
		out = append(out, Performer{
			Rank:            i + 1,
			UserID:          t.UserID,
			TotalPoints:     t.TotalPoints,
			Accuracy:        t.AverageAccuracy,
			SubmissionCount: t.SubmissionCount,
			AverageTime:     t.AverageTime,
			LastActiveAt:    t.LastActiveAt,
		})
	}
	return out
}

// SubjectRankIndex returns subject -> user -> rank over the full ordering of
// each subject scope.
func SubjectRankIndex(leagues []league.League, subjects []string, now time.Time) map[string]map[string]int {
	index := make(map[string]map[string]int, len(subjects))
	for _, subject := range subjects {
		scope := ParseScope(subject)
		if scope == "" || scope.IsGlobal() {
			continue
		}
		totals := GroupByUser(FilterLeagues(leagues, scope, now))
		if len(totals) == 0 {
			continue
		}
		SortTotals(totals)
		ranks := make(map[string]int, len(totals))
		for i, t := range totals {
			ranks[t.UserID] = i + 1
		}
		index[string(scope)] = ranks
	}
	return index
}

func AttachSubjectRanks(performers []Performer, index map[string]map[string]int) {
	for i := range performers {
		for subject, ranks := range index {
			rank, ok := ranks[performers[i].UserID]
			if !ok {
				continue
			}
			if performers[i].SubjectRanks == nil {
				performers[i].SubjectRanks = make(map[string]int)
			}
			performers[i].SubjectRanks[subject] = rank
		}
	}
}

// ComputeStats summarises the top-N list, not the whole population.
func ComputeStats(performers []Performer) Stats {
	if len(performers) == 0 {
		return Stats{}
	}

	var sumAccuracy float64
	var sumPoints, submissions int
	for _, p := range performers {
		sumAccuracy += p.Accuracy
		sumPoints += p.TotalPoints
		submissions += p.SubmissionCount
	}
	n := float64(len(performers))
	return Stats{
		TotalUsers:       len(performers),
		AverageAccuracy:  round2(sumAccuracy / n),
		AveragePoints:    round2(float64(sumPoints) / n),
		TotalSubmissions: submissions,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
