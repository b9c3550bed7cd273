package snapshot

import (
	"cmp"
	"slices"
	"time"
)

// Summarize folds stored snapshots into per-scope counts. Scopes are listed
// global first, then by name.
func Summarize(items []Snapshot) Summary {
	out := Summary{TotalSnapshots: len(items), Scopes: []ScopeSummary{}}
	if len(items) == 0 {
		return out
	}

	byScope := make(map[Scope]*ScopeSummary)
	users := make(map[Scope]int)
	var oldest, latest time.Time
	for i, item := range items {
		if i == 0 || item.Date.Before(oldest) {
			oldest = item.Date
		}
		if i == 0 || item.Date.After(latest) {
			latest = item.Date
		}

		s, ok := byScope[item.Scope]
		if !ok {
			s = &ScopeSummary{Scope: item.Scope}
			byScope[item.Scope] = s
		}
		s.Count++
		if item.Date.After(s.LatestDate) {
			s.LatestDate = item.Date
		}
		users[item.Scope] += item.Stats.TotalUsers
	}

	for scope, s := range byScope {
		s.AverageUsers = round2(float64(users[scope]) / float64(s.Count))
		out.Scopes = append(out.Scopes, *s)
	}
	SortScopeSummaries(out.Scopes)
	out.OldestDate = &oldest
	out.LatestDate = &latest
	return out
}

func SortScopeSummaries(items []ScopeSummary) {
	slices.SortFunc(items, func(a, b ScopeSummary) int {
		if a.Scope.IsGlobal() != b.Scope.IsGlobal() {
			if a.Scope.IsGlobal() {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Scope, b.Scope)
	})
}
