package snapshot

import (
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

const (
	MaxTopPerformers     = 100
	DefaultRetentionDays = 90
	MinRetentionDays     = 30
	MaxRetentionDays     = 90
)

var (
	ErrNoSnapshotAvailable    = crerr.New("no snapshot available")
	ErrScopeAggregationFailed = crerr.New("scope aggregation failed")
	ErrUnknownScope           = crerr.New("unknown leaderboard scope")
)

// Scope is either the global board or one subject.
type Scope string

const ScopeGlobal Scope = "global"

func ParseScope(raw string) Scope {
	return Scope(strings.ToLower(strings.TrimSpace(raw)))
}

func (s Scope) IsGlobal() bool {
	return s == ScopeGlobal
}

func (s Scope) String() string {
	return string(s)
}

type Stats struct {
	TotalUsers       int
	AverageAccuracy  float64
	AveragePoints    float64
	TotalSubmissions int
}

type Performer struct {
	Rank            int
	UserID          string
	DisplayName     string
	Email           string
	TotalPoints     int
	Accuracy        float64
	SubmissionCount int
	AverageTime     float64
	LastActiveAt    time.Time
	// SubjectRanks is only filled on the global scope.
	SubjectRanks map[string]int
}

// Snapshot is the persisted top-N board for one scope and UTC day.
type Snapshot struct {
	ID            string
	Date          time.Time
	Scope         Scope
	Stats         Stats
	TopPerformers []Performer
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (s Snapshot) Performer(userID string) (Performer, bool) {
	for _, p := range s.TopPerformers {
		if p.UserID == userID {
			return p, true
		}
	}
	return Performer{}, false
}

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClampRetentionDays keeps retention within the supported window.
func ClampRetentionDays(days int) int {
	if days <= 0 {
		return DefaultRetentionDays
	}
	return max(MinRetentionDays, min(MaxRetentionDays, days))
}

type RankMovement string

const (
	RankMovementUp   RankMovement = "up"
	RankMovementDown RankMovement = "down"
	RankMovementSame RankMovement = "same"
	RankMovementNew  RankMovement = "new"
)

// MovementBetween compares a current rank against an optional previous one.
// Lower rank numbers are better.
func MovementBetween(previous *int, current int) RankMovement {
	switch {
	case previous == nil:
		return RankMovementNew
	case current < *previous:
		return RankMovementUp
	case current > *previous:
		return RankMovementDown
	default:
		return RankMovementSame
	}
}

type ScopeSummary struct {
	Scope        Scope
	Count        int
	LatestDate   time.Time
	AverageUsers float64
}

type Summary struct {
	TotalSnapshots int
	OldestDate     *time.Time
	LatestDate     *time.Time
	Scopes         []ScopeSummary
}
