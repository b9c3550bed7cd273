package usecase

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/league"
)

var testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type counterIDs struct{ n atomic.Int64 }

func (c *counterIDs) NewID() (string, error) {
	return fmt.Sprintf("id-%03d", c.n.Add(1)), nil
}

type recordingMetrics struct {
	mu          sync.Mutex
	submissions map[string]int
	runs        map[string]int
	skipped     int
	scopes      map[string]string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		submissions: make(map[string]int),
		runs:        make(map[string]int),
		scopes:      make(map[string]string),
	}
}

func (m *recordingMetrics) IncSubmission(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[outcome]++
}

func (m *recordingMetrics) ObserveRun(_ string, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[status]++
}

func (m *recordingMetrics) IncSkippedRun(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped++
}

func (m *recordingMetrics) ObserveScope(scope, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scopes[scope] = status
}

func activeTestLeague(id, subject string, method league.ScoringMethod, participants ...league.Participant) league.League {
	return league.League{
		ID:              id,
		Name:            "League " + id,
		Subject:         subject,
		StartsAt:        testNow.Add(-24 * time.Hour),
		EndsAt:          testNow.Add(24 * time.Hour),
		MaxParticipants: 10,
		MaxSubmissions:  3,
		Method:          method,
		Status:          league.StatusActive,
		Participants:    participants,
	}
}

func scoredParticipant(userID string, joinedAt time.Time, best league.Score) league.Participant {
	return league.Participant{
		UserID:      userID,
		JoinedAt:    joinedAt,
		Submissions: []league.Submission{{Score: best, SubmittedAt: joinedAt.Add(time.Minute)}},
		Best:        best,
	}
}
