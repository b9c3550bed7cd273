package league

import (
	"fmt"
	"maps"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrAlreadyJoined           = crerr.New("user already joined league")
	ErrLeagueFull              = crerr.New("league is full")
	ErrLeagueNotJoinable       = crerr.New("league is not open for joining")
	ErrSubmissionLimitExceeded = crerr.New("submission limit exceeded")
	ErrLeagueNotActive         = crerr.New("league is not active")
	ErrInvalidScore            = crerr.New("invalid score")
	ErrNotParticipant          = crerr.New("user has not joined league")
	ErrLeagueNotFound          = crerr.New("league not found")
)

// Join admits userID into the league. The league value is not modified; the
// caller persists the returned participant.
func (l League) Join(userID string, now time.Time) (Participant, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Participant{}, fmt.Errorf("user id is required")
	}
	if _, exists := l.Participant(userID); exists {
		return Participant{}, fmt.Errorf("%w: league=%s user=%s", ErrAlreadyJoined, l.ID, userID)
	}
	if l.IsFull() {
		return Participant{}, fmt.Errorf("%w: league=%s capacity=%d", ErrLeagueFull, l.ID, l.MaxParticipants)
	}
	switch status := l.StatusAt(now); status {
	case StatusUpcoming, StatusActive:
	default:
		return Participant{}, fmt.Errorf("%w: league=%s status=%s", ErrLeagueNotJoinable, l.ID, status)
	}

	return Participant{
		LeagueID: l.ID,
		UserID:   userID,
		JoinedAt: now,
	}, nil
}

// RecordSubmission appends sub to the participant's history and refreshes the
// cached best. Rejected attempts return the error and leave p untouched.
func (l League) RecordSubmission(p Participant, sub Submission, now time.Time) (Participant, error) {
	if status := l.StatusAt(now); status != StatusActive {
		return p, fmt.Errorf("%w: league=%s status=%s", ErrLeagueNotActive, l.ID, status)
	}
	if len(p.Submissions) >= l.MaxSubmissions {
		return p, fmt.Errorf("%w: league=%s max=%d", ErrSubmissionLimitExceeded, l.ID, l.MaxSubmissions)
	}
	if err := sub.Validate(); err != nil {
		return p, err
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = now
	}
	if sub.Metadata != nil {
		sub.Metadata = maps.Clone(sub.Metadata)
	}

	next := p
	next.Submissions = make([]Submission, 0, len(p.Submissions)+1)
	next.Submissions = append(next.Submissions, p.Submissions...)
	next.Submissions = append(next.Submissions, sub)
	if !p.Best.HasScore() || IsBetter(sub.Score, p.Best, l.Method) {
		next.Best = sub.Score
	}

	return next, nil
}
