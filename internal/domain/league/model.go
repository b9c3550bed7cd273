package league

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Score is the measured outcome of a single attempt.
type Score struct {
	Accuracy    float64
	TimeSeconds float64
	Points      int
}

// HasScore reports whether the score holds a real result. A zero-point score
// stands for "nothing recorded yet".
func (s Score) HasScore() bool {
	return s.Points > 0
}

func (s Score) Validate() error {
	if s.Accuracy < 0 || s.Accuracy > 100 {
		return fmt.Errorf("%w: accuracy must be within 0..100, got %v", ErrInvalidScore, s.Accuracy)
	}
	if s.TimeSeconds < 0 {
		return fmt.Errorf("%w: time must be >= 0, got %v", ErrInvalidScore, s.TimeSeconds)
	}
	if s.Points < 0 {
		return fmt.Errorf("%w: points must be >= 0, got %d", ErrInvalidScore, s.Points)
	}
	return nil
}

// Submission is immutable once recorded.
type Submission struct {
	Score
	SubmittedAt time.Time
	Metadata    map[string]any
}

type Participant struct {
	LeagueID    string
	UserID      string
	JoinedAt    time.Time
	Submissions []Submission
	Best        Score
}

func (p Participant) SubmissionCount() int {
	return len(p.Submissions)
}

func (p Participant) LastSubmittedAt() time.Time {
	var last time.Time
	for _, s := range p.Submissions {
		if s.SubmittedAt.After(last) {
			last = s.SubmittedAt
		}
	}
	return last
}

// League is a time-boxed competition on one subject.
type League struct {
	ID              string
	Name            string
	Description     string
	Subject         string
	StartsAt        time.Time
	EndsAt          time.Time
	MaxParticipants int
	MaxSubmissions  int
	Method          ScoringMethod
	Status          Status
	Participants    []Participant
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StatusAt resolves the effective status. Terminal stored states win,
// otherwise the status follows the [StartsAt, EndsAt) window.
func (l League) StatusAt(now time.Time) Status {
	switch l.Status {
	case StatusCancelled, StatusCompleted:
		return l.Status
	}
	if now.Before(l.StartsAt) {
		return StatusUpcoming
	}
	if !now.Before(l.EndsAt) {
		return StatusCompleted
	}
	return StatusActive
}

func (l League) IsActiveAt(now time.Time) bool {
	return l.StatusAt(now) == StatusActive
}

func (l League) ParticipantCount() int {
	return len(l.Participants)
}

func (l League) SpotsRemaining() int {
	remaining := l.MaxParticipants - len(l.Participants)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l League) IsFull() bool {
	return len(l.Participants) >= l.MaxParticipants
}

func (l League) Duration() time.Duration {
	return l.EndsAt.Sub(l.StartsAt)
}

func (l League) Participant(userID string) (Participant, bool) {
	for _, p := range l.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participant{}, false
}

func (l League) SubjectKey() string {
	return NormalizeSubject(l.Subject)
}

func NormalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}

func (l League) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if l.SubjectKey() == "" {
		return fmt.Errorf("league subject is required")
	}
	if !l.EndsAt.After(l.StartsAt) {
		return fmt.Errorf("league end must be after start")
	}
	if l.MaxParticipants < 1 {
		return fmt.Errorf("league capacity must be >= 1")
	}
	if l.MaxSubmissions < 1 {
		return fmt.Errorf("league submission cap must be >= 1")
	}
	if !l.Method.Valid() {
		return fmt.Errorf("unknown scoring method %q", l.Method)
	}

	return nil
}
