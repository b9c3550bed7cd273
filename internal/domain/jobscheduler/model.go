package jobscheduler

import "time"

const JobSnapshot = "leaderboard-snapshot"

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusSucceeded RunStatus = "succeeded"
	StatusPartial   RunStatus = "partial"
	StatusFailed    RunStatus = "failed"
)

type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerStartup   Trigger = "startup"
	TriggerManual    Trigger = "manual"
	TriggerCLI       Trigger = "cli"
)

type ScopeResult struct {
	Scope      string
	Status     RunStatus
	Performers int
	Duration   time.Duration
	Error      string
}

// Run is the report of one aggregation pass.
type Run struct {
	ID           string
	JobName      string
	Trigger      Trigger
	Status       RunStatus
	StartedAt    time.Time
	FinishedAt   time.Time
	Scopes       []ScopeResult
	Purged       int64
	ErrorMessage string
	TraceID      string
	SpanID       string
}

func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed lists the scopes that did not complete.
func (r Run) Failed() []string {
	out := make([]string, 0)
	for _, s := range r.Scopes {
		if s.Status == StatusFailed {
			out = append(out, s.Scope)
		}
	}
	return out
}

// ResolveStatus folds per-scope outcomes into the run status.
func ResolveStatus(scopes []ScopeResult) RunStatus {
	if len(scopes) == 0 {
		return StatusSucceeded
	}
	failed := 0
	for _, s := range scopes {
		if s.Status == StatusFailed {
			failed++
		}
	}
	switch failed {
	case 0:
		return StatusSucceeded
	case len(scopes):
		return StatusFailed
	default:
		return StatusPartial
	}
}
