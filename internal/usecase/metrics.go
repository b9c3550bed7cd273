package usecase

import "time"

// SnapshotMetrics receives aggregation run telemetry.
type SnapshotMetrics interface {
	ObserveRun(trigger, status string, duration time.Duration)
	IncSkippedRun(trigger string)
	ObserveScope(scope, status string, duration time.Duration)
}

// SubmissionMetrics counts submission outcomes: accepted, improved, rejected.
type SubmissionMetrics interface {
	IncSubmission(outcome string)
}

const (
	SubmissionAccepted = "accepted"
	SubmissionImproved = "improved"
	SubmissionRejected = "rejected"
)

type nopMetrics struct{}

func (nopMetrics) ObserveRun(string, string, time.Duration)   {}
func (nopMetrics) IncSkippedRun(string)                       {}
func (nopMetrics) ObserveScope(string, string, time.Duration) {}
func (nopMetrics) IncSubmission(string)                       {}

// NopMetrics discards everything.
func NopMetrics() interface {
	SnapshotMetrics
	SubmissionMetrics
} {
	return nopMetrics{}
}
