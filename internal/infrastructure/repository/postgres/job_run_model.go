package postgres

import (
	"fmt"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
)

type jobRunTableModel struct {
	ID           int64      `db:"id"`
	PublicID     string     `db:"public_id"`
	JobName      string     `db:"job_name"`
	Trigger      string     `db:"trigger"`
	Status       string     `db:"status"`
	StartedAt    time.Time  `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
	Scopes       []byte     `db:"scopes"`
	Purged       int64      `db:"purged"`
	ErrorMessage *string    `db:"error_message"`
	TraceID      *string    `db:"trace_id"`
	SpanID       *string    `db:"span_id"`
	CreatedAt    time.Time  `db:"created_at"`
}

type jobRunInsertModel struct {
	PublicID     string     `db:"public_id"`
	JobName      string     `db:"job_name"`
	Trigger      string     `db:"trigger"`
	Status       string     `db:"status"`
	StartedAt    time.Time  `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
	Scopes       string     `db:"scopes"`
	Purged       int64      `db:"purged"`
	ErrorMessage *string    `db:"error_message"`
	TraceID      *string    `db:"trace_id"`
	SpanID       *string    `db:"span_id"`
}

type scopeResultRecord struct {
	Scope      string `json:"scope"`
	Status     string `json:"status"`
	Performers int    `json:"performers"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func jobRunFromRow(row jobRunTableModel) (jobscheduler.Run, error) {
	var records []scopeResultRecord
	if err := unmarshalJSON(row.Scopes, &records); err != nil {
		return jobscheduler.Run{}, fmt.Errorf("decode run scopes id=%s: %w", row.PublicID, err)
	}
	scopes := make([]jobscheduler.ScopeResult, 0, len(records))
	for _, rec := range records {
		scopes = append(scopes, jobscheduler.ScopeResult{
			Scope:      rec.Scope,
			Status:     jobscheduler.RunStatus(rec.Status),
			Performers: rec.Performers,
			Duration:   time.Duration(rec.DurationMS) * time.Millisecond,
			Error:      rec.Error,
		})
	}

	out := jobscheduler.Run{
		ID:           row.PublicID,
		JobName:      row.JobName,
		Trigger:      jobscheduler.Trigger(row.Trigger),
		Status:       jobscheduler.RunStatus(row.Status),
		StartedAt:    row.StartedAt.UTC(),
		Scopes:       scopes,
		Purged:       row.Purged,
		ErrorMessage: derefString(row.ErrorMessage),
		TraceID:      derefString(row.TraceID),
		SpanID:       derefString(row.SpanID),
	}
	if row.FinishedAt != nil {
		out.FinishedAt = row.FinishedAt.UTC()
	}
	return out, nil
}

func jobRunInsertFromDomain(run jobscheduler.Run) (jobRunInsertModel, error) {
	records := make([]scopeResultRecord, 0, len(run.Scopes))
	for _, s := range run.Scopes {
		records = append(records, scopeResultRecord{
			Scope:      s.Scope,
			Status:     string(s.Status),
			Performers: s.Performers,
			DurationMS: s.Duration.Milliseconds(),
			Error:      s.Error,
		})
	}
	scopes, err := marshalJSON(records, "[]")
	if err != nil {
		return jobRunInsertModel{}, fmt.Errorf("encode run scopes id=%s: %w", run.ID, err)
	}

	out := jobRunInsertModel{
		PublicID:     run.ID,
		JobName:      run.JobName,
		Trigger:      string(run.Trigger),
		Status:       string(run.Status),
		StartedAt:    run.StartedAt.UTC(),
		Scopes:       scopes,
		Purged:       run.Purged,
		ErrorMessage: optionalString(run.ErrorMessage),
		TraceID:      optionalString(run.TraceID),
		SpanID:       optionalString(run.SpanID),
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt.UTC()
		out.FinishedAt = &finished
	}
	return out, nil
}
