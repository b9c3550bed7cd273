package postgres

import (
	"fmt"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
)

type snapshotTableModel struct {
	ID               int64     `db:"id"`
	PublicID         string    `db:"public_id"`
	SnapshotDate     time.Time `db:"snapshot_date"`
	Scope            string    `db:"scope"`
	TotalUsers       int       `db:"total_users"`
	AverageAccuracy  float64   `db:"average_accuracy"`
	AveragePoints    float64   `db:"average_points"`
	TotalSubmissions int       `db:"total_submissions"`
	TopPerformers    []byte    `db:"top_performers"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type snapshotInsertModel struct {
	PublicID         string    `db:"public_id"`
	SnapshotDate     time.Time `db:"snapshot_date"`
	Scope            string    `db:"scope"`
	TotalUsers       int       `db:"total_users"`
	AverageAccuracy  float64   `db:"average_accuracy"`
	AveragePoints    float64   `db:"average_points"`
	TotalSubmissions int       `db:"total_submissions"`
	TopPerformers    string    `db:"top_performers"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type snapshotScopeSummaryRow struct {
	Scope        string    `db:"scope"`
	Count        int       `db:"snapshot_count"`
	OldestDate   time.Time `db:"oldest_date"`
	LatestDate   time.Time `db:"latest_date"`
	AverageUsers float64   `db:"average_users"`
}

// performerRecord is the JSONB shape of one top performer.
type performerRecord struct {
	Rank            int            `json:"rank"`
	UserID          string         `json:"user_id"`
	DisplayName     string         `json:"display_name,omitempty"`
	Email           string         `json:"email,omitempty"`
	TotalPoints     int            `json:"total_points"`
	Accuracy        float64        `json:"accuracy"`
	SubmissionCount int            `json:"submission_count"`
	AverageTime     float64        `json:"average_time"`
	LastActiveAt    time.Time      `json:"last_active_at"`
	SubjectRanks    map[string]int `json:"subject_ranks,omitempty"`
}

func snapshotFromRow(row snapshotTableModel) (snapshot.Snapshot, error) {
	var records []performerRecord
	if err := unmarshalJSON(row.TopPerformers, &records); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("decode top performers scope=%s: %w", row.Scope, err)
	}

	performers := make([]snapshot.Performer, 0, len(records))
	for _, rec := range records {
		performers = append(performers, snapshot.Performer{
			Rank:            rec.Rank,
			UserID:          rec.UserID,
			DisplayName:     rec.DisplayName,
			Email:           rec.Email,
			TotalPoints:     rec.TotalPoints,
			Accuracy:        rec.Accuracy,
			SubmissionCount: rec.SubmissionCount,
			AverageTime:     rec.AverageTime,
			LastActiveAt:    rec.LastActiveAt.UTC(),
			SubjectRanks:    rec.SubjectRanks,
		})
	}

	return snapshot.Snapshot{
		ID:    row.PublicID,
		Date:  snapshot.DateOf(row.SnapshotDate),
		Scope: snapshot.Scope(row.Scope),
		Stats: snapshot.Stats{
			TotalUsers:       row.TotalUsers,
			AverageAccuracy:  row.AverageAccuracy,
			AveragePoints:    row.AveragePoints,
			TotalSubmissions: row.TotalSubmissions,
		},
		TopPerformers: performers,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}, nil
}

func snapshotInsertFromDomain(item snapshot.Snapshot) (snapshotInsertModel, error) {
	records := make([]performerRecord, 0, len(item.TopPerformers))
	for _, p := range item.TopPerformers {
		records = append(records, performerRecord{
			Rank:            p.Rank,
			UserID:          p.UserID,
			DisplayName:     p.DisplayName,
			Email:           p.Email,
			TotalPoints:     p.TotalPoints,
			Accuracy:        p.Accuracy,
			SubmissionCount: p.SubmissionCount,
			AverageTime:     p.AverageTime,
			LastActiveAt:    p.LastActiveAt.UTC(),
			SubjectRanks:    p.SubjectRanks,
		})
	}
	performers, err := marshalJSON(records, "[]")
	if err != nil {
		return snapshotInsertModel{}, fmt.Errorf("encode top performers scope=%s: %w", item.Scope, err)
	}

	return snapshotInsertModel{
		PublicID:         item.ID,
		SnapshotDate:     snapshot.DateOf(item.Date),
		Scope:            item.Scope.String(),
		TotalUsers:       item.Stats.TotalUsers,
		AverageAccuracy:  item.Stats.AverageAccuracy,
		AveragePoints:    item.Stats.AveragePoints,
		TotalSubmissions: item.Stats.TotalSubmissions,
		TopPerformers:    performers,
		CreatedAt:        item.CreatedAt.UTC(),
		UpdatedAt:        item.UpdatedAt.UTC(),
	}, nil
}
