package httpapi

import (
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/skill-league/internal/domain/leaderboard"
	"github.com/riskibarqy/skill-league/internal/domain/league"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	"github.com/riskibarqy/skill-league/internal/usecase"
)

type createLeagueRequest struct {
	Name            string    `json:"name" validate:"required,max=120"`
	Description     string    `json:"description" validate:"max=2000"`
	Subject         string    `json:"subject" validate:"max=64"`
	StartsAt        time.Time `json:"startsAt" validate:"required"`
	EndsAt          time.Time `json:"endsAt" validate:"required"`
	MaxParticipants int       `json:"maxParticipants" validate:"gte=0"`
	MaxSubmissions  int       `json:"maxSubmissions" validate:"gte=0"`
	ScoringMethod   string    `json:"scoringMethod" validate:"omitempty,oneof=accuracy_then_time time_then_accuracy points_only"`
}

type submitScoreRequest struct {
	Accuracy    *float64       `json:"accuracy" validate:"required,gte=0,lte=100"`
	TimeSeconds *float64       `json:"timeSeconds" validate:"required,gte=0"`
	Points      *int           `json:"points" validate:"required,gte=0"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type leagueDTO struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Subject          string    `json:"subject,omitempty"`
	StartsAt         time.Time `json:"startsAt"`
	EndsAt           time.Time `json:"endsAt"`
	MaxParticipants  int       `json:"maxParticipants"`
	MaxSubmissions   int       `json:"maxSubmissions"`
	ScoringMethod    string    `json:"scoringMethod"`
	Status           string    `json:"status"`
	ParticipantCount int       `json:"participantCount"`
	SpotsRemaining   int       `json:"spotsRemaining"`
	CreatedAt        time.Time `json:"createdAt"`
}

type scoreDTO struct {
	Accuracy    float64 `json:"accuracy"`
	TimeSeconds float64 `json:"timeSeconds"`
	Points      int     `json:"points"`
}

type participantDTO struct {
	LeagueID        string     `json:"leagueId"`
	UserID          string     `json:"userId"`
	JoinedAt        time.Time  `json:"joinedAt"`
	Best            *scoreDTO  `json:"best,omitempty"`
	SubmissionCount int        `json:"submissionCount"`
	LastSubmittedAt *time.Time `json:"lastSubmittedAt,omitempty"`
}

type submissionResultDTO struct {
	Participant participantDTO `json:"participant"`
	Improved    bool           `json:"improved"`
}

type leaderboardEntryDTO struct {
	Rank            int        `json:"rank,omitempty"`
	UserID          string     `json:"userId"`
	Best            *scoreDTO  `json:"best,omitempty"`
	SubmissionCount int        `json:"submissionCount"`
	JoinedAt        time.Time  `json:"joinedAt"`
	LastSubmittedAt *time.Time `json:"lastSubmittedAt,omitempty"`
}

type leagueLeaderboardDTO struct {
	LeagueID      string                `json:"leagueId"`
	ScoringMethod string                `json:"scoringMethod"`
	Status        string                `json:"status"`
	Entries       []leaderboardEntryDTO `json:"entries"`
	Total         int                   `json:"total"`
	Offset        int                   `json:"offset"`
	Limit         int                   `json:"limit"`
}

type myLeagueRankDTO struct {
	Entry  leaderboardEntryDTO `json:"entry"`
	Ranked bool                `json:"ranked"`
	Total  int                 `json:"total"`
}

type statsDTO struct {
	TotalUsers       int     `json:"totalUsers"`
	AverageAccuracy  float64 `json:"averageAccuracy"`
	AveragePoints    float64 `json:"averagePoints"`
	TotalSubmissions int     `json:"totalSubmissions"`
}

type performerDTO struct {
	Rank            int            `json:"rank"`
	UserID          string         `json:"userId"`
	DisplayName     string         `json:"displayName,omitempty"`
	Email           string         `json:"email,omitempty"`
	TotalPoints     int            `json:"totalPoints"`
	Accuracy        float64        `json:"accuracy"`
	SubmissionCount int            `json:"submissionCount"`
	AverageTime     float64        `json:"averageTime"`
	LastActiveAt    time.Time      `json:"lastActiveAt"`
	SubjectRanks    map[string]int `json:"subjectRanks,omitempty"`
	PreviousRank    *int           `json:"previousRank,omitempty"`
	Movement        string         `json:"movement,omitempty"`
}

type scopeBoardDTO struct {
	Scope        string         `json:"scope"`
	Timeframe    string         `json:"timeframe"`
	Source       string         `json:"source"`
	Date         *string        `json:"date,omitempty"`
	BaselineDate *string        `json:"baselineDate,omitempty"`
	Stats        statsDTO       `json:"stats"`
	Performers   []performerDTO `json:"performers"`
}

type spotlightEntryDTO struct {
	Performer performerDTO `json:"performer"`
	RankGain  int          `json:"rankGain,omitempty"`
}

type spotlightDTO struct {
	Scope        string             `json:"scope"`
	Source       string             `json:"source"`
	Date         *string            `json:"date,omitempty"`
	TopPoints    *spotlightEntryDTO `json:"topPoints,omitempty"`
	BestAccuracy *spotlightEntryDTO `json:"bestAccuracy,omitempty"`
	MostActive   *spotlightEntryDTO `json:"mostActive,omitempty"`
	Fastest      *spotlightEntryDTO `json:"fastest,omitempty"`
	RisingStar   *spotlightEntryDTO `json:"risingStar,omitempty"`
}

type historyPointDTO struct {
	Date        string  `json:"date"`
	Ranked      bool    `json:"ranked"`
	Rank        int     `json:"rank,omitempty"`
	TotalPoints int     `json:"totalPoints,omitempty"`
	Accuracy    float64 `json:"accuracy,omitempty"`
}

type scopeResultDTO struct {
	Scope      string `json:"scope"`
	Status     string `json:"status"`
	Performers int    `json:"performers"`
	DurationMS int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

type jobRunDTO struct {
	ID           string           `json:"id"`
	JobName      string           `json:"jobName"`
	Trigger      string           `json:"trigger"`
	Status       string           `json:"status"`
	StartedAt    time.Time        `json:"startedAt"`
	FinishedAt   *time.Time       `json:"finishedAt,omitempty"`
	Scopes       []scopeResultDTO `json:"scopes"`
	Purged       int64            `json:"purged"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
	TraceID      string           `json:"traceId,omitempty"`
}

type jobStatusDTO struct {
	Running     bool       `json:"running"`
	Initialized bool       `json:"initialized"`
	NextRunAt   *time.Time `json:"nextRunAt,omitempty"`
	LastRun     *jobRunDTO `json:"lastRun,omitempty"`
}

type scopeSummaryDTO struct {
	Scope        string  `json:"scope"`
	Count        int     `json:"count"`
	LatestDate   string  `json:"latestDate"`
	AverageUsers float64 `json:"averageUsers"`
}

type snapshotStatsDTO struct {
	TotalSnapshots int               `json:"totalSnapshots"`
	OldestDate     *string           `json:"oldestDate,omitempty"`
	LatestDate     *string           `json:"latestDate,omitempty"`
	Scopes         []scopeSummaryDTO `json:"scopes"`
}

func leagueToDTO(view usecase.LeagueView) leagueDTO {
	item := view.League
	return leagueDTO{
		ID:               item.ID,
		Name:             item.Name,
		Description:      item.Description,
		Subject:          item.Subject,
		StartsAt:         item.StartsAt,
		EndsAt:           item.EndsAt,
		MaxParticipants:  item.MaxParticipants,
		MaxSubmissions:   item.MaxSubmissions,
		ScoringMethod:    string(item.Method),
		Status:           string(view.Status),
		ParticipantCount: view.ParticipantCount,
		SpotsRemaining:   view.SpotsRemaining,
		CreatedAt:        item.CreatedAt,
	}
}

func scoreToDTO(score league.Score) *scoreDTO {
	if !score.HasScore() {
		return nil
	}
	return &scoreDTO{
		Accuracy:    score.Accuracy,
		TimeSeconds: score.TimeSeconds,
		Points:      score.Points,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func optionalDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	v := formatDate(t)
	return &v
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func participantToDTO(p league.Participant) participantDTO {
	var last time.Time
	if n := len(p.Submissions); n > 0 {
		last = p.Submissions[n-1].SubmittedAt
	}
	return participantDTO{
		LeagueID:        p.LeagueID,
		UserID:          p.UserID,
		JoinedAt:        p.JoinedAt,
		Best:            scoreToDTO(p.Best),
		SubmissionCount: p.SubmissionCount(),
		LastSubmittedAt: optionalTime(last),
	}
}

func entryToDTO(e leaderboard.Entry) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		Rank:            e.Rank,
		UserID:          e.UserID,
		Best:            scoreToDTO(e.Best),
		SubmissionCount: e.SubmissionCount,
		JoinedAt:        e.JoinedAt,
		LastSubmittedAt: optionalTime(e.LastSubmittedAt),
	}
}

func leagueLeaderboardToDTO(board usecase.LeagueLeaderboard) leagueLeaderboardDTO {
	entries := make([]leaderboardEntryDTO, 0, len(board.Page.Entries))
	for _, e := range board.Page.Entries {
		entries = append(entries, entryToDTO(e))
	}
	return leagueLeaderboardDTO{
		LeagueID:      board.LeagueID,
		ScoringMethod: string(board.Method),
		Status:        string(board.Status),
		Entries:       entries,
		Total:         board.Page.Total,
		Offset:        board.Page.Offset,
		Limit:         board.Page.Limit,
	}
}

func statsToDTO(s snapshot.Stats) statsDTO {
	return statsDTO{
		TotalUsers:       s.TotalUsers,
		AverageAccuracy:  s.AverageAccuracy,
		AveragePoints:    s.AveragePoints,
		TotalSubmissions: s.TotalSubmissions,
	}
}

func performerToDTO(p snapshot.Performer) performerDTO {
	return performerDTO{
		Rank:            p.Rank,
		UserID:          p.UserID,
		DisplayName:     p.DisplayName,
		Email:           p.Email,
		TotalPoints:     p.TotalPoints,
		Accuracy:        p.Accuracy,
		SubmissionCount: p.SubmissionCount,
		AverageTime:     p.AverageTime,
		LastActiveAt:    p.LastActiveAt,
		SubjectRanks:    p.SubjectRanks,
	}
}

func scopeBoardToDTO(board usecase.ScopeBoard) scopeBoardDTO {
	performers := make([]performerDTO, 0, len(board.Performers))
	for _, p := range board.Performers {
		item := performerToDTO(p.Performer)
		item.PreviousRank = p.PreviousRank
		item.Movement = string(p.Movement)
		performers = append(performers, item)
	}

	out := scopeBoardDTO{
		Scope:      string(board.Scope),
		Timeframe:  string(board.Timeframe),
		Source:     string(board.Source),
		Date:       optionalDate(board.Date),
		Stats:      statsToDTO(board.Stats),
		Performers: performers,
	}
	if board.BaselineDate != nil {
		out.BaselineDate = optionalDate(*board.BaselineDate)
	}
	return out
}

func spotlightEntryToDTO(e *usecase.SpotlightEntry) *spotlightEntryDTO {
	if e == nil {
		return nil
	}
	return &spotlightEntryDTO{Performer: performerToDTO(e.Performer), RankGain: e.RankGain}
}

func spotlightToDTO(s usecase.Spotlight) spotlightDTO {
	return spotlightDTO{
		Scope:        string(s.Scope),
		Source:       string(s.Source),
		Date:         optionalDate(s.Date),
		TopPoints:    spotlightEntryToDTO(s.TopPoints),
		BestAccuracy: spotlightEntryToDTO(s.BestAccuracy),
		MostActive:   spotlightEntryToDTO(s.MostActive),
		Fastest:      spotlightEntryToDTO(s.Fastest),
		RisingStar:   spotlightEntryToDTO(s.RisingStar),
	}
}

func historyToDTO(points []usecase.HistoryPoint) []historyPointDTO {
	out := make([]historyPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, historyPointDTO{
			Date:        formatDate(p.Date),
			Ranked:      p.Ranked,
			Rank:        p.Rank,
			TotalPoints: p.TotalPoints,
			Accuracy:    p.Accuracy,
		})
	}
	return out
}

func jobRunToDTO(run jobscheduler.Run) jobRunDTO {
	scopes := make([]scopeResultDTO, 0, len(run.Scopes))
	for _, s := range run.Scopes {
		scopes = append(scopes, scopeResultDTO{
			Scope:      s.Scope,
			Status:     string(s.Status),
			Performers: s.Performers,
			DurationMS: s.Duration.Milliseconds(),
			Error:      s.Error,
		})
	}
	return jobRunDTO{
		ID:           run.ID,
		JobName:      run.JobName,
		Trigger:      string(run.Trigger),
		Status:       string(run.Status),
		StartedAt:    run.StartedAt,
		FinishedAt:   optionalTime(run.FinishedAt),
		Scopes:       scopes,
		Purged:       run.Purged,
		ErrorMessage: run.ErrorMessage,
		TraceID:      run.TraceID,
	}
}

func jobStatusToDTO(status usecase.JobStatus) jobStatusDTO {
	out := jobStatusDTO{
		Running:     status.Running,
		Initialized: status.Initialized,
		NextRunAt:   status.NextRunAt,
	}
	if status.LastRun != nil {
		last := jobRunToDTO(*status.LastRun)
		out.LastRun = &last
	}
	return out
}

func snapshotStatsToDTO(summary snapshot.Summary) snapshotStatsDTO {
	scopes := make([]scopeSummaryDTO, 0, len(summary.Scopes))
	for _, s := range summary.Scopes {
		scopes = append(scopes, scopeSummaryDTO{
			Scope:        string(s.Scope),
			Count:        s.Count,
			LatestDate:   formatDate(s.LatestDate),
			AverageUsers: s.AverageUsers,
		})
	}

	out := snapshotStatsDTO{TotalSnapshots: summary.TotalSnapshots, Scopes: scopes}
	if summary.OldestDate != nil {
		out.OldestDate = optionalDate(*summary.OldestDate)
	}
	if summary.LatestDate != nil {
		out.LatestDate = optionalDate(*summary.LatestDate)
	}
	return out
}
