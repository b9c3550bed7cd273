package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/leaderboard"
	"github.com/riskibarqy/skill-league/internal/domain/league"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultLeaguePageLimit = 50
	maxLeaguePageLimit     = 100
	defaultHistoryDays     = 30
	risingStarMinGapDays   = 7
	// A current board may lag one day while today's run has not happened yet.
	maxCurrentLagDays      = 1
)

type Timeframe string

const (
	TimeframeCurrent Timeframe = "current"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// ParseTimeframe defaults to current on empty input.
func ParseTimeframe(raw string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(raw))); tf {
	case "":
		return TimeframeCurrent, nil
	case TimeframeCurrent, TimeframeWeekly, TimeframeMonthly:
		return tf, nil
	default:
		return "", fmt.Errorf("%w: unknown timeframe %q", ErrInvalidInput, raw)
	}
}

func (tf Timeframe) windowDays() int {
	switch tf {
	case TimeframeWeekly:
		return 7
	case TimeframeMonthly:
		return 30
	default:
		return 1
	}
}

// BoardSource tells the caller where a scope board came from.
type BoardSource string

const (
	SourceSnapshot BoardSource = "snapshot"
	SourceLive     BoardSource = "live"
	SourceEmpty    BoardSource = "empty"
)

type LeaderboardConfig struct {
	Subjects []string
	TopN     int
}

type LeaderboardService struct {
	leagueRepo   league.Repository
	snapshotRepo snapshot.Repository
	cfg          LeaderboardConfig
	logger       *logging.Logger
	now          func() time.Time
}

func NewLeaderboardService(leagueRepo league.Repository, snapshotRepo snapshot.Repository, cfg LeaderboardConfig, logger *logging.Logger) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TopN <= 0 || cfg.TopN > snapshot.MaxTopPerformers {
		cfg.TopN = snapshot.MaxTopPerformers
	}
	return &LeaderboardService{
		leagueRepo:   leagueRepo,
		snapshotRepo: snapshotRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

type LeagueLeaderboard struct {
	LeagueID string
	Method   league.ScoringMethod
	Status   league.Status
	Page     leaderboard.Page
}

type MyLeagueRank struct {
	Entry  leaderboard.Entry
	Ranked bool
	Total  int
}

type RankedPerformer struct {
	snapshot.Performer
	PreviousRank *int
	Movement     snapshot.RankMovement
}

type ScopeBoard struct {
	Scope        snapshot.Scope
	Timeframe    Timeframe
	Source       BoardSource
	Date         time.Time
	BaselineDate *time.Time
	Stats        snapshot.Stats
	Performers   []RankedPerformer
}

type SpotlightEntry struct {
	Performer snapshot.Performer
	RankGain  int
}

type Spotlight struct {
	Scope        snapshot.Scope
	Source       BoardSource
	Date         time.Time
	TopPoints    *SpotlightEntry
	BestAccuracy *SpotlightEntry
	MostActive   *SpotlightEntry
	Fastest      *SpotlightEntry
	RisingStar   *SpotlightEntry
}

type HistoryPoint struct {
	Date        time.Time
	Ranked      bool
	Rank        int
	TotalPoints int
	Accuracy    float64
}

// LeagueLeaderboard ranks the league live from participant bests.
func (s *LeaderboardService) LeagueLeaderboard(ctx context.Context, leagueID string, offset, limit int) (LeagueLeaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.LeagueLeaderboard")
	defer span.End()

	if offset < 0 {
		return LeagueLeaderboard{}, fmt.Errorf("%w: offset must be >= 0", ErrInvalidInput)
	}
	if limit == 0 {
		limit = defaultLeaguePageLimit
	}
	if limit < 0 || limit > maxLeaguePageLimit {
		return LeagueLeaderboard{}, fmt.Errorf("%w: limit must be within 1..%d", ErrInvalidInput, maxLeaguePageLimit)
	}

	item, err := s.loadLeague(ctx, leagueID)
	if err != nil {
		return LeagueLeaderboard{}, err
	}

	entries := leaderboard.Rank(item.Participants, item.Method)
	return LeagueLeaderboard{
		LeagueID: item.ID,
		Method:   item.Method,
		Status:   item.StatusAt(s.now().UTC()),
		Page:     leaderboard.Paginate(entries, offset, limit),
	}, nil
}

func (s *LeaderboardService) MyLeagueRank(ctx context.Context, leagueID, userID string) (MyLeagueRank, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.MyLeagueRank")
	defer span.End()

	item, err := s.loadLeague(ctx, leagueID)
	if err != nil {
		return MyLeagueRank{}, err
	}
	participant, ok := item.Participant(userID)
	if !ok {
		return MyLeagueRank{}, fmt.Errorf("%w: %w: league=%s user=%s", ErrNotFound, league.ErrNotParticipant, item.ID, userID)
	}

	entries := leaderboard.Rank(item.Participants, item.Method)
	entry, ranked := leaderboard.Find(entries, userID)
	if !ranked {
		entry = leaderboard.Entry{
			UserID:          participant.UserID,
			SubmissionCount: participant.SubmissionCount(),
			JoinedAt:        participant.JoinedAt,
		}
	}
	return MyLeagueRank{Entry: entry, Ranked: ranked, Total: len(entries)}, nil
}

// ScopeBoard serves the persisted top-N for a scope. Current falls back to a
// live aggregation when the latest snapshot is missing or stale; weekly and monthly compare
// the latest snapshot in the window against the earliest one.
func (s *LeaderboardService) ScopeBoard(ctx context.Context, rawScope string, timeframe Timeframe, limit int) (ScopeBoard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.ScopeBoard")
	defer span.End()

	scope, err := s.resolveScope(rawScope)
	if err != nil {
		return ScopeBoard{}, err
	}
	if limit == 0 {
		limit = s.cfg.TopN
	}
	if limit < 0 || limit > snapshot.MaxTopPerformers {
		return ScopeBoard{}, fmt.Errorf("%w: limit must be within 1..%d", ErrInvalidInput, snapshot.MaxTopPerformers)
	}

	today := snapshot.DateOf(s.now())
	from := today.AddDate(0, 0, -max(timeframe.windowDays()-1, 1))

	var (
		latest     snapshot.Snapshot
		hasLatest  bool
		windowSnap []snapshot.Snapshot
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		latest, hasLatest, err = s.snapshotRepo.GetLatest(ctx, scope)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		windowSnap, err = s.snapshotRepo.ListRange(ctx, scope, from, today)
		return err
	})
	if err := p.Wait(); err != nil {
		return ScopeBoard{}, fmt.Errorf("load snapshots scope=%s: %w", scope, err)
	}

	board := ScopeBoard{Scope: scope, Timeframe: timeframe}

	var current snapshot.Snapshot
	var baseline *snapshot.Snapshot
	switch timeframe {
	case TimeframeCurrent:
		if !hasLatest || !isCurrentSnapshot(latest, today) {
			live, err := s.livePreview(ctx, scope)
			if err != nil {
				return ScopeBoard{}, err
			}
			board.Source = SourceLive
			board.Date = live.Date
			board.Stats = live.Stats
			board.Performers = rankWithMovement(live.TopPerformers, nil, limit)
			return board, nil
		}
		current = latest
		// Previous day-or-older snapshot inside the window.
		for i := len(windowSnap) - 1; i >= 0; i-- {
			if windowSnap[i].Date.Before(latest.Date) {
				baseline = &windowSnap[i]
				break
			}
		}
	default:
		if len(windowSnap) == 0 {
			board.Source = SourceEmpty
			board.Performers = []RankedPerformer{}
			return board, nil
		}
		current = windowSnap[len(windowSnap)-1]
		if len(windowSnap) > 1 {
			baseline = &windowSnap[0]
		}
	}

	board.Source = SourceSnapshot
	board.Date = current.Date
	board.Stats = current.Stats
	if baseline != nil {
		date := baseline.Date
		board.BaselineDate = &date
	}
	board.Performers = rankWithMovement(current.TopPerformers, baseline, limit)
	return board, nil
}

// Spotlight picks highlight performers from the latest board of a scope.
func (s *LeaderboardService) Spotlight(ctx context.Context, rawScope string) (Spotlight, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Spotlight")
	defer span.End()

	scope, err := s.resolveScope(rawScope)
	if err != nil {
		return Spotlight{}, err
	}

	today := snapshot.DateOf(s.now())
	var (
		latest    snapshot.Snapshot
		hasLatest bool
		older     []snapshot.Snapshot
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		latest, hasLatest, err = s.snapshotRepo.GetLatest(ctx, scope)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		older, err = s.snapshotRepo.ListRange(ctx, scope, today.AddDate(0, 0, -snapshot.MaxRetentionDays), today.AddDate(0, 0, -risingStarMinGapDays))
		return err
	})
	if err := p.Wait(); err != nil {
		return Spotlight{}, fmt.Errorf("load snapshots scope=%s: %w", scope, err)
	}

	out := Spotlight{Scope: scope, Source: SourceSnapshot}
	if !hasLatest || !isCurrentSnapshot(latest, today) {
		live, err := s.livePreview(ctx, scope)
		if err != nil {
			return Spotlight{}, err
		}
		latest = live
		out.Source = SourceLive
	}
	out.Date = latest.Date
	if len(latest.TopPerformers) == 0 {
		if out.Source == SourceLive {
			out.Source = SourceEmpty
		}
		return out, nil
	}

	performers := latest.TopPerformers
	out.TopPoints = &SpotlightEntry{Performer: performers[0]}
	out.BestAccuracy = pickPerformer(performers, func(a, b snapshot.Performer) bool { return a.Accuracy > b.Accuracy })
	out.MostActive = pickPerformer(performers, func(a, b snapshot.Performer) bool { return a.SubmissionCount > b.SubmissionCount })
	out.Fastest = pickPerformer(performers, func(a, b snapshot.Performer) bool {
		if a.AverageTime <= 0 {
			return false
		}
		return b.AverageTime <= 0 || a.AverageTime < b.AverageTime
	})
	if out.Fastest != nil && out.Fastest.Performer.AverageTime <= 0 {
		out.Fastest = nil
	}

	cutoff := latest.Date.AddDate(0, 0, -risingStarMinGapDays)
	for i := len(older) - 1; i >= 0; i-- {
		if older[i].Date.After(cutoff) {
			continue
		}
		out.RisingStar = risingStar(performers, older[i])
		break
	}
	return out, nil
}

func isCurrentSnapshot(item snapshot.Snapshot, today time.Time) bool {
	return !item.Date.Before(today.AddDate(0, 0, -maxCurrentLagDays))
}

// UserHistory lists the caller's rank per snapshot day, oldest first.
func (s *LeaderboardService) UserHistory(ctx context.Context, rawScope, userID string, days int) ([]HistoryPoint, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.UserHistory")
	defer span.End()

	scope, err := s.resolveScope(rawScope)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if days == 0 {
		days = defaultHistoryDays
	}
	if days < 1 || days > snapshot.MaxRetentionDays {
		return nil, fmt.Errorf("%w: days must be within 1..%d", ErrInvalidInput, snapshot.MaxRetentionDays)
	}

	today := snapshot.DateOf(s.now())
	items, err := s.snapshotRepo.ListRange(ctx, scope, today.AddDate(0, 0, -(days-1)), today)
	if err != nil {
		return nil, fmt.Errorf("list snapshots scope=%s: %w", scope, err)
	}

	out := make([]HistoryPoint, 0, len(items))
	for _, item := range items {
		point := HistoryPoint{Date: item.Date}
		if p, ok := item.Performer(userID); ok {
			point.Ranked = true
			point.Rank = p.Rank
			point.TotalPoints = p.TotalPoints
			point.Accuracy = p.Accuracy
		}
		out = append(out, point)
	}
	return out, nil
}

// LatestSnapshot returns the stored board without any live fallback.
func (s *LeaderboardService) LatestSnapshot(ctx context.Context, rawScope string) (snapshot.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.LatestSnapshot")
	defer span.End()

	scope, err := s.resolveScope(rawScope)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	item, ok, err := s.snapshotRepo.GetLatest(ctx, scope)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("get latest snapshot scope=%s: %w", scope, err)
	}
	if !ok {
		return snapshot.Snapshot{}, fmt.Errorf("%w: scope=%s", snapshot.ErrNoSnapshotAvailable, scope)
	}
	return item, nil
}

// SnapshotOn returns the board stored for one UTC day.
func (s *LeaderboardService) SnapshotOn(ctx context.Context, rawScope string, date time.Time) (snapshot.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.SnapshotOn")
	defer span.End()

	scope, err := s.resolveScope(rawScope)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	day := snapshot.DateOf(date)
	item, ok, err := s.snapshotRepo.GetByDate(ctx, scope, day)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("get snapshot scope=%s date=%s: %w", scope, day.Format(time.DateOnly), err)
	}
	if !ok {
		return snapshot.Snapshot{}, fmt.Errorf("%w: scope=%s date=%s", snapshot.ErrNoSnapshotAvailable, scope, day.Format(time.DateOnly))
	}
	return item, nil
}

// Scopes lists the boards this service serves, global first.
func (s *LeaderboardService) Scopes() []snapshot.Scope {
	out := make([]snapshot.Scope, 0, len(s.cfg.Subjects)+1)
	out = append(out, snapshot.ScopeGlobal)
	for _, subject := range s.cfg.Subjects {
		out = append(out, snapshot.ParseScope(subject))
	}
	return out
}

func (s *LeaderboardService) resolveScope(raw string) (snapshot.Scope, error) {
	scope := snapshot.ParseScope(raw)
	if scope == "" {
		return "", fmt.Errorf("%w: scope is required", ErrInvalidInput)
	}
	if slices.Contains(s.Scopes(), scope) {
		return scope, nil
	}
	return "", fmt.Errorf("%w: %q", snapshot.ErrUnknownScope, raw)
}

func (s *LeaderboardService) livePreview(ctx context.Context, scope snapshot.Scope) (snapshot.Snapshot, error) {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("list leagues: %w", err)
	}
	s.logger.DebugContext(ctx, "serving live leaderboard preview", "scope", scope.String())
	return snapshot.Build(snapshot.BuildInput{
		Scope:    scope,
		Leagues:  leagues,
		Subjects: s.cfg.Subjects,
		Now:      s.now().UTC(),
		TopN:     s.cfg.TopN,
	}), nil
}

func (s *LeaderboardService) loadLeague(ctx context.Context, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: %w: league=%s", ErrNotFound, league.ErrLeagueNotFound, leagueID)
	}
	return item, nil
}

func rankWithMovement(performers []snapshot.Performer, baseline *snapshot.Snapshot, limit int) []RankedPerformer {
	n := min(limit, len(performers))
	out := make([]RankedPerformer, 0, n)
	for _, p := range performers[:n] {
		row := RankedPerformer{Performer: p}
		if baseline != nil {
			if prev, ok := baseline.Performer(p.UserID); ok {
				rank := prev.Rank
				row.PreviousRank = &rank
			}
		}
		row.Movement = snapshot.MovementBetween(row.PreviousRank, p.Rank)
		out = append(out, row)
	}
	return out
}

// pickPerformer returns the first performer no other beats; rank order breaks
// ties.
func pickPerformer(performers []snapshot.Performer, better func(a, b snapshot.Performer) bool) *SpotlightEntry {
	if len(performers) == 0 {
		return nil
	}
	best := performers[0]
	for _, p := range performers[1:] {
		if better(p, best) {
			best = p
		}
	}
	return &SpotlightEntry{Performer: best}
}

func risingStar(performers []snapshot.Performer, baseline snapshot.Snapshot) *SpotlightEntry {
	var out *SpotlightEntry
	for _, p := range performers {
		prev, ok := baseline.Performer(p.UserID)
		if !ok {
			continue
		}
		gain := prev.Rank - p.Rank
		if gain <= 0 {
			continue
		}
		if out == nil || gain > out.RankGain {
			out = &SpotlightEntry{Performer: p, RankGain: gain}
		}
	}
	return out
}
