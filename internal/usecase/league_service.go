package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/skill-league/internal/domain/league"
	"github.com/riskibarqy/skill-league/internal/platform/id"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
)

// LeagueConfig restricts new leagues to subjects that get a snapshot board.
// An empty Subjects list accepts any subject.
type LeagueConfig struct {
	Subjects []string
}

type LeagueService struct {
	leagueRepo league.Repository
	ids        id.Generator
	metrics    SubmissionMetrics
	subjects   []string
	logger     *logging.Logger
	now        func() time.Time
}

func NewLeagueService(leagueRepo league.Repository, ids id.Generator, metrics SubmissionMetrics, cfg LeagueConfig, logger *logging.Logger) *LeagueService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = logging.Default()
	}
	subjects := make([]string, 0, len(cfg.Subjects))
	for _, subject := range cfg.Subjects {
		if subject = league.NormalizeSubject(subject); subject != "" {
			subjects = append(subjects, subject)
		}
	}

	return &LeagueService{
		leagueRepo: leagueRepo,
		ids:        ids,
		metrics:    metrics,
		subjects:   subjects,
		logger:     logger,
		now:        time.Now,
	}
}

// LeagueView is a league with its derived fields evaluated at read time.
type LeagueView struct {
	League           league.League
	Status           league.Status
	ParticipantCount int
	SpotsRemaining   int
}

func newLeagueView(item league.League, now time.Time) LeagueView {
	return LeagueView{
		League:           item,
		Status:           item.StatusAt(now),
		ParticipantCount: item.ParticipantCount(),
		SpotsRemaining:   item.SpotsRemaining(),
	}
}

type CreateLeagueInput struct {
	Name            string
	Description     string
	Subject         string
	StartsAt        time.Time
	EndsAt          time.Time
	MaxParticipants int
	MaxSubmissions  int
	Method          league.ScoringMethod
}

type SubmitScoreInput struct {
	LeagueID    string
	UserID      string
	Accuracy    float64
	TimeSeconds float64
	Points      int
	Metadata    map[string]any
}

type SubmitScoreResult struct {
	Participant league.Participant
	Improved    bool
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]LeagueView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListLeagues")
	defer span.End()

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	now := s.now().UTC()
	out := make([]LeagueView, 0, len(leagues))
	for _, item := range leagues {
		out = append(out, newLeagueView(item, now))
	}
	return out, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, leagueID string) (LeagueView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.GetLeague")
	defer span.End()

	item, err := s.loadLeague(ctx, leagueID)
	if err != nil {
		return LeagueView{}, err
	}
	return newLeagueView(item, s.now().UTC()), nil
}

func (s *LeagueService) CreateLeague(ctx context.Context, input CreateLeagueInput) (LeagueView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.CreateLeague")
	defer span.End()

	leagueID, err := s.ids.NewID()
	if err != nil {
		return LeagueView{}, fmt.Errorf("generate league id: %w", err)
	}

	method := input.Method
	if method == "" {
		method = league.ScoringPointsOnly
	}
	now := s.now().UTC()
	item := league.League{
		ID:              leagueID,
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		Subject:         league.NormalizeSubject(input.Subject),
		StartsAt:        input.StartsAt.UTC(),
		EndsAt:          input.EndsAt.UTC(),
		MaxParticipants: input.MaxParticipants,
		MaxSubmissions:  input.MaxSubmissions,
		Method:          method,
		Status:          league.StatusUpcoming,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := item.Validate(); err != nil {
		return LeagueView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(s.subjects) > 0 && !slices.Contains(s.subjects, item.Subject) {
		return LeagueView{}, fmt.Errorf("%w: subject %q has no leaderboard, use one of %s", ErrInvalidInput, item.Subject, strings.Join(s.subjects, ", "))
	}

	if err := s.leagueRepo.Create(ctx, item); err != nil {
		return LeagueView{}, fmt.Errorf("create league: %w", err)
	}

	s.logger.InfoContext(ctx, "league created", "league_id", item.ID, "subject", item.Subject, "method", string(item.Method))
	return newLeagueView(item, now), nil
}

// CancelLeague marks a league cancelled; it stops accepting joins and
// submissions immediately.
func (s *LeagueService) CancelLeague(ctx context.Context, leagueID string) (LeagueView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.CancelLeague")
	defer span.End()

	item, err := s.loadLeague(ctx, leagueID)
	if err != nil {
		return LeagueView{}, err
	}
	if item.Status == league.StatusCancelled {
		return newLeagueView(item, s.now().UTC()), nil
	}

	if err := s.leagueRepo.UpdateStatus(ctx, item.ID, league.StatusCancelled); err != nil {
		return LeagueView{}, fmt.Errorf("cancel league: %w", err)
	}
	item.Status = league.StatusCancelled
	s.logger.InfoContext(ctx, "league cancelled", "league_id", item.ID)
	return newLeagueView(item, s.now().UTC()), nil
}

func (s *LeagueService) JoinLeague(ctx context.Context, leagueID, userID string) (league.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.JoinLeague")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" || userID == "" {
		return league.Participant{}, fmt.Errorf("%w: league id and user id are required", ErrInvalidInput)
	}

	participant, err := s.leagueRepo.Join(ctx, leagueID, func(current league.League) (league.Participant, error) {
		return current.Join(userID, s.now().UTC())
	})
	if err != nil {
		if errors.Is(err, league.ErrLeagueNotFound) {
			return league.Participant{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return league.Participant{}, fmt.Errorf("join league: %w", err)
	}

	s.logger.InfoContext(ctx, "league joined", "league_id", leagueID, "user_id", userID)
	return participant, nil
}

// SubmitScore records one attempt. The cap, active window and best-score
// replacement are evaluated under the participant lock.
func (s *LeagueService) SubmitScore(ctx context.Context, input SubmitScoreInput) (SubmitScoreResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.SubmitScore")
	defer span.End()

	leagueID := strings.TrimSpace(input.LeagueID)
	userID := strings.TrimSpace(input.UserID)
	if leagueID == "" || userID == "" {
		return SubmitScoreResult{}, fmt.Errorf("%w: league id and user id are required", ErrInvalidInput)
	}

	var improved bool
	participant, err := s.leagueRepo.Submit(ctx, leagueID, userID, func(current league.League, p league.Participant) (league.Participant, error) {
		now := s.now().UTC()
		next, err := current.RecordSubmission(p, league.Submission{
			Score: league.Score{
				Accuracy:    input.Accuracy,
				TimeSeconds: input.TimeSeconds,
				Points:      input.Points,
			},
			SubmittedAt: now,
			Metadata:    input.Metadata,
		}, now)
		if err != nil {
			return p, err
		}
		improved = p.SubmissionCount() == 0 || next.Best != p.Best
		return next, nil
	})
	if err != nil {
		s.metrics.IncSubmission(SubmissionRejected)
		if errors.Is(err, league.ErrLeagueNotFound) {
			return SubmitScoreResult{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		s.logger.InfoContext(ctx, "submission rejected", "league_id", leagueID, "user_id", userID, "error", err)
		return SubmitScoreResult{}, fmt.Errorf("submit score: %w", err)
	}

	outcome := SubmissionAccepted
	if improved {
		outcome = SubmissionImproved
	}
	s.metrics.IncSubmission(outcome)

	return SubmitScoreResult{Participant: participant, Improved: improved}, nil
}

func (s *LeagueService) loadLeague(ctx context.Context, leagueID string) (league.League, error) {
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
