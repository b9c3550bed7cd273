package httpapi

import (
	"net/http"

	"github.com/riskibarqy/skill-league/internal/domain/league"
	"github.com/riskibarqy/skill-league/internal/usecase"
)

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	items, err := h.leagueService.ListLeagues(ctx)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	out := make([]leagueDTO, 0, len(items))
	for _, item := range items {
		out = append(out, leagueToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	item, err := h.leagueService.GetLeague(ctx, r.PathValue("leagueID"))
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item))
}

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	var req createLeagueRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.CreateLeague(ctx, usecase.CreateLeagueInput{
		Name:            req.Name,
		Description:     req.Description,
		Subject:         req.Subject,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		MaxParticipants: req.MaxParticipants,
		MaxSubmissions:  req.MaxSubmissions,
		Method:          league.ScoringMethod(req.ScoringMethod),
	})
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(item))
}

func (h *Handler) CancelLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelLeague")
	defer span.End()

	item, err := h.leagueService.CancelLeague(ctx, r.PathValue("leagueID"))
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item))
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	participant, err := h.leagueService.JoinLeague(ctx, r.PathValue("leagueID"), principal.UserID)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, participantToDTO(participant))
}

func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitScore")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitScoreRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.leagueService.SubmitScore(ctx, usecase.SubmitScoreInput{
		LeagueID:    r.PathValue("leagueID"),
		UserID:      principal.UserID,
		Accuracy:    *req.Accuracy,
		TimeSeconds: *req.TimeSeconds,
		Points:      *req.Points,
		Metadata:    req.Metadata,
	})
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, submissionResultDTO{
		Participant: participantToDTO(result.Participant),
		Improved:    result.Improved,
	})
}
