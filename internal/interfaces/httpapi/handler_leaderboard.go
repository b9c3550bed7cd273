package httpapi

import (
	"net/http"

	"github.com/riskibarqy/skill-league/internal/usecase"
)

func (h *Handler) GetLeagueLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueLeaderboard")
	defer span.End()

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.leaderboardService.LeagueLeaderboard(ctx, r.PathValue("leagueID"), offset, limit)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leagueLeaderboardToDTO(board))
}

func (h *Handler) GetMyLeagueRank(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyLeagueRank")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rank, err := h.leaderboardService.MyLeagueRank(ctx, r.PathValue("leagueID"), principal.UserID)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, myLeagueRankDTO{
		Entry:  entryToDTO(rank.Entry),
		Ranked: rank.Ranked,
		Total:  rank.Total,
	})
}

func (h *Handler) ListScopes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListScopes")
	defer span.End()

	scopes := h.leaderboardService.Scopes()
	out := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		out = append(out, string(scope))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetScopeBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScopeBoard")
	defer span.End()

	timeframe, err := usecase.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.leaderboardService.ScopeBoard(ctx, r.PathValue("scope"), timeframe, limit)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, scopeBoardToDTO(board))
}

func (h *Handler) GetSpotlight(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSpotlight")
	defer span.End()

	spotlight, err := h.leaderboardService.Spotlight(ctx, r.PathValue("scope"))
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, spotlightToDTO(spotlight))
}

func (h *Handler) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyHistory")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	days, err := queryInt(r, "days", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	points, err := h.leaderboardService.UserHistory(ctx, r.PathValue("scope"), principal.UserID, days)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, historyToDTO(points))
}
