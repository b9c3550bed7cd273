package httpapi

import (
	"net/http"

	"github.com/riskibarqy/skill-league/internal/platform/ratelimit"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/leaderboard", handler.GetLeagueLeaderboard)
	mux.HandleFunc("GET /v1/leaderboards", handler.ListScopes)
	mux.HandleFunc("GET /v1/leaderboards/{scope}", handler.GetScopeBoard)
	mux.HandleFunc("GET /v1/leaderboards/{scope}/spotlight", handler.GetSpotlight)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, submissionLimiter *ratelimit.KeyedLimiter) {
	mux.Handle("GET /v1/leagues/{leagueID}/leaderboard/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyLeagueRank)))
	mux.Handle("POST /v1/leagues/{leagueID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinLeague)))
	mux.Handle("POST /v1/leagues/{leagueID}/submissions", RequireAuth(verifier, RateLimitByPrincipal(submissionLimiter, http.HandlerFunc(handler.SubmitScore))))
	mux.Handle("GET /v1/leaderboards/{scope}/history/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyHistory)))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	internal := func(fn http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(internalJobToken, fn)
	}

	mux.Handle("POST /v1/internal/leagues", internal(handler.CreateLeague))
	mux.Handle("POST /v1/internal/leagues/{leagueID}/cancel", internal(handler.CancelLeague))
	mux.Handle("POST /v1/internal/jobs/snapshot", internal(handler.TriggerSnapshot))
	mux.Handle("POST /v1/internal/jobs/snapshot/purge", internal(handler.PurgeSnapshots))
	mux.Handle("GET /v1/internal/jobs/snapshot/status", internal(handler.GetSnapshotJobStatus))
	mux.Handle("GET /v1/internal/jobs/snapshot/stats", internal(handler.GetSnapshotStats))
	mux.Handle("GET /v1/internal/jobs/snapshot/runs", internal(handler.ListSnapshotRuns))
}
