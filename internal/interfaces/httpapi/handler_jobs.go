package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
)

const defaultRunListLimit = 20

// TriggerSnapshot runs the aggregator inline. The run outlives a client
// disconnect so a half-written day never stays behind.
func (h *Handler) TriggerSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerSnapshot")
	defer span.End()

	run, err := h.aggregator.Run(context.WithoutCancel(ctx), jobscheduler.TriggerManual)
	switch {
	case errors.Is(err, snapshot.ErrScopeAggregationFailed):
		h.logger.WarnContext(ctx, "manual snapshot run failed for every scope", "run_id", run.ID, "error", err)
		writeSuccess(ctx, w, http.StatusOK, jobRunToDTO(run))
	case err != nil:
		h.fail(ctx, w, err)
	default:
		writeSuccess(ctx, w, http.StatusOK, jobRunToDTO(run))
	}
}

func (h *Handler) GetSnapshotJobStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshotJobStatus")
	defer span.End()

	status, err := h.aggregator.Status(ctx)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, jobStatusToDTO(status))
}

func (h *Handler) GetSnapshotStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshotStats")
	defer span.End()

	summary, err := h.aggregator.Stats(ctx)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, snapshotStatsToDTO(summary))
}

func (h *Handler) ListSnapshotRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSnapshotRuns")
	defer span.End()

	limit, err := queryInt(r, "limit", defaultRunListLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	runs, err := h.aggregator.RecentRuns(ctx, limit)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	out := make([]jobRunDTO, 0, len(runs))
	for _, run := range runs {
		out = append(out, jobRunToDTO(run))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) PurgeSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PurgeSnapshots")
	defer span.End()

	days, err := queryInt(r, "days", snapshot.DefaultRetentionDays)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	deleted, err := h.aggregator.Purge(ctx, days)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"days": days, "deleted": deleted})
}
