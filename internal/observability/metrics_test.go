package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/riskibarqy/skill-league/internal/usecase"
)

var (
	_ usecase.SnapshotMetrics   = (*Metrics)(nil)
	_ usecase.SubmissionMetrics = (*Metrics)(nil)
)

func TestMetrics_CountsRunsAndSubmissions(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveRun("scheduled", "succeeded", 2*time.Second)
	m.ObserveRun("scheduled", "partial", time.Second)
	m.IncSkippedRun("manual")
	m.ObserveScope("math", "succeeded", 150*time.Millisecond)
	m.IncSubmission(usecase.SubmissionImproved)
	m.IncSubmission(usecase.SubmissionImproved)
	m.IncSubmission(usecase.SubmissionRejected)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("scheduled", "succeeded")); got != 1 {
		t.Fatalf("unexpected succeeded runs got=%v want=1", got)
	}
	if got := testutil.ToFloat64(m.skippedRuns.WithLabelValues("manual")); got != 1 {
		t.Fatalf("unexpected skipped runs got=%v want=1", got)
	}
	if got := testutil.ToFloat64(m.submissions.WithLabelValues(usecase.SubmissionImproved)); got != 2 {
		t.Fatalf("unexpected improved submissions got=%v want=2", got)
	}
}

func TestMetrics_HandlerExposesRegistry(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.IncSubmission(usecase.SubmissionAccepted)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status got=%d want=%d", rec.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `skill_league_league_submissions_total{outcome="accepted"} 1`) {
		t.Fatalf("expected submissions counter in exposition, got:\n%s", body)
	}
}
