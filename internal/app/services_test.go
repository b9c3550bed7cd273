package app

import (
	"bufio"
	"bytes"
	"context"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/skill-league/internal/config"
	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
)

func TestNewServices_MemoryBackendLoggerNames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewJSONWriter(logging.LevelInfo, &buf)

	services, err := NewServices(context.Background(), config.Config{
		AppEnv:                config.EnvDev,
		StorageBackend:        config.StorageMemory,
		SnapshotSubjects:      []string{"math", "science"},
		SnapshotTopN:          10,
		SnapshotRetentionDays: 90,
		SnapshotWorkers:       2,
	}, logger)
	if err != nil {
		t.Fatalf("new services: %v", err)
	}
	defer func() { _ = services.Close() }()

	if services.Metrics != nil {
		t.Fatalf("metrics must stay nil when disabled")
	}
	if _, err := services.Aggregator.Run(context.Background(), jobscheduler.TriggerManual); err != nil {
		t.Fatalf("run snapshot: %v", err)
	}

	names := map[string]int{}
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var line struct {
			Logger string `json:"logger"`
		}
		if err := sonic.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("decode log line %q: %v", scanner.Text(), err)
		}
		names[line.Logger]++
	}
	if names["snapshot"] == 0 {
		t.Fatalf("expected aggregator lines under logger=snapshot, got %v", names)
	}
	if n := names["snapshot.snapshot"]; n != 0 {
		t.Fatalf("aggregator logger named twice on %d line(s)", n)
	}
}
