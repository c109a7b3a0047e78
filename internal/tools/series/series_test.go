package series

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/tidemark/vigil/internal/domain"
	"github.com/tidemark/vigil/internal/vitals"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchValidation(t *testing.T) {
	tool := NewFetchTool(vitals.NewSimSource(nil), discardLogger())

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{"ok", map[string]any{"subject_id": "mike", "metric": "HR"}, false},
		{"ok with window", map[string]any{"subject_id": "mike", "metric": "HR", "window": "last6h"}, false},
		{"missing subject", map[string]any{"metric": "HR"}, true},
		{"missing metric", map[string]any{"subject_id": "mike"}, true},
		{"unknown window", map[string]any{"subject_id": "mike", "metric": "HR", "window": "last99h"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tool.Validate(tc.args)
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFetchReturnsOrderedSamples(t *testing.T) {
	tool := NewFetchTool(vitals.NewSimSource(nil), discardLogger())

	res, err := tool.Execute(context.Background(), map[string]any{
		"subject_id": "mike", "metric": "HR", "window": "last6h",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	sr, ok := res.Data.(domain.SeriesResult)
	if !ok {
		t.Fatalf("Data = %T, want SeriesResult", res.Data)
	}
	if sr.Metric != domain.MetricHeartRate || sr.NoData {
		t.Errorf("result = %+v", sr)
	}
	if len(sr.Samples) == 0 {
		t.Fatal("expected samples")
	}
	for i := 1; i < len(sr.Samples); i++ {
		if !sr.Samples[i].At.After(sr.Samples[i-1].At) {
			t.Fatalf("samples out of order at %d", i)
		}
	}
}

func TestFetchNoDataSubject(t *testing.T) {
	tool := NewFetchTool(vitals.NewSimSource(nil), discardLogger())

	res, err := tool.Execute(context.Background(), map[string]any{
		"subject_id": "jack", "metric": "HR",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v — no-data must not be a failure", err)
	}
	if !res.NoData {
		t.Error("NoData = false, want true")
	}
	if sr := res.Data.(domain.SeriesResult); !sr.NoData || len(sr.Samples) != 0 {
		t.Errorf("no-data result = %+v", sr)
	}
}

func TestSnapshotDerivesLevels(t *testing.T) {
	tool := NewSnapshotTool(vitals.NewSimSource(nil), discardLogger())

	res, err := tool.Execute(context.Background(), map[string]any{"subject_id": "mike"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	snap, ok := res.Data.(domain.Snapshot)
	if !ok {
		t.Fatalf("Data = %T, want Snapshot", res.Data)
	}
	if got := snap[domain.MetricHeatScore].Level; got != domain.LevelRed {
		t.Errorf("HS level = %s, want RED", got)
	}
	if got := snap[domain.MetricFatigueScore].Level; got != domain.LevelYellow {
		t.Errorf("FTG level = %s, want YELLOW", got)
	}
}
