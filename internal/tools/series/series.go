// Package series implements the wearable-data read tools: metric series
// fetches and whole-snapshot fetches.
package series

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidemark/vigil/internal/domain"
	"github.com/tidemark/vigil/internal/tools"
	"github.com/tidemark/vigil/internal/vitals"
)

// Named trailing windows accepted by fetch_series.
var windows = map[string]time.Duration{
	"last6h":    6 * time.Hour,
	"last24h":   24 * time.Hour,
	"last3days": 72 * time.Hour,
}

// DefaultWindow is used when the caller does not name one.
const DefaultWindow = "last24h"

// FetchTool returns a time-ordered sample series for one metric.
type FetchTool struct {
	source vitals.Source
	logger *slog.Logger
}

// NewFetchTool creates a fetch_series tool.
func NewFetchTool(source vitals.Source, logger *slog.Logger) *FetchTool {
	return &FetchTool{source: source, logger: logger}
}

func (t *FetchTool) Name() string   { return tools.ToolFetchSeries }
func (t *FetchTool) Server() string { return tools.ServerWearableData }

func (t *FetchTool) Description() string {
	return "Fetch the recent sample series for one metric of a subject over a trailing window."
}

func (t *FetchTool) Validate(args map[string]any) error {
	if err := requireSubject(args); err != nil {
		return err
	}
	m, ok := args["metric"].(string)
	if !ok || m == "" {
		return fmt.Errorf("missing required argument: metric")
	}
	if w, ok := args["window"].(string); ok && w != "" {
		if _, known := windows[w]; !known {
			return fmt.Errorf("unknown window %q", w)
		}
	}
	return nil
}

func (t *FetchTool) Execute(ctx context.Context, args map[string]any) (*tools.Result, error) {
	subjectID, _ := args["subject_id"].(string)
	metric := domain.Metric(args["metric"].(string))

	window := windows[DefaultWindow]
	if w, ok := args["window"].(string); ok && w != "" {
		window = windows[w]
	}

	samples, err := t.source.Series(ctx, subjectID, metric, window)
	if errors.Is(err, vitals.ErrNoData) {
		sr := domain.SeriesResult{Metric: metric, NoData: true}
		return &tools.Result{Output: fmt.Sprintf("%s: NODATA", metric), Data: sr, NoData: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s series for %s: %w", metric, subjectID, err)
	}

	t.logger.DebugContext(ctx, "series fetched",
		slog.String("subject_id", subjectID),
		slog.String("metric", string(metric)),
		slog.Int("samples", len(samples)),
	)

	return &tools.Result{
		Output: fmt.Sprintf("%s: %d samples", metric, len(samples)),
		Data:   domain.SeriesResult{Metric: metric, Samples: samples},
	}, nil
}

// SnapshotTool returns the latest reading of every metric for a subject.
type SnapshotTool struct {
	source vitals.Source
	logger *slog.Logger
}

// NewSnapshotTool creates a fetch_snapshot tool.
func NewSnapshotTool(source vitals.Source, logger *slog.Logger) *SnapshotTool {
	return &SnapshotTool{source: source, logger: logger}
}

func (t *SnapshotTool) Name() string   { return tools.ToolFetchSnapshot }
func (t *SnapshotTool) Server() string { return tools.ServerWearableData }

func (t *SnapshotTool) Description() string {
	return "Fetch the latest reading of every metric for a subject."
}

func (t *SnapshotTool) Validate(args map[string]any) error {
	return requireSubject(args)
}

func (t *SnapshotTool) Execute(ctx context.Context, args map[string]any) (*tools.Result, error) {
	subjectID, _ := args["subject_id"].(string)

	snap, err := t.source.Snapshot(ctx, subjectID)
	if errors.Is(err, vitals.ErrNoData) {
		return &tools.Result{Output: "snapshot: NODATA", Data: domain.Snapshot{}, NoData: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot for %s: %w", subjectID, err)
	}

	return &tools.Result{
		Output: fmt.Sprintf("snapshot: %d metrics", len(snap)),
		Data:   snap,
	}, nil
}

func requireSubject(args map[string]any) error {
	s, ok := args["subject_id"].(string)
	if !ok || s == "" {
		return fmt.Errorf("missing required argument: subject_id")
	}
	return nil
}
