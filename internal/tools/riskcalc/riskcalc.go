// Package riskcalc implements the composite risk calculator tools backed
// by the vitals data source.
package riskcalc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidemark/vigil/internal/domain"
	"github.com/tidemark/vigil/internal/risk"
	"github.com/tidemark/vigil/internal/tools"
	"github.com/tidemark/vigil/internal/vitals"
)

// FatigueTool computes the fatigue/recovery score for a subject.
type FatigueTool struct {
	source vitals.Source
	logger *slog.Logger
}

// NewFatigueTool creates a calc_fatigue tool.
func NewFatigueTool(source vitals.Source, logger *slog.Logger) *FatigueTool {
	return &FatigueTool{source: source, logger: logger}
}

func (t *FatigueTool) Name() string   { return tools.ToolCalcFatigue }
func (t *FatigueTool) Server() string { return tools.ServerRiskEngine }

func (t *FatigueTool) Description() string {
	return "Compute the fatigue/recovery composite score (0-100, higher is better) for a subject from recent HRV and sleep signals."
}

func (t *FatigueTool) Validate(args map[string]any) error {
	return requireSubject(args)
}

func (t *FatigueTool) Execute(ctx context.Context, args map[string]any) (*tools.Result, error) {
	return calc(ctx, t.source, t.logger, args, domain.RiskFatigue)
}

// HeatTool computes the heat-stress score for a subject.
type HeatTool struct {
	source vitals.Source
	logger *slog.Logger
}

// NewHeatTool creates a calc_heat_risk tool.
func NewHeatTool(source vitals.Source, logger *slog.Logger) *HeatTool {
	return &HeatTool{source: source, logger: logger}
}

func (t *HeatTool) Name() string   { return tools.ToolCalcHeatRisk }
func (t *HeatTool) Server() string { return tools.ServerRiskEngine }

func (t *HeatTool) Description() string {
	return "Compute the heat-stress composite score (0-100, higher is worse) for a subject from temperature, humidity exposure and heart rate."
}

func (t *HeatTool) Validate(args map[string]any) error {
	return requireSubject(args)
}

func (t *HeatTool) Execute(ctx context.Context, args map[string]any) (*tools.Result, error) {
	return calc(ctx, t.source, t.logger, args, domain.RiskHeat)
}

func calc(ctx context.Context, source vitals.Source, logger *slog.Logger, args map[string]any, kind domain.RiskKind) (*tools.Result, error) {
	subjectID, _ := args["subject_id"].(string)

	snap, err := source.Snapshot(ctx, subjectID)
	if errors.Is(err, vitals.ErrNoData) {
		rr := domain.RiskResult{Kind: kind, Level: domain.LevelNoData, NoData: true, Reasons: noDataReasons(kind)}
		return &tools.Result{Output: fmt.Sprintf("%s: NODATA", kind), Data: rr, NoData: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot for %s: %w", subjectID, err)
	}

	var reading domain.MetricReading
	var level domain.Level
	switch kind {
	case domain.RiskHeat:
		reading = snap[domain.MetricHeatScore]
		level = risk.HeatLevel(reading.Value)
	default:
		reading = snap[domain.MetricFatigueScore]
		level = risk.FatigueLevel(reading.Value)
	}

	if reading.Value == nil {
		rr := domain.RiskResult{Kind: kind, Level: domain.LevelNoData, NoData: true, Reasons: noDataReasons(kind)}
		return &tools.Result{Output: fmt.Sprintf("%s: NODATA", kind), Data: rr, NoData: true}, nil
	}

	rr := domain.RiskResult{Kind: kind, Level: level, Score: reading.Value, Reasons: reasons(kind)}

	logger.DebugContext(ctx, "risk calculated",
		slog.String("subject_id", subjectID),
		slog.String("kind", string(kind)),
		slog.String("level", string(level)),
	)

	return &tools.Result{
		Output: fmt.Sprintf("%s: %s (%.0f)", kind, level, *reading.Value),
		Data:   rr,
	}, nil
}

func reasons(kind domain.RiskKind) []string {
	if kind == domain.RiskHeat {
		return []string{"High temp+humidity", "HR elevated"}
	}
	return []string{"HRV down", "Sleep short"}
}

func noDataReasons(kind domain.RiskKind) []string {
	if kind == domain.RiskHeat {
		return []string{"No recent sensor data"}
	}
	return []string{"No sleep/HRV data"}
}

func requireSubject(args map[string]any) error {
	s, ok := args["subject_id"].(string)
	if !ok || s == "" {
		return fmt.Errorf("missing required argument: subject_id")
	}
	return nil
}
