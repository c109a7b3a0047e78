// Package risk holds the canonical threshold table for the composite risk
// scores and the unit formatting rules for every metric. All call sites
// derive levels through this package so the cutoffs cannot drift.
package risk

import (
	"fmt"

	"github.com/tidemark/vigil/internal/domain"
)

// Composite score cutoffs. The heat-stress score rises with risk; the
// fatigue/recovery score falls with risk.
const (
	HeatRedMin    = 80.0
	HeatYellowMin = 50.0

	FatigueGreenMin  = 80.0
	FatigueYellowMin = 70.0
)

// HeatLevel maps a heat-stress score to its qualitative level.
func HeatLevel(score *float64) domain.Level {
	if score == nil {
		return domain.LevelNoData
	}
	switch {
	case *score >= HeatRedMin:
		return domain.LevelRed
	case *score >= HeatYellowMin:
		return domain.LevelYellow
	default:
		return domain.LevelGreen
	}
}

// FatigueLevel maps a fatigue/recovery score to its qualitative level.
func FatigueLevel(score *float64) domain.Level {
	if score == nil {
		return domain.LevelNoData
	}
	switch {
	case *score >= FatigueGreenMin:
		return domain.LevelGreen
	case *score >= FatigueYellowMin:
		return domain.LevelYellow
	default:
		return domain.LevelRed
	}
}

// LevelFor derives the level for any metric value. Composite scores use the
// threshold table; plain vitals only distinguish data from no data.
func LevelFor(metric domain.Metric, value *float64) domain.Level {
	switch metric {
	case domain.MetricHeatScore:
		return HeatLevel(value)
	case domain.MetricFatigueScore:
		return FatigueLevel(value)
	default:
		if value == nil {
			return domain.LevelNoData
		}
		return domain.LevelGreen
	}
}

// Unit returns the physical unit label for a metric, or "" for raw scores.
func Unit(metric domain.Metric) string {
	switch metric {
	case domain.MetricHeartRate:
		return "bpm"
	case domain.MetricSpO2:
		return "%"
	case domain.MetricTemperature:
		return "°C"
	case domain.MetricHRV:
		return "ms"
	case domain.MetricSteps:
		return "steps"
	case domain.MetricCalories:
		return "kcal"
	default:
		return ""
	}
}

// FormatValue renders a metric value with its unit. Body temperature keeps
// one decimal; everything else is a whole number.
func FormatValue(metric domain.Metric, value float64) string {
	if metric == domain.MetricTemperature {
		return fmt.Sprintf("%.1f°C", value)
	}
	if unit := Unit(metric); unit != "" {
		if unit == "%" {
			return fmt.Sprintf("%.0f%%", value)
		}
		return fmt.Sprintf("%.0f %s", value, unit)
	}
	return fmt.Sprintf("%.0f", value)
}
