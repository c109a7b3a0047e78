package agent

import (
	"fmt"
	"strings"

	"github.com/tidemark/vigil/internal/domain"
	"github.com/tidemark/vigil/internal/intent"
	"github.com/tidemark/vigil/internal/risk"
)

// recommendationLine closes every generated report with fixed wording.
const recommendationLine = "Recommendation: hydrate, schedule a shaded break, and re-check in 30 minutes."

var metricNames = map[domain.Metric]string{
	domain.MetricHeatScore:    "heat-stress score",
	domain.MetricFatigueScore: "fatigue score",
	domain.MetricHeartRate:    "heart rate",
	domain.MetricSpO2:         "blood oxygen",
	domain.MetricTemperature:  "body temperature",
	domain.MetricHRV:          "heart rate variability",
	domain.MetricSteps:        "steps",
	domain.MetricCalories:     "calories",
}

func metricLabel(m domain.Metric) string {
	if name, ok := metricNames[m]; ok {
		return fmt.Sprintf("%s (%s)", m, name)
	}
	return string(m)
}

// renderReport builds the multi-section report reply: one section per
// requested metric with last/avg/min/max, a qualitative level for the
// composite scores, explicit no-data sections, and the fixed closing
// recommendation. A fetch that failed outright gets its own wording so it
// is never mistaken for an absence of data.
func renderReport(subject string, metrics []domain.Metric, series map[domain.Metric]domain.SeriesResult, failed map[domain.Metric]bool, snapshot domain.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report — %s\n", subject)

	for _, m := range metrics {
		if failed[m] {
			fmt.Fprintf(&b, "\n%s: could not be fetched.\n", metricLabel(m))
			continue
		}
		sr, ok := series[m]
		if !ok || sr.NoData || len(sr.Samples) == 0 {
			fmt.Fprintf(&b, "\n%s: no data in the window.\n", metricLabel(m))
			continue
		}

		last, avg, lo, hi := seriesStats(sr.Samples)
		fmt.Fprintf(&b, "\n%s\n  last %s · avg %s · min %s · max %s\n",
			metricLabel(m),
			risk.FormatValue(m, last),
			risk.FormatValue(m, avg),
			risk.FormatValue(m, lo),
			risk.FormatValue(m, hi),
		)

		if m == domain.MetricHeatScore || m == domain.MetricFatigueScore {
			fmt.Fprintf(&b, "  level: %s\n", compositeLevel(m, last, snapshot))
		}
	}

	b.WriteString("\n")
	b.WriteString(recommendationLine)
	return b.String()
}

// compositeLevel prefers the snapshot's derived level when one was
// fetched this turn; otherwise it derives from the last series value.
func compositeLevel(m domain.Metric, last float64, snapshot domain.Snapshot) domain.Level {
	if reading, ok := snapshot[m]; ok && reading.Level != "" {
		return reading.Level
	}
	return risk.LevelFor(m, &last)
}

// renderSummary builds the non-report reply: risk check lines first,
// then a last-value line per fetched metric. Empty when there is
// nothing to say.
func renderSummary(p intent.ParsedIntent, risks map[domain.RiskKind]domain.RiskResult, series map[domain.Metric]domain.SeriesResult, failed map[domain.Metric]bool) string {
	var lines []string

	for _, kind := range []domain.RiskKind{domain.RiskFatigue, domain.RiskHeat} {
		rr, ok := risks[kind]
		if !ok {
			continue
		}
		lines = append(lines, riskLine(rr))
	}

	for _, m := range p.Metrics {
		if failed[m] {
			lines = append(lines, fmt.Sprintf("%s: could not be fetched.", metricLabel(m)))
			continue
		}
		sr, ok := series[m]
		if !ok || sr.NoData || len(sr.Samples) == 0 {
			lines = append(lines, fmt.Sprintf("%s: no data.", metricLabel(m)))
			continue
		}
		last := sr.Samples[len(sr.Samples)-1].Value
		lines = append(lines, fmt.Sprintf("%s: %s (latest of %d samples)",
			metricLabel(m), risk.FormatValue(m, last), len(sr.Samples)))
	}

	return strings.Join(lines, "\n")
}

func riskLine(rr domain.RiskResult) string {
	label := "Fatigue"
	if rr.Kind == domain.RiskHeat {
		label = "Heat-stress"
	}
	if rr.NoData || rr.Score == nil {
		return fmt.Sprintf("%s: no recent data.", label)
	}
	line := fmt.Sprintf("%s score: %.0f (%s)", label, *rr.Score, rr.Level)
	if rr.Level != domain.LevelGreen && len(rr.Reasons) > 0 {
		line += " — " + strings.Join(rr.Reasons, ", ")
	}
	return line
}

// seriesStats returns the last, average, minimum, and maximum values of a
// non-empty sample sequence.
func seriesStats(samples []domain.Sample) (last, avg, lo, hi float64) {
	lo = samples[0].Value
	hi = samples[0].Value
	var sum float64
	for _, s := range samples {
		sum += s.Value
		if s.Value < lo {
			lo = s.Value
		}
		if s.Value > hi {
			hi = s.Value
		}
	}
	last = samples[len(samples)-1].Value
	avg = sum / float64(len(samples))
	return last, avg, lo, hi
}
