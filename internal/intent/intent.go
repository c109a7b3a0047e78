// Package intent turns free-form operator text into a structured intent.
// Parsing is pure: no side effects, deterministic for a given input.
package intent

import (
	"sort"
	"strings"

	"github.com/tidemark/vigil/internal/domain"
)

// Intent tags one action the operator asked for.
type Intent string

const (
	FetchSnapshot  Intent = "fetch_snapshot"
	FetchSeries    Intent = "fetch_series"
	GenerateReport Intent = "generate_report"
	CreateIncident Intent = "create_incident"
	CheckFatigue   Intent = "check_fatigue"
	CheckHeat      Intent = "check_heat"
	CheckBoth      Intent = "check_both"
)

// Rejection reasons surfaced to the operator when parsing declines to act.
const (
	ReasonMissingTrigger = "missing trigger word (try 看/查/分析 or check/show/report)"
	ReasonNoTarget       = "trigger without target (name a metric, 疲勞/中暑, a report, or a ticket)"
)

// defaultReportMetrics is the core set used when a report is requested
// without naming any metric, so the report always has content.
var defaultReportMetrics = []domain.Metric{
	domain.MetricHeatScore,
	domain.MetricFatigueScore,
	domain.MetricHeartRate,
	domain.MetricHRV,
}

// ParsedIntent is the result of parsing one message.
// Invariant: OK=false ⇒ Intents and Metrics empty, Reason set;
// OK=true ⇒ Intents non-empty.
type ParsedIntent struct {
	OK            bool
	Intents       []Intent
	Metrics       []domain.Metric // de-duplicated, ordered by first mention
	WantsIncident bool
	Reason        string
}

// Has reports whether the parse produced the given intent.
func (p ParsedIntent) Has(in Intent) bool {
	for _, i := range p.Intents {
		if i == in {
			return true
		}
	}
	return false
}

// Parse classifies one operator message. It never errors: unactionable
// input yields OK=false with a reason the orchestrator can echo back.
func Parse(text string) ParsedIntent {
	t := normalize(text)

	if !matchesAny(t, triggerWords) {
		return ParsedIntent{Reason: ReasonMissingTrigger}
	}

	metrics, masked := detectMetrics(t)

	hasFatigue := matchesAny(masked, fatigueWords)
	hasHeat := matchesAny(masked, heatWords)
	hasReport := matchesAny(masked, reportWords)
	hasIncident := matchesAny(masked, incidentWords)

	var intents []Intent

	// Both categories with no explicit metric list collapse into one
	// combined check instead of two single-category checks.
	if hasFatigue && hasHeat && len(metrics) == 0 {
		intents = append(intents, CheckBoth)
	} else {
		if hasFatigue {
			intents = append(intents, CheckFatigue)
		}
		if hasHeat {
			intents = append(intents, CheckHeat)
		}
	}

	if len(metrics) > 0 {
		intents = append(intents, FetchSeries)
	}

	if hasReport {
		intents = append(intents, GenerateReport)
		if len(metrics) == 0 {
			// No explicit metric list: default to the core set so the
			// report has content, and pull a snapshot alongside it.
			metrics = append(metrics, defaultReportMetrics...)
			intents = append(intents, FetchSnapshot)
		}
	}

	if hasIncident {
		intents = append(intents, CreateIncident)
	}

	// A bare trigger word must not act on anything.
	if len(intents) == 0 {
		return ParsedIntent{Reason: ReasonNoTarget}
	}

	return ParsedIntent{
		OK:            true,
		Intents:       intents,
		Metrics:       metrics,
		WantsIncident: hasIncident,
	}
}

// detectMetrics scans the metric vocabulary, blanking each matched span so a
// contained pattern cannot rematch it (e.g. "heart rate variability" is HRV,
// not HR). Metrics are returned ordered by first mention, de-duplicated.
// The masked text is returned for the category vocabularies.
func detectMetrics(t string) ([]domain.Metric, string) {
	type hit struct {
		metric domain.Metric
		pos    int
	}

	buf := []byte(t)
	var hits []hit
	seen := make(map[domain.Metric]bool)

	for _, entry := range metricVocab {
		for _, re := range entry.patterns {
			for _, loc := range re.FindAllIndex(buf, -1) {
				if !seen[entry.metric] {
					seen[entry.metric] = true
					hits = append(hits, hit{entry.metric, loc[0]})
				}
				for i := loc[0]; i < loc[1]; i++ {
					buf[i] = ' '
				}
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	metrics := make([]domain.Metric, 0, len(hits))
	for _, h := range hits {
		metrics = append(metrics, h.metric)
	}
	return metrics, string(buf)
}

// normalize lowercases the text and folds full-width ASCII (ＨＲ, ５)
// to its half-width form so matching is case- and width-insensitive.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.TrimSpace(text) {
		switch {
		case r == '　': // ideographic space
			b.WriteRune(' ')
		case r >= '！' && r <= '～': // full-width ASCII block
			b.WriteRune(r - 0xFEE0)
		default:
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}
