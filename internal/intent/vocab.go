package intent

import (
	"regexp"

	"github.com/tidemark/vigil/internal/domain"
)

// Vocabulary tables are declarative so they can be tested independently of
// the parse control flow. All patterns run against normalized (lowercased,
// width-folded) text. ASCII abbreviations are word-bounded so they cannot
// match inside unrelated words; CJK phrases match as plain substrings since
// \b has no meaning there.

// triggerWords is the whitelist gate: without one of these, no intent is
// ever actionable, no matter what else the message contains.
var triggerWords = []*regexp.Regexp{
	regexp.MustCompile(`幫我`),
	regexp.MustCompile(`帮我`),
	regexp.MustCompile(`請`),
	regexp.MustCompile(`请`),
	regexp.MustCompile(`麻煩`),
	regexp.MustCompile(`看`),
	regexp.MustCompile(`查`),
	regexp.MustCompile(`分析`),
	regexp.MustCompile(`評估`),
	regexp.MustCompile(`判斷`),
	regexp.MustCompile(`檢查`),
	regexp.MustCompile(`整理`),
	regexp.MustCompile(`產出`),
	regexp.MustCompile(`生成`),
	regexp.MustCompile(`摘要`),
	regexp.MustCompile(`報告`),
	regexp.MustCompile(`報表`),
	regexp.MustCompile(`開工單`),
	regexp.MustCompile(`建立工單`),
	regexp.MustCompile(`通報`),
	regexp.MustCompile(`通知`),
	regexp.MustCompile(`\b(?:please|help|check|show|review|analy[sz]e|assess|generate|produce|create|open|file|report|summari[sz]e)\b`),
}

// metricEntry binds a metric identifier to its alternate spellings.
// Entries are evaluated in slice order with already-matched spans blanked
// out, so the more specific pattern must come before any pattern it
// contains (HRV before HR, 心率變異 before 心率).
type metricEntry struct {
	metric   domain.Metric
	patterns []*regexp.Regexp
}

var metricVocab = []metricEntry{
	{domain.MetricHRV, []*regexp.Regexp{
		regexp.MustCompile(`\bhrv\b`),
		regexp.MustCompile(`\brmssd\b`),
		regexp.MustCompile(`\bheart rate variability\b`),
		regexp.MustCompile(`心率變異`),
		regexp.MustCompile(`心率变异`),
	}},
	{domain.MetricHeatScore, []*regexp.Regexp{
		regexp.MustCompile(`\bhs\b`),
		regexp.MustCompile(`\bheat (?:score|stress score)\b`),
		regexp.MustCompile(`熱壓力指數`),
		regexp.MustCompile(`熱風險分數`),
	}},
	{domain.MetricFatigueScore, []*regexp.Regexp{
		regexp.MustCompile(`\bftg\b`),
		regexp.MustCompile(`\bfatigue score\b`),
		regexp.MustCompile(`疲勞指數`),
		regexp.MustCompile(`疲勞分數`),
	}},
	{domain.MetricHeartRate, []*regexp.Regexp{
		regexp.MustCompile(`\bhr\b`),
		regexp.MustCompile(`\bheart ?rate\b`),
		regexp.MustCompile(`\bpulse\b`),
		regexp.MustCompile(`心率`),
		regexp.MustCompile(`心跳`),
	}},
	{domain.MetricSpO2, []*regexp.Regexp{
		regexp.MustCompile(`\bspo2\b`),
		regexp.MustCompile(`\bblood oxygen\b`),
		regexp.MustCompile(`\boxygen saturation\b`),
		regexp.MustCompile(`血氧`),
	}},
	{domain.MetricTemperature, []*regexp.Regexp{
		regexp.MustCompile(`\btemp\b`),
		regexp.MustCompile(`\btemperature\b`),
		regexp.MustCompile(`體溫`),
		regexp.MustCompile(`体温`),
	}},
	{domain.MetricSteps, []*regexp.Regexp{
		regexp.MustCompile(`\bsteps?\b`),
		regexp.MustCompile(`\bstep count\b`),
		regexp.MustCompile(`步數`),
		regexp.MustCompile(`步数`),
	}},
	{domain.MetricCalories, []*regexp.Regexp{
		regexp.MustCompile(`\bkcal\b`),
		regexp.MustCompile(`\bcalories?\b`),
		regexp.MustCompile(`卡路里`),
	}},
}

// Category vocabularies. These drive the fatigue/heat checks and the
// report/incident requests; they are deliberately disjoint from the metric
// table so a category word never doubles as an explicit metric.
var fatigueWords = []*regexp.Regexp{
	regexp.MustCompile(`疲勞`),
	regexp.MustCompile(`疲倦`),
	regexp.MustCompile(`累`),
	regexp.MustCompile(`睡眠`),
	regexp.MustCompile(`\bfatigued?\b`),
	regexp.MustCompile(`\btired\b`),
	regexp.MustCompile(`\bsleep\b`),
}

var heatWords = []*regexp.Regexp{
	regexp.MustCompile(`中暑`),
	regexp.MustCompile(`熱風險`),
	regexp.MustCompile(`熱衰竭`),
	regexp.MustCompile(`高溫`),
	regexp.MustCompile(`\bheat\b`),
	regexp.MustCompile(`\bheatstroke\b`),
}

var reportWords = []*regexp.Regexp{
	regexp.MustCompile(`摘要`),
	regexp.MustCompile(`總結`),
	regexp.MustCompile(`報表`),
	regexp.MustCompile(`報告`),
	regexp.MustCompile(`\bsummary\b`),
	regexp.MustCompile(`\breport\b`),
}

var incidentWords = []*regexp.Regexp{
	regexp.MustCompile(`工單`),
	regexp.MustCompile(`事件`),
	regexp.MustCompile(`通報`),
	regexp.MustCompile(`通知`),
	regexp.MustCompile(`\bincident\b`),
	regexp.MustCompile(`\bticket\b`),
	regexp.MustCompile(`\balert\b`),
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
