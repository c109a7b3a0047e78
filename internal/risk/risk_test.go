package risk

import (
	"testing"

	"github.com/tidemark/vigil/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestHeatLevel(t *testing.T) {
	tests := []struct {
		score *float64
		want  domain.Level
	}{
		{nil, domain.LevelNoData},
		{f(82), domain.LevelRed},
		{f(80), domain.LevelRed},
		{f(79.9), domain.LevelYellow},
		{f(61), domain.LevelYellow},
		{f(50), domain.LevelYellow},
		{f(49.9), domain.LevelGreen},
		{f(24), domain.LevelGreen},
		{f(0), domain.LevelGreen},
	}
	for _, tt := range tests {
		if got := HeatLevel(tt.score); got != tt.want {
			t.Errorf("HeatLevel(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestFatigueLevel(t *testing.T) {
	tests := []struct {
		score *float64
		want  domain.Level
	}{
		{nil, domain.LevelNoData},
		{f(88), domain.LevelGreen},
		{f(80), domain.LevelGreen},
		{f(76), domain.LevelYellow},
		{f(70), domain.LevelYellow},
		{f(64), domain.LevelRed},
		{f(0), domain.LevelRed},
	}
	for _, tt := range tests {
		if got := FatigueLevel(tt.score); got != tt.want {
			t.Errorf("FatigueLevel(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		metric domain.Metric
		value  float64
		want   string
	}{
		{domain.MetricTemperature, 37.62, "37.6°C"},
		{domain.MetricSpO2, 97, "97%"},
		{domain.MetricHeartRate, 98.4, "98 bpm"},
		{domain.MetricHRV, 32, "32 ms"},
		{domain.MetricSteps, 6420, "6420 steps"},
		{domain.MetricCalories, 380, "380 kcal"},
		{domain.MetricHeatScore, 82, "82"},
		{domain.MetricFatigueScore, 76, "76"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.metric, tt.value); got != tt.want {
			t.Errorf("FormatValue(%s, %v) = %q, want %q", tt.metric, tt.value, got, tt.want)
		}
	}
}

func TestLevelForPlainVitals(t *testing.T) {
	if got := LevelFor(domain.MetricHeartRate, nil); got != domain.LevelNoData {
		t.Errorf("nil HR level = %s, want NODATA", got)
	}
	if got := LevelFor(domain.MetricHeartRate, f(98)); got != domain.LevelGreen {
		t.Errorf("HR level = %s, want GREEN", got)
	}
}
