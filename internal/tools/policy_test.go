package tools

import "testing"

func TestRequiresConsent(t *testing.T) {
	tests := []struct {
		tool string
		want bool
	}{
		{ToolCreateIncident, true},
		{ToolNotifySupervisor, true},
		{ToolWriteDailyReport, true},
		{ToolCalcFatigue, false},
		{ToolCalcHeatRisk, false},
		{ToolFetchSeries, false},
		{ToolFetchSnapshot, false},
		{"some_unknown_tool", false},
	}
	for _, tt := range tests {
		if got := RequiresConsent(tt.tool); got != tt.want {
			t.Errorf("RequiresConsent(%s) = %v, want %v", tt.tool, got, tt.want)
		}
	}
}
