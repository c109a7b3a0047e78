package tools

// Tool name constants shared by the orchestrator and the native tools.
const (
	ToolCalcFatigue      = "calc_fatigue"
	ToolCalcHeatRisk     = "calc_heat_risk"
	ToolFetchSeries      = "fetch_series"
	ToolFetchSnapshot    = "fetch_snapshot"
	ToolCreateIncident   = "create_incident"
	ToolNotifySupervisor = "notify_supervisor"
	ToolWriteDailyReport = "write_daily_report"
)

// Logical server names.
const (
	ServerWearableData = "wearable-data"
	ServerRiskEngine   = "risk-engine"
	ServerOpsActions   = "ops-actions"
)

// consentTools classifies the tools that mutate external or operational
// state and therefore need a human sign-off before execution. Read and
// compute tools are never listed here.
var consentTools = map[string]bool{
	ToolCreateIncident:   true,
	ToolNotifySupervisor: true,
	ToolWriteDailyReport: true,
}

// RequiresConsent reports whether a tool needs operator approval before
// it may run. Unknown tools default to not requiring consent; gating them
// is the caller's concern.
func RequiresConsent(toolName string) bool {
	return consentTools[toolName]
}

// MarkConsentRequired adds a tool to the consent set. Writes should only
// happen at startup, alongside registry registration (e.g. for discovered
// MCP tools configured as mutating).
func MarkConsentRequired(toolName string) {
	consentTools[toolName] = true
}
