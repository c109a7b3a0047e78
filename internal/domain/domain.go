// Package domain defines cross-cutting entity types used across the system.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Metric identifies one wearable metric tracked per subject.
type Metric string

const (
	MetricHeatScore    Metric = "HS"   // heat-stress composite score, 0–100
	MetricFatigueScore Metric = "FTG"  // fatigue/recovery composite score, 0–100
	MetricHeartRate    Metric = "HR"   // bpm
	MetricSpO2         Metric = "SPO2" // %
	MetricTemperature  Metric = "TEMP" // °C
	MetricHRV          Metric = "HRV"  // RMSSD, ms
	MetricSteps        Metric = "STEP" // step count
	MetricCalories     Metric = "KCAL" // kcal
)

// Metrics lists every known metric in canonical display order.
var Metrics = []Metric{
	MetricHeatScore, MetricFatigueScore, MetricHeartRate, MetricSpO2,
	MetricTemperature, MetricHRV, MetricSteps, MetricCalories,
}

// Level is a qualitative risk level derived from a metric value.
type Level string

const (
	LevelGreen  Level = "GREEN"
	LevelYellow Level = "YELLOW"
	LevelRed    Level = "RED"
	LevelNoData Level = "NODATA"
)

// Sample is one time-ordered point in a metric series.
type Sample struct {
	At    time.Time
	Value float64
}

// MetricReading is the most recent value of one metric for a subject,
// with its derived level. Value is nil when the subject has no data.
type MetricReading struct {
	Level Level
	Value *float64
}

// Snapshot is the latest reading for every metric of one subject.
type Snapshot map[Metric]MetricReading

// Subject is a monitored person on the roster.
type Subject struct {
	ID         string
	Name       string
	Dept       string
	LastSyncAt time.Time
	// NoData marks subjects whose wearable has not reported recently.
	// The data source must never fabricate values for them.
	NoData bool
}

// ChatRole is the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one immutable entry in the conversation log.
type ChatMessage struct {
	ID        uuid.UUID
	Role      ChatRole
	Content   string
	CreatedAt time.Time
}

// ToolStatus is the lifecycle state of a tool call.
type ToolStatus string

const (
	StatusNeedsConsent ToolStatus = "needs_consent"
	StatusRunning      ToolStatus = "running"
	StatusSuccess      ToolStatus = "success"
	StatusError        ToolStatus = "error"
)

// Terminal reports whether the status is final.
func (s ToolStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// ToolCall is one tool invocation record. Owned exclusively by the
// session manager; everything else sees copies.
type ToolCall struct {
	ID              uuid.UUID
	Server          string // logical server, e.g. "risk-engine", "ops-actions"
	ToolName        string
	Args            map[string]any
	Status          ToolStatus
	StartedAt       time.Time
	FinishedAt      time.Time // zero until terminal
	Result          any
	Error           string
	RequiresConsent bool
}

// ConsentRequest is a pending human-approval gate for one tool call.
// Exactly one may exist per tool call at a time.
type ConsentRequest struct {
	ToolCallID  uuid.UUID
	Title       string
	Description string
}

// RiskKind distinguishes the two composite risk scores.
type RiskKind string

const (
	RiskHeat    RiskKind = "heat"
	RiskFatigue RiskKind = "fatigue"
)

// RiskResult is the outcome of a composite risk calculation.
// Score is nil and NoData true when the subject has no recent data.
type RiskResult struct {
	Kind    RiskKind
	Level   Level
	Score   *float64
	Reasons []string
	NoData  bool
}

// SeriesResult is the outcome of a metric series fetch.
type SeriesResult struct {
	Metric  Metric
	Samples []Sample
	NoData  bool
}

// IncidentResult is the outcome of incident creation.
type IncidentResult struct {
	TicketID string
	Status   string
}
