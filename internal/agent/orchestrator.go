// Package agent implements the conversation orchestrator: it parses
// operator messages, drives tool calls through the session manager, and
// composes the assistant's replies. All visible side effects of one
// message happen before HandleUserMessage returns; consent-gated calls
// are left pending in the queue.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tidemark/vigil/internal/domain"
	"github.com/tidemark/vigil/internal/intent"
	"github.com/tidemark/vigil/internal/observability"
	"github.com/tidemark/vigil/internal/risk"
	"github.com/tidemark/vigil/internal/session"
	"github.com/tidemark/vigil/internal/tools"
)

// Orchestrator handles one operator conversation against one subject at
// a time. Messages are processed to completion sequentially; only
// approve/reject on already-pending calls may run concurrently.
type Orchestrator struct {
	session *session.Manager
	metrics *observability.MetricsCollector
	logger  *slog.Logger

	mu      sync.Mutex
	subject string
}

// NewOrchestrator creates an orchestrator for the given starting subject.
// metrics may be nil.
func NewOrchestrator(sess *session.Manager, subject string, metrics *observability.MetricsCollector, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		session: sess,
		metrics: metrics,
		logger:  logger,
		subject: subject,
	}
}

// Subject returns the subject the conversation currently targets.
func (o *Orchestrator) Subject() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.subject
}

// SetSubject switches the conversation to another subject.
func (o *Orchestrator) SetSubject(id string) {
	o.mu.Lock()
	o.subject = id
	o.mu.Unlock()
}

// Session exposes the underlying session manager for the presentation
// layer's read-only snapshots and approve/reject actions.
func (o *Orchestrator) Session() *session.Manager {
	return o.session
}

// HandleUserMessage processes one operator message end to end: echo it
// into the chat log, parse intent, run the implied read tools, compose
// the reply, and finally apply the incident gate. Chat appends keep this
// exact order.
func (o *Orchestrator) HandleUserMessage(ctx context.Context, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	subject := o.subject

	o.session.AppendUserMessage(text)

	p := intent.Parse(text)
	o.recordParse(p)
	if !p.OK {
		o.session.AppendAssistantMessage(rejectionReply(p.Reason))
		return
	}

	o.logger.Info("intent parsed",
		slog.String("subject", subject),
		slog.Any("intents", p.Intents),
		slog.Any("metrics", p.Metrics),
		slog.Bool("wants_incident", p.WantsIncident),
	)

	series, failed := o.fetchSeries(ctx, subject, p.Metrics)

	var snapshot domain.Snapshot
	if p.Has(intent.FetchSnapshot) {
		snapshot = o.fetchSnapshot(ctx, subject)
	}

	risks := make(map[domain.RiskKind]domain.RiskResult)
	if p.Has(intent.CheckFatigue) || p.Has(intent.CheckBoth) {
		o.invokeRisk(ctx, subject, tools.ToolCalcFatigue, risks)
	}
	if p.Has(intent.CheckHeat) || p.Has(intent.CheckBoth) {
		o.invokeRisk(ctx, subject, tools.ToolCalcHeatRisk, risks)
	}

	if p.Has(intent.GenerateReport) {
		o.session.AppendAssistantMessage(renderReport(subject, p.Metrics, series, failed, snapshot))
	} else if reply := renderSummary(p, risks, series, failed); reply != "" {
		o.session.AppendAssistantMessage(reply)
	} else if !p.WantsIncident {
		o.session.AppendAssistantMessage("Name a metric (HR, SPO2, ...), 疲勞/中暑, a report, or a ticket so I know what to act on.")
	}

	if p.WantsIncident {
		o.handleIncident(ctx, subject, risks)
	}
}

// fetchSeries runs one fetch_series call per wanted metric, sequentially.
// An execution failure lands in the failed set and never aborts the
// remaining fetches; no-data stays a flagged SeriesResult, so the two are
// rendered apart.
func (o *Orchestrator) fetchSeries(ctx context.Context, subject string, metrics []domain.Metric) (map[domain.Metric]domain.SeriesResult, map[domain.Metric]bool) {
	series := make(map[domain.Metric]domain.SeriesResult, len(metrics))
	failed := make(map[domain.Metric]bool)
	for _, m := range metrics {
		out := o.session.Invoke(ctx, tools.ServerWearableData, tools.ToolFetchSeries, map[string]any{
			"subject_id": subject,
			"metric":     string(m),
		})
		switch res := out.(type) {
		case session.Failed:
			failed[m] = true
		case session.Resolved:
			if sr, ok := res.Result.Data.(domain.SeriesResult); ok {
				series[m] = sr
			}
		}
	}
	return series, failed
}

func (o *Orchestrator) fetchSnapshot(ctx context.Context, subject string) domain.Snapshot {
	out := o.session.Invoke(ctx, tools.ServerWearableData, tools.ToolFetchSnapshot, map[string]any{
		"subject_id": subject,
	})
	if res, ok := out.(session.Resolved); ok {
		if snap, ok := res.Result.Data.(domain.Snapshot); ok {
			return snap
		}
	}
	return nil
}

func (o *Orchestrator) invokeRisk(ctx context.Context, subject, toolName string, risks map[domain.RiskKind]domain.RiskResult) {
	out := o.session.Invoke(ctx, tools.ServerRiskEngine, toolName, map[string]any{
		"subject_id": subject,
	})
	res, ok := out.(session.Resolved)
	if !ok {
		return
	}
	if rr, ok := res.Result.Data.(domain.RiskResult); ok {
		risks[rr.Kind] = rr
	}
}

// handleIncident applies the incident gate: only a RED heat-stress score
// reaches the consent-gated create_incident tool. If the score was not
// computed earlier in this turn, the read-only calculator runs first.
func (o *Orchestrator) handleIncident(ctx context.Context, subject string, risks map[domain.RiskKind]domain.RiskResult) {
	heat, ok := risks[domain.RiskHeat]
	if !ok {
		o.invokeRisk(ctx, subject, tools.ToolCalcHeatRisk, risks)
		heat, ok = risks[domain.RiskHeat]
	}

	if !ok || heat.NoData || heat.Score == nil {
		o.session.AppendAssistantMessage(fmt.Sprintf(
			"Cannot open an incident for %s: no recent heat-stress data to justify it.", subject))
		return
	}

	if *heat.Score < risk.HeatRedMin {
		o.session.AppendAssistantMessage(fmt.Sprintf(
			"Not opening an incident: heat-stress score is %.0f (%s), below the RED threshold of %.0f.",
			*heat.Score, heat.Level, risk.HeatRedMin))
		return
	}

	out := o.session.Invoke(ctx, tools.ServerOpsActions, tools.ToolCreateIncident, map[string]any{
		"subject_id": subject,
		"type":       "heat_risk",
		"evidence": map[string]any{
			"HS":      *heat.Score,
			"level":   string(heat.Level),
			"reasons": heat.Reasons,
		},
	})
	if _, pending := out.(session.Pending); pending {
		o.session.AppendAssistantMessage(fmt.Sprintf(
			"Heat-stress score %.0f is RED — incident creation for %s is queued for your approval.",
			*heat.Score, subject))
	}
}

func (o *Orchestrator) recordParse(p intent.ParsedIntent) {
	if o.metrics == nil {
		return
	}
	outcome := "ok"
	if !p.OK {
		if p.Reason == intent.ReasonMissingTrigger {
			outcome = "missing_trigger"
		} else {
			outcome = "no_target"
		}
	}
	o.metrics.IntentParsesTotal.WithLabelValues(outcome).Inc()
}

func rejectionReply(reason string) string {
	var b strings.Builder
	b.WriteString("I couldn't act on that: ")
	b.WriteString(reason)
	b.WriteString("\nExamples: 「幫我看 HR 跟 SPO2，並產出報表」, \"check fatigue and heat risk\", 「幫我開工單」")
	return b.String()
}
