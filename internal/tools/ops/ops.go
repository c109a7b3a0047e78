// Package ops implements the operational-action tools. Every tool here
// mutates external state and is therefore consent-gated by policy.
package ops

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/tidemark/vigil/internal/domain"
	"github.com/tidemark/vigil/internal/tools"
)

// IncidentTool files an operational incident ticket for a subject.
type IncidentTool struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewIncidentTool creates a create_incident tool.
// now may be nil, in which case time.Now is used.
func NewIncidentTool(now func() time.Time, logger *slog.Logger) *IncidentTool {
	if now == nil {
		now = time.Now
	}
	return &IncidentTool{now: now, logger: logger}
}

func (t *IncidentTool) Name() string   { return tools.ToolCreateIncident }
func (t *IncidentTool) Server() string { return tools.ServerOpsActions }

func (t *IncidentTool) Description() string {
	return "Create an operational incident ticket for a subject, attaching the triggering risk evidence."
}

func (t *IncidentTool) Validate(args map[string]any) error {
	if err := requireString(args, "subject_id"); err != nil {
		return err
	}
	return requireString(args, "type")
}

func (t *IncidentTool) Execute(ctx context.Context, args map[string]any) (*tools.Result, error) {
	subjectID := args["subject_id"].(string)

	ticketID := fmt.Sprintf("INC-%s-%04d", t.now().Format("2006-01-02"), 1000+rand.Intn(9000))

	t.logger.InfoContext(ctx, "incident created",
		slog.String("ticket_id", ticketID),
		slog.String("subject_id", subjectID),
		slog.Any("type", args["type"]),
	)

	return &tools.Result{
		Output: fmt.Sprintf("incident %s created for %s", ticketID, subjectID),
		Data:   domain.IncidentResult{TicketID: ticketID, Status: "created"},
	}, nil
}

// NotifyTool notifies a subject's supervisor.
type NotifyTool struct {
	logger *slog.Logger
}

// NewNotifyTool creates a notify_supervisor tool.
func NewNotifyTool(logger *slog.Logger) *NotifyTool {
	return &NotifyTool{logger: logger}
}

func (t *NotifyTool) Name() string   { return tools.ToolNotifySupervisor }
func (t *NotifyTool) Server() string { return tools.ServerOpsActions }

func (t *NotifyTool) Description() string {
	return "Send a notification about a subject to their supervisor."
}

func (t *NotifyTool) Validate(args map[string]any) error {
	if err := requireString(args, "subject_id"); err != nil {
		return err
	}
	return requireString(args, "message")
}

func (t *NotifyTool) Execute(ctx context.Context, args map[string]any) (*tools.Result, error) {
	subjectID := args["subject_id"].(string)
	message := args["message"].(string)

	t.logger.InfoContext(ctx, "supervisor notified",
		slog.String("subject_id", subjectID),
		slog.Int("message_len", len(message)),
	)

	return &tools.Result{Output: fmt.Sprintf("supervisor of %s notified", subjectID)}, nil
}

// ReportTool writes a durable daily report for a subject.
type ReportTool struct {
	logger *slog.Logger
}

// NewReportTool creates a write_daily_report tool.
func NewReportTool(logger *slog.Logger) *ReportTool {
	return &ReportTool{logger: logger}
}

func (t *ReportTool) Name() string   { return tools.ToolWriteDailyReport }
func (t *ReportTool) Server() string { return tools.ServerOpsActions }

func (t *ReportTool) Description() string {
	return "Write the subject's daily summary report to the durable report store."
}

func (t *ReportTool) Validate(args map[string]any) error {
	return requireString(args, "subject_id")
}

func (t *ReportTool) Execute(ctx context.Context, args map[string]any) (*tools.Result, error) {
	subjectID := args["subject_id"].(string)
	body, _ := args["body"].(string)

	t.logger.InfoContext(ctx, "daily report written",
		slog.String("subject_id", subjectID),
		slog.Int("sections", strings.Count(body, "\n\n")+1),
	)

	return &tools.Result{Output: fmt.Sprintf("daily report stored for %s", subjectID)}, nil
}

func requireString(args map[string]any, key string) error {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return fmt.Errorf("missing required argument: %s", key)
	}
	return nil
}
