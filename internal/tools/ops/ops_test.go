package ops

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tidemark/vigil/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIncidentTicketIDFormat(t *testing.T) {
	fixed := func() time.Time {
		return time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)
	}
	tool := NewIncidentTool(fixed, discardLogger())

	res, err := tool.Execute(context.Background(), map[string]any{
		"subject_id": "mike",
		"type":       "heat_risk",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	ir, ok := res.Data.(domain.IncidentResult)
	if !ok {
		t.Fatalf("Data = %T, want IncidentResult", res.Data)
	}
	if !strings.HasPrefix(ir.TicketID, "INC-2026-09-01-") {
		t.Errorf("ticket id = %q, want INC-2026-09-01-nnnn", ir.TicketID)
	}
	if ir.Status != "created" {
		t.Errorf("status = %q, want created", ir.Status)
	}
	if !strings.Contains(res.Output, ir.TicketID) {
		t.Errorf("output %q should name the ticket", res.Output)
	}
}

func TestIncidentValidation(t *testing.T) {
	tool := NewIncidentTool(nil, discardLogger())
	if err := tool.Validate(map[string]any{"subject_id": "mike"}); err == nil {
		t.Error("Validate without type should fail")
	}
	if err := tool.Validate(map[string]any{"type": "heat_risk"}); err == nil {
		t.Error("Validate without subject_id should fail")
	}
}

func TestNotifyRequiresMessage(t *testing.T) {
	tool := NewNotifyTool(discardLogger())
	if err := tool.Validate(map[string]any{"subject_id": "mike"}); err == nil {
		t.Error("Validate without message should fail")
	}
	if err := tool.Validate(map[string]any{"subject_id": "mike", "message": "HS red"}); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestReportToolOutput(t *testing.T) {
	tool := NewReportTool(discardLogger())

	res, err := tool.Execute(context.Background(), map[string]any{"subject_id": "lisa"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(res.Output, "lisa") {
		t.Errorf("output %q should name the subject", res.Output)
	}
}
