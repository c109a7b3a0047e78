package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/tidemark/vigil/internal/config"
	"github.com/tidemark/vigil/internal/session"
	"github.com/tidemark/vigil/internal/tools"
)

type recordingExecutor struct {
	calls []string
}

func (r *recordingExecutor) Execute(_ context.Context, toolName string, _ map[string]any) (*tools.Result, error) {
	r.calls = append(r.calls, toolName)
	return &tools.Result{Output: toolName + " done"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	exec := &recordingExecutor{}
	sess := session.NewManager(exec, nil, discardLogger())

	_, err := New(sess, &config.SchedulerConfig{Enabled: true, Spec: "not a cron"}, "mike", nil, discardLogger())
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestNextRunFollowsSpec(t *testing.T) {
	exec := &recordingExecutor{}
	sess := session.NewManager(exec, nil, discardLogger())

	s, err := New(sess, &config.SchedulerConfig{Enabled: true, Spec: "0 18 * * *"}, "mike", nil, discardLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	s.now = func() time.Time {
		return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	}

	next := s.NextRun()
	want := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextRun() = %v, want %v", next, want)
	}
}

func TestFireQueuesConsentGatedReports(t *testing.T) {
	exec := &recordingExecutor{}
	sess := session.NewManager(exec, nil, discardLogger())

	s, err := New(sess, &config.SchedulerConfig{Enabled: true, Subjects: []string{"mike", "amy"}}, "mike", nil, discardLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	s.fire(context.Background())

	// write_daily_report is consent-gated: nothing executes, both park.
	if len(exec.calls) != 0 {
		t.Fatalf("executor ran %d times before consent", len(exec.calls))
	}
	queue := sess.ConsentQueue()
	if len(queue) != 2 {
		t.Fatalf("consent queue = %d, want 2", len(queue))
	}

	// The operator approves the first; only then does it execute.
	sess.Approve(context.Background(), queue[0].ToolCallID)
	if len(exec.calls) != 1 || exec.calls[0] != tools.ToolWriteDailyReport {
		t.Errorf("executor calls after approve = %v", exec.calls)
	}
}

func TestFireDefaultsToSessionSubject(t *testing.T) {
	exec := &recordingExecutor{}
	sess := session.NewManager(exec, nil, discardLogger())

	s, err := New(sess, &config.SchedulerConfig{Enabled: true}, "lisa", nil, discardLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	s.fire(context.Background())

	queue := sess.ConsentQueue()
	if len(queue) != 1 {
		t.Fatalf("consent queue = %d, want 1", len(queue))
	}
	call, ok := sess.ToolCall(queue[0].ToolCallID)
	if !ok {
		t.Fatal("queued call missing")
	}
	if got := call.Args["subject_id"]; got != "lisa" {
		t.Errorf("subject_id = %v, want lisa", got)
	}
}
