// Package session owns the single-operator session state: the chat log,
// the tool-call list, and the consent queue. It implements the tool-call
// lifecycle state machine, including the human-in-the-loop consent gate.
//
// All state lives behind one mutex and every multi-field change (status +
// finish time + result) happens as one atomic transition. Everything
// outside this package sees snapshots only.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tidemark/vigil/internal/domain"
	"github.com/tidemark/vigil/internal/observability"
	"github.com/tidemark/vigil/internal/tools"
)

// rejectedMessage is recorded on a tool call the operator rejected and
// shows up verbatim in the timeline and the cancellation chat entry.
const rejectedMessage = "rejected by operator"

// Outcome is the immediate result of Invoke: either the call is parked
// pending consent, resolved with a result, or terminally failed. The
// tagged forms keep callers from mistaking a pending marker for a result.
type Outcome interface{ outcome() }

// Pending means the call awaits operator consent; no execution happened.
type Pending struct{ CallID uuid.UUID }

// Resolved carries a successfully executed tool result.
type Resolved struct {
	CallID uuid.UUID
	Result *tools.Result
}

// Failed carries a terminal execution failure.
type Failed struct {
	CallID uuid.UUID
	Err    error
}

func (Pending) outcome()  {}
func (Resolved) outcome() {}
func (Failed) outcome()   {}

// Manager is the tool-call lifecycle manager for one operator session.
type Manager struct {
	mu       sync.Mutex
	chat     []domain.ChatMessage
	calls    []domain.ToolCall
	consents []domain.ConsentRequest

	executor tools.Executor
	policy   func(toolName string) bool
	metrics  *observability.MetricsCollector
	logger   *slog.Logger
	now      func() time.Time
}

// NewManager creates a session manager. metrics may be nil.
func NewManager(executor tools.Executor, metrics *observability.MetricsCollector, logger *slog.Logger) *Manager {
	return &Manager{
		executor: executor,
		policy:   tools.RequiresConsent,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// WithPolicy overrides the consent policy lookup. Test hook.
func (m *Manager) WithPolicy(policy func(toolName string) bool) *Manager {
	m.policy = policy
	return m
}

// AppendUserMessage appends an operator message to the chat log verbatim.
func (m *Manager) AppendUserMessage(text string) domain.ChatMessage {
	return m.append(domain.RoleUser, text)
}

// AppendAssistantMessage appends an assistant message to the chat log.
func (m *Manager) AppendAssistantMessage(text string) domain.ChatMessage {
	return m.append(domain.RoleAssistant, text)
}

func (m *Manager) append(role domain.ChatRole, text string) domain.ChatMessage {
	m.mu.Lock()
	msg := m.appendLocked(role, text)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ChatMessagesTotal.WithLabelValues(string(role)).Inc()
	}
	return msg
}

func (m *Manager) appendLocked(role domain.ChatRole, text string) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:        uuid.New(),
		Role:      role,
		Content:   text,
		CreatedAt: m.now(),
	}
	m.chat = append(m.chat, msg)
	return msg
}

// Invoke creates a tool call and either parks it pending consent or runs
// it through the executor. Consent-gated calls return Pending immediately;
// the executor is not touched until Approve.
func (m *Manager) Invoke(ctx context.Context, server, toolName string, args map[string]any) Outcome {
	id := uuid.New()
	needsConsent := m.policy(toolName)

	m.mu.Lock()
	call := domain.ToolCall{
		ID:              id,
		Server:          server,
		ToolName:        toolName,
		Args:            args,
		StartedAt:       m.now(),
		RequiresConsent: needsConsent,
	}

	if needsConsent {
		call.Status = domain.StatusNeedsConsent
		m.calls = append(m.calls, call)
		m.consents = append(m.consents, domain.ConsentRequest{
			ToolCallID:  id,
			Title:       "Approval required: " + toolName,
			Description: "This is a high-impact action (incident creation, notification, or durable write). Confirm before it runs.",
		})
		depth := len(m.consents)
		m.mu.Unlock()

		m.logger.Info("tool call pending consent",
			slog.String("tool_call_id", id.String()),
			slog.String("tool", toolName),
		)
		if m.metrics != nil {
			m.metrics.ToolInvocationsTotal.WithLabelValues(toolName, string(domain.StatusNeedsConsent)).Inc()
			m.metrics.ConsentQueueDepth.Set(float64(depth))
		}
		return Pending{CallID: id}
	}

	call.Status = domain.StatusRunning
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	return m.run(ctx, id, toolName, args)
}

// run executes a call already in the running state and applies its single
// terminal transition.
func (m *Manager) run(ctx context.Context, id uuid.UUID, toolName string, args map[string]any) Outcome {
	start := m.now()
	result, err := m.executor.Execute(ctx, toolName, args)
	elapsed := m.now().Sub(start)

	m.mu.Lock()
	call := m.findLocked(id)
	if call == nil || call.Status != domain.StatusRunning {
		// The only transition out of running is terminal, applied here.
		// Anything else means the id was resolved elsewhere; keep it final.
		m.mu.Unlock()
		if err != nil {
			return Failed{CallID: id, Err: err}
		}
		return Resolved{CallID: id, Result: result}
	}

	call.FinishedAt = m.now()
	if err != nil {
		call.Status = domain.StatusError
		call.Error = err.Error()
	} else {
		call.Status = domain.StatusSuccess
		call.Result = result
	}
	status := call.Status
	m.mu.Unlock()

	m.logger.Info("tool call finished",
		slog.String("tool_call_id", id.String()),
		slog.String("tool", toolName),
		slog.String("status", string(status)),
		slog.Duration("elapsed", elapsed),
	)
	if m.metrics != nil {
		m.metrics.ToolInvocationsTotal.WithLabelValues(toolName, string(status)).Inc()
		m.metrics.ToolExecutionDuration.WithLabelValues(toolName).Observe(elapsed.Seconds())
	}

	if err != nil {
		return Failed{CallID: id, Err: err}
	}
	return Resolved{CallID: id, Result: result}
}

// Approve resolves a pending consent gate and executes the call. It is an
// idempotent no-op when the id is unknown or the call is not awaiting
// consent (already approved, rejected, or finished). On success an
// assistant chat entry summarizes the executed tool.
func (m *Manager) Approve(ctx context.Context, id uuid.UUID) {
	m.mu.Lock()
	call := m.findLocked(id)
	if call == nil || call.Status != domain.StatusNeedsConsent {
		m.mu.Unlock()
		return
	}
	call.Status = domain.StatusRunning
	m.removeConsentLocked(id)
	toolName, args := call.ToolName, call.Args
	depth := len(m.consents)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ConsentResolutionsTotal.WithLabelValues("approved").Inc()
		m.metrics.ConsentQueueDepth.Set(float64(depth))
	}

	out := m.run(ctx, id, toolName, args)
	if res, ok := out.(Resolved); ok {
		m.AppendAssistantMessage(fmt.Sprintf("Executed %s: %s", toolName, res.Result.Output))
	}
}

// Reject resolves a pending consent gate by terminally failing the call
// with a fixed rejection error, never touching the executor. Idempotent
// no-op on unknown or already-resolved ids.
func (m *Manager) Reject(id uuid.UUID) {
	m.mu.Lock()
	call := m.findLocked(id)
	if call == nil || call.Status != domain.StatusNeedsConsent {
		m.mu.Unlock()
		return
	}
	m.removeConsentLocked(id)
	call.Status = domain.StatusError
	call.FinishedAt = m.now()
	call.Error = rejectedMessage
	toolName := call.ToolName
	m.appendLocked(domain.RoleAssistant, fmt.Sprintf("Cancelled %s (%s).", toolName, rejectedMessage))
	depth := len(m.consents)
	m.mu.Unlock()

	m.logger.Info("tool call rejected",
		slog.String("tool_call_id", id.String()),
		slog.String("tool", toolName),
	)
	if m.metrics != nil {
		m.metrics.ToolInvocationsTotal.WithLabelValues(toolName, string(domain.StatusError)).Inc()
		m.metrics.ConsentResolutionsTotal.WithLabelValues("rejected").Inc()
		m.metrics.ConsentQueueDepth.Set(float64(depth))
		m.metrics.ChatMessagesTotal.WithLabelValues(string(domain.RoleAssistant)).Inc()
	}
}

// Chat returns a snapshot of the conversation log in chronological order.
func (m *Manager) Chat() []domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ChatMessage, len(m.chat))
	copy(out, m.chat)
	return out
}

// ToolCalls returns a snapshot of all tool calls in creation order.
func (m *Manager) ToolCalls() []domain.ToolCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ToolCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// ConsentQueue returns a snapshot of pending consent requests in FIFO
// order. The presentation layer shows one prompt at a time from the head.
func (m *Manager) ConsentQueue() []domain.ConsentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ConsentRequest, len(m.consents))
	copy(out, m.consents)
	return out
}

// ToolCall returns a snapshot of one call by id.
func (m *Manager) ToolCall(id uuid.UUID) (domain.ToolCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if call := m.findLocked(id); call != nil {
		return *call, true
	}
	return domain.ToolCall{}, false
}

func (m *Manager) findLocked(id uuid.UUID) *domain.ToolCall {
	for i := range m.calls {
		if m.calls[i].ID == id {
			return &m.calls[i]
		}
	}
	return nil
}

func (m *Manager) removeConsentLocked(id uuid.UUID) {
	for i := range m.consents {
		if m.consents[i].ToolCallID == id {
			m.consents = append(m.consents[:i], m.consents[i+1:]...)
			return
		}
	}
}
