// Package tools defines the tool interface, registry, and executor for
// Vigil. Tools are the only way the assistant touches data or operational
// systems; the session manager drives them through the Executor contract.
package tools

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Tool is the interface all Vigil tools implement.
type Tool interface {
	// Name returns the tool's unique identifier (e.g. "calc_heat_risk").
	Name() string

	// Server returns the logical server the tool belongs to
	// (e.g. "wearable-data", "risk-engine", "ops-actions").
	Server() string

	// Description returns a human-readable description for consent prompts
	// and the tool timeline.
	Description() string

	// Validate checks that args are well-formed before execution.
	Validate(args map[string]any) error

	// Execute runs the tool.
	Execute(ctx context.Context, args map[string]any) (*Result, error)
}

// Result is the outcome of a tool execution. NoData marks the valid
// absence outcome: the tool ran fine but the subject has nothing to show.
type Result struct {
	Output string
	Data   any
	NoData bool
}

// Registry holds available tools keyed by name.
// Thread-safe for concurrent reads; writes should only happen at startup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Panics on duplicate names (startup config error,
// not a runtime condition).
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		panic("duplicate tool registration: " + t.Name())
	}
	r.tools[t.Name()] = t
}

// Get returns the tool by name, or nil if not found.
func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// List returns all registered tool names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Executor runs a named tool with arguments. The session manager depends on
// this contract only, so the registry-backed simulator can be swapped for a
// real backend without touching the call lifecycle.
type Executor interface {
	Execute(ctx context.Context, toolName string, args map[string]any) (*Result, error)
}

// RegistryExecutor executes tools from a Registry, optionally sleeping a
// random interval first to simulate backend latency.
type RegistryExecutor struct {
	registry   *Registry
	minLatency time.Duration
	maxLatency time.Duration
}

// NewRegistryExecutor creates an executor over the given registry.
// Latency bounds of zero disable the simulated delay.
func NewRegistryExecutor(reg *Registry, minLatency, maxLatency time.Duration) *RegistryExecutor {
	if maxLatency < minLatency {
		maxLatency = minLatency
	}
	return &RegistryExecutor{registry: reg, minLatency: minLatency, maxLatency: maxLatency}
}

func (e *RegistryExecutor) Execute(ctx context.Context, toolName string, args map[string]any) (*Result, error) {
	t := e.registry.Get(toolName)
	if t == nil {
		return nil, fmt.Errorf("unknown tool: %s", toolName)
	}
	if err := t.Validate(args); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", toolName, err)
	}

	if d := e.delay(); d > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}

	return t.Execute(ctx, args)
}

func (e *RegistryExecutor) delay() time.Duration {
	if e.maxLatency <= 0 {
		return 0
	}
	spread := e.maxLatency - e.minLatency
	if spread <= 0 {
		return e.minLatency
	}
	return e.minLatency + time.Duration(rand.Int63n(int64(spread)))
}

var _ Executor = (*RegistryExecutor)(nil)
