// Package mcp provides an MCP (Model Context Protocol) client bridge that
// discovers tools from external MCP servers and adapts them into Vigil's
// tools.Tool interface, so a real telemetry or ticketing backend can stand
// in for the simulated tools without any change to the call lifecycle.
// Only the stdio subprocess transport is supported.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tidemark/vigil/internal/tools"
)

// ServerConfig defines a single external MCP server connection.
type ServerConfig struct {
	Name    string            `json:"name" yaml:"name"`                           // Server ID used for tool namespacing.
	Command string            `json:"command" yaml:"command"`                     // Executable to launch.
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`       // Command arguments.
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`         // Subprocess env vars. Values support ${VAR} expansion.
	Consent bool              `json:"consent,omitempty" yaml:"consent,omitempty"` // Mark all discovered tools as consent-gated.
}

// MCPTool wraps a tool discovered from an MCP server.
type MCPTool struct {
	namespacedName string // "mcp__<server>__<tool>" — unique across all servers.
	description    string
	required       []string // required argument names from the input schema
	client         mcpclient.MCPClient
	originalName   string
	serverName     string
	logger         *slog.Logger
}

func (t *MCPTool) Name() string        { return t.namespacedName }
func (t *MCPTool) Server() string      { return "mcp:" + t.serverName }
func (t *MCPTool) Description() string { return t.description }

func (t *MCPTool) Validate(args map[string]any) error {
	for _, key := range t.required {
		if _, exists := args[key]; !exists {
			return fmt.Errorf("missing required argument: %s", key)
		}
	}
	return nil
}

func (t *MCPTool) Execute(ctx context.Context, args map[string]any) (*tools.Result, error) {
	t.logger.InfoContext(ctx, "mcp tool executing",
		slog.String("server", t.serverName),
		slog.String("tool", t.originalName),
	)

	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = t.originalName
	callReq.Params.Arguments = args

	callResult, err := t.client.CallTool(ctx, callReq)
	if err != nil {
		return nil, fmt.Errorf("MCP call to %s/%s failed: %w", t.serverName, t.originalName, err)
	}
	if callResult.IsError {
		return nil, fmt.Errorf("MCP tool %s/%s reported an error: %s", t.serverName, t.originalName, formatContent(callResult.Content))
	}

	return &tools.Result{Output: formatContent(callResult.Content)}, nil
}

// formatContent converts MCP content items to a single string.
func formatContent(content []mcp.Content) string {
	var sb strings.Builder
	for i, c := range content {
		if i > 0 {
			sb.WriteString("\n")
		}
		if tc, ok := mcp.AsTextContent(c); ok {
			sb.WriteString(tc.Text)
		} else {
			// Non-text content (image, resource) is serialized as JSON.
			data, _ := json.Marshal(c)
			sb.WriteString(string(data))
		}
	}
	return sb.String()
}

// Bridge manages the lifecycle of MCP client connections and produces
// MCPTool adapters for the tool registry.
type Bridge struct {
	clients []mcpclient.MCPClient
	logger  *slog.Logger
}

// NewBridge creates a bridge that will manage MCP server connections.
func NewBridge(logger *slog.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// ConnectAndDiscover launches one MCP server subprocess, performs the
// initialization handshake, discovers tools, and returns adapters ready
// for registration. Tools from a server configured with Consent are also
// marked consent-required in the policy set.
func (b *Bridge) ConnectAndDiscover(ctx context.Context, cfg ServerConfig) ([]*MCPTool, error) {
	c, err := mcpclient.NewStdioMCPClient(cfg.Command, expandEnv(cfg.Env), cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("creating MCP client for %q: %w", cfg.Name, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "vigil",
		Version: "0.1.0",
	}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	if _, err := c.Initialize(ctx, initReq); err != nil {
		return nil, fmt.Errorf("MCP initialize for %q: %w", cfg.Name, err)
	}

	b.clients = append(b.clients, c)

	listResp, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("MCP list tools for %q: %w", cfg.Name, err)
	}

	mcpTools := make([]*MCPTool, 0, len(listResp.Tools))
	for _, t := range listResp.Tools {
		namespacedName := fmt.Sprintf("mcp__%s__%s", cfg.Name, t.Name)
		if cfg.Consent {
			tools.MarkConsentRequired(namespacedName)
		}

		mcpTools = append(mcpTools, &MCPTool{
			namespacedName: namespacedName,
			description:    fmt.Sprintf("[MCP:%s] %s", cfg.Name, t.Description),
			required:       requiredArgs(t.InputSchema),
			client:         c,
			originalName:   t.Name,
			serverName:     cfg.Name,
			logger:         b.logger,
		})
	}

	b.logger.Info("MCP server connected",
		slog.String("server", cfg.Name),
		slog.Int("tools_discovered", len(mcpTools)),
		slog.Bool("consent", cfg.Consent),
	)

	return mcpTools, nil
}

// Close shuts down all MCP client connections.
func (b *Bridge) Close() {
	for _, c := range b.clients {
		if err := c.Close(); err != nil {
			b.logger.Error("closing MCP client", slog.String("error", err.Error()))
		}
	}
}

func requiredArgs(schema mcp.ToolInputSchema) []string {
	return schema.Required
}

// expandEnv renders a config env map into KEY=VALUE pairs, expanding
// ${VAR} references against the parent process environment.
func expandEnv(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+os.ExpandEnv(v))
	}
	return out
}
