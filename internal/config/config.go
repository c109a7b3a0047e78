// Package config handles loading and validating Vigil configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()
}

// Config is the root configuration for Vigil.
type Config struct {
	DefaultSubject string               `json:"default_subject,omitempty" yaml:"default_subject,omitempty"` // Subject the session starts on. Default: "mike". Override: VIGIL_SUBJECT env var.
	Executor       ExecutorConfig       `json:"executor" yaml:"executor"`
	Tools          ToolsConfig          `json:"tools" yaml:"tools"`
	Ops            *OpsConfig           `json:"ops,omitempty" yaml:"ops,omitempty"`                     // nil = ops HTTP listener disabled
	Observability  *ObservabilityConfig `json:"observability,omitempty" yaml:"observability,omitempty"` // nil = observability disabled
	Scheduler      *SchedulerConfig     `json:"scheduler,omitempty" yaml:"scheduler,omitempty"`         // nil = daily report scheduler disabled
}

// Subject returns the configured starting subject, defaulting to "mike".
func (c *Config) Subject() string {
	if c != nil && c.DefaultSubject != "" {
		return c.DefaultSubject
	}
	return "mike"
}

// ExecutorConfig tunes the tool executor's simulated backend latency.
// Zeroes disable the artificial delay entirely, which tests rely on.
type ExecutorConfig struct {
	MinLatencyMS int `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMS int `json:"max_latency_ms" yaml:"max_latency_ms"`
}

// Latency returns the configured min/max latency pair. When unset, the
// interactive default of 300–800ms applies so tool runs feel like real
// backend calls in the demo.
func (e ExecutorConfig) Latency() (time.Duration, time.Duration) {
	if e.MinLatencyMS <= 0 && e.MaxLatencyMS <= 0 {
		return 300 * time.Millisecond, 800 * time.Millisecond
	}
	min := time.Duration(e.MinLatencyMS) * time.Millisecond
	max := time.Duration(e.MaxLatencyMS) * time.Millisecond
	if max < min {
		max = min
	}
	return min, max
}

// ToolsConfig configures the tool surface.
type ToolsConfig struct {
	MCP []MCPServerConfig `json:"mcp,omitempty" yaml:"mcp,omitempty"` // External MCP tool servers.
}

// MCPServerConfig defines a single external MCP server connection.
// Vigil acts as an MCP client, connecting at startup, discovering tools,
// and registering them in the tool registry alongside the native tools.
// Only the stdio subprocess transport is supported.
type MCPServerConfig struct {
	Name    string            `json:"name" yaml:"name"`                           // Server ID used for tool namespacing (e.g., "ticketing").
	Command string            `json:"command" yaml:"command"`                     // Executable to launch.
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`       // Command arguments.
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`         // Subprocess env vars. Values support ${VAR} expansion.
	Consent bool              `json:"consent,omitempty" yaml:"consent,omitempty"` // Gate every discovered tool behind operator consent.
}

// OpsConfig configures the operational HTTP listener (health, readiness,
// metrics). It serves no product functionality.
type OpsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"` // Default: ":8087"
}

// ListenAddr returns the listen address with a default of ":8087".
func (o *OpsConfig) ListenAddr() string {
	if o != nil && o.Addr != "" {
		return o.Addr
	}
	return ":8087"
}

// ObservabilityConfig configures metrics, tracing, and anomaly detection.
// When nil, all observability features are disabled with zero overhead.
type ObservabilityConfig struct {
	Metrics *MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Tracing *TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`
	Anomaly *AnomalyConfig `json:"anomaly,omitempty" yaml:"anomaly,omitempty"`
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"` // Default: "/metrics"
}

// MetricsPath returns the exposition path with a default of "/metrics".
func (m *MetricsConfig) MetricsPath() string {
	if m != nil && m.Path != "" {
		return m.Path
	}
	return "/metrics"
}

// TracingConfig configures OpenTelemetry distributed tracing.
type TracingConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	Endpoint    string  `json:"endpoint" yaml:"endpoint"`         // OTLP endpoint, e.g. "localhost:4317"
	Protocol    string  `json:"protocol" yaml:"protocol"`         // "grpc" or "http". Default: "grpc"
	ServiceName string  `json:"service_name" yaml:"service_name"` // Default: "vigil"
	SampleRate  float64 `json:"sample_rate" yaml:"sample_rate"`   // 0.0–1.0. Default: 1.0
	Insecure    bool    `json:"insecure" yaml:"insecure"`         // Skip TLS for dev
}

// AnomalyConfig configures threshold-based anomaly detection over tool
// execution outcomes.
type AnomalyConfig struct {
	Enabled            bool    `json:"enabled" yaml:"enabled"`
	ErrorRateThreshold float64 `json:"error_rate_threshold" yaml:"error_rate_threshold"` // e.g. 0.5 = 50% errors
	WindowSeconds      int     `json:"window_seconds" yaml:"window_seconds"`             // Sliding window. Default: 300
}

// SchedulerConfig configures the cron-driven daily report job.
// When nil, no scheduled reports run.
type SchedulerConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Spec     string   `json:"spec" yaml:"spec"`                             // Cron expression. Default: "0 18 * * *" (daily at 18:00).
	Subjects []string `json:"subjects,omitempty" yaml:"subjects,omitempty"` // Subject IDs to report on. Empty = the default subject.
}

// CronSpec returns the cron expression with a default of daily at 18:00.
func (s *SchedulerConfig) CronSpec() string {
	if s != nil && s.Spec != "" {
		return s.Spec
	}
	return "0 18 * * *"
}

// DefaultConfigPath returns the default config file path (~/.vigil/config.json).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "configs/vigil.json" // fallback for environments without a home dir
	}
	return filepath.Join(home, ".vigil", "config.json")
}

// Load reads a JSON or YAML config file and returns a validated Config.
// The format is detected by file extension: .yml/.yaml for YAML, everything
// else for JSON. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %s: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", resolved, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(resolved)); ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config %s: %w", resolved, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config %s: %w", resolved, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file exists:
// simulated tools only, observability off, scheduler off.
func Default() *Config {
	cfg := &Config{}
	applyEnvOverrides(cfg)
	return cfg
}

// applyEnvOverrides applies environment variable overrides. Env vars take
// precedence over config file values.
func applyEnvOverrides(cfg *Config) {
	if env := os.Getenv("VIGIL_SUBJECT"); env != "" {
		cfg.DefaultSubject = env
	}
	if env := os.Getenv("VIGIL_OPS_ADDR"); env != "" {
		if cfg.Ops == nil {
			cfg.Ops = &OpsConfig{Enabled: true}
		}
		cfg.Ops.Addr = env
	}
	if env := os.Getenv("VIGIL_OTLP_ENDPOINT"); env != "" {
		if cfg.Observability == nil {
			cfg.Observability = &ObservabilityConfig{}
		}
		if cfg.Observability.Tracing == nil {
			cfg.Observability.Tracing = &TracingConfig{Enabled: true}
		}
		cfg.Observability.Tracing.Endpoint = env
	}
}

func (c *Config) validate() error {
	if c.Executor.MinLatencyMS < 0 || c.Executor.MaxLatencyMS < 0 {
		return fmt.Errorf("executor latency must not be negative")
	}
	if c.Executor.MaxLatencyMS > 0 && c.Executor.MaxLatencyMS < c.Executor.MinLatencyMS {
		return fmt.Errorf("executor.max_latency_ms (%d) is below min_latency_ms (%d)",
			c.Executor.MaxLatencyMS, c.Executor.MinLatencyMS)
	}

	if c.Observability != nil && c.Observability.Tracing != nil {
		t := c.Observability.Tracing
		if t.Enabled && t.Endpoint == "" {
			return fmt.Errorf("observability.tracing.endpoint is required when tracing is enabled")
		}
		switch t.Protocol {
		case "", "grpc", "http":
		default:
			return fmt.Errorf("observability.tracing.protocol must be \"grpc\" or \"http\", got %q", t.Protocol)
		}
		if t.SampleRate < 0 || t.SampleRate > 1 {
			return fmt.Errorf("observability.tracing.sample_rate must be in [0, 1], got %v", t.SampleRate)
		}
	}

	// MCP server config validation.
	mcpNames := make(map[string]bool, len(c.Tools.MCP))
	for i, srv := range c.Tools.MCP {
		if srv.Name == "" {
			return fmt.Errorf("tools.mcp[%d].name is required", i)
		}
		if mcpNames[srv.Name] {
			return fmt.Errorf("tools.mcp[%d]: duplicate server name %q", i, srv.Name)
		}
		mcpNames[srv.Name] = true
		if srv.Command == "" {
			return fmt.Errorf("tools.mcp[%d] (%s): command is required", i, srv.Name)
		}
	}

	return nil
}

// resolvePath expands a leading ~ to the user's home directory.
func resolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
