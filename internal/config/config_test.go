package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "vigil.yaml", `
default_subject: amy
executor:
  min_latency_ms: 10
  max_latency_ms: 20
ops:
  enabled: true
scheduler:
  enabled: true
  spec: "30 17 * * *"
  subjects: [mike, lisa]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Subject() != "amy" {
		t.Errorf("Subject() = %q, want amy", cfg.Subject())
	}
	min, max := cfg.Executor.Latency()
	if min != 10*time.Millisecond || max != 20*time.Millisecond {
		t.Errorf("Latency() = %v, %v", min, max)
	}
	if cfg.Ops.ListenAddr() != ":8087" {
		t.Errorf("ListenAddr() = %q, want :8087 default", cfg.Ops.ListenAddr())
	}
	if cfg.Scheduler.CronSpec() != "30 17 * * *" {
		t.Errorf("CronSpec() = %q", cfg.Scheduler.CronSpec())
	}
	if len(cfg.Scheduler.Subjects) != 2 {
		t.Errorf("Subjects = %v", cfg.Scheduler.Subjects)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "vigil.json", `{
  "tools": {"mcp": [{"name": "ticketing", "command": "ticketd", "consent": true}]}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Tools.MCP) != 1 || cfg.Tools.MCP[0].Name != "ticketing" {
		t.Errorf("MCP servers = %+v", cfg.Tools.MCP)
	}
	if !cfg.Tools.MCP[0].Consent {
		t.Error("consent flag not parsed")
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	if cfg.Subject() != "mike" {
		t.Errorf("Subject() = %q, want mike", cfg.Subject())
	}
	min, max := cfg.Executor.Latency()
	if min != 300*time.Millisecond || max != 800*time.Millisecond {
		t.Errorf("default Latency() = %v, %v", min, max)
	}
	var sched *SchedulerConfig
	if sched.CronSpec() != "0 18 * * *" {
		t.Errorf("default CronSpec() = %q", sched.CronSpec())
	}
	var metrics *MetricsConfig
	if metrics.MetricsPath() != "/metrics" {
		t.Errorf("default MetricsPath() = %q", metrics.MetricsPath())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VIGIL_SUBJECT", "lisa")
	t.Setenv("VIGIL_OPS_ADDR", "127.0.0.1:9999")

	path := writeConfig(t, "vigil.yaml", "default_subject: mike\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Subject() != "lisa" {
		t.Errorf("env override lost: Subject() = %q", cfg.Subject())
	}
	if cfg.Ops == nil || cfg.Ops.Addr != "127.0.0.1:9999" {
		t.Errorf("ops addr override lost: %+v", cfg.Ops)
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"inverted latency", "executor:\n  min_latency_ms: 100\n  max_latency_ms: 50\n"},
		{"tracing without endpoint", "observability:\n  tracing:\n    enabled: true\n"},
		{"bad tracing protocol", "observability:\n  tracing:\n    enabled: true\n    endpoint: localhost:4317\n    protocol: udp\n"},
		{"mcp missing name", "tools:\n  mcp:\n    - command: srv\n"},
		{"mcp missing command", "tools:\n  mcp:\n    - name: a\n"},
		{"mcp duplicate name", "tools:\n  mcp:\n    - name: a\n      command: srv\n    - name: a\n      command: srv\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, "vigil.yaml", tc.body)
			if _, err := Load(path); err == nil {
				t.Error("Load() accepted invalid config")
			}
		})
	}
}
