package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/tidemark/vigil/internal/config"
	"github.com/tidemark/vigil/internal/tools"
)

// --- No-op Path ---

func TestNew_NilConfig(t *testing.T) {
	obs, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New(nil) error: %v", err)
	}
	if obs != nil {
		t.Fatal("expected nil Observability for nil config")
	}
}

func TestNew_AllDisabled(t *testing.T) {
	obs, err := New(&config.ObservabilityConfig{}, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if obs == nil {
		t.Fatal("expected non-nil Observability")
	}
	if obs.Metrics != nil {
		t.Error("metrics should be nil when not enabled")
	}
	if obs.Tracer != nil {
		t.Error("tracer should be nil when not enabled")
	}
	if obs.Anomaly != nil {
		t.Error("anomaly should be nil when not enabled")
	}
	if obs.Health == nil {
		t.Error("health checker should always be created")
	}
}

func TestObservability_NilSafeAccessors(t *testing.T) {
	var obs *Observability
	obs.Shutdown(context.Background()) // must not panic
	if obs.MetricsOrNil() != nil {
		t.Error("expected nil metrics from nil Observability")
	}
	if obs.TracerOrNil() != nil {
		t.Error("expected nil tracer from nil Observability")
	}
	if obs.AnomalyOrNil() != nil {
		t.Error("expected nil anomaly from nil Observability")
	}
}

// --- MetricsCollector ---

func TestMetricsCollector_RecordAndGather(t *testing.T) {
	m := NewMetricsCollector()
	if m.Registry == nil {
		t.Fatal("expected non-nil Registry")
	}

	m.IntentParsesTotal.WithLabelValues("ok").Inc()
	m.IntentParsesTotal.WithLabelValues("ok").Inc()
	m.IntentParsesTotal.WithLabelValues("missing_trigger").Inc()
	m.ToolInvocationsTotal.WithLabelValues("calc_heat_risk", "success").Inc()
	m.ConsentResolutionsTotal.WithLabelValues("rejected").Inc()
	m.ConsentQueueDepth.Set(2)
	m.ChatMessagesTotal.WithLabelValues("assistant").Inc()

	if got := counterValue(t, m.Registry, "vigil_intent_parses_total", prometheus.Labels{"outcome": "ok"}); got != 2 {
		t.Errorf("intent ok count = %v, want 2", got)
	}
	if got := counterValue(t, m.Registry, "vigil_intent_parses_total", prometheus.Labels{"outcome": "missing_trigger"}); got != 1 {
		t.Errorf("intent missing_trigger count = %v, want 1", got)
	}
	if got := counterValue(t, m.Registry, "vigil_tool_invocations_total", prometheus.Labels{"tool": "calc_heat_risk", "status": "success"}); got != 1 {
		t.Errorf("tool invocations = %v, want 1", got)
	}
	if got := counterValue(t, m.Registry, "vigil_consent_resolutions_total", prometheus.Labels{"decision": "rejected"}); got != 1 {
		t.Errorf("consent resolutions = %v, want 1", got)
	}
}

// --- HealthChecker ---

func TestHealthChecker_NoChecks(t *testing.T) {
	h := NewHealthChecker(nil)
	status := h.CheckReady(context.Background())
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
}

func TestHealthChecker_OneFails(t *testing.T) {
	h := NewHealthChecker(nil)
	h.AddCheck("vitals", func(ctx context.Context) error { return errors.New("roster empty") })
	h.AddCheck("executor", func(ctx context.Context) error { return nil })

	status := h.CheckReady(context.Background())
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded", status.Status)
	}
	if status.Checks["vitals"].Status != "fail" {
		t.Errorf("vitals check = %q, want fail", status.Checks["vitals"].Status)
	}
	if status.Checks["executor"].Status != "ok" {
		t.Errorf("executor check = %q, want ok", status.Checks["executor"].Status)
	}
}

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)
	status := h.CheckHealth()
	if status.Status != "ok" {
		t.Errorf("liveness status = %q, want ok", status.Status)
	}
	if status.Uptime == "" {
		t.Error("liveness status missing uptime")
	}
}

// --- AnomalyDetector ---

func TestAnomalyDetector_NilSafe(t *testing.T) {
	var a *AnomalyDetector
	a.RecordError("fetch_series")
	a.RecordSuccess("fetch_series")
}

func TestAnomalyDetector_Counts(t *testing.T) {
	a := NewAnomalyDetector(&config.AnomalyConfig{
		Enabled:            true,
		ErrorRateThreshold: 0.5,
		WindowSeconds:      60,
	}, nil)

	for i := 0; i < 4; i++ {
		a.RecordSuccess("fetch_series")
	}
	for i := 0; i < 6; i++ {
		a.RecordError("fetch_series")
	}

	a.mu.Lock()
	errCount := a.errorCounts["fetch_series"].sum()
	okCount := a.successCounts["fetch_series"].sum()
	a.mu.Unlock()

	if errCount != 6 {
		t.Errorf("errors = %v, want 6", errCount)
	}
	if okCount != 4 {
		t.Errorf("successes = %v, want 4", okCount)
	}
}

// --- InstrumentedExecutor ---

type stubExecutor struct {
	result *tools.Result
	err    error
	called int
}

func (s *stubExecutor) Execute(ctx context.Context, toolName string, args map[string]any) (*tools.Result, error) {
	s.called++
	return s.result, s.err
}

func TestInstrumentedExecutor_PassThrough(t *testing.T) {
	inner := &stubExecutor{result: &tools.Result{Output: "ok"}}
	e := NewInstrumentedExecutor(inner, nil, nil)

	res, err := e.Execute(context.Background(), "fetch_snapshot", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "ok" {
		t.Errorf("output = %q, want ok", res.Output)
	}
	if inner.called != 1 {
		t.Errorf("inner called %d times, want 1", inner.called)
	}
}

func TestInstrumentedExecutor_RecordsAnomaly(t *testing.T) {
	anomaly := NewAnomalyDetector(&config.AnomalyConfig{Enabled: true, WindowSeconds: 60}, nil)
	inner := &stubExecutor{err: errors.New("backend down")}
	e := NewInstrumentedExecutor(inner, nil, anomaly)

	if _, err := e.Execute(context.Background(), "fetch_snapshot", nil); err == nil {
		t.Fatal("expected error")
	}

	anomaly.mu.Lock()
	errCount := anomaly.errorCounts["fetch_snapshot"].sum()
	anomaly.mu.Unlock()
	if errCount != 1 {
		t.Errorf("anomaly errors = %v, want 1", errCount)
	}
}

// --- Helpers ---

func labelMap(pairs []*dto.LabelPair) map[string]string {
	m := make(map[string]string)
	for _, p := range pairs {
		m[p.GetName()] = p.GetValue()
	}
	return m
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels prometheus.Labels) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather error: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			lm := labelMap(metric.GetLabel())
			match := true
			for k, v := range labels {
				if lm[k] != v {
					match = false
					break
				}
			}
			if match {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}
