// Package ops implements the operational HTTP listener: liveness,
// readiness, and Prometheus metrics. It exposes no product functionality
// and no mutation path into the engine.
package ops

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jkaninda/okapi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/tidemark/vigil/internal/observability"
)

// Config configures the ops listener.
type Config struct {
	ListenAddr  string
	MetricsPath string // Default: "/metrics".

	Obs    *observability.Observability // May be nil; endpoints degrade gracefully.
	Tracer trace.Tracer                 // May be nil.
}

// Gateway is the ops HTTP listener.
type Gateway struct {
	config Config
	logger *slog.Logger
	okapi  *okapi.Okapi
	server *http.Server
}

// NewGateway creates an ops listener.
func NewGateway(cfg Config, logger *slog.Logger) *Gateway {
	return &Gateway{
		config: cfg,
		logger: logger,
		okapi:  okapi.New(),
	}
}

// Start launches the HTTP server and blocks until it exits or ctx is canceled.
func (g *Gateway) Start(ctx context.Context) error {
	metrics := g.config.Obs.MetricsOrNil()

	if metrics != nil || g.config.Tracer != nil {
		g.okapi.Use(observability.MetricsMiddleware(metrics, g.config.Tracer))
	}

	g.okapi.Get("/healthz", g.handleLiveness)
	g.okapi.Get("/readyz", g.handleReadiness)

	if metrics != nil {
		path := g.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		g.okapi.HandleStd("GET", path, promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}).ServeHTTP)
	}

	g.server = &http.Server{
		Addr:              g.config.ListenAddr,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g.logger.Info("ops listener starting", slog.String("addr", g.config.ListenAddr))

	return g.okapi.StartServer(g.server)
}

// Stop gracefully shuts down the HTTP server.
func (g *Gateway) Stop(_ context.Context) error {
	if g.server == nil {
		return nil
	}
	g.logger.Info("ops listener stopping")
	return g.okapi.Shutdown(g.server)
}

func (g *Gateway) handleLiveness(c *okapi.Context) error {
	if g.config.Obs != nil && g.config.Obs.Health != nil {
		return c.OK(g.config.Obs.Health.CheckHealth())
	}
	return c.OK(observability.HealthStatus{Status: "ok"})
}

// handleReadiness checks all registered dependencies and returns 200 or 503.
func (g *Gateway) handleReadiness(c *okapi.Context) error {
	if g.config.Obs == nil || g.config.Obs.Health == nil {
		return c.OK(observability.HealthStatus{Status: "ok"})
	}

	status := g.config.Obs.Health.CheckReady(c.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}
