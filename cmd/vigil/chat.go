package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	goutils "github.com/jkaninda/go-utils"

	"github.com/tidemark/vigil/internal/agent"
	"github.com/tidemark/vigil/internal/config"
	"github.com/tidemark/vigil/internal/gateway"
	"github.com/tidemark/vigil/internal/gateway/cli"
	opsgw "github.com/tidemark/vigil/internal/gateway/ops"
	"github.com/tidemark/vigil/internal/observability"
	"github.com/tidemark/vigil/internal/scheduler"
	"github.com/tidemark/vigil/internal/session"
	"github.com/tidemark/vigil/internal/tools"
	"github.com/tidemark/vigil/internal/tools/mcp"
	opstools "github.com/tidemark/vigil/internal/tools/ops"
	"github.com/tidemark/vigil/internal/tools/riskcalc"
	"github.com/tidemark/vigil/internal/tools/series"
	"github.com/tidemark/vigil/internal/vitals"
)

var (
	chatConfigPath string
	chatSubject    string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive console",
	RunE:  runChat,
}

func init() {
	// Register flags on both root and chat so that
	// `vigil --config path` and `vigil chat --config path` both work.
	for _, cmd := range []*cobra.Command{rootCmd, chatCmd} {
		cmd.Flags().StringVar(&chatConfigPath, "config", config.DefaultConfigPath(), "path to config file")
		cmd.Flags().StringVar(&chatSubject, "subject", "", "subject to watch on startup")
	}
}

// runChat starts the interactive console plus the optional ops listener
// and report scheduler.
func runChat(_ *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn, // Keep the REPL quiet; VIGIL_DEBUG lowers it.
	}))
	if os.Getenv("VIGIL_DEBUG") != "" {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	cfg, err := loadConfig(goutils.Env("VIGIL_CONFIG", chatConfigPath))
	if err != nil {
		return err
	}
	if chatSubject != "" {
		cfg.DefaultSubject = chatSubject
	}

	obs, err := observability.New(cfg.Observability, logger)
	if err != nil {
		return err
	}

	// Signal-aware context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		obs.Shutdown(shutdownCtx)
	}()

	source := vitals.NewSimSource(nil)

	// Native tools.
	reg := tools.NewRegistry()
	reg.Register(series.NewFetchTool(source, logger))
	reg.Register(series.NewSnapshotTool(source, logger))
	reg.Register(riskcalc.NewFatigueTool(source, logger))
	reg.Register(riskcalc.NewHeatTool(source, logger))
	reg.Register(opstools.NewIncidentTool(nil, logger))
	reg.Register(opstools.NewNotifyTool(logger))
	reg.Register(opstools.NewReportTool(logger))

	// External MCP tool servers (optional).
	bridge := mcp.NewBridge(logger)
	defer bridge.Close()
	for _, srv := range cfg.Tools.MCP {
		discovered, err := bridge.ConnectAndDiscover(ctx, mcp.ServerConfig{
			Name:    srv.Name,
			Command: srv.Command,
			Args:    srv.Args,
			Env:     srv.Env,
			Consent: srv.Consent,
		})
		if err != nil {
			logger.Warn("skipping MCP server",
				slog.String("server", srv.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, t := range discovered {
			reg.Register(t)
		}
	}

	minLatency, maxLatency := cfg.Executor.Latency()
	var executor tools.Executor = tools.NewRegistryExecutor(reg, minLatency, maxLatency)
	if obs != nil && (obs.Tracer != nil || obs.Anomaly != nil) {
		executor = observability.NewInstrumentedExecutor(executor, obs.Tracer, obs.Anomaly)
	}

	sess := session.NewManager(executor, obs.MetricsOrNil(), logger)
	orch := agent.NewOrchestrator(sess, cfg.Subject(), obs.MetricsOrNil(), logger)

	if obs != nil && obs.Health != nil {
		obs.Health.AddCheck("vitals", func(ctx context.Context) error {
			_, err := source.Subjects(ctx)
			return err
		})
	}

	// Daily report scheduler (optional). Scheduled write_daily_report calls
	// land in the same consent queue the console drains.
	if cfg.Scheduler != nil && cfg.Scheduler.Enabled {
		var schedMetrics *scheduler.Metrics
		if obs != nil && obs.Metrics != nil {
			schedMetrics = scheduler.NewMetrics(obs.Metrics.Registry)
		}

		sched, err := scheduler.New(sess, cfg.Scheduler, cfg.Subject(), schedMetrics, logger)
		if err != nil {
			return err
		}
		cancelScheduler := sched.Start(ctx)
		defer cancelScheduler()
	}

	// Gateways: the interactive console, plus the ops listener when enabled.
	gateways := []gateway.Gateway{cli.NewGateway(orch, source, logger)}
	if cfg.Ops != nil && cfg.Ops.Enabled {
		opsCfg := opsgw.Config{
			ListenAddr: cfg.Ops.ListenAddr(),
			Obs:        obs,
		}
		if cfg.Observability != nil {
			opsCfg.MetricsPath = cfg.Observability.Metrics.MetricsPath()
		}
		if obs != nil && obs.Tracer != nil {
			opsCfg.Tracer = obs.Tracer.Tracer()
		}
		gateways = append(gateways, opsgw.NewGateway(opsCfg, logger))
	}

	errs := make(chan error, len(gateways))
	for _, gw := range gateways {
		go func(g gateway.Gateway) {
			errs <- g.Start(ctx)
		}(gw)
	}

	// Wait for signal, console exit, or first gateway error.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errs:
		if err != nil {
			logger.Error("gateway exited with error", slog.String("error", err.Error()))
		}
	}

	// Graceful shutdown with deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := len(gateways) - 1; i >= 0; i-- {
		if err := gateways[i].Stop(shutdownCtx); err != nil {
			logger.Error("stopping gateway", slog.String("error", err.Error()))
		}
	}

	return nil
}

// loadConfig reads the config file at path, falling back to defaults when
// the default path simply does not exist. An explicitly configured path
// that is missing is an error.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && path == config.DefaultConfigPath() {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return config.Load(path)
}
