// Package main implements the groundctl entry point: it wires the mailbox
// registry, the security hub, the capture scheduler, persistence, the
// collaborator stand-ins, and the optional NATS bridge, then runs until
// interrupted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/groundctl/command"
	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/dispatch"
	"github.com/c360/groundctl/engine"
	"github.com/c360/groundctl/gateway/natsbridge"
	"github.com/c360/groundctl/health"
	"github.com/c360/groundctl/mailbox"
	"github.com/c360/groundctl/message"
	"github.com/c360/groundctl/metric"
	"github.com/c360/groundctl/optics"
	"github.com/c360/groundctl/security"
	"github.com/c360/groundctl/sim"
	"github.com/c360/groundctl/storage"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "groundctl"
)

type cliFlags struct {
	logLevel    string
	logFormat   string
	metricsAddr string
	photoLog    string
	natsURL     string
	program     string
	user        string
	role        int
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.StringVar(&f.logFormat, "log-format", "json", "log format: json or text")
	flag.StringVar(&f.metricsAddr, "metrics-addr", ":9100", "address for the /metrics endpoint, empty to disable")
	flag.StringVar(&f.photoLog, "photo-log", "photos.log", "path of the append-only photo log")
	flag.StringVar(&f.natsURL, "nats-url", "", "NATS server URL, empty to run without the bridge")
	flag.StringVar(&f.program, "program", "", "command program file to execute at startup")
	flag.StringVar(&f.user, "user", "operator", "user the program runs as")
	flag.IntVar(&f.role, "role", int(config.RoleAdmin), "role of the program user: 1 client, 2 vip, 3 admin")
	flag.Parse()
	return f
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flags := parseFlags()
	logger := setupLogger(flags.logLevel, flags.logFormat)
	slog.SetDefault(logger)

	cfg := config.Default()
	cfg.PhotoLogPath = flags.photoLog
	if err := cfg.Validate(); err != nil {
		return err
	}

	registry := mailbox.NewRegistry()
	metrics := metric.NewMetricsRegistry()
	deps := component.Dependencies{
		Registry:        registry,
		MetricsRegistry: metrics,
		Logger:          logger,
		TickInterval:    cfg.TickInterval,
	}

	photoLog, err := storage.Open(cfg.PhotoLogPath)
	if err != nil {
		return err
	}
	defer photoLog.Close()
	logger.Info("photo log opened", "path", cfg.PhotoLogPath, "next_index", photoLog.NextIndex())

	var natsConn *nats.Conn
	if flags.natsURL != "" {
		natsConn, err = nats.Connect(flags.natsURL, nats.Name(appName))
		if err != nil {
			return err
		}
		defer natsConn.Close()
		logger.Info("connected to NATS", "url", flags.natsURL)
	}

	// Leaves first so every producer finds its consumers registered, and
	// reverse shutdown stops producers before consumers.
	e := engine.New(logger)
	e.Add(component.NewRuntime(storage.NewArchive(deps, photoLog), deps))
	e.Add(component.NewRuntime(dispatch.NewDispatcher(deps), deps))
	e.Add(component.NewRuntime(sim.NewRenderer(deps), deps))
	e.Add(component.NewRuntime(sim.NewCamera(deps), deps))
	e.Add(component.NewRuntime(optics.NewScheduler(deps, cfg.PhotoIntervalSeconds), deps))
	e.Add(component.NewRuntime(security.NewHub(deps), deps))
	e.Add(natsbridge.NewBridge(deps, cfg, natsConn))

	if err := e.Initialize(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := e.Start(ctx); err != nil {
		return err
	}

	loadDefaultZones(registry, cfg, logger)

	monitor := health.NewMonitor()
	go probeHealth(ctx, monitor, e)

	if flags.metricsAddr != "" {
		go serveMetrics(flags.metricsAddr, metrics, monitor, logger)
	}

	if flags.program != "" {
		if err := runProgram(deps, cfg, flags); err != nil {
			logger.Error("program execution failed", "program", flags.program, "error", err)
		}
	}

	waitForShutdown(logger)

	return e.Stop(10 * time.Second)
}

// loadDefaultZones pushes the configured zones through the hub, the same
// path runtime zone additions take.
func loadDefaultZones(registry *mailbox.Registry, cfg *config.Config, logger *slog.Logger) {
	for _, z := range cfg.DefaultZones {
		spec := security.ZoneFromConfig(z).Spec()
		msg := message.New(appName, config.SecurityMonitorName, message.OpAddZone, &spec)
		if err := registry.Send(msg); err != nil {
			logger.Error("default zone load failed", "zone_id", z.ID, "error", err)
			continue
		}
		logger.Info("default zone loaded", "zone_id", z.ID)
	}
}

// runProgram parses and submits a command file through a gate session.
func runProgram(deps component.Dependencies, cfg *config.Config, flags cliFlags) error {
	file, err := os.Open(flags.program)
	if err != nil {
		return err
	}
	defer file.Close()

	commands, err := command.ParseProgram(file)
	if err != nil {
		return err
	}

	gate := command.NewGate(deps, cfg, command.User{
		Name: flags.user,
		Role: config.Role(flags.role),
	})
	for _, cmd := range commands {
		// Denials and argument violations are logged by the gate; the rest
		// of the program still runs.
		_ = gate.Submit(cmd)
	}
	return nil
}

// probeHealth refreshes the monitor from every engine component until the
// context is cancelled.
func probeHealth(ctx context.Context, monitor *health.Monitor, e *engine.Engine) {
	monitor.Probe(e.Components())
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			monitor.Probe(e.Components())
		}
	}
}

func serveMetrics(addr string, metrics *metric.MetricsRegistry, monitor *health.Monitor, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		status := monitor.AggregateHealth(appName)
		code := http.StatusOK
		if status.IsUnhealthy() {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})

	logger.Info("observability endpoint listening", "addr", addr)
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server failed", "error", err)
	}
}

func waitForShutdown(logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())
}
