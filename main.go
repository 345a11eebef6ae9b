package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/pflag"

	"hwstats-agent/internal/api"
	"hwstats-agent/internal/logging"
	"hwstats-agent/internal/monitoring"
	"hwstats-agent/internal/services"
	"hwstats-agent/internal/websockets"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hwstats-agent: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("hwstats-agent", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "config.json", "path to the JSON or YAML config file")
	overrides := services.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	// Load configuration
	config, err := services.LoadConfig(*configPath)
	if config == nil {
		return err
	}
	overrides.Apply(config)

	level, _ := logging.ParseLogLevel(config.Logging.Level)
	if logErr := logging.InitializeLogging(level, config.Logging.File); logErr != nil {
		return fmt.Errorf("failed to initialize logging: %w", logErr)
	}
	defer logging.CloseLogging()
	if err != nil {
		logging.LogWarn("Configuration problem, continuing with defaults", "path", *configPath, "error", err)
	}

	// --- Monitoring Setup ---
	manager := monitoring.NewMonitorManager()
	gpuAvailability := monitoring.NewSourceAvailability(monitoring.SourceGPU, config.Monitoring.EnableGPU)
	for _, m := range []monitoring.SystemMonitor{
		monitoring.NewCPUMonitor(),
		monitoring.NewMemoryMonitor(),
		monitoring.NewDiskMonitor(config.Monitoring.DiskPath),
		monitoring.NewTemperatureMonitor(config.Temperature),
		monitoring.NewGPUMonitor(monitoring.NewNvidiaSMIProvider(config.Monitoring.GPUCommand), gpuAvailability),
		monitoring.NewSystemInfoProvider(),
	} {
		if err := manager.RegisterMonitor(m); err != nil {
			return err
		}
	}
	if err := manager.InitializeAll(); err != nil {
		return err
	}
	defer func() {
		if err := manager.CleanupAll(); err != nil {
			logging.LogWarn("Monitor cleanup failed", "error", err)
		}
	}()

	assembler, err := monitoring.NewAssembler(manager)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- HTTP Server Setup ---
	r := mux.NewRouter()
	api.RegisterRoutes(r, api.NewHandler(assembler))
	if config.Metrics.Enabled {
		api.RegisterMetricsRoute(r, assembler)
	}
	if config.WebSocket.Enabled {
		hub := websockets.NewHub(assembler)
		go hub.Run(ctx)
		websockets.RegisterRoutes(r, hub)
	}

	server := &http.Server{
		Addr:         config.Server.Addr(),
		Handler:      api.WithMiddleware(r),
		ReadTimeout:  time.Duration(config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(config.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.LogInfo("HTTP server starting",
			"addr", server.Addr,
			"gpu_available", gpuAvailability.Available(),
			"metrics", config.Metrics.Enabled,
			"websocket", config.WebSocket.Enabled,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("could not start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.LogInfo("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(config.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
