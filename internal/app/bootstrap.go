package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shipmate/internal/config"
	"shipmate/pkg/logging"
)

// shutdownTimeout bounds the graceful stop of all services.
const shutdownTimeout = 15 * time.Second

// Application is the bootstrapped control plane: configuration loaded,
// components assembled, ready to Run.
type Application struct {
	config   *Config
	services *Services

	// registered remembers a successful toolgroup registration so
	// shutdown can undo it.
	registered bool
}

// NewApplication loads the configuration, applies the flag overrides and
// assembles all runtime components. Nothing is started yet; Run does
// that.
func NewApplication(cfg *Config) (*Application, error) {
	initLogging(cfg, "info")

	shipCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", cfg.ConfigPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", cfg.ConfigPath, err)
	}

	// Flag overrides win over file values.
	if cfg.GatewayPort != 0 {
		shipCfg.Gateway.Port = cfg.GatewayPort
	}
	if cfg.AggregatorPort != 0 {
		shipCfg.Aggregator.Port = cfg.AggregatorPort
	}
	if cfg.Yolo {
		shipCfg.Yolo = true
	}
	cfg.Shipmate = &shipCfg

	// The file may raise or lower the log level when no explicit flag
	// was given.
	initLogging(cfg, shipCfg.LogLevel)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// initLogging applies the logging settings. The explicit LogLevel wins
// over the fallback from the configuration.
func initLogging(cfg *Config, fallbackLevel string) {
	level := cfg.LogLevel
	if level == "" {
		level = fallbackLevel
	}

	var output io.Writer = os.Stdout
	if cfg.Quiet {
		output = io.Discard
	}
	logging.Init(logging.ParseLevel(level), output, cfg.LogJSON)
}

// Run starts all services, registers the aggregator toolgroup in LLaMA
// Stack, and blocks until the context is cancelled or an interrupt
// signal arrives. Shutdown is graceful and bounded.
func (a *Application) Run(ctx context.Context) error {
	if err := a.services.Orchestrator.Start(ctx); err != nil {
		return err
	}

	a.registerToolgroup(ctx)

	logging.Info("App", "shipmate is up. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		logging.Info("App", "Context cancelled, shutting down")
	case sig := <-sigChan:
		logging.Info("App", "Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.unregisterToolgroup(shutdownCtx)
	a.services.Orchestrator.Stop(shutdownCtx)
	return nil
}

// registerToolgroup announces the aggregator endpoint to LLaMA Stack.
// Registration failures are warnings: the gateway and the MCP fleet are
// useful on their own, and a later LLaMA Stack restart can pick the
// toolgroup up via a new serve run.
func (a *Application) registerToolgroup(ctx context.Context) {
	if a.services.Toolgroup == "" {
		logging.Debug("App", "Toolgroup registration disabled")
		return
	}

	endpoint := a.services.AggregatorEndpoint()
	if endpoint == "" {
		logging.Warn("App", "Aggregator has no reachable endpoint, skipping toolgroup registration")
		return
	}

	regCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.services.Llama.RegisterToolgroup(regCtx, a.services.Toolgroup, endpoint); err != nil {
		logging.Warn("App", "Could not register toolgroup %s in LLaMA Stack: %v", a.services.Toolgroup, err)
		return
	}

	a.registered = true
	logging.Info("App", "Registered toolgroup %s -> %s", a.services.Toolgroup, endpoint)
}

// unregisterToolgroup removes the toolgroup registered at startup so
// LLaMA Stack does not keep a dead endpoint.
func (a *Application) unregisterToolgroup(ctx context.Context) {
	if !a.registered {
		return
	}

	if err := a.services.Llama.UnregisterToolgroup(ctx, a.services.Toolgroup); err != nil {
		logging.Warn("App", "Could not unregister toolgroup %s: %v", a.services.Toolgroup, err)
		return
	}
	logging.Info("App", "Unregistered toolgroup %s", a.services.Toolgroup)
}
