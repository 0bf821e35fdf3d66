package services

import (
	"context"
	"fmt"
	"sync"

	"shipmate/internal/bridge"
	"shipmate/pkg/logging"
)

// BridgeService owns the MCP server fleet. On start it loads the server
// definitions, connects every enabled server, and watches the definition
// directory so edits reconnect servers without a restart.
type BridgeService struct {
	*BaseService

	mu       sync.Mutex
	registry *bridge.Registry
	defsDir  string
	watcher  *bridge.Watcher
}

// NewBridgeService creates the bridge service around an existing registry.
// defsDir is the mcpservers definition directory; it may be empty or
// missing, which yields a fleet of zero servers.
func NewBridgeService(registry *bridge.Registry, defsDir string) *BridgeService {
	return &BridgeService{
		BaseService: NewBaseService("mcp-bridge", TypeBridge, []string{}),
		registry:    registry,
		defsDir:     defsDir,
	}
}

// Start connects all configured servers and begins watching definitions.
func (s *BridgeService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetState() == StateRunning {
		return nil
	}

	s.UpdateState(StateStarting, HealthUnknown, nil)

	defs, err := bridge.LoadDefinitions(s.defsDir)
	if err != nil {
		s.UpdateState(StateFailed, HealthUnhealthy, err)
		return fmt.Errorf("failed to load MCP server definitions: %w", err)
	}

	// Individual servers failing to connect is not fatal: the registry
	// records the error and status reporting surfaces it.
	if err := s.registry.ConnectAll(ctx, defs); err != nil {
		logging.Warn("Bridge-Service", "Some MCP servers failed to connect: %v", err)
	}

	s.watcher = bridge.NewWatcher(s.defsDir, s.reload)
	if err := s.watcher.Start(ctx); err != nil {
		logging.Warn("Bridge-Service", "Definition watcher disabled: %v", err)
		s.watcher = nil
	}

	s.UpdateState(StateRunning, s.CheckHealth(ctx), nil)
	logging.Info("Bridge-Service", "Started with %d MCP server(s)", s.registry.ServerCount())
	return nil
}

// reload is invoked by the watcher when a definition file changes.
func (s *BridgeService) reload(ctx context.Context) {
	defs, err := bridge.LoadDefinitions(s.defsDir)
	if err != nil {
		logging.Error("Bridge-Service", err, "Reload skipped, definitions unreadable")
		s.UpdateError(err)
		return
	}
	s.registry.Reload(ctx, defs)
	s.UpdateHealth(s.CheckHealth(ctx))
}

// Stop disconnects all servers and stops the watcher.
func (s *BridgeService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetState() != StateRunning {
		return nil
	}

	s.UpdateState(StateStopping, s.GetHealth(), nil)

	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
	s.registry.Close()

	s.UpdateState(StateStopped, HealthUnknown, nil)
	logging.Info("Bridge-Service", "Stopped")
	return nil
}

// CheckHealth reports healthy when every registered server is connected,
// degraded when some are, and unhealthy when none are. An empty fleet is
// healthy: nothing is configured, nothing is broken.
func (s *BridgeService) CheckHealth(ctx context.Context) HealthStatus {
	statuses := s.registry.Statuses()
	if len(statuses) == 0 {
		return HealthHealthy
	}

	connected := 0
	for _, status := range statuses {
		if status.Connected {
			connected++
		}
	}
	switch {
	case connected == len(statuses):
		return HealthHealthy
	case connected > 0:
		return HealthDegraded
	default:
		return HealthUnhealthy
	}
}

// Registry exposes the underlying bridge registry for components that
// need direct tool access (assistant, aggregator, status).
func (s *BridgeService) Registry() *bridge.Registry {
	return s.registry
}
