package services

import (
	"context"
	"fmt"
	"sync"

	"shipmate/internal/gateway"
	"shipmate/pkg/logging"
)

// GatewayService manages the chat gateway HTTP server. It depends on the
// bridge so the assistant has tools when the UI comes up; readiness flips
// once Start succeeds.
type GatewayService struct {
	*BaseService

	mu     sync.Mutex
	server *gateway.Server
}

// NewGatewayService creates the gateway service.
func NewGatewayService(server *gateway.Server) *GatewayService {
	return &GatewayService{
		BaseService: NewBaseService("chat-gateway", TypeGateway, []string{"mcp-bridge"}),
		server:      server,
	}
}

// Start launches the HTTP server and marks it ready.
func (s *GatewayService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetState() == StateRunning {
		return nil
	}

	s.UpdateState(StateStarting, HealthUnknown, nil)

	if err := s.server.Start(ctx); err != nil {
		s.UpdateState(StateFailed, HealthUnhealthy, err)
		return fmt.Errorf("failed to start gateway: %w", err)
	}
	s.server.MarkReady()

	s.UpdateState(StateRunning, HealthHealthy, nil)
	logging.Info("Gateway-Service", "Chat gateway listening on %s", s.server.Addr())
	return nil
}

// Stop shuts the HTTP server down gracefully.
func (s *GatewayService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetState() != StateRunning {
		return nil
	}

	s.UpdateState(StateStopping, s.GetHealth(), nil)

	if err := s.server.Stop(ctx); err != nil {
		logging.Error("Gateway-Service", err, "Error stopping gateway")
	}

	s.UpdateState(StateStopped, HealthUnknown, nil)
	logging.Info("Gateway-Service", "Stopped")
	return nil
}
