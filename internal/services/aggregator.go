package services

import (
	"context"
	"fmt"
	"sync"

	"shipmate/internal/bridge"
	"shipmate/pkg/logging"
)

// AggregatorService manages the MCP aggregator endpoint that re-exposes
// every bridge tool as one streamable-HTTP server. It depends on the
// bridge service so the tool inventory exists before the endpoint opens.
type AggregatorService struct {
	*BaseService

	mu         sync.Mutex
	aggregator *bridge.Aggregator
}

// NewAggregatorService creates the aggregator service.
func NewAggregatorService(aggregator *bridge.Aggregator) *AggregatorService {
	return &AggregatorService{
		BaseService: NewBaseService("mcp-aggregator", TypeAggregator, []string{"mcp-bridge"}),
		aggregator:  aggregator,
	}
}

// Start opens the aggregator endpoint.
func (s *AggregatorService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetState() == StateRunning {
		return nil
	}

	s.UpdateState(StateStarting, HealthUnknown, nil)

	if err := s.aggregator.Start(ctx); err != nil {
		s.UpdateState(StateFailed, HealthUnhealthy, err)
		return fmt.Errorf("failed to start aggregator: %w", err)
	}

	s.UpdateState(StateRunning, HealthHealthy, nil)
	logging.Info("Aggregator-Service", "Serving aggregated tools on %s", s.aggregator.Endpoint())
	return nil
}

// Stop closes the aggregator endpoint.
func (s *AggregatorService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetState() != StateRunning {
		return nil
	}

	s.UpdateState(StateStopping, s.GetHealth(), nil)

	if err := s.aggregator.Stop(ctx); err != nil {
		logging.Error("Aggregator-Service", err, "Error stopping aggregator")
	}

	s.UpdateState(StateStopped, HealthUnknown, nil)
	logging.Info("Aggregator-Service", "Stopped")
	return nil
}

// Endpoint returns the aggregator's MCP endpoint URL.
func (s *AggregatorService) Endpoint() string {
	return s.aggregator.Endpoint()
}
