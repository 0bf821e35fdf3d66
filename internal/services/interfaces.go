package services

import (
	"context"
)

// ServiceState represents the lifecycle state of a managed service.
type ServiceState string

const (
	StateUnknown  ServiceState = "unknown"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateStopping ServiceState = "stopping"
	StateStopped  ServiceState = "stopped"
	StateFailed   ServiceState = "failed"
)

// HealthStatus represents the health of a running service.
type HealthStatus string

const (
	HealthUnknown   HealthStatus = "unknown"
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// ServiceType identifies the kind of runtime component.
type ServiceType string

const (
	TypeBridge     ServiceType = "Bridge"
	TypeAggregator ServiceType = "Aggregator"
	TypeGateway    ServiceType = "Gateway"
)

// Service is the core interface all runtime components implement.
type Service interface {
	// Lifecycle management
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// State management
	GetState() ServiceState
	GetHealth() HealthStatus
	GetLastError() error

	// Service metadata
	GetName() string
	GetType() ServiceType
	GetDependencies() []string

	// The service calls this callback whenever its state changes
	SetStateChangeCallback(callback StateChangeCallback)
}

// StateChangeCallback is called when a service's state changes
type StateChangeCallback func(name string, oldState, newState ServiceState, health HealthStatus, err error)

// HealthChecker is an optional interface for services that can probe
// their own health while running.
type HealthChecker interface {
	CheckHealth(ctx context.Context) HealthStatus
}
