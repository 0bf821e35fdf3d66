package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"shipmate/internal/dependency"
	"shipmate/internal/services"
	"shipmate/pkg/logging"
)

// StateChangeEvent describes one service state transition.
type StateChangeEvent struct {
	Name        string                `json:"name"`
	ServiceType string                `json:"service_type"`
	OldState    services.ServiceState `json:"old_state"`
	NewState    services.ServiceState `json:"new_state"`
	Health      services.HealthStatus `json:"health"`
	Error       error                 `json:"error,omitempty"`
	Timestamp   time.Time             `json:"timestamp"`
}

// ServiceSummary is a point-in-time snapshot of one managed service.
type ServiceSummary struct {
	Name      string                `json:"name"`
	Type      string                `json:"type"`
	State     services.ServiceState `json:"state"`
	Health    services.HealthStatus `json:"health"`
	LastError string                `json:"last_error,omitempty"`
}

// Config holds the orchestrator settings.
type Config struct {
	// HealthCheckInterval is how often running services implementing
	// HealthChecker are probed. Zero disables the monitor.
	HealthCheckInterval time.Duration
}

// Orchestrator starts services in dependency order, stops them in
// reverse, and fans out state-change events to subscribers.
type Orchestrator struct {
	registry *services.Registry
	config   Config

	mu          sync.Mutex
	started     []string // names in actual start order
	subscribers []chan<- StateChangeEvent
	monitorStop chan struct{}
}

// New creates an orchestrator with an empty service registry.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		registry: services.NewRegistry(),
		config:   cfg,
	}
}

// Add registers a service with the orchestrator. Services must be added
// before Start; dependencies are resolved by service name.
func (o *Orchestrator) Add(svc services.Service) error {
	if err := o.registry.Register(svc); err != nil {
		return err
	}
	svc.SetStateChangeCallback(o.onStateChange)
	return nil
}

// Registry exposes the underlying service registry.
func (o *Orchestrator) Registry() *services.Registry {
	return o.registry
}

// SubscribeStateChanges adds a subscriber channel for state-change
// events. Delivery is non-blocking: a full channel drops the event.
func (o *Orchestrator) SubscribeStateChanges(ch chan<- StateChangeEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subscribers = append(o.subscribers, ch)
}

func (o *Orchestrator) onStateChange(name string, oldState, newState services.ServiceState, health services.HealthStatus, err error) {
	event := StateChangeEvent{
		Name:      name,
		OldState:  oldState,
		NewState:  newState,
		Health:    health,
		Error:     err,
		Timestamp: time.Now(),
	}
	if svc, ok := o.registry.Get(name); ok {
		event.ServiceType = string(svc.GetType())
	}

	logging.Debug("Orchestrator", "Service %s: %s -> %s (health %s)", name, oldState, newState, health)

	o.mu.Lock()
	subscribers := make([]chan<- StateChangeEvent, len(o.subscribers))
	copy(subscribers, o.subscribers)
	o.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is not keeping up; drop rather than block.
		}
	}
}

// Start brings up every registered service in dependency order. The
// first failure stops the services already started, in reverse order,
// and is returned to the caller.
func (o *Orchestrator) Start(ctx context.Context) error {
	order, err := o.startOrder()
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.started = nil
	o.mu.Unlock()

	for _, name := range order {
		svc, ok := o.registry.Get(name)
		if !ok {
			continue
		}

		logging.Info("Orchestrator", "Starting %s", name)
		if err := svc.Start(ctx); err != nil {
			logging.Error("Orchestrator", err, "Failed to start %s, unwinding", name)
			o.Stop(ctx)
			return fmt.Errorf("failed to start %s: %w", name, err)
		}

		o.mu.Lock()
		o.started = append(o.started, name)
		o.mu.Unlock()
	}

	if o.config.HealthCheckInterval > 0 {
		o.mu.Lock()
		o.monitorStop = make(chan struct{})
		o.mu.Unlock()
		go o.monitorHealth(ctx)
	}

	logging.Info("Orchestrator", "Started %d service(s)", len(order))
	return nil
}

// Stop shuts down the started services in reverse start order. Errors
// are logged, not returned: shutdown always runs to completion.
func (o *Orchestrator) Stop(ctx context.Context) {
	o.mu.Lock()
	if o.monitorStop != nil {
		close(o.monitorStop)
		o.monitorStop = nil
	}
	started := make([]string, len(o.started))
	copy(started, o.started)
	o.started = nil
	o.mu.Unlock()

	for i := len(started) - 1; i >= 0; i-- {
		svc, ok := o.registry.Get(started[i])
		if !ok {
			continue
		}
		logging.Info("Orchestrator", "Stopping %s", started[i])
		if err := svc.Stop(ctx); err != nil {
			logging.Error("Orchestrator", err, "Error stopping %s", started[i])
		}
	}
}

// monitorHealth periodically re-checks the health of running services
// that can probe themselves, applying any change through the service so
// subscribers see it.
func (o *Orchestrator) monitorHealth(ctx context.Context) {
	ticker := time.NewTicker(o.config.HealthCheckInterval)
	defer ticker.Stop()

	o.mu.Lock()
	stop := o.monitorStop
	o.mu.Unlock()
	if stop == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			o.checkHealthOnce(ctx)
		}
	}
}

func (o *Orchestrator) checkHealthOnce(ctx context.Context) {
	type healthApplier interface {
		UpdateHealth(health services.HealthStatus)
	}

	for _, svc := range o.registry.GetAll() {
		if svc.GetState() != services.StateRunning {
			continue
		}
		checker, ok := svc.(services.HealthChecker)
		if !ok {
			continue
		}
		health := checker.CheckHealth(ctx)
		if applier, ok := svc.(healthApplier); ok && health != svc.GetHealth() {
			applier.UpdateHealth(health)
		}
	}
}

// Status returns a snapshot of every registered service, sorted by name.
func (o *Orchestrator) Status() []ServiceSummary {
	all := o.registry.GetAll()
	summaries := make([]ServiceSummary, 0, len(all))
	for _, svc := range all {
		summary := ServiceSummary{
			Name:   svc.GetName(),
			Type:   string(svc.GetType()),
			State:  svc.GetState(),
			Health: svc.GetHealth(),
		}
		if err := svc.GetLastError(); err != nil {
			summary.LastError = err.Error()
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

// startOrder computes a dependency-respecting start order from the
// registered services.
func (o *Orchestrator) startOrder() ([]string, error) {
	graph := dependency.New()
	for _, svc := range o.registry.GetAll() {
		graph.Add(svc.GetName(), svc.GetDependencies()...)
	}
	return graph.StartOrder()
}
