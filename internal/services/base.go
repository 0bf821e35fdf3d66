package services

import (
	"sync"
)

// BaseService carries the bookkeeping shared by every managed service:
// identity, declared dependencies, and the guarded state/health/error
// triple. Concrete services embed it and implement Start/Stop themselves.
type BaseService struct {
	name string
	typ  ServiceType
	deps []string

	mu     sync.RWMutex
	state  ServiceState
	health HealthStatus
	err    error
	cb     StateChangeCallback
}

// NewBaseService creates the bookkeeping for a named service. The
// dependency list is copied; the orchestrator reads it to compute the
// start order.
func NewBaseService(name string, typ ServiceType, deps []string) *BaseService {
	return &BaseService{
		name:   name,
		typ:    typ,
		deps:   append([]string(nil), deps...),
		state:  StateUnknown,
		health: HealthUnknown,
	}
}

func (b *BaseService) GetName() string { return b.name }

func (b *BaseService) GetType() ServiceType { return b.typ }

func (b *BaseService) GetDependencies() []string {
	return append([]string(nil), b.deps...)
}

// GetState returns the current lifecycle state.
func (b *BaseService) GetState() ServiceState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// GetHealth returns the current health status.
func (b *BaseService) GetHealth() HealthStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.health
}

// GetLastError returns the most recent error recorded by an update.
func (b *BaseService) GetLastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

// SetStateChangeCallback registers the observer the orchestrator uses to
// log transitions. Only one callback is held; a later call replaces it.
func (b *BaseService) SetStateChangeCallback(cb StateChangeCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cb = cb
}

// snapshot is what an update hands to the callback once the lock is
// released. Notifying under the lock would deadlock callbacks that read
// the service back.
type snapshot struct {
	cb       StateChangeCallback
	from, to ServiceState
	health   HealthStatus
	err      error
}

func (s snapshot) notify(name string) {
	if s.cb != nil {
		s.cb(name, s.from, s.to, s.health, s.err)
	}
}

// UpdateState moves the service to a new lifecycle state. The callback
// fires only when the state actually changed.
func (b *BaseService) UpdateState(state ServiceState, health HealthStatus, err error) {
	b.mu.Lock()
	snap := snapshot{cb: b.cb, from: b.state, to: state, health: health, err: err}
	b.state = state
	b.health = health
	b.err = err
	b.mu.Unlock()

	if snap.from != snap.to {
		snap.notify(b.name)
	}
}

// UpdateHealth changes the health verdict without touching the lifecycle
// state. The callback fires only when the verdict changed.
func (b *BaseService) UpdateHealth(health HealthStatus) {
	b.mu.Lock()
	changed := b.health != health
	b.health = health
	snap := snapshot{cb: b.cb, from: b.state, to: b.state, health: health, err: b.err}
	b.mu.Unlock()

	if changed {
		snap.notify(b.name)
	}
}

// UpdateError records an error while the service keeps running, such as
// a failed definition reload. A non-nil error always notifies.
func (b *BaseService) UpdateError(err error) {
	b.mu.Lock()
	b.err = err
	snap := snapshot{cb: b.cb, from: b.state, to: b.state, health: b.health, err: err}
	b.mu.Unlock()

	if err != nil {
		snap.notify(b.name)
	}
}
