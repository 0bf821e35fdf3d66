package services

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the managed services by name. The orchestrator registers
// the bridge, aggregator, and gateway here and reads them back when
// computing start order and reporting status.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Service
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Service)}
}

// Register adds a service. Names are unique; registering a second service
// under an existing name is an error.
func (r *Registry) Register(svc Service) error {
	if svc == nil {
		return fmt.Errorf("cannot register nil service")
	}
	name := svc.GetName()
	if name == "" {
		return fmt.Errorf("service has empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("service %s already registered", name)
	}
	r.byName[name] = svc
	return nil
}

// Get returns the service registered under name.
func (r *Registry) Get(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.byName[name]
	return svc, ok
}

// GetAll returns every registered service sorted by name, so callers
// iterate in a stable order.
func (r *Registry) GetAll() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Service, 0, len(r.byName))
	for _, svc := range r.byName {
		all = append(all, svc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].GetName() < all[j].GetName() })
	return all
}
