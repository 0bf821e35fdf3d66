package dependency

import (
	"fmt"
	"sort"
)

// Graph records which service depends on which and derives a start
// order from it. It is not safe for concurrent use; the orchestrator
// builds one per start, orders it and throws it away.
type Graph struct {
	deps map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{deps: make(map[string][]string)}
}

// Add registers a node with its direct dependencies. Adding a name
// twice replaces the earlier dependency list.
func (g *Graph) Add(name string, deps ...string) {
	g.deps[name] = append([]string(nil), deps...)
}

// Has reports whether a node is registered.
func (g *Graph) Has(name string) bool {
	_, ok := g.deps[name]
	return ok
}

// Dependencies returns a copy of the direct dependencies of name.
func (g *Graph) Dependencies(name string) []string {
	return append([]string(nil), g.deps[name]...)
}

// Dependents returns the nodes that directly depend on name, sorted.
func (g *Graph) Dependents(name string) []string {
	var result []string
	for node, deps := range g.deps {
		for _, dep := range deps {
			if dep == name {
				result = append(result, node)
				break
			}
		}
	}
	sort.Strings(result)
	return result
}

// StartOrder sorts the nodes so every dependency comes before its
// dependents. Ties break alphabetically, which keeps the order stable
// across runs. Unknown dependencies and cycles are errors.
func (g *Graph) StartOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.deps))
	dependents := make(map[string][]string, len(g.deps))
	for name, deps := range g.deps {
		for _, dep := range deps {
			if _, ok := g.deps[dep]; !ok {
				return nil, fmt.Errorf("service %s depends on unknown service %s", name, dep)
			}
			dependents[dep] = append(dependents[dep], name)
		}
		indegree[name] = len(deps)
	}

	var queue []string
	for name, degree := range indegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(g.deps))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)

		var unblocked []string
		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				unblocked = append(unblocked, dependent)
			}
		}
		sort.Strings(unblocked)
		queue = append(queue, unblocked...)
	}

	if len(order) != len(g.deps) {
		return nil, fmt.Errorf("dependency cycle detected among services")
	}
	return order, nil
}
