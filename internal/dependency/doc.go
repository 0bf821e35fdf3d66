// Package dependency computes the start order of shipmate's managed
// services from their declared dependencies.
//
// The orchestrator rebuilds the graph from its service registry on every
// start and orders it with a stable topological sort. Unknown
// dependencies and cycles surface as errors before any service starts.
package dependency
