// Package orchestrator coordinates the lifecycle of shipmate's runtime
// services.
//
// Services register with their declared dependencies; Start computes a
// dependency-respecting order (the MCP bridge comes up before the
// aggregator and the chat gateway, which both need its tool inventory),
// starts each service in turn, and unwinds the ones already started when
// one fails. Stop tears everything down in reverse start order and never
// aborts early: a failing Stop is logged and shutdown continues.
//
// State transitions are fanned out to subscriber channels without
// blocking, and an optional monitor re-probes the health of running
// services that implement services.HealthChecker.
package orchestrator
