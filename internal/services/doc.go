// Package services defines the lifecycle layer for shipmate's long-running
// components.
//
// Three services make up the serve runtime: the MCP bridge (server fleet
// plus definition hot-reload), the aggregator endpoint re-exposing the
// fleet's tools, and the chat gateway HTTP server. Each wraps its
// component behind the Service interface so the orchestrator can start
// them in dependency order and stop them in reverse.
//
// BaseService carries the shared state machine (state, health, last
// error) and invokes the state-change callback outside its lock so
// observers can call back into the service without deadlocking. The
// Registry tracks services by name for lookup and enumeration.
//
// States move unknown -> starting -> running -> stopping -> stopped, with
// failed as the terminal error state. Health is reported separately:
// a running bridge with half its servers connected is running but
// degraded.
package services
