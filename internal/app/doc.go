// Package app bootstraps the shipmate control plane.
//
// It loads the configuration, assembles the runtime components (MCP
// bridge, aggregator endpoint, chat gateway) around one shared bridge
// registry, hands them to the orchestrator, and runs until interrupted.
// The serve command is the only caller; one-shot commands build the
// pieces they need directly.
package app
